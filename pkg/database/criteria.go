package database

import (
	"sort"
	"strings"
)

// Fields is a partial entity: column name to value. A key that is absent from
// the map is not part of the filter or change-set at all. A key that is
// present with a nil value means the column is NULL.
type Fields map[string]any

// BuildWhereClause compiles criteria into a parameterized WHERE fragment and
// the ordered values matching its placeholders. Nil values compile to
// IS NULL rather than an equality placeholder, since "col = NULL" never
// matches. Keys are sorted so the output is deterministic. Empty criteria
// yields an empty clause so callers can detect "no filter".
func BuildWhereClause(criteria Fields) (string, []any) {
	if len(criteria) == 0 {
		return "", nil
	}

	keys := sortedKeys(criteria)
	conditions := make([]string, 0, len(keys))
	values := make([]any, 0, len(keys))
	for _, key := range keys {
		value := criteria[key]
		if value == nil {
			conditions = append(conditions, key+" IS NULL")
			continue
		}
		conditions = append(conditions, key+" = ?")
		values = append(values, value)
	}

	return "WHERE " + strings.Join(conditions, " AND "), values
}

// BuildUpdateClause compiles a change-set into a parameterized SET fragment
// and its ordered values. Nil values bind as NULL. Empty input yields an
// empty clause so callers can refuse ambiguous updates.
func BuildUpdateClause(item Fields) (string, []any) {
	if len(item) == 0 {
		return "", nil
	}

	keys := sortedKeys(item)
	assignments := make([]string, 0, len(keys))
	values := make([]any, 0, len(keys))
	for _, key := range keys {
		assignments = append(assignments, key+" = ?")
		values = append(values, item[key])
	}

	return strings.Join(assignments, ", "), values
}

// SortedKeys returns the field names in deterministic order.
func (f Fields) SortedKeys() []string {
	keys := make([]string, 0, len(f))
	for key := range f {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeys(fields Fields) []string {
	return fields.SortedKeys()
}
