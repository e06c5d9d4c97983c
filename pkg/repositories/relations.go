package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/config-vault/server/pkg/database"
	"github.com/config-vault/server/pkg/tracing"
)

// Relation declares how one child table joins onto the repository's table
// and how its rows are folded back out of the flat join result. Columns is
// the exact set of child columns pulled back; the select aliases each one as
// "<alias>_<column>" and the transform extracts by that declared list, never
// by guessing at prefixes.
type Relation struct {
	// Name is the field the nested child data is placed under on the parent.
	Name string
	// Table is the joined table.
	Table string
	// Alias is the join alias; defaults to the table name.
	Alias string
	// On is the join predicate.
	On string
	// Columns are the child columns to pull back.
	Columns []string
	// Key is the child column used to de-duplicate children across repeated
	// parent rows caused by join fan-out.
	Key string
	// Multiple marks a one-to-many relation, collected into a list. A
	// singular relation holds the first non-null child or nil.
	Multiple bool
}

func (rel Relation) alias() string {
	if rel.Alias != "" {
		return rel.Alias
	}
	return rel.Table
}

// RelationQuery describes one LEFT JOIN fetch against the repository's table.
type RelationQuery struct {
	Relations []Relation
	// Where keys should be table-qualified when they would otherwise be
	// ambiguous across the joined tables.
	Where   database.Fields
	OrderBy string
	Limit   int
	Offset  int
}

// FindWithRelations issues one LEFT JOIN select for the repository's table
// plus each declared relation and returns the flat rows: one row per
// parent-child combination, child columns named "<alias>_<column>".
func (r *Repository[T]) FindWithRelations(ctx context.Context, q RelationQuery) ([]map[string]any, error) {
	ctx, span := tracing.StartSpan(ctx, "Repository.FindWithRelations")
	defer span.End()

	columns := []string{r.table + ".*"}
	for _, rel := range q.Relations {
		alias := rel.alias()
		for _, col := range rel.Columns {
			columns = append(columns, fmt.Sprintf("%s.%s AS %s_%s", alias, col, alias, col))
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(r.table)
	for _, rel := range q.Relations {
		sb.WriteString(fmt.Sprintf(" LEFT JOIN %s AS %s ON %s", rel.Table, rel.alias(), rel.On))
	}

	clause, values := database.BuildWhereClause(q.Where)
	if clause != "" {
		sb.WriteString(" ")
		sb.WriteString(clause)
	}
	if q.OrderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(q.OrderBy)
	}
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ? OFFSET ?")
		values = append(values, q.Limit, q.Offset)
	}

	return r.RawQuery(ctx, sb.String(), values...)
}

// TransformRelationalData folds flat join rows back into one entity per
// distinct parent id, preserving first-seen order. Parent fields are every
// column not claimed by a declared relation. Each relation's field starts as
// an empty list (Multiple) or nil; a child whose declared columns are all
// null is treated as absent, and list children are de-duplicated by the
// relation's Key so join fan-out never produces duplicates.
func TransformRelationalData(rows []map[string]any, parentKey string, relations []Relation) []map[string]any {
	// Every aliased child column, so parent extraction works off the
	// declared descriptors instead of string-prefix matching.
	claimed := map[string]Relation{}
	for _, rel := range relations {
		for _, col := range rel.Columns {
			claimed[rel.alias()+"_"+col] = rel
		}
	}

	order := []string{}
	parents := map[string]map[string]any{}
	seen := map[string]map[string]struct{}{}

	for _, row := range rows {
		idValue, ok := row[parentKey]
		if !ok || idValue == nil {
			continue
		}
		parentID := fmt.Sprint(idValue)

		parent, exists := parents[parentID]
		if !exists {
			parent = map[string]any{}
			for column, value := range row {
				if _, isChild := claimed[column]; isChild {
					continue
				}
				parent[column] = value
			}
			for _, rel := range relations {
				if rel.Multiple {
					parent[rel.Name] = []map[string]any{}
				} else {
					parent[rel.Name] = nil
				}
			}
			parents[parentID] = parent
			seen[parentID] = map[string]struct{}{}
			order = append(order, parentID)
		}

		for _, rel := range relations {
			alias := rel.alias()
			child := map[string]any{}
			allNull := true
			for _, col := range rel.Columns {
				value := row[alias+"_"+col]
				if value != nil {
					allNull = false
				}
				child[col] = value
			}
			if allNull {
				continue
			}

			if !rel.Multiple {
				if parent[rel.Name] == nil {
					parent[rel.Name] = child
				}
				continue
			}

			childKey := rel.Name + "\x00" + fmt.Sprint(child[rel.Key])
			if _, duplicate := seen[parentID][childKey]; duplicate {
				continue
			}
			seen[parentID][childKey] = struct{}{}
			parent[rel.Name] = append(parent[rel.Name].([]map[string]any), child)
		}
	}

	results := make([]map[string]any, 0, len(order))
	for _, parentID := range order {
		results = append(results, parents[parentID])
	}
	return results
}
