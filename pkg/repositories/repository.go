// Package repositories provides the generic table-agnostic CRUD surface
// shared by every domain repository. One Repository is configured per table
// via NewRepository; domain packages wrap it with entity-specific helpers
// instead of subclassing.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/config-vault/server/pkg/database"
	"github.com/config-vault/server/pkg/tracing"
)

// reserved columns are server-managed and never accepted from callers.
// Create and Update payloads are expected to omit them; the invariant is
// enforced by the calling layer's validation, not stripped here.
const (
	columnID        = "id"
	columnCreatedAt = "created_at"
	columnUpdatedAt = "updated_at"
)

type Repository[T any] struct {
	db     database.DB
	logger ectologger.Logger
	table  string
}

func NewRepository[T any](db database.DB, logger ectologger.Logger, table string) *Repository[T] {
	return &Repository[T]{
		db:     db,
		logger: logger,
		table:  table,
	}
}

// DB returns the database instance
func (r *Repository[T]) DB() database.DB {
	return r.db
}

// Table returns the table this repository is bound to.
func (r *Repository[T]) Table() string {
	return r.table
}

// Logger returns the repository logger.
func (r *Repository[T]) Logger() ectologger.Logger {
	return r.logger
}

func (r *Repository[T]) querier(ctx context.Context) database.Querier {
	return database.FromContext(ctx, r.db)
}

// Create inserts a new row from the caller-supplied fields and returns the
// persisted row, including the server-generated id and timestamps.
// Constraint violations propagate untranslated; domain services map them.
func (r *Repository[T]) Create(ctx context.Context, item database.Fields) (*T, error) {
	ctx, span := tracing.StartSpan(ctx, "Repository.Create")
	defer span.End()

	now := time.Now().UTC()
	id := uuid.New().String()

	columns := []string{columnID, columnCreatedAt, columnUpdatedAt}
	values := []any{id, now, now}
	for _, key := range item.SortedKeys() {
		columns = append(columns, key)
		values = append(values, item[key])
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", r.table, strings.Join(columns, ", "), placeholders)

	if _, err := r.querier(ctx).ExecContext(ctx, query, values...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("table", r.table).Error("failed to insert row")
		return nil, err
	}

	created, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("row %s not found in %s after insert", id, r.table)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"table": r.table,
		"id":    id,
	}).Debugf("Created row in %s", r.table)
	return created, nil
}

// CreateMany inserts all items inside one transaction; a failure on any item
// rolls back every insert.
func (r *Repository[T]) CreateMany(ctx context.Context, items []database.Fields) ([]T, error) {
	ctx, span := tracing.StartSpan(ctx, "Repository.CreateMany")
	defer span.End()

	if len(items) == 0 {
		return []T{}, nil
	}

	results := make([]T, 0, len(items))
	err := r.WithTx(ctx, func(txCtx context.Context) error {
		for _, item := range items {
			created, err := r.Create(txCtx, item)
			if err != nil {
				return err
			}
			results = append(results, *created)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// FindByID returns the row with the given id, or nil when it does not exist.
func (r *Repository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	var entity T
	query := fmt.Sprintf("SELECT * FROM %s WHERE id = ?", r.table)
	err := r.querier(ctx).GetContext(ctx, &entity, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"table": r.table,
			"id":    id,
		}).Error("failed to get row by id")
		return nil, err
	}
	return &entity, nil
}

// FindOne returns the first row matching the criteria, or nil when nothing
// matches.
func (r *Repository[T]) FindOne(ctx context.Context, criteria database.Fields) (*T, error) {
	clause, values := database.BuildWhereClause(criteria)

	var entity T
	query := strings.TrimSpace(fmt.Sprintf("SELECT * FROM %s %s", r.table, clause)) + " LIMIT 1"
	err := r.querier(ctx).GetContext(ctx, &entity, query, values...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("table", r.table).Error("failed to find row")
		return nil, err
	}
	return &entity, nil
}

// FindBy returns every row matching the criteria, most recently created
// first. A limit of 0 means no limit.
func (r *Repository[T]) FindBy(ctx context.Context, criteria database.Fields, limit, offset int) ([]T, error) {
	clause, values := database.BuildWhereClause(criteria)

	query := strings.TrimSpace(fmt.Sprintf("SELECT * FROM %s %s", r.table, clause)) + " ORDER BY created_at DESC"
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		values = append(values, limit, offset)
	}

	entities := []T{}
	err := r.querier(ctx).SelectContext(ctx, &entities, query, values...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("table", r.table).Error("failed to list rows")
		return nil, err
	}
	return entities, nil
}

// FindAll returns every row, most recently created first.
func (r *Repository[T]) FindAll(ctx context.Context, limit, offset int) ([]T, error) {
	return r.FindBy(ctx, nil, limit, offset)
}

// Update merges the supplied fields into the row and returns the fresh row
// as re-read after the write. An empty change-set fails before touching
// storage; a row that cannot be re-read after the write is a hard error.
func (r *Repository[T]) Update(ctx context.Context, id string, item database.Fields) (*T, error) {
	ctx, span := tracing.StartSpan(ctx, "Repository.Update")
	defer span.End()

	clause, values := database.BuildUpdateClause(item)
	if clause == "" {
		return nil, fmt.Errorf("no fields to update for %s %s", r.table, id)
	}

	clause += ", " + columnUpdatedAt + " = ?"
	values = append(values, time.Now().UTC(), id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", r.table, clause)
	if _, err := r.querier(ctx).ExecContext(ctx, query, values...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"table": r.table,
			"id":    id,
		}).Error("failed to update row")
		return nil, err
	}

	updated, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("row %s not found in %s after update", id, r.table)
	}
	return updated, nil
}

// UpdateMany applies the change-set to every row matching the criteria and
// returns the number of affected rows. An empty change-set fails fast; empty
// criteria updates every row.
func (r *Repository[T]) UpdateMany(ctx context.Context, criteria, item database.Fields) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "Repository.UpdateMany")
	defer span.End()

	setClause, setValues := database.BuildUpdateClause(item)
	if setClause == "" {
		return 0, fmt.Errorf("no fields to update for %s", r.table)
	}
	setClause += ", " + columnUpdatedAt + " = ?"
	setValues = append(setValues, time.Now().UTC())

	whereClause, whereValues := database.BuildWhereClause(criteria)

	query := strings.TrimSpace(fmt.Sprintf("UPDATE %s SET %s %s", r.table, setClause, whereClause))
	result, err := r.querier(ctx).ExecContext(ctx, query, append(setValues, whereValues...)...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("table", r.table).Error("failed to update rows")
		return 0, err
	}
	return result.RowsAffected()
}

// Delete removes one row by id and reports whether a row was removed.
// A missing id is not an error.
func (r *Repository[T]) Delete(ctx context.Context, id string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "Repository.Delete")
	defer span.End()

	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", r.table)
	result, err := r.querier(ctx).ExecContext(ctx, query, id)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"table": r.table,
			"id":    id,
		}).Error("failed to delete row")
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// DeleteMany removes every row matching the criteria and returns the count.
// Criteria that resolve to an empty WHERE clause are refused before touching
// storage, so a bad caller cannot wipe the table.
func (r *Repository[T]) DeleteMany(ctx context.Context, criteria database.Fields) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "Repository.DeleteMany")
	defer span.End()

	clause, values := database.BuildWhereClause(criteria)
	if clause == "" {
		return 0, fmt.Errorf("cannot delete all rows in %s without criteria", r.table)
	}

	query := fmt.Sprintf("DELETE FROM %s %s", r.table, clause)
	result, err := r.querier(ctx).ExecContext(ctx, query, values...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("table", r.table).Error("failed to delete rows")
		return 0, err
	}
	return result.RowsAffected()
}

// Count returns the number of rows matching the criteria; nil criteria
// counts the whole table.
func (r *Repository[T]) Count(ctx context.Context, criteria database.Fields) (int, error) {
	clause, values := database.BuildWhereClause(criteria)

	var count int
	query := strings.TrimSpace(fmt.Sprintf("SELECT COUNT(*) FROM %s %s", r.table, clause))
	if err := r.querier(ctx).GetContext(ctx, &count, query, values...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("table", r.table).Error("failed to count rows")
		return 0, err
	}
	return count, nil
}

// Exists reports whether a row with the given id exists.
func (r *Repository[T]) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE id = ? LIMIT 1", r.table)
	err := r.querier(ctx).GetContext(ctx, &one, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// WithTx runs fn inside one transaction scope: commit on nil return,
// rollback and error pass-through otherwise. Repository operations called
// with the scoped context run on the same transaction.
func (r *Repository[T]) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.WithTx(ctx, r.logger, r.db, fn)
}

// RawQuery runs arbitrary parameterized SQL and returns the rows as maps.
func (r *Repository[T]) RawQuery(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := r.querier(ctx).QueryxContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("table", r.table).Error("raw query failed")
		return nil, err
	}
	defer rows.Close()

	results := []map[string]any{}
	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		results = append(results, normalizeRow(row))
	}
	return results, rows.Err()
}

// RawGet runs arbitrary parameterized SQL and returns the first row as a
// map, or nil when there is no row.
func (r *Repository[T]) RawGet(ctx context.Context, query string, args ...any) (map[string]any, error) {
	results, err := r.RawQuery(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// ExecuteSchema runs a raw, possibly multi-statement DDL script.
func (r *Repository[T]) ExecuteSchema(ctx context.Context, schema string) error {
	if _, err := r.querier(ctx).ExecContext(ctx, schema); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("table", r.table).Error("schema execution failed")
		return err
	}
	return nil
}

// normalizeRow converts driver byte slices to strings so raw rows are
// JSON-friendly and comparable.
func normalizeRow(row map[string]any) map[string]any {
	for key, value := range row {
		if b, ok := value.([]byte); ok {
			row[key] = string(b)
		}
	}
	return row
}
