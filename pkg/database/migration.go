package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
)

// Migration is a versioned schema change. Up scripts use CREATE ... IF NOT
// EXISTS semantics so that an applied-but-unrecorded migration survives a
// re-attempt. Down scripts are advisory rollback scripts and are never run
// by the service.
type Migration struct {
	Version     int
	Description string
	Up          string
	Down        string
}

// AppliedMigration is one row of the tracking table.
type AppliedMigration struct {
	Version   int       `db:"version" json:"version"`
	AppliedAt time.Time `db:"applied_at" json:"applied_at"`
}

const trackingTable = "schema_migrations"

const createTrackingTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

type MigrationService struct {
	db         DB
	logger     ectologger.Logger
	migrations []Migration
}

func NewMigrationService(db DB, logger ectologger.Logger, migrations []Migration) *MigrationService {
	return &MigrationService{
		db:         db,
		logger:     logger,
		migrations: migrations,
	}
}

// CurrentVersion returns the highest applied version, or 0 when no migration
// has been applied yet. A missing tracking table means version 0, not an
// error.
func (ms *MigrationService) CurrentVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	err := ms.db.GetContext(ctx, &version, fmt.Sprintf("SELECT MAX(version) FROM %s", trackingTable))
	if err != nil {
		if isMissingTable(err) {
			return 0, nil
		}
		return 0, err
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}

// IsApplied reports whether the given version has been recorded.
func (ms *MigrationService) IsApplied(ctx context.Context, version int) (bool, error) {
	var count int
	err := ms.db.GetContext(ctx, &count, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE version = ?", trackingTable), version)
	if err != nil {
		if isMissingTable(err) {
			return false, nil
		}
		return false, err
	}
	return count > 0, nil
}

// Applied returns every applied version with its apply timestamp, ascending
// by version. A missing tracking table yields an empty list.
func (ms *MigrationService) Applied(ctx context.Context) ([]AppliedMigration, error) {
	applied := []AppliedMigration{}
	err := ms.db.SelectContext(ctx, &applied, fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version", trackingTable))
	if err != nil {
		if isMissingTable(err) {
			return []AppliedMigration{}, nil
		}
		return nil, err
	}
	return applied, nil
}

// Apply runs the migration's up script, then records its version. The record
// is written only after the script succeeds; a failed script leaves the
// version unrecorded.
func (ms *MigrationService) Apply(ctx context.Context, migration Migration) error {
	ms.logger.WithContext(ctx).WithFields(map[string]any{
		"version":     migration.Version,
		"description": migration.Description,
	}).Infof("Applying migration %d: %s", migration.Version, migration.Description)

	if _, err := ms.db.ExecContext(ctx, migration.Up); err != nil {
		ms.logger.WithContext(ctx).WithError(err).Errorf("Migration %d failed", migration.Version)
		return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Description, err)
	}

	if _, err := ms.db.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (version) VALUES (?)", trackingTable), migration.Version); err != nil {
		ms.logger.WithContext(ctx).WithError(err).Errorf("Failed to record migration %d", migration.Version)
		return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
	}

	ms.logger.WithContext(ctx).Infof("Migration %d applied", migration.Version)
	return nil
}

// Run applies every registered migration with a version above the current
// one, strictly ascending, one at a time. It stops on the first failure so
// startup can abort rather than skip ahead. Running again with nothing
// pending is a no-op.
func (ms *MigrationService) Run(ctx context.Context) error {
	if err := ms.validate(); err != nil {
		return err
	}

	if _, err := ms.db.ExecContext(ctx, createTrackingTable); err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}

	current, err := ms.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	ms.logger.WithContext(ctx).Infof("Current database version: %d", current)

	pending := make([]Migration, 0, len(ms.migrations))
	for _, m := range ms.migrations {
		if m.Version > current {
			pending = append(pending, m)
		}
	}

	if len(pending) == 0 {
		ms.logger.WithContext(ctx).Info("No pending migrations")
		return nil
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Version < pending[j].Version
	})

	startTime := time.Now()
	for _, migration := range pending {
		if err := ms.Apply(ctx, migration); err != nil {
			return err
		}
	}

	ms.logger.WithContext(ctx).Infof("Applied %d migrations in %v", len(pending), time.Since(startTime))
	return nil
}

// validate enforces unique positive versions. Gaps are permitted.
func (ms *MigrationService) validate() error {
	seen := make(map[int]struct{}, len(ms.migrations))
	for _, m := range ms.migrations {
		if m.Version <= 0 {
			return fmt.Errorf("migration version must be a positive integer, got %d (%s)", m.Version, m.Description)
		}
		if _, ok := seen[m.Version]; ok {
			return fmt.Errorf("duplicate migration version %d", m.Version)
		}
		seen[m.Version] = struct{}{}
	}
	return nil
}

func isMissingTable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	return strings.Contains(err.Error(), "no such table")
}
