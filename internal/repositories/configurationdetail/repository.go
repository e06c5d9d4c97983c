// Package configurationdetail handles per-environment configuration rows.
package configurationdetail

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/config-vault/server/pkg/database"
	"github.com/config-vault/server/pkg/models"
	"github.com/config-vault/server/pkg/repositories"
)

const table = "configuration_detail"

type Repository struct {
	*repositories.Repository[models.ConfigurationDetail]
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		Repository: repositories.NewRepository[models.ConfigurationDetail](db, logger, table),
	}
}

// ListByConfiguration returns every detail row for a configuration.
func (r *Repository) ListByConfiguration(ctx context.Context, configurationID string) ([]models.ConfigurationDetail, error) {
	return r.FindBy(ctx, database.Fields{"configuration_id": configurationID}, 0, 0)
}

// GetByEnvironment returns the detail row for one environment of a
// configuration, or nil when the environment has no row.
func (r *Repository) GetByEnvironment(ctx context.Context, configurationID, environment string) (*models.ConfigurationDetail, error) {
	return r.FindOne(ctx, database.Fields{
		"configuration_id": configurationID,
		"environment":      environment,
	})
}

// DeleteByConfiguration removes every detail row for a configuration and
// returns the count.
func (r *Repository) DeleteByConfiguration(ctx context.Context, configurationID string) (int64, error) {
	return r.DeleteMany(ctx, database.Fields{"configuration_id": configurationID})
}
