// Package service handles the infrastructure service registry rows.
package service

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/config-vault/server/pkg/database"
	"github.com/config-vault/server/pkg/models"
	"github.com/config-vault/server/pkg/repositories"
)

const table = "services"

type Repository struct {
	*repositories.Repository[models.Service]
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		Repository: repositories.NewRepository[models.Service](db, logger, table),
	}
}

// ListByProject returns a project's registered services.
func (r *Repository) ListByProject(ctx context.Context, projectID string, limit, offset int) ([]models.Service, error) {
	return r.FindBy(ctx, database.Fields{"project_id": projectID}, limit, offset)
}

// ListByEnvironment returns a project's services for one environment.
func (r *Repository) ListByEnvironment(ctx context.Context, projectID, environment string) ([]models.Service, error) {
	return r.FindBy(ctx, database.Fields{
		"project_id":  projectID,
		"environment": environment,
	}, 0, 0)
}

// UpdateStatus records a health check result on the service row.
func (r *Repository) UpdateStatus(ctx context.Context, id, status string, checkedAt time.Time) (*models.Service, error) {
	return r.Update(ctx, id, database.Fields{
		"status":            status,
		"last_health_check": checkedAt.UTC(),
	})
}
