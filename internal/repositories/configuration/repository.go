// Package configuration handles configuration persistence, including the
// joined fetches that return a configuration together with its
// per-environment details.
package configuration

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/config-vault/server/pkg/database"
	"github.com/config-vault/server/pkg/models"
	"github.com/config-vault/server/pkg/repositories"
)

const table = "configurations"

// detailsRelation declares the configuration_detail join used by the
// *WithDetails fetches. The child rows land under "configuration_details"
// on each parent map.
var detailsRelation = repositories.Relation{
	Name:     "configuration_details",
	Table:    "configuration_detail",
	Alias:    "cd",
	On:       "configurations.id = cd.configuration_id",
	Columns:  []string{"id", "environment", "env", "code", "created_at", "updated_at"},
	Key:      "id",
	Multiple: true,
}

type Repository struct {
	*repositories.Repository[models.Configuration]
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		Repository: repositories.NewRepository[models.Configuration](db, logger, table),
	}
}

// ListByProject returns a project's configurations without details.
func (r *Repository) ListByProject(ctx context.Context, projectID string, limit, offset int) ([]models.Configuration, error) {
	return r.FindBy(ctx, database.Fields{"project_id": projectID}, limit, offset)
}

// GetByShareToken returns the configuration published under the given share
// token, or nil when the token matches nothing.
func (r *Repository) GetByShareToken(ctx context.Context, token string) (*models.Configuration, error) {
	return r.FindOne(ctx, database.Fields{"share_token": token})
}

// GetWithDetails returns one configuration with its environment details
// nested under "configuration_details", or nil when the id matches nothing.
func (r *Repository) GetWithDetails(ctx context.Context, id string) (map[string]any, error) {
	rows, err := r.FindWithRelations(ctx, repositories.RelationQuery{
		Relations: []repositories.Relation{detailsRelation},
		Where:     database.Fields{"configurations.id": id},
	})
	if err != nil {
		return nil, err
	}

	results := repositories.TransformRelationalData(rows, "id", []repositories.Relation{detailsRelation})
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// ListByProjectWithDetails returns every configuration in the project with
// its environment details nested, most recently created first.
func (r *Repository) ListByProjectWithDetails(ctx context.Context, projectID string) ([]map[string]any, error) {
	rows, err := r.FindWithRelations(ctx, repositories.RelationQuery{
		Relations: []repositories.Relation{detailsRelation},
		Where:     database.Fields{"configurations.project_id": projectID},
		OrderBy:   "configurations.created_at DESC, cd.created_at ASC",
	})
	if err != nil {
		return nil, err
	}
	return repositories.TransformRelationalData(rows, "id", []repositories.Relation{detailsRelation}), nil
}
