// Package project handles project persistence.
package project

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/config-vault/server/pkg/database"
	"github.com/config-vault/server/pkg/models"
	"github.com/config-vault/server/pkg/repositories"
)

const table = "projects"

type Repository struct {
	*repositories.Repository[models.Project]
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		Repository: repositories.NewRepository[models.Project](db, logger, table),
	}
}

// ListByUser returns a user's projects, most recently created first.
func (r *Repository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Project, error) {
	return r.FindBy(ctx, database.Fields{"user_id": userID}, limit, offset)
}

// GetOwned returns the project only when it belongs to the given user, nil
// otherwise.
func (r *Repository) GetOwned(ctx context.Context, id, userID string) (*models.Project, error) {
	return r.FindOne(ctx, database.Fields{"id": id, "user_id": userID})
}

// CountByUser returns how many projects the user owns.
func (r *Repository) CountByUser(ctx context.Context, userID string) (int, error) {
	return r.Count(ctx, database.Fields{"user_id": userID})
}
