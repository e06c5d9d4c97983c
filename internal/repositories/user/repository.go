// Package user handles user persistence.
package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Gobusters/ectologger"

	"github.com/config-vault/server/pkg/database"
	"github.com/config-vault/server/pkg/models"
	"github.com/config-vault/server/pkg/repositories"
)

const table = "users"

type Repository struct {
	*repositories.Repository[models.User]
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		Repository: repositories.NewRepository[models.User](db, logger, table),
	}
}

// GetByUsername returns the user with the given username, or nil when no
// such user exists.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	sb := database.NewStruct(models.User{}).SelectFrom(table)
	sb.Where(sb.Equal("username", username))
	sb.Limit(1)

	query, args := sb.Build()
	var user models.User
	err := database.FromContext(ctx, r.DB()).GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.Logger().WithContext(ctx).WithError(err).WithField("username", username).Error("failed to get user by username")
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns the user with the given email, or nil when no such
// user exists.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	sb := database.NewStruct(models.User{}).SelectFrom(table)
	sb.Where(sb.Equal("email", email))
	sb.Limit(1)

	query, args := sb.Build()
	var user models.User
	err := database.FromContext(ctx, r.DB()).GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.Logger().WithContext(ctx).WithError(err).Error("failed to get user by email")
		return nil, err
	}
	return &user, nil
}

// ListActive returns active users, most recently created first.
func (r *Repository) ListActive(ctx context.Context, limit, offset int) ([]models.User, error) {
	return r.FindBy(ctx, database.Fields{"is_active": true}, limit, offset)
}
