// Package session handles persisted login sessions. Tokens are stored as
// SHA-256 hashes, never raw.
package session

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/config-vault/server/pkg/database"
	"github.com/config-vault/server/pkg/models"
	"github.com/config-vault/server/pkg/repositories"
)

const table = "user_sessions"

type Repository struct {
	*repositories.Repository[models.UserSession]
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		Repository: repositories.NewRepository[models.UserSession](db, logger, table),
	}
}

// GetByTokenHash returns the session for a token hash, or nil when no
// session matches.
func (r *Repository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.UserSession, error) {
	return r.FindOne(ctx, database.Fields{"token_hash": tokenHash})
}

// DeleteByUser removes every session belonging to the user.
func (r *Repository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return r.DeleteMany(ctx, database.Fields{"user_id": userID})
}

// DeleteExpired removes every session past its expiry and returns the count.
func (r *Repository) DeleteExpired(ctx context.Context) (int64, error) {
	sb := database.NewDeleteBuilder()
	sb.DeleteFrom(table)
	sb.Where(sb.LessThan("expires_at", time.Now().UTC()))

	query, args := sb.Build()
	result, err := database.FromContext(ctx, r.DB()).ExecContext(ctx, query, args...)
	if err != nil {
		r.Logger().WithContext(ctx).WithError(err).Error("failed to delete expired sessions")
		return 0, err
	}
	return result.RowsAffected()
}
