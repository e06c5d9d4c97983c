// Package template handles reusable configuration templates.
package template

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/config-vault/server/pkg/database"
	"github.com/config-vault/server/pkg/models"
	"github.com/config-vault/server/pkg/repositories"
)

const table = "templates"

type Repository struct {
	*repositories.Repository[models.Template]
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		Repository: repositories.NewRepository[models.Template](db, logger, table),
	}
}

// ListVisible returns templates the user can see: public ones plus their
// own. A blank userID returns only public templates.
func (r *Repository) ListVisible(ctx context.Context, userID string, limit, offset int) ([]models.Template, error) {
	sb := database.NewStruct(models.Template{}).SelectFrom(table)
	if userID != "" {
		sb.Where(sb.Or(
			sb.Equal("is_public", true),
			sb.Equal("created_by", userID),
		))
	} else {
		sb.Where(sb.Equal("is_public", true))
	}
	sb.OrderBy("usage_count DESC", "created_at DESC")
	if limit > 0 {
		sb.Limit(limit).Offset(offset)
	}

	query, args := sb.Build()
	templates := []models.Template{}
	if err := database.FromContext(ctx, r.DB()).SelectContext(ctx, &templates, query, args...); err != nil {
		r.Logger().WithContext(ctx).WithError(err).Error("failed to list templates")
		return nil, err
	}
	return templates, nil
}

// ListByFileType returns templates for one file type, respecting the same
// visibility rules as ListVisible.
func (r *Repository) ListByFileType(ctx context.Context, fileType, userID string) ([]models.Template, error) {
	sb := database.NewStruct(models.Template{}).SelectFrom(table)
	visibility := sb.Equal("is_public", true)
	if userID != "" {
		visibility = sb.Or(visibility, sb.Equal("created_by", userID))
	}
	sb.Where(sb.Equal("file_type", fileType), visibility)
	sb.OrderBy("usage_count DESC")

	query, args := sb.Build()
	templates := []models.Template{}
	if err := database.FromContext(ctx, r.DB()).SelectContext(ctx, &templates, query, args...); err != nil {
		r.Logger().WithContext(ctx).WithError(err).Error("failed to list templates by file type")
		return nil, err
	}
	return templates, nil
}

// IncrementUsage bumps a template's usage counter.
func (r *Repository) IncrementUsage(ctx context.Context, id string) error {
	sb := database.NewUpdateBuilder()
	sb.Update(table)
	sb.Set(
		"usage_count = usage_count + 1",
		sb.Assign("updated_at", time.Now().UTC()),
	)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	if _, err := database.FromContext(ctx, r.DB()).ExecContext(ctx, query, args...); err != nil {
		r.Logger().WithContext(ctx).WithError(err).WithField("id", id).Error("failed to increment template usage")
		return err
	}
	return nil
}
