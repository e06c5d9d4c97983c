// Package user implements user management on top of the user repository.
package user

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"golang.org/x/crypto/bcrypt"

	"github.com/config-vault/server/pkg/database"
	"github.com/config-vault/server/pkg/models"
	"github.com/config-vault/server/pkg/tracing"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindAll(ctx context.Context, limit, offset int) ([]models.User, error)
	Update(ctx context.Context, id string, item database.Fields) (*models.User, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type Service struct {
	logger ectologger.Logger
	users  UserRepository
}

func NewService(logger ectologger.Logger, users UserRepository) *Service {
	return &Service{logger: logger, users: users}
}

// Get returns one user by id.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}
	if user == nil {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "user %s not found", id)
	}
	return user, nil
}

// List returns users, most recently created first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	users, err := s.users.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}
	return users, nil
}

// Update applies the supplied fields to the user. Fields left nil in the
// request are not written at all.
func (s *Service) Update(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error) {
	ctx, span := tracing.StartSpan(ctx, "user.Update")
	defer span.End()

	fields := database.Fields{}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.AvatarURL != nil {
		fields["avatar_url"] = *req.AvatarURL
	}
	if req.Role != nil {
		fields["role"] = *req.Role
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, httperror.WrapError(http.StatusInternalServerError, err)
		}
		fields["password"] = string(hash)
	}

	if len(fields) == 0 {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "no fields to update")
	}

	existing, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}
	if existing == nil {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "user %s not found", id)
	}

	updated, err := s.users.Update(ctx, id, fields)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, httperror.NewHTTPError(http.StatusBadRequest, "email already in use")
		}
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}

	s.logger.WithContext(ctx).WithField("user_id", id).Info("updated user")
	return updated, nil
}

// Delete removes the user and, through schema cascades, everything they own.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "user.Delete")
	defer span.End()

	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	if !deleted {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "user %s not found", id)
	}

	s.logger.WithContext(ctx).WithField("user_id", id).Info("deleted user")
	return nil
}
