// Package auth implements registration, login, and token verification.
package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"golang.org/x/crypto/bcrypt"

	"github.com/config-vault/server/pkg/database"
	"github.com/config-vault/server/pkg/models"
	"github.com/config-vault/server/pkg/tracing"
)

type UserRepository interface {
	Create(ctx context.Context, item database.Fields) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, item database.Fields) (*models.UserSession, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.UserSession, error)
	DeleteMany(ctx context.Context, criteria database.Fields) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type Service struct {
	logger   ectologger.Logger
	users    UserRepository
	sessions SessionRepository
	secret   string
	tokenTTL time.Duration
}

func NewService(logger ectologger.Logger, users UserRepository, sessions SessionRepository, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		logger:   logger,
		users:    users,
		sessions: sessions,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

// Register creates a new user and logs them in. Optional register fields
// that were not supplied are left to the schema defaults rather than
// written as nulls.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthenticatedUser, error) {
	ctx, span := tracing.StartSpan(ctx, "auth.Register")
	defer span.End()

	existing, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}

	fields := database.Fields{
		"username":  req.Username,
		"password":  string(hash),
		"role":      models.RoleUser,
		"is_active": true,
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Name != nil {
		fields["name"] = *req.Name
	}

	user, err := s.users.Create(ctx, fields)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, httperror.NewHTTPError(http.StatusBadRequest, "username or email already exists")
		}
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("registered user")

	return s.startSession(ctx, user)
}

// Login verifies the credentials and issues a fresh token. Bad username and
// bad password produce the same error on purpose.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthenticatedUser, error) {
	ctx, span := tracing.StartSpan(ctx, "auth.Login")
	defer span.End()

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "username or password is invalid")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "username or password is invalid")
	}
	if !user.IsActive {
		return nil, httperror.NewHTTPError(http.StatusForbidden, "account is disabled")
	}

	s.logger.WithContext(ctx).WithField("user_id", user.ID).Info("user logged in")
	return s.startSession(ctx, user)
}

// Verify validates a bearer token and returns the user it belongs to. The
// token must carry a valid signature and an unexpired, unrevoked session.
func (s *Service) Verify(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.GetByTokenHash(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}
	if sess == nil || time.Now().UTC().After(sess.ExpiresAt) {
		return nil, httperror.NewHTTPError(http.StatusUnauthorized, "session expired")
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, httperror.NewHTTPError(http.StatusUnauthorized, "account not found or disabled")
	}
	return user, nil
}

// Logout revokes the session behind the token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := tracing.StartSpan(ctx, "auth.Logout")
	defer span.End()

	if _, err := s.sessions.DeleteMany(ctx, database.Fields{"token_hash": hashToken(token)}); err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	return nil
}

// PurgeExpiredSessions removes sessions past their expiry.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx)
}

func (s *Service) startSession(ctx context.Context, user *models.User) (*models.AuthenticatedUser, error) {
	expiresAt := time.Now().UTC().Add(s.tokenTTL)
	token, err := s.issueToken(user.ID, user.Username, user.Role, expiresAt)
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.Create(ctx, database.Fields{
		"user_id":    user.ID,
		"token_hash": hashToken(token),
		"expires_at": expiresAt,
	}); err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}

	return &models.AuthenticatedUser{User: *user, Token: token}, nil
}
