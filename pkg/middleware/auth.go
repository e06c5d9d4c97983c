package middleware

import (
	stdcontext "context"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/config-vault/server/pkg/context"
	"github.com/config-vault/server/pkg/models"
)

// TokenVerifier resolves a bearer token to the user it belongs to.
type TokenVerifier interface {
	Verify(ctx stdcontext.Context, token string) (*models.User, error)
}

const userContextKey = "auth.user"

// Auth requires a valid Bearer token on every request it wraps. The
// authenticated user lands in both the echo context and the request context.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return httperror.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			user, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(userContextKey, user)
			ctx := context.SetUserID(c.Request().Context(), user.ID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user placed by Auth, or nil on
// unauthenticated routes.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(userContextKey).(*models.User)
	return user
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
