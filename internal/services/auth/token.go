package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by issued access tokens. Subject is the user id.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Service) issueToken(userID, username, role string, expiresAt time.Time) (string, error) {
	claims := Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", httperror.WrapError(http.StatusInternalServerError, err)
	}
	return signed, nil
}

func (s *Service) parseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, httperror.NewHTTPErrorf(http.StatusUnauthorized, "unexpected signing method %s", t.Method.Alg())
		}
		return []byte(s.secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, httperror.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

// hashToken is the stored form of a session token. Raw tokens never touch
// the database.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
