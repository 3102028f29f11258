package middleware

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"fieldservice/services/scheduling"
	"fieldservice/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminPasswordHeader carries the shared admin secret.
const AdminPasswordHeader = "X-Admin-Password"

// AdminAuthorizer decides whether a request may manage blackout windows.
type AdminAuthorizer interface {
	Authorize(r *http.Request) error
}

// SecretAuthorizer compares X-Admin-Password against a plain secret or a bcrypt hash.
// With neither configured every request is refused.
type SecretAuthorizer struct {
	Password string
	Hash     []byte
}

func (a SecretAuthorizer) Authorize(r *http.Request) error {
	given := r.Header.Get(AdminPasswordHeader)
	if given == "" {
		return scheduling.ErrUnauthorized
	}
	if len(a.Hash) > 0 {
		if bcrypt.CompareHashAndPassword(a.Hash, []byte(given)) != nil {
			return scheduling.ErrUnauthorized
		}
		return nil
	}
	if a.Password == "" || subtle.ConstantTimeCompare([]byte(given), []byte(a.Password)) != 1 {
		return scheduling.ErrUnauthorized
	}
	return nil
}

// JWTAuthorizer accepts HS256 bearer tokens whose role claim is "admin".
type JWTAuthorizer struct {
	Secret []byte
}

func (a JWTAuthorizer) Authorize(r *http.Request) error {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return scheduling.ErrUnauthorized
	}
	_, role, err := utils.ExtractRoleFromToken(strings.TrimPrefix(authHeader, "Bearer "), a.Secret)
	if err != nil || role != "admin" {
		return scheduling.ErrUnauthorized
	}
	return nil
}

// NewAdminAuthorizer picks the authorizer for mode ("secret" or "jwt").
func NewAdminAuthorizer(mode, password, passwordHash, jwtSecret string) (AdminAuthorizer, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "secret":
		return SecretAuthorizer{Password: password, Hash: []byte(passwordHash)}, nil
	case "jwt":
		if jwtSecret == "" {
			return nil, errors.New("ADMIN_AUTH_MODE=jwt requires JWT_SECRET")
		}
		return JWTAuthorizer{Secret: []byte(jwtSecret)}, nil
	default:
		return nil, fmt.Errorf("unknown ADMIN_AUTH_MODE %q", mode)
	}
}

// AdminAuthMiddleware rejects requests the authorizer refuses with 401.
func AdminAuthMiddleware(auth AdminAuthorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Authorize(c.Request); err != nil {
			RequestLogger(c).Warn("admin authorization failed",
				zap.String("ip", clientIP(c)), zap.String("path", c.Request.URL.Path))
			utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "")
			return
		}
		c.Set("isAdmin", true)
		c.Next()
	}
}
