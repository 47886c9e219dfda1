// helpdesk/middlewares/auth.go
package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	httputils "helpdesk/helpdesk/utils/http"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const SubjectKey contextKey = "subject"

const (
	ClaimRole = "role"
	RoleAdmin = "admin"
)

// NewAdminToken signs an HS256 token carrying the admin role.
func NewAdminToken(secret, subject string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":     subject,
		ClaimRole: RoleAdmin,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// AdminMiddleware lets through requests with a valid admin bearer token.
// With an empty secret every request is refused.
func AdminMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				httputils.WriteError(w, http.StatusServiceUnavailable, "Admin API is disabled")
				return
			}
			auth := r.Header.Get("Authorization")
			parts := strings.Split(auth, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				httputils.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				httputils.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				httputils.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if role, _ := claims[ClaimRole].(string); role != RoleAdmin {
				httputils.WriteError(w, http.StatusForbidden, "forbidden")
				return
			}
			subject, _ := claims.GetSubject()
			ctx := context.WithValue(r.Context(), SubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
