package middleware

import (
	"net/http"

	"github.com/baharkarakas/publishing-backend/internal/api/httpx"
	"github.com/baharkarakas/publishing-backend/internal/auth"
	"github.com/baharkarakas/publishing-backend/internal/models"
)

// RequireRoles lets the request through only if the verified role is a
// member of required. It must run after Authenticate.
func RequireRoles(required models.RoleSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				httpx.WriteDomainError(w, r, models.ErrInvalidToken)
				return
			}
			if err := auth.Authorize(claims.Role, required); err != nil {
				httpx.WriteDomainError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
