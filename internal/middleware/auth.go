package middleware

import (
	"net/http"
	"strings"

	"github.com/baharkarakas/publishing-backend/internal/api/httpx"
	"github.com/baharkarakas/publishing-backend/internal/auth"
	"github.com/baharkarakas/publishing-backend/internal/models"
)

type TokenVerifier interface {
	VerifyToken(token string) (*auth.Claims, error)
}

// Authenticate rejects the request with 401 unless it carries a valid token
// in "Authorization: Bearer <t>" or "x-access-token: <t>".
func Authenticate(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFrom(r)
			if token == "" {
				httpx.WriteDomainError(w, r, models.ErrInvalidToken)
				return
			}
			claims, err := v.VerifyToken(token)
			if err != nil {
				httpx.WriteDomainError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func tokenFrom(r *http.Request) string {
	if ah := r.Header.Get("Authorization"); len(ah) > len("bearer ") && strings.EqualFold(ah[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(ah[len("bearer "):])
	}
	return strings.TrimSpace(r.Header.Get("x-access-token"))
}
