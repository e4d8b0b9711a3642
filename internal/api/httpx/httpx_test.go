package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/publishing-backend/internal/models"
)

func TestWriteDomainError_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
		code string
	}{
		{models.NewValidationError("title", "cannot be blank"), http.StatusBadRequest, "validation_error"},
		{models.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{models.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
		{&models.ForbiddenError{Required: models.NewRoleSet(models.RoleAdmin)}, http.StatusForbidden, "forbidden"},
		{models.ErrNotFoundOrForbidden, http.StatusNotFound, "not_found"},
		{models.ErrNotFound, http.StatusNotFound, "not_found"},
		{models.ErrDuplicateIdentity, http.StatusConflict, "duplicate_identity"},
		{&models.TransitionError{From: models.StatusPublished, Op: "edit"}, http.StatusConflict, "invalid_transition"},
		{&models.LockedError{Remaining: 15 * time.Minute}, http.StatusLocked, "account_locked"},
		{fmt.Errorf("load article: %w", errors.New("connection reset")), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteDomainError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
			require.Equal(t, tc.want, rec.Code)

			var body APIError
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestWriteDomainError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteDomainError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: password authentication failed"))
	assert.NotContains(t, rec.Body.String(), "password authentication")
}

func TestWriteDomainError_LockedSetsRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteDomainError(rec, httptest.NewRequest(http.MethodPost, "/", nil), &models.LockedError{Remaining: 90 * time.Second})
	assert.Equal(t, "91", rec.Header().Get("Retry-After"))
}
