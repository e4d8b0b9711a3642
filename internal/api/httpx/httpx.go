package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/baharkarakas/publishing-backend/internal/models"
)

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// DecodeJSON reads a JSON body into v and reports malformed input as a
// validation failure.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.NewValidationError("body", "malformed JSON body")
	}
	return nil
}

// WriteDomainError maps the error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is logged and reported as a bare 500.
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr   *models.ValidationError
		locked *models.LockedError
	)
	switch {
	case errors.As(err, &verr):
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error(), verr.Fields)
	case errors.As(err, &locked):
		w.Header().Set("Retry-After", strconv.Itoa(int(locked.Remaining.Seconds())+1))
		WriteError(w, http.StatusLocked, "account_locked", err.Error(), map[string]int{"minutes": locked.Minutes()})
	case errors.Is(err, models.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "invalid_credentials", err.Error(), nil)
	case errors.Is(err, models.ErrInvalidToken):
		WriteError(w, http.StatusUnauthorized, "invalid_token", err.Error(), nil)
	case errors.Is(err, models.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", err.Error(), nil)
	case errors.Is(err, models.ErrNotFoundOrForbidden), errors.Is(err, models.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, models.ErrDuplicateIdentity):
		WriteError(w, http.StatusConflict, "duplicate_identity", err.Error(), nil)
	case errors.Is(err, models.ErrInvalidTransition):
		WriteError(w, http.StatusConflict, "invalid_transition", err.Error(), nil)
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
