package repository

import (
	"context"
	"errors"
	"time"

	"github.com/baharkarakas/publishing-backend/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict is a unique constraint violation.
	ErrConflict = errors.New("record conflicts with an existing one")
	// ErrStale means a compare-and-set guard did not hold at write time.
	ErrStale = errors.New("record changed concurrently")
)

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByLogin(ctx context.Context, login string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)

	// RecordFailedLogin atomically increments login_attempts of an account
	// that is not locked at now, and sets lock_until = now+lockFor when the
	// new count reaches threshold. Returns ErrStale if the account is locked.
	RecordFailedLogin(ctx context.Context, id string, threshold int, lockFor time.Duration, now time.Time) (models.User, error)
	// RecordLogin resets attempts, clears the lock and caches the token,
	// unless the account is locked at now; then it returns ErrStale.
	RecordLogin(ctx context.Context, id, token string, now time.Time) error
}

type Articles interface {
	Create(ctx context.Context, a models.Article) (models.Article, error)
	// GetByID joins the author name.
	GetByID(ctx context.Context, id string) (models.Article, error)
	// Update persists title, content, status and comments only if the stored
	// status still equals expected; otherwise ErrStale.
	Update(ctx context.Context, a models.Article, expected models.ArticleStatus) (models.Article, error)
	// Delete removes the article only if it is still in expected status.
	Delete(ctx context.Context, id string, expected models.ArticleStatus) error
	ListByAuthor(ctx context.Context, authorID string) ([]models.Article, error)
	ListByStatus(ctx context.Context, status models.ArticleStatus, newestFirst bool) ([]models.Article, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}

// Set bundles the repositories of one backing store.
type Set struct {
	Users     Users
	Articles  Articles
	AuditLogs AuditLogs
}
