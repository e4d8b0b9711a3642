// Package memory keeps users, articles and audit logs in process memory.
// It backs the memory:// database target and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/publishing-backend/internal/models"
	"github.com/baharkarakas/publishing-backend/internal/repository"
)

type Store struct {
	mu sync.RWMutex

	users         map[string]models.User
	userIDByLogin map[string]string
	userIDByName  map[string]string

	articles map[string]models.Article
	// seq breaks created_at ties so ordering is stable.
	seq        uint64
	articleSeq map[string]uint64

	audit []models.AuditLog

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:         make(map[string]models.User),
		userIDByLogin: make(map[string]string),
		userIDByName:  make(map[string]string),
		articles:      make(map[string]models.Article),
		articleSeq:    make(map[string]uint64),
		now:           time.Now,
	}
}

// WithClock overrides the timestamp source used for created_at/updated_at.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Repositories returns the store through the repository ports.
func (s *Store) Repositories() (repository.Users, repository.Articles, repository.AuditLogs) {
	return usersRepo{s}, articlesRepo{s}, auditLogsRepo{s}
}

func (s *Store) Set() repository.Set {
	u, a, l := s.Repositories()
	return repository.Set{Users: u, Articles: a, AuditLogs: l}
}

// AuditLogs returns a copy of every appended audit entry.
func (s *Store) AuditLogs() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AuditLog, len(s.audit))
	copy(out, s.audit)
	return out
}

// ---------- users ----------

type usersRepo struct{ s *Store }

func (r usersRepo) Create(_ context.Context, u models.User) (models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.userIDByLogin[u.Login]; ok {
		return models.User{}, repository.ErrConflict
	}
	if _, ok := s.userIDByName[u.Name]; ok {
		return models.User{}, repository.ErrConflict
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = u
	s.userIDByLogin[u.Login] = u.ID
	s.userIDByName[u.Name] = u.ID
	return cloneUser(u), nil
}

func (r usersRepo) GetByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r usersRepo) GetByLogin(ctx context.Context, login string) (models.User, error) {
	r.s.mu.RLock()
	id, ok := r.s.userIDByLogin[login]
	r.s.mu.RUnlock()
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r usersRepo) List(_ context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r usersRepo) RecordFailedLogin(_ context.Context, id string, threshold int, lockFor time.Duration, now time.Time) (models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	if locked, _ := u.LockedAt(now); locked {
		return models.User{}, repository.ErrStale
	}
	u.LoginAttempts++
	if u.LoginAttempts >= threshold {
		until := now.Add(lockFor)
		u.LockUntil = &until
	}
	u.UpdatedAt = s.now()
	s.users[id] = u
	return cloneUser(u), nil
}

func (r usersRepo) RecordLogin(_ context.Context, id, token string, now time.Time) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if locked, _ := u.LockedAt(now); locked {
		return repository.ErrStale
	}
	u.LoginAttempts = 0
	u.LockUntil = nil
	u.CurrentToken = token
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}

func cloneUser(u models.User) models.User {
	if u.LockUntil != nil {
		t := *u.LockUntil
		u.LockUntil = &t
	}
	return u
}

// ---------- articles ----------

type articlesRepo struct{ s *Store }

func (r articlesRepo) Create(_ context.Context, a models.Article) (models.Article, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[a.AuthorID]; !ok {
		return models.Article{}, repository.ErrNotFound
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	s.seq++
	s.articleSeq[a.ID] = s.seq
	s.articles[a.ID] = a
	return s.withAuthor(a), nil
}

func (r articlesRepo) GetByID(_ context.Context, id string) (models.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.articles[id]
	if !ok {
		return models.Article{}, repository.ErrNotFound
	}
	return r.s.withAuthor(a), nil
}

func (r articlesRepo) Update(_ context.Context, a models.Article, expected models.ArticleStatus) (models.Article, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.articles[a.ID]
	if !ok {
		return models.Article{}, repository.ErrNotFound
	}
	if cur.Status != expected {
		return models.Article{}, repository.ErrStale
	}
	cur.Title = a.Title
	cur.Content = a.Content
	cur.Status = a.Status
	cur.ModeratorComments = a.ModeratorComments
	cur.UpdatedAt = s.now()
	s.articles[a.ID] = cur
	return s.withAuthor(cur), nil
}

func (r articlesRepo) Delete(_ context.Context, id string, expected models.ArticleStatus) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.articles[id]
	if !ok {
		return repository.ErrNotFound
	}
	if cur.Status != expected {
		return repository.ErrStale
	}
	delete(s.articles, id)
	delete(s.articleSeq, id)
	return nil
}

func (r articlesRepo) ListByAuthor(_ context.Context, authorID string) ([]models.Article, error) {
	return r.s.filter(func(a models.Article) bool { return a.AuthorID == authorID }, true), nil
}

func (r articlesRepo) ListByStatus(_ context.Context, status models.ArticleStatus, newestFirst bool) ([]models.Article, error) {
	return r.s.filter(func(a models.Article) bool { return a.Status == status }, newestFirst), nil
}

func (s *Store) filter(keep func(models.Article) bool, newestFirst bool) []models.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Article{}
	for _, a := range s.articles {
		if keep(a) {
			out = append(out, s.withAuthor(a))
		}
	}
	before := func(x, y models.Article) bool {
		if !x.CreatedAt.Equal(y.CreatedAt) {
			return x.CreatedAt.Before(y.CreatedAt)
		}
		return s.articleSeq[x.ID] < s.articleSeq[y.ID]
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return before(out[j], out[i])
		}
		return before(out[i], out[j])
	})
	return out
}

// withAuthor is the read-time join of the author's display name. Callers hold mu.
func (s *Store) withAuthor(a models.Article) models.Article {
	if u, ok := s.users[a.AuthorID]; ok {
		a.AuthorName = u.Name
	}
	return a
}

// ---------- audit logs ----------

type auditLogsRepo struct{ s *Store }

func (r auditLogsRepo) Create(_ context.Context, l models.AuditLog) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = s.now()
	s.audit = append(s.audit, l)
	return nil
}
