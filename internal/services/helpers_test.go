package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/baharkarakas/publishing-backend/internal/auth"
	"github.com/baharkarakas/publishing-backend/internal/models"
	"github.com/baharkarakas/publishing-backend/internal/repository/memory"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	store    *memory.Store
	clock    *fakeClock
	auth     *AuthService
	articles *ArticleService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := newFakeClock()
	store := memory.NewStore().WithClock(clock.Now)
	users, articles, logs := store.Repositories()

	tm, err := auth.NewTokenManager("test-secret", "publishing-backend", time.Hour)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	audit := NewAuditor(logs, nil, log)
	return &fixture{
		store:    store,
		clock:    clock,
		auth:     NewAuthService(users, auth.NewBcryptHasher(bcrypt.MinCost), tm, audit, DefaultLockPolicy, WithClock(clock.Now), WithLogger(log)),
		articles: NewArticleService(articles, audit, WithLogger(log)),
	}
}

func (f *fixture) register(t *testing.T, name, login string, role models.Role) models.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), RegisterInput{Name: name, Login: login, Password: "secret123", Role: role})
	require.NoError(t, err)
	return u
}

func ptr(s string) *string { return &s }
