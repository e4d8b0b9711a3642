package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/publishing-backend/internal/models"
)

func newTM(t *testing.T, secret string, ttl time.Duration) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager(secret, "publishing-backend", ttl)
	require.NoError(t, err)
	return tm
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	tm := newTM(t, "super-secret", time.Hour)
	u := models.User{ID: "u-1", Login: "alice", Name: "Alice", Role: models.RoleAuthor}

	tok, exp, err := tm.Issue(ClaimsFor(u))
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	c, err := tm.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "u-1", c.UserID)
	require.Equal(t, "alice", c.Login)
	require.Equal(t, "Alice", c.Name)
	require.Equal(t, models.RoleAuthor, c.Role)
}

func TestTokenManager_Expired(t *testing.T) {
	tm := newTM(t, "k", time.Minute)
	tok, _, err := tm.Issue(Claims{UserID: "u", Role: models.RoleAdmin})
	require.NoError(t, err)

	tm.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tm.Verify(tok)
	require.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	tok, _, err := newTM(t, "right", time.Hour).Issue(Claims{UserID: "u", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = newTM(t, "wrong", time.Hour).Verify(tok)
	require.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestTokenManager_Malformed(t *testing.T) {
	_, err := newTM(t, "k", time.Hour).Verify("not.a.jwt")
	require.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestNewTokenManager_EmptySecret(t *testing.T) {
	_, err := NewTokenManager("", "iss", time.Hour)
	require.ErrorIs(t, err, ErrMissingSecret)
}
