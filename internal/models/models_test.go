package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComment_JSON(t *testing.T) {
	b, err := json.Marshal(Article{ModeratorComments: NoComment()})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"moderator_comments":null`)

	b, err = json.Marshal(Article{ModeratorComments: SomeComment("needs citations")})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"moderator_comments":"needs citations"`)

	// an empty comment is still a present comment
	assert.True(t, SomeComment("").Present())
	assert.Nil(t, NoComment().Ptr())
	assert.Equal(t, SomeComment("x"), CommentFromPtr(SomeComment("x").Ptr()))
}

func TestUser_PublicHidesCredentials(t *testing.T) {
	until := time.Now().Add(time.Minute)
	u := User{ID: "1", Login: "alice", PasswordHash: "h", LoginAttempts: 3, LockUntil: &until, CurrentToken: "t"}

	b, err := json.Marshal(u)
	require.NoError(t, err)
	for _, field := range []string{"password", "login_attempts", "lock_until", "token"} {
		assert.NotContains(t, string(b), field)
	}

	p := u.Public()
	assert.Empty(t, p.PasswordHash)
	assert.Empty(t, p.CurrentToken)
	assert.Nil(t, p.LockUntil)
}

func TestUser_LockedAt(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(10 * time.Minute)
	u := User{LockUntil: &until}

	locked, remaining := u.LockedAt(now)
	assert.True(t, locked)
	assert.Equal(t, 10*time.Minute, remaining)

	locked, _ = u.LockedAt(until)
	assert.False(t, locked)
	locked, _ = User{}.LockedAt(now)
	assert.False(t, locked)
}

func TestRoleSet(t *testing.T) {
	s := NewRoleSet(RoleModerator, RoleAdmin)
	assert.True(t, s.Has(RoleAdmin))
	assert.False(t, s.Has(RoleAuthor))
	assert.False(t, s.Has(Role("admin")))
	assert.Equal(t, "ADMIN, MODERATOR", s.String())

	r, ok := ParseRole("")
	assert.True(t, ok)
	assert.Equal(t, RoleAuthor, r)
	_, ok = ParseRole("moderator")
	assert.False(t, ok)
}

func TestErrors_Taxonomy(t *testing.T) {
	justLocked := &LockedError{Remaining: 15 * time.Minute, JustLocked: true}
	assert.True(t, errors.Is(justLocked, ErrAccountLocked))
	assert.Contains(t, justLocked.Error(), "locked for 15 minutes")

	stillLocked := &LockedError{Remaining: 89 * time.Second}
	assert.Equal(t, 1, stillLocked.Minutes())
	assert.Contains(t, stillLocked.Error(), "try again in 1 minutes")

	assert.True(t, errors.Is(&ForbiddenError{Required: NewRoleSet(RoleAdmin)}, ErrForbidden))
	assert.True(t, errors.Is(&TransitionError{From: StatusPublished, Op: "edit"}, ErrInvalidTransition))

	verr := &ValidationError{Fields: []FieldError{{Field: "login", Msg: "cannot be blank"}, {Field: "name", Msg: "too short"}}}
	assert.True(t, errors.Is(verr, ErrValidation))
	assert.Equal(t, "validation failed: login: cannot be blank; name: too short", verr.Error())
}
