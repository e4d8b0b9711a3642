package models

import "time"

type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Login         string     `json:"login"`
	Role          Role       `json:"role"`
	PasswordHash  string     `json:"-"`
	LoginAttempts int        `json:"-"`
	LockUntil     *time.Time `json:"-"`
	CurrentToken  string     `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// LockedAt reports whether authentication is refused at now and for how long.
func (u User) LockedAt(now time.Time) (bool, time.Duration) {
	if u.LockUntil == nil || !u.LockUntil.After(now) {
		return false, 0
	}
	return true, u.LockUntil.Sub(now)
}

// Public strips every credential-related field.
func (u User) Public() User {
	u.PasswordHash = ""
	u.LoginAttempts = 0
	u.LockUntil = nil
	u.CurrentToken = ""
	return u
}

// UserSummary is the listing shape: name, login and role only.
type UserSummary struct {
	Name  string `json:"name"`
	Login string `json:"login"`
	Role  Role   `json:"role"`
}

func (u User) Summary() UserSummary {
	return UserSummary{Name: u.Name, Login: u.Login, Role: u.Role}
}
