package models

import (
	"sort"
	"strings"
)

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleAuthor    Role = "AUTHOR"
	RoleModerator Role = "MODERATOR"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAuthor, RoleModerator:
		return true
	}
	return false
}

// ParseRole accepts the canonical upper-case names only. An empty string
// yields RoleAuthor.
func ParseRole(s string) (Role, bool) {
	if s == "" {
		return RoleAuthor, true
	}
	r := Role(s)
	return r, r.Valid()
}

// RoleSet is a fixed set of roles checked by membership.
type RoleSet struct {
	members map[Role]struct{}
}

func NewRoleSet(roles ...Role) RoleSet {
	m := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		m[r] = struct{}{}
	}
	return RoleSet{members: m}
}

func (s RoleSet) Has(r Role) bool {
	_, ok := s.members[r]
	return ok
}

func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(s.members))
	for r := range s.members {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s RoleSet) String() string {
	roles := s.Roles()
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}
