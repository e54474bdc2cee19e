package domain

import (
	"strings"
	"time"
)

// Role enumerates account capability levels. The order user < admin <
// superadmin is total; comparisons go through Level, never raw strings.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

var roleLevels = map[Role]int{
	RoleUser:       1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// Level returns the ordinal rank of the role, 0 for unknown values.
func (r Role) Level() int {
	return roleLevels[r]
}

// AtLeast reports whether the role grants the capability of min.
func (r Role) AtLeast(min Role) bool {
	return r.Level() >= min.Level() && r.Level() > 0
}

// ParseRole validates a role string.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := roleLevels[role]; !ok {
		return "", false
	}
	return role, true
}

// User is the domain model for accounts. Emails are stored lower-cased and
// are unique case-insensitively.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Banned       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Ref returns the safe reference used when expanding report actors.
func (u *User) Ref() *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}
