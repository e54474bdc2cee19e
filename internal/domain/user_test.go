package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleOrdering(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleUser))
	assert.True(t, RoleAdmin.AtLeast(RoleAdmin))
	assert.True(t, RoleSuperAdmin.AtLeast(RoleAdmin))
	assert.False(t, RoleUser.AtLeast(RoleAdmin))
	assert.False(t, RoleAdmin.AtLeast(RoleSuperAdmin))

	// Unknown roles grant nothing, not even user level.
	assert.False(t, Role("root").AtLeast(RoleUser))
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("ADMIN")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, role)

	_, ok = ParseRole("owner")
	assert.False(t, ok)
}

func TestUserRef(t *testing.T) {
	u := &User{ID: "u1", Name: "Ana", Email: "ana@example.com", PasswordHash: "secret"}
	ref := u.Ref()
	assert.Equal(t, "u1", ref.ID)
	assert.Equal(t, "Ana", ref.Name)
	assert.Equal(t, "ana@example.com", ref.Email)

	assert.Nil(t, (*User)(nil).Ref())
}
