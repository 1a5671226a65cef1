package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warden/internal/models"
)

func userWithPermissions(names ...string) *models.User {
	role := models.Role{Name: models.TypeUser}
	for _, n := range names {
		role.Permissions = append(role.Permissions, models.Permission{Name: n})
	}
	return &models.User{Roles: []models.Role{role}}
}

func TestPermitCoversEveryActionTypePair(t *testing.T) {
	cases := map[Action]map[string]string{
		ActionRead:   {"admin": "READ_admins", "user": "READ_users", "owner": "READ_owners"},
		ActionCreate: {"admin": "CREATE_admins", "user": "CREATE_users", "owner": "CREATE_owners"},
		ActionEdit:   {"admin": "EDIT_admins", "user": "EDIT_users", "owner": "EDIT_owners"},
		ActionDelete: {"admin": "DELETE_admins", "user": "DELETE_users", "owner": "DELETE_owners"},
	}
	for action, byType := range cases {
		for accountType, want := range byType {
			got, ok := Permit(action, accountType)
			require.True(t, ok, "%s/%s", action, accountType)
			assert.Equal(t, want, got)
		}
	}
}

func TestPermitUnknownPair(t *testing.T) {
	_, ok := Permit(ActionEdit, "superuser")
	assert.False(t, ok)
	_, ok = Permit(Action("GRANT"), models.TypeUser)
	assert.False(t, ok)
}

func TestHasPermissionExactMatchOnly(t *testing.T) {
	u := userWithPermissions("READ_user") // note: not READ_users
	assert.False(t, HasPermission(u, "READ_users"))
	assert.True(t, HasPermission(u, "READ_user"))
}

func TestPermissionNamesUnionAcrossRoles(t *testing.T) {
	u := &models.User{Roles: []models.Role{
		{Name: models.TypeUser, Permissions: []models.Permission{{Name: "READ_users"}}},
		{Name: models.TypeAdmin, Permissions: []models.Permission{{Name: "READ_admins"}, {Name: "READ_users"}}},
	}}
	names := PermissionNames(u)
	assert.Len(t, names, 2)
	assert.Contains(t, names, "READ_users")
	assert.Contains(t, names, "READ_admins")
}

func TestReadableTypes(t *testing.T) {
	perms := PermissionNames(userWithPermissions("READ_users", "READ_owners", "EDIT_admins"))
	assert.Equal(t, []string{models.TypeUser, models.TypeOwner}, ReadableTypes(perms))

	assert.Empty(t, ReadableTypes(PermissionNames(userWithPermissions("EDIT_users"))))
}

func TestNames(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{"READ_admins", "READ_users", "READ_owners"},
		Names(ActionRead))
}
