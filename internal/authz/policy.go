// Package authz is the request-time authorization gate: it resolves a
// caller's current roles and permissions from the database and checks
// exact permission-name membership. Permission names follow the
// ACTION_resources convention but are never built by string
// concatenation — every (action, type) pair is declared in the table
// below.
package authz

import (
	"warden/internal/models"
)

type Action string

const (
	ActionRead   Action = "READ"
	ActionCreate Action = "CREATE"
	ActionEdit   Action = "EDIT"
	ActionDelete Action = "DELETE"
)

// permissionTable maps (action, account type) to the permission that
// grants it. A pair missing here is a pair nobody can be granted.
var permissionTable = map[Action]map[string]string{
	ActionRead: {
		models.TypeAdmin: "READ_admins",
		models.TypeUser:  "READ_users",
		models.TypeOwner: "READ_owners",
	},
	ActionCreate: {
		models.TypeAdmin: "CREATE_admins",
		models.TypeUser:  "CREATE_users",
		models.TypeOwner: "CREATE_owners",
	},
	ActionEdit: {
		models.TypeAdmin: "EDIT_admins",
		models.TypeUser:  "EDIT_users",
		models.TypeOwner: "EDIT_owners",
	},
	ActionDelete: {
		models.TypeAdmin: "DELETE_admins",
		models.TypeUser:  "DELETE_users",
		models.TypeOwner: "DELETE_owners",
	},
}

// Permit returns the permission name required to perform action on
// accounts of the given type.
func Permit(action Action, userType string) (string, bool) {
	perms, ok := permissionTable[action]
	if !ok {
		return "", false
	}
	name, ok := perms[userType]
	return name, ok
}

// PermissionNames collects the union of permission names across all of
// the user's roles. Roles and their permissions must be preloaded.
func PermissionNames(u *models.User) map[string]struct{} {
	names := make(map[string]struct{})
	for _, role := range u.Roles {
		for _, p := range role.Permissions {
			names[p.Name] = struct{}{}
		}
	}
	return names
}

// HasPermission reports exact membership of name in the user's resolved
// permission set. No wildcard or prefix matching.
func HasPermission(u *models.User, name string) bool {
	_, ok := PermissionNames(u)[name]
	return ok
}

// ReadableTypes derives the account types the holder of perms may list:
// READ_admins exposes admin rows, READ_users user rows, READ_owners
// owner rows. Order is stable for deterministic queries.
func ReadableTypes(perms map[string]struct{}) []string {
	var types []string
	for _, t := range []string{models.TypeAdmin, models.TypeUser, models.TypeOwner} {
		name, ok := permissionTable[ActionRead][t]
		if !ok {
			continue
		}
		if _, held := perms[name]; held {
			types = append(types, t)
		}
	}
	return types
}

// Names returns the declared permission names for action across every
// account type, for route gates of the READ_*/DELETE_* form.
func Names(action Action) []string {
	var names []string
	for _, t := range []string{models.TypeAdmin, models.TypeUser, models.TypeOwner} {
		if name, ok := permissionTable[action][t]; ok {
			names = append(names, name)
		}
	}
	return names
}
