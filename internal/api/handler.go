// Package api contains the REST handlers for the admin panel: auth,
// users, roles, permissions and the dashboard.
package api

import (
	"net/http"

	"warden/internal/apperr"
	"warden/internal/logs"
	"warden/internal/models"
	"warden/internal/repo"
	"warden/internal/token"
)

type Handler struct {
	users  *repo.UserStore
	roles  *repo.RoleStore
	perms  *repo.PermissionStore
	stats  *repo.StatsStore
	tokens *token.Service
}

func New(users *repo.UserStore, roles *repo.RoleStore, perms *repo.PermissionStore, stats *repo.StatsStore, tokens *token.Service) *Handler {
	return &Handler{users: users, roles: roles, perms: perms, stats: stats, tokens: tokens}
}

// writeErr maps a typed error to its HTTP status. Untyped errors answer
// with the fallback message so internals never leak.
func writeErr(w http.ResponseWriter, err error, fallback string) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		logs.Logger.Errorf("api error: %v", err)
	}
	models.WriteError(w, status, apperr.Message(err, fallback))
}
