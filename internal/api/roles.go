package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"warden/internal/models"
	"warden/internal/repo"
)

type createRoleRequest struct {
	Name          string   `json:"name"`
	PermissionIDs []string `json:"permissionsId"`
	UserIDs       []string `json:"usersId"`
}

// POST /role
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		models.WriteError(w, http.StatusBadRequest, "role name is required")
		return
	}

	permissionIDs, err := parseIDs(req.PermissionIDs)
	if err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid permission id")
		return
	}
	userIDs, err := parseIDs(req.UserIDs)
	if err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if _, err := h.roles.Create(r.Context(), repo.CreateRoleInput{
		Name:          req.Name,
		PermissionIDs: permissionIDs,
		UserIDs:       userIDs,
	}); err != nil {
		writeErr(w, err, "Failed to create role")
		return
	}
	models.WriteSuccess(w, http.StatusCreated, "Role created successfully!", nil)
}

// GET /role
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roles.All(r.Context())
	if err != nil {
		writeErr(w, err, "Failed to retrieve roles")
		return
	}
	models.WriteJSON(w, http.StatusOK, models.Envelope{
		"status": "success",
		"data":   roles,
	})
}

// DELETE /role/{id} — refused while any user still holds the role.
func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	result, err := h.roles.Delete(r.Context(), id)
	if err != nil {
		writeErr(w, err, "Failed to delete role")
		return
	}
	models.WriteSuccess(w, http.StatusOK, result.Message, nil)
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
