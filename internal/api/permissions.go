package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"warden/internal/models"
)

type createPermissionRequest struct {
	Name string `json:"name"`
}

// POST /permission
func (h *Handler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	var req createPermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		models.WriteError(w, http.StatusBadRequest, "permission name is required")
		return
	}

	if _, err := h.perms.Create(r.Context(), req.Name); err != nil {
		writeErr(w, err, "Failed to create permission")
		return
	}
	models.WriteSuccess(w, http.StatusCreated, "Permission created successfully!", nil)
}

// GET /permission
func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	permissions, err := h.perms.All(r.Context())
	if err != nil {
		writeErr(w, err, "Failed to retrieve permissions")
		return
	}
	models.WriteJSON(w, http.StatusOK, models.Envelope{
		"status": "success",
		"data":   permissions,
	})
}

// GET /permission/{id}
func (h *Handler) GetPermission(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid permission id")
		return
	}
	p, err := h.perms.ByID(r.Context(), id)
	if err != nil {
		writeErr(w, err, "Failed to retrieve permission details")
		return
	}
	models.WriteJSON(w, http.StatusOK, models.Envelope{
		"status": "success",
		"data":   p,
	})
}

// DELETE /permission/{id}
//
// Deletion cascades: the permission is detached from every role first,
// and the affected roles come back in the response.
func (h *Handler) DeletePermission(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid permission id")
		return
	}

	result, err := h.perms.Delete(r.Context(), id)
	if err != nil {
		writeErr(w, err, "Failed to delete permission")
		return
	}
	models.WriteSuccess(w, http.StatusOK, result.Message, models.Envelope{
		"affectedRoles": result.AffectedRoles,
	})
}
