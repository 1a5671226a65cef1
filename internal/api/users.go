package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"warden/internal/authz"
	"warden/internal/models"
	"warden/internal/repo"
)

// GET /user?page&pageSize
//
// Which rows are visible is derived from the caller's permission set,
// not just from reaching the endpoint.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.CurrentUser(r.Context())
	if !ok {
		models.WriteError(w, http.StatusUnauthorized, "You are Unauthorized!")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 10
	}

	result, err := h.users.List(r.Context(), page, pageSize, actor)
	if err != nil {
		writeErr(w, err, "Something went wrong")
		return
	}
	models.WriteJSON(w, http.StatusOK, result)
}

// GET /user/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	u, err := h.users.ByID(r.Context(), id)
	if err != nil {
		writeErr(w, err, "Something went wrong")
		return
	}
	models.WriteJSON(w, http.StatusOK, u)
}

type assignRoleRequest struct {
	UserID string `json:"userId"`
	RoleID string `json:"roleId"`
}

// PUT /user/
//
// Assigns a role to a user. On top of the route gate, the store checks
// the EDIT permission scoped to the target's account type.
func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.CurrentUser(r.Context())
	if !ok {
		models.WriteError(w, http.StatusUnauthorized, "You are Unauthorized!")
		return
	}

	var req assignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid userId")
		return
	}
	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid roleId")
		return
	}

	result, err := h.users.AssignRole(r.Context(), userID, roleID, actor)
	if err != nil {
		writeErr(w, err, "An error occurred while updating user")
		return
	}
	models.WriteSuccess(w, http.StatusOK, result.Message, nil)
}

type profileUpdateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PUT /user/profile — the caller updates their own name/email.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.CurrentUser(r.Context())
	if !ok {
		models.WriteError(w, http.StatusUnauthorized, "You are Unauthorized!")
		return
	}

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.users.UpdateProfile(r.Context(), actor.ID, repo.ProfileUpdate{
		Name:  req.Name,
		Email: req.Email,
	}); err != nil {
		writeErr(w, err, "An error occurred while updating profile")
		return
	}
	models.WriteSuccess(w, http.StatusOK, "Profile updated successfully!", nil)
}

// DELETE /user/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.CurrentUser(r.Context())
	if !ok {
		models.WriteError(w, http.StatusUnauthorized, "You are Unauthorized!")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.users.Delete(r.Context(), id, actor); err != nil {
		writeErr(w, err, "Something went wrong")
		return
	}
	models.WriteSuccess(w, http.StatusOK, "User deleted successfully!", nil)
}
