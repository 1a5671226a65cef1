package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"warden/internal/apperr"
	"warden/internal/logs"
	"warden/internal/models"
	"warden/internal/repo"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Type     string `json:"type"`
	Status   string `json:"status"`
}

// POST /auth/login
//
// The same message covers "no such user" and "wrong password" so the
// endpoint cannot be used to enumerate accounts.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.ByEmail(r.Context(), req.Email)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			models.WriteError(w, http.StatusUnauthorized, "Invalid email or password!")
			return
		}
		logs.Logger.Errorf("login: %v", err)
		models.WriteError(w, http.StatusInternalServerError, "An error occurred during authentication")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)) != nil {
		models.WriteError(w, http.StatusUnauthorized, "Invalid email or password!")
		return
	}

	signed, err := h.tokens.Issue(u)
	if err != nil {
		logs.Logger.Errorf("login: %v", err)
		models.WriteError(w, http.StatusInternalServerError, "An error occurred during authentication")
		return
	}

	models.WriteJSON(w, http.StatusOK, models.Envelope{
		"status": "success",
		"data": models.Envelope{
			"token": signed,
			"user": models.Envelope{
				"id":    u.ID,
				"email": u.Email,
				"name":  u.Name,
				"type":  u.Type,
			},
		},
	})
}

// POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		models.WriteError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logs.Logger.Errorf("register: %v", err)
		models.WriteError(w, http.StatusInternalServerError, "An error occurred while creating the user")
		return
	}

	u, err := h.users.Register(r.Context(), repo.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
		Type:     req.Type,
		Status:   req.Status,
	})
	if err != nil {
		writeErr(w, err, "An error occurred while creating the user")
		return
	}

	models.WriteSuccess(w, http.StatusCreated, "User registered successfully!", models.Envelope{
		"user": models.Envelope{
			"id":    u.ID,
			"email": u.Email,
			"name":  u.Name,
		},
	})
}
