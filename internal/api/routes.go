package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"warden/internal/authz"
)

// RegisterRoutes wires the REST surface. Everything except /auth/* sits
// behind the bearer-token gate.
func RegisterRoutes(r *mux.Router, h *Handler, g *authz.Gate) {
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	auth.HandleFunc("/register", h.Register).Methods(http.MethodPost)

	user := r.PathPrefix("/user").Subrouter()
	user.Use(g.Authenticate)
	user.Handle("/profile", g.RequireAuthenticated(http.HandlerFunc(h.UpdateProfile))).Methods(http.MethodPut)
	user.Handle("/", g.RequireAny(authz.Names(authz.ActionRead)...)(http.HandlerFunc(h.ListUsers))).Methods(http.MethodGet)
	user.Handle("/", g.Require("READ_users")(http.HandlerFunc(h.AssignRole))).Methods(http.MethodPut)
	user.Handle("/{id}", g.Require("READ_users")(http.HandlerFunc(h.GetUser))).Methods(http.MethodGet)
	user.Handle("/{id}", g.RequireAny(authz.Names(authz.ActionDelete)...)(http.HandlerFunc(h.DeleteUser))).Methods(http.MethodDelete)

	permission := r.PathPrefix("/permission").Subrouter()
	permission.Use(g.Authenticate)
	permission.Handle("/", g.Require("READ_admins")(http.HandlerFunc(h.ListPermissions))).Methods(http.MethodGet)
	permission.Handle("/", g.Require("CREATE_admins")(http.HandlerFunc(h.CreatePermission))).Methods(http.MethodPost)
	permission.Handle("/{id}", g.Require("READ_admins")(http.HandlerFunc(h.GetPermission))).Methods(http.MethodGet)
	permission.Handle("/{id}", g.Require("DELETE_admins")(http.HandlerFunc(h.DeletePermission))).Methods(http.MethodDelete)

	role := r.PathPrefix("/role").Subrouter()
	role.Use(g.Authenticate)
	role.Handle("/", g.Require("READ_admins")(http.HandlerFunc(h.ListRoles))).Methods(http.MethodGet)
	role.Handle("/", g.Require("CREATE_admins")(http.HandlerFunc(h.CreateRole))).Methods(http.MethodPost)
	role.Handle("/{id}", g.Require("DELETE_admins")(http.HandlerFunc(h.DeleteRole))).Methods(http.MethodDelete)

	dashboard := r.PathPrefix("/dashboard").Subrouter()
	dashboard.Use(g.Authenticate)
	dashboard.Handle("/stats", g.Require("READ_admins")(http.HandlerFunc(h.DashboardStats))).Methods(http.MethodGet)
}
