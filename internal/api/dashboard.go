package api

import (
	"net/http"

	"warden/internal/models"
)

// GET /dashboard/stats
func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Dashboard(r.Context())
	if err != nil {
		writeErr(w, err, "Failed to retrieve dashboard stats")
		return
	}
	models.WriteJSON(w, http.StatusOK, stats)
}
