package handlers

import (
	"net/http"

	"github.com/rogerio-castellano/stock-ledger/internal/http/response"
)

// GetDashboard godoc
// @Summary Dashboard metrics for admin view
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} report.Dashboard
// @Router /reports/dashboard [get]
func (s *Server) GetDashboard(w http.ResponseWriter, r *http.Request) {
	_ = response.WriteJSON(w, http.StatusOK, s.reports.Dashboard())
}

// Health godoc
// @Summary Liveness check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]any
// @Router /health [get]
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	_ = response.WriteJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"products": len(s.ledger.ListProducts()),
		"remote":   s.catalog.RemoteEnabled(),
	})
}
