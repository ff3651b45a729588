package handlers

import (
	"net/http"

	"github.com/rogerio-castellano/stock-ledger/internal/alerts"
	appErrors "github.com/rogerio-castellano/stock-ledger/internal/errors"
	"github.com/rogerio-castellano/stock-ledger/internal/http/response"
)

const defaultAlertLimit = 20

type AlertsResult struct {
	Data     []alerts.Alert    `json:"data"`
	Critical []ProductResponse `json:"critical"`
}

// RecentAlerts godoc
// @Summary Recent low stock alerts and the products currently below the threshold
// @Tags alerts
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of alerts"
// @Success 200 {object} AlertsResult
// @Router /alerts/low-stock [get]
func (s *Server) RecentAlerts(w http.ResponseWriter, r *http.Request) {
	_, limit, err := paging(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	n := defaultAlertLimit
	if limit != nil {
		n = *limit
	}

	recent, err := s.notifier.Recent(r.Context(), n)
	if err != nil {
		logFrom(r).Error().Err(err).Msg("failed to read alerts")
		response.Error(w, appErrors.InternalError("failed to read alerts").WithError(err))
		return
	}
	if recent == nil {
		recent = []alerts.Alert{}
	}

	_ = response.WriteJSON(w, http.StatusOK, AlertsResult{
		Data:     recent,
		Critical: toProductResponses(s.ledger.LowStock()),
	})
}
