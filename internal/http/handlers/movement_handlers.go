package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	appErrors "github.com/rogerio-castellano/stock-ledger/internal/errors"
	"github.com/rogerio-castellano/stock-ledger/internal/http/response"
	"github.com/rogerio-castellano/stock-ledger/internal/models"
	"github.com/rogerio-castellano/stock-ledger/internal/repo"
	"github.com/rogerio-castellano/stock-ledger/internal/report"
)

// GetProductMovements godoc
// @Summary Get product movement history
// @Tags movements
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param type query string false "in or out"
// @Param since query string false "Filter movements from this timestamp (RFC3339)"
// @Param until query string false "Filter movements until this timestamp (RFC3339)"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} MovementsSearchResult
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /products/{id}/movements [get]
func (s *Server) GetProductMovements(w http.ResponseWriter, r *http.Request) {
	var (
		filter repo.MovementFilter
		err    error
	)
	if filter.Since, filter.Until, err = timeRange(r); err != nil {
		response.Error(w, err)
		return
	}
	if filter.Offset, filter.Limit, err = paging(r); err != nil {
		response.Error(w, err)
		return
	}
	if t := queryString(r, "type"); t != "" {
		filter.Type = models.MovementType(t)
		if !filter.Type.Valid() {
			response.Error(w, appErrors.FieldValidationError("type", "must be 'in' or 'out'").WithDetail(t))
			return
		}
	}

	records, total, err := s.ledger.History(chi.URLParam(r, "id"), filter)
	if err != nil {
		response.Error(w, err)
		return
	}

	data := make([]MovementResponse, len(records))
	for i, m := range records {
		data[i] = MovementResponse{
			Type:     m.Type,
			Amount:   m.Amount,
			Delta:    m.Delta(),
			Reason:   m.Reason,
			Date:     m.Date,
			Sequence: m.Sequence,
		}
	}
	_ = response.WriteJSON(w, http.StatusOK, MovementsSearchResult{Data: data, Meta: Meta{TotalCount: total}})
}

func timeRange(r *http.Request) (since, until *time.Time, err error) {
	if since, err = queryTime(r, "since"); err != nil {
		return nil, nil, err
	}
	if until, err = queryTime(r, "until"); err != nil {
		return nil, nil, err
	}
	return since, until, nil
}

func movementQuery(r *http.Request) (report.MovementQuery, error) {
	q := report.MovementQuery{
		Product:   queryString(r, "product"),
		Warehouse: queryString(r, "warehouse"),
		Type:      queryString(r, "type"),
	}

	var err error
	if q.Since, q.Until, err = timeRange(r); err != nil {
		return q, err
	}
	if q.Offset, err = queryInt(r, "offset"); err != nil {
		return q, err
	}
	if q.Limit, err = queryInt(r, "limit"); err != nil {
		return q, err
	}
	return q, nil
}

// QueryMovements godoc
// @Summary Movement report across all products
// @Description Every movement of every product joined with its product, newest first.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param product query string false "Product name"
// @Param warehouse query string false "Warehouse"
// @Param type query string false "in or out"
// @Param since query string false "From timestamp (RFC3339)"
// @Param until query string false "Until timestamp (RFC3339)"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} ReportResult
// @Failure 400 {object} response.ErrorResponse
// @Router /reports/movements [get]
func (s *Server) QueryMovements(w http.ResponseWriter, r *http.Request) {
	q, err := movementQuery(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	feed, err := s.reports.QueryMovements(q)
	if err != nil {
		response.Error(w, err)
		return
	}
	_ = response.WriteJSON(w, http.StatusOK, ReportResult{Data: feed.Entries, Meta: Meta{TotalCount: feed.Total}})
}

// ExportMovements godoc
// @Summary Export the movement report
// @Tags reports
// @Produce text/csv
// @Produce json
// @Security BearerAuth
// @Param format query string false "csv (default) or json"
// @Param product query string false "Product name"
// @Param warehouse query string false "Warehouse"
// @Param type query string false "in or out"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorResponse
// @Router /reports/movements/export [get]
func (s *Server) ExportMovements(w http.ResponseWriter, r *http.Request) {
	format := queryString(r, "format")
	if format == "" {
		format = report.FormatCSV
	}

	var contentType string
	switch format {
	case report.FormatCSV:
		contentType = "text/csv"
	case report.FormatJSON:
		contentType = "application/json"
	default:
		response.Error(w, appErrors.FieldValidationError("format", "must be 'csv' or 'json'").WithDetail(format))
		return
	}

	q, err := movementQuery(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	feed, err := s.reports.QueryMovements(q)
	if err != nil {
		response.Error(w, err)
		return
	}

	var buf bytes.Buffer
	if err := report.Export(&buf, format, feed.Entries); err != nil {
		logFrom(r).Error().Err(err).Str("format", format).Msg("failed to export movements")
		response.Error(w, appErrors.InternalError("failed to export movements").WithError(err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="movements.%s"`, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
