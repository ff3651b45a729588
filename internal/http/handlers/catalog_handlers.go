package handlers

import (
	"net/http"

	"github.com/rogerio-castellano/stock-ledger/internal/http/response"
)

// ListCategories godoc
// @Summary Distinct product categories
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ListResult
// @Router /catalog/categories [get]
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	_ = response.WriteJSON(w, http.StatusOK, ListResult{Data: s.ledger.Categories()})
}

// ListBrands godoc
// @Summary Distinct product brands
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ListResult
// @Router /catalog/brands [get]
func (s *Server) ListBrands(w http.ResponseWriter, r *http.Request) {
	_ = response.WriteJSON(w, http.StatusOK, ListResult{Data: s.ledger.Brands()})
}

// ListWarehouses godoc
// @Summary Distinct warehouses
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ListResult
// @Router /catalog/warehouses [get]
func (s *Server) ListWarehouses(w http.ResponseWriter, r *http.Request) {
	_ = response.WriteJSON(w, http.StatusOK, ListResult{Data: s.ledger.Warehouses()})
}

// ListProductNames godoc
// @Summary Distinct product names, for report filters
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ListResult
// @Router /catalog/products [get]
func (s *Server) ListProductNames(w http.ResponseWriter, r *http.Request) {
	_ = response.WriteJSON(w, http.StatusOK, ListResult{Data: s.ledger.ProductNames()})
}
