package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/stock-ledger/internal/http/response"
	"github.com/rogerio-castellano/stock-ledger/internal/repo"
)

// CreateProduct godoc
// @Summary Create a new product
// @Description Adds a product to the ledger. With a remote catalog configured the product is created remotely first.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body ProductRequest true "Product to add"
// @Success 201 {object} ProductResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /products [post]
func (s *Server) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !s.decode(w, r, &req) {
		return
	}

	created, err := s.catalog.CreateProduct(remoteContext(r), req.details(), req.Stock)
	if err != nil {
		response.Error(w, err)
		return
	}

	_ = response.WriteJSON(w, http.StatusCreated, toProductResponse(created))
}

// ListProducts godoc
// @Summary List and search products
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param name query string false "Name contains"
// @Param category query string false "Category"
// @Param warehouse query string false "Warehouse"
// @Param minStock query int false "Minimum stock"
// @Param maxStock query int false "Maximum stock"
// @Param lowStock query bool false "Only products below the low stock threshold"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} ProductsSearchResult
// @Failure 400 {object} response.ErrorResponse
// @Router /products [get]
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := productFilter(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	products, total := s.ledger.Filter(filter)
	_ = response.WriteJSON(w, http.StatusOK, ProductsSearchResult{
		Data: toProductResponses(products),
		Meta: Meta{TotalCount: total},
	})
}

func productFilter(r *http.Request) (repo.ProductFilter, error) {
	f := repo.ProductFilter{
		Name:      queryString(r, "name"),
		Category:  queryString(r, "category"),
		Warehouse: queryString(r, "warehouse"),
	}

	var err error
	if f.MinStock, err = queryInt(r, "minStock"); err != nil {
		return f, err
	}
	if f.MaxStock, err = queryInt(r, "maxStock"); err != nil {
		return f, err
	}
	if f.LowStock, err = queryBool(r, "lowStock"); err != nil {
		return f, err
	}
	if f.Offset, f.Limit, err = paging(r); err != nil {
		return f, err
	}
	return f, nil
}

// GetProduct godoc
// @Summary Get product by ID
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /products/{id} [get]
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.ledger.GetProduct(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	_ = response.WriteJSON(w, http.StatusOK, toProductResponse(p))
}

// GetProductByBarcode godoc
// @Summary Get product by barcode
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param code path string true "Barcode"
// @Success 200 {object} ProductResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /products/barcode/{code} [get]
func (s *Server) GetProductByBarcode(w http.ResponseWriter, r *http.Request) {
	p, err := s.ledger.GetByBarcode(chi.URLParam(r, "code"))
	if err != nil {
		response.Error(w, err)
		return
	}
	_ = response.WriteJSON(w, http.StatusOK, toProductResponse(p))
}

// UpdateProduct godoc
// @Summary Update product details
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param product body ProductDetailsRequest true "New details"
// @Success 200 {object} ProductResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /products/{id} [put]
func (s *Server) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductDetailsRequest
	if !s.decode(w, r, &req) {
		return
	}

	p, err := s.catalog.UpdateDetails(r.Context(), chi.URLParam(r, "id"), req.details())
	if err != nil {
		response.Error(w, err)
		return
	}
	_ = response.WriteJSON(w, http.StatusOK, toProductResponse(p))
}

// UpdateStock godoc
// @Summary Set the stock of a product
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param stock body StockUpdateRequest true "New stock level"
// @Success 200 {object} ProductResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /products/{id}/stock [put]
func (s *Server) UpdateStock(w http.ResponseWriter, r *http.Request) {
	var req StockUpdateRequest
	if !s.decode(w, r, &req) {
		return
	}

	p, err := s.catalog.UpdateStock(r.Context(), chi.URLParam(r, "id"), *req.Stock)
	if err != nil {
		response.Error(w, err)
		return
	}
	_ = response.WriteJSON(w, http.StatusOK, toProductResponse(p))
}

// AdjustStock godoc
// @Summary Adjust the stock of a product by a delta
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param adjustment body QuantityAdjustmentRequest true "Quantity change"
// @Success 200 {object} ProductResponse
// @Failure 400 {object} response.ErrorResponse "Invalid adjustment"
// @Failure 404 {object} response.ErrorResponse
// @Router /products/{id}/adjust [post]
func (s *Server) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req QuantityAdjustmentRequest
	if !s.decode(w, r, &req) {
		return
	}

	p, err := s.catalog.AdjustStock(r.Context(), chi.URLParam(r, "id"), req.Delta)
	if err != nil {
		response.Error(w, err)
		return
	}
	_ = response.WriteJSON(w, http.StatusOK, toProductResponse(p))
}

// RetireProduct godoc
// @Summary Retire a product
// @Description Products are never removed. Retiring resets the stock to zero and keeps the history.
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /products/{id} [delete]
func (s *Server) RetireProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.Retire(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	_ = response.WriteJSON(w, http.StatusOK, toProductResponse(p))
}

// SyncProducts godoc
// @Summary Refresh the ledger from the remote catalog
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {object} repo.MergeResult
// @Failure 502 {object} response.ErrorResponse
// @Router /sync [post]
func (s *Server) SyncProducts(w http.ResponseWriter, r *http.Request) {
	res, err := s.catalog.Refresh(remoteContext(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	_ = response.WriteJSON(w, http.StatusOK, res)
}
