package handlers

import (
	"time"

	"github.com/rogerio-castellano/stock-ledger/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RegisterResult struct {
	Message string `json:"message"`
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

type ProductRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Category  string `json:"category" validate:"max=100"`
	Brand     string `json:"brand" validate:"max=100"`
	Warehouse string `json:"warehouse" validate:"max=100"`
	Barcode   string `json:"barcode" validate:"max=64"`
	Stock     int    `json:"stock" validate:"gte=0"`
}

func (p ProductRequest) details() models.ProductDetails {
	return models.ProductDetails{
		Name:      p.Name,
		Category:  p.Category,
		Brand:     p.Brand,
		Warehouse: p.Warehouse,
		Barcode:   p.Barcode,
	}
}

type ProductDetailsRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Category  string `json:"category" validate:"max=100"`
	Brand     string `json:"brand" validate:"max=100"`
	Warehouse string `json:"warehouse" validate:"max=100"`
	Barcode   string `json:"barcode" validate:"max=64"`
}

func (p ProductDetailsRequest) details() models.ProductDetails {
	return models.ProductDetails(p)
}

type StockUpdateRequest struct {
	Stock *int `json:"stock" validate:"required,gte=0"`
}

type QuantityAdjustmentRequest struct {
	Delta int `json:"delta"` // can be positive or negative
}

type ProductResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Brand     string    `json:"brand"`
	Warehouse string    `json:"warehouse"`
	Barcode   string    `json:"barcode,omitempty"`
	Stock     int       `json:"stock"`
	LowStock  bool      `json:"low_stock,omitempty"`
	Movements int       `json:"movements"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toProductResponse(p models.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Brand:     p.Brand,
		Warehouse: p.Warehouse,
		Barcode:   p.Barcode,
		Stock:     p.Stock,
		LowStock:  p.IsLowStock(),
		Movements: len(p.History),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toProductResponses(products []models.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	return out
}

type Meta struct {
	TotalCount int `json:"total_count"`
}

type ProductsSearchResult struct {
	Data []ProductResponse `json:"data"`
	Meta Meta              `json:"meta"`
}

type MovementResponse struct {
	Type     models.MovementType   `json:"type"`
	Amount   int                   `json:"amount"`
	Delta    int                   `json:"delta"`
	Reason   models.MovementReason `json:"reason,omitempty"`
	Date     time.Time             `json:"date"`
	Sequence uint64                `json:"sequence"`
}

type MovementsSearchResult struct {
	Data []MovementResponse `json:"data"`
	Meta Meta               `json:"meta"`
}

type ReportResult struct {
	Data []models.ReportEntry `json:"data"`
	Meta Meta                 `json:"meta"`
}

type ListResult struct {
	Data []string `json:"data"`
}
