package alerts

import (
	"context"
	"time"

	"github.com/rogerio-castellano/stock-ledger/internal/models"
)

// Alert is raised when a product's stock drops below models.LowStockThreshold.
type Alert struct {
	ProductID string    `json:"product_id"`
	Product   string    `json:"product"`
	Warehouse string    `json:"warehouse"`
	Stock     int       `json:"stock"`
	Threshold int       `json:"threshold"`
	Time      time.Time `json:"time"`
}

func NewAlert(p models.Product, at time.Time) Alert {
	return Alert{
		ProductID: p.ID,
		Product:   p.Name,
		Warehouse: p.Warehouse,
		Stock:     p.Stock,
		Threshold: models.LowStockThreshold,
		Time:      at,
	}
}

type Notifier interface {
	LowStock(ctx context.Context, p models.Product) error
	// Recent returns up to n alerts, newest first.
	Recent(ctx context.Context, n int) ([]Alert, error)
}
