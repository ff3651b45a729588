package repo

import (
	"context"

	"github.com/rogerio-castellano/stock-ledger/internal/models"
)

// Ledger is the inventory store: products plus their append-only movement
// history. Every mutation is applied atomically and every read returns copies.
type Ledger interface {
	AddProduct(details models.ProductDetails, initialStock int) (models.Product, error)
	UpdateStock(id string, newStock int) (models.Product, error)
	AdjustStock(id string, delta int) (models.Product, error)
	ResetStock(id string) (models.Product, error)
	UpdateDetails(id string, details models.ProductDetails) (models.Product, error)

	GetProduct(id string) (models.Product, error)
	GetByBarcode(code string) (models.Product, error)
	ListProducts() []models.Product
	Filter(pf ProductFilter) ([]models.Product, int)
	LowStock() []models.Product
	History(id string, mf MovementFilter) ([]models.MovementRecord, int, error)

	Categories() []string
	Brands() []string
	Warehouses() []string
	ProductNames() []string

	AdoptRemote(rp models.RemoteProduct) (models.Product, error)
	Merge(items []models.RemoteProduct) (MergeResult, error)
	Snapshot() []models.Product
	Restore(products []models.Product) error
}

// LedgerArchive persists ledger snapshots between process runs.
type LedgerArchive interface {
	Save(ctx context.Context, products []models.Product) error
	Load(ctx context.Context) ([]models.Product, error)
}

type MergeResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Moved   int `json:"moved"`
}
