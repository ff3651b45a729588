package models

import "time"

type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

func (t MovementType) Valid() bool {
	return t == MovementIn || t == MovementOut
}

// MovementReason records why a movement was appended.
type MovementReason string

const (
	ReasonInitialStock MovementReason = "initial_stock"
	ReasonStockUpdate  MovementReason = "stock_update"
	ReasonAdjustment   MovementReason = "adjustment"
	ReasonRetired      MovementReason = "retired"
	ReasonRemoteSync   MovementReason = "remote_sync"
)

// MovementRecord is an immutable stock change. Sequence increases monotonically
// across the whole ledger and orders records that share a Date.
type MovementRecord struct {
	Type     MovementType   `json:"type"`
	Amount   int            `json:"amount"`
	Date     time.Time      `json:"date"`
	Reason   MovementReason `json:"reason,omitempty"`
	Sequence uint64         `json:"sequence"`
}

// Delta returns the signed change the record applies to stock.
func (m MovementRecord) Delta() int {
	if m.Type == MovementOut {
		return -m.Amount
	}
	return m.Amount
}

// ReportEntry is a movement joined with its owning product's metadata.
type ReportEntry struct {
	ProductID string         `json:"product_id"`
	Product   string         `json:"product"`
	Warehouse string         `json:"warehouse"`
	Category  string         `json:"category"`
	Brand     string         `json:"brand"`
	Type      MovementType   `json:"type"`
	Amount    int            `json:"amount"`
	Date      time.Time      `json:"date"`
	Reason    MovementReason `json:"reason,omitempty"`
	Sequence  uint64         `json:"sequence"`
}
