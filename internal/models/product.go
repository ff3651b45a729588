package models

import "time"

// LowStockThreshold is the on-hand quantity below which a product is critical.
const LowStockThreshold = 5

// Product represents a stock-keeping unit and its movement ledger.
type Product struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Category  string           `json:"category"`
	Brand     string           `json:"brand"`
	Warehouse string           `json:"warehouse"`
	Barcode   string           `json:"barcode,omitempty"`
	Stock     int              `json:"stock"`
	History   []MovementRecord `json:"history"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// IsLowStock reports whether the current stock is below LowStockThreshold.
func (p Product) IsLowStock() bool {
	return p.Stock < LowStockThreshold
}

// NetHistory sums the signed deltas of the product's history.
func (p Product) NetHistory() int {
	total := 0
	for _, m := range p.History {
		total += m.Delta()
	}
	return total
}

// Clone returns a copy that shares no memory with p.
func (p Product) Clone() Product {
	c := p
	c.History = make([]MovementRecord, len(p.History))
	copy(c.History, p.History)
	return c
}

// ProductDetails holds the mutable descriptive metadata of a product.
type ProductDetails struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	Brand     string `json:"brand"`
	Warehouse string `json:"warehouse"`
	Barcode   string `json:"barcode,omitempty"`
}

// Details extracts the descriptive metadata of p.
func (p Product) Details() ProductDetails {
	return ProductDetails{
		Name:      p.Name,
		Category:  p.Category,
		Brand:     p.Brand,
		Warehouse: p.Warehouse,
		Barcode:   p.Barcode,
	}
}
