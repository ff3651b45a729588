package report

import "github.com/rogerio-castellano/stock-ledger/internal/models"

type MostMovedProduct struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"name"`
	MovementCount int    `json:"movement_count"`
}

type Dashboard struct {
	TotalProducts    int              `json:"total_products"`
	TotalStock       int              `json:"total_stock"`
	TotalMovements   int              `json:"total_movements"`
	UnitsIn          int              `json:"units_in"`
	UnitsOut         int              `json:"units_out"`
	LowStockCount    int              `json:"low_stock_count"`
	RetiredCount     int              `json:"retired_count"`
	MostMovedProduct MostMovedProduct `json:"most_moved_product"`
}

// Dashboard summarizes the current ledger state.
func (e *Engine) Dashboard() Dashboard {
	var d Dashboard
	products := e.source.ListProducts()
	d.TotalProducts = len(products)

	for _, p := range products {
		d.TotalStock += p.Stock
		d.TotalMovements += len(p.History)
		if p.IsLowStock() {
			d.LowStockCount++
		}
		if len(p.History) > d.MostMovedProduct.MovementCount {
			d.MostMovedProduct = MostMovedProduct{ID: p.ID, Name: p.Name, MovementCount: len(p.History)}
		}
		for _, m := range p.History {
			if m.Type == models.MovementIn {
				d.UnitsIn += m.Amount
			} else {
				d.UnitsOut += m.Amount
			}
		}
		if n := len(p.History); n > 0 && p.History[n-1].Reason == models.ReasonRetired {
			d.RetiredCount++
		}
	}
	return d
}
