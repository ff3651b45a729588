package report

import (
	"sort"
	"time"

	appErrors "github.com/rogerio-castellano/stock-ledger/internal/errors"
	"github.com/rogerio-castellano/stock-ledger/internal/models"
	"github.com/rogerio-castellano/stock-ledger/internal/repo"
)

// Source is the read side of the ledger the engine projects over.
type Source interface {
	ListProducts() []models.Product
}

// MovementQuery selects movements. Empty string filters match everything.
type MovementQuery struct {
	Product   string
	Warehouse string
	Type      string
	Since     *time.Time
	Until     *time.Time
	Offset    *int
	Limit     *int
}

type MovementFeed struct {
	Entries []models.ReportEntry `json:"entries"`
	Total   int                  `json:"total"`
}

// Engine answers movement queries across every product in a Source.
type Engine struct {
	source Source
}

func NewEngine(source Source) *Engine {
	return &Engine{source: source}
}

func (q MovementQuery) validate() error {
	if q.Type != "" && !models.MovementType(q.Type).Valid() {
		return appErrors.FieldValidationError("type", "must be 'in' or 'out'").WithDetail(q.Type)
	}
	if q.Since != nil && q.Until != nil && q.Until.Before(*q.Since) {
		return appErrors.FieldValidationError("until", "must not be before since")
	}
	if q.Offset != nil && *q.Offset < 0 {
		return appErrors.FieldValidationError("offset", "must be zero or positive")
	}
	if q.Limit != nil && *q.Limit <= 0 {
		return appErrors.FieldValidationError("limit", "must be greater than zero")
	}
	return nil
}

func (q MovementQuery) matches(e models.ReportEntry) bool {
	if q.Product != "" && e.Product != q.Product {
		return false
	}
	if q.Warehouse != "" && e.Warehouse != q.Warehouse {
		return false
	}
	if q.Type != "" && string(e.Type) != q.Type {
		return false
	}
	if q.Since != nil && e.Date.Before(*q.Since) {
		return false
	}
	if q.Until != nil && e.Date.After(*q.Until) {
		return false
	}
	return true
}

// Flatten joins every movement with the current metadata of its product.
func Flatten(products []models.Product) []models.ReportEntry {
	entries := []models.ReportEntry{}
	for _, p := range products {
		for _, m := range p.History {
			entries = append(entries, models.ReportEntry{
				ProductID: p.ID,
				Product:   p.Name,
				Warehouse: p.Warehouse,
				Category:  p.Category,
				Brand:     p.Brand,
				Type:      m.Type,
				Amount:    m.Amount,
				Date:      m.Date,
				Reason:    m.Reason,
				Sequence:  m.Sequence,
			})
		}
	}
	return entries
}

// SortNewestFirst orders entries by date descending, then by sequence descending.
func SortNewestFirst(entries []models.ReportEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}
		return entries[i].Sequence > entries[j].Sequence
	})
}

// QueryMovements returns the movements matching q, newest first. Total is the
// match count before Offset and Limit are applied.
func (e *Engine) QueryMovements(q MovementQuery) (MovementFeed, error) {
	if err := q.validate(); err != nil {
		return MovementFeed{}, err
	}

	filtered := []models.ReportEntry{}
	for _, entry := range Flatten(e.source.ListProducts()) {
		if q.matches(entry) {
			filtered = append(filtered, entry)
		}
	}
	SortNewestFirst(filtered)

	return MovementFeed{
		Entries: repo.Paginate(filtered, q.Offset, q.Limit),
		Total:   len(filtered),
	}, nil
}
