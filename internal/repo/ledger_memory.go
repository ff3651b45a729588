package repo

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	appErrors "github.com/rogerio-castellano/stock-ledger/internal/errors"
	"github.com/rogerio-castellano/stock-ledger/internal/models"
)

// InMemoryLedger is the in-memory implementation of Ledger.
type InMemoryLedger struct {
	mu       sync.RWMutex
	products []models.Product
	index    map[string]int
	barcodes map[string]string
	seq      uint64

	now   func() time.Time
	newID func() string
}

type LedgerOption func(*InMemoryLedger)

// WithClock replaces the clock used to date products and movements.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *InMemoryLedger) {
		l.now = now
	}
}

// WithIDGenerator replaces the product id generator.
func WithIDGenerator(gen func() string) LedgerOption {
	return func(l *InMemoryLedger) {
		l.newID = gen
	}
}

// NewInMemoryLedger creates an empty ledger.
func NewInMemoryLedger(opts ...LedgerOption) *InMemoryLedger {
	l := &InMemoryLedger{
		products: []models.Product{},
		index:    make(map[string]int),
		barcodes: make(map[string]string),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func errProductNotFound(id string) *appErrors.AppError {
	return appErrors.NotFoundError("product not found").WithDetail("id=" + id)
}

func normalize(d models.ProductDetails) models.ProductDetails {
	return models.ProductDetails{
		Name:      strings.TrimSpace(d.Name),
		Category:  strings.TrimSpace(d.Category),
		Brand:     strings.TrimSpace(d.Brand),
		Warehouse: strings.TrimSpace(d.Warehouse),
		Barcode:   strings.TrimSpace(d.Barcode),
	}
}

// checkDetails validates d for the product owning id. id is empty for new products.
func (l *InMemoryLedger) checkDetails(id string, d models.ProductDetails) error {
	if d.Name == "" {
		return appErrors.FieldValidationError("name", "name is required")
	}
	if d.Barcode != "" {
		if owner, taken := l.barcodes[d.Barcode]; taken && owner != id {
			return appErrors.FieldValidationError("barcode", "barcode already assigned").WithDetail(d.Barcode)
		}
	}
	return nil
}

func (l *InMemoryLedger) find(id string) (*models.Product, error) {
	i, ok := l.index[id]
	if !ok {
		return nil, errProductNotFound(id)
	}
	return &l.products[i], nil
}

// record appends one movement for delta. A zero delta appends nothing.
func (l *InMemoryLedger) record(p *models.Product, delta int, reason models.MovementReason, at time.Time) bool {
	if delta == 0 {
		return false
	}
	m := models.MovementRecord{Type: models.MovementIn, Amount: delta, Date: at, Reason: reason}
	if delta < 0 {
		m.Type = models.MovementOut
		m.Amount = -delta
	}
	l.seq++
	m.Sequence = l.seq
	p.History = append(p.History, m)
	p.Stock += delta
	p.UpdatedAt = at
	return true
}

func (l *InMemoryLedger) insert(id string, d models.ProductDetails, stock int, at time.Time) *models.Product {
	if _, exists := l.index[id]; exists {
		panic(fmt.Sprintf("ledger: product id %q already in use", id))
	}
	l.products = append(l.products, models.Product{
		ID:        id,
		Name:      d.Name,
		Category:  d.Category,
		Brand:     d.Brand,
		Warehouse: d.Warehouse,
		Barcode:   d.Barcode,
		History:   []models.MovementRecord{},
		CreatedAt: at,
		UpdatedAt: at,
	})
	l.index[id] = len(l.products) - 1
	if d.Barcode != "" {
		l.barcodes[d.Barcode] = id
	}
	p := &l.products[len(l.products)-1]
	l.record(p, stock, models.ReasonInitialStock, at)
	return p
}

// AddProduct creates a product with a fresh id. A positive initial stock is
// recorded as one "in" movement dated at creation.
func (l *InMemoryLedger) AddProduct(details models.ProductDetails, initialStock int) (models.Product, error) {
	d := normalize(details)
	if initialStock < 0 {
		return models.Product{}, appErrors.FieldValidationError("stock", "initial stock cannot be negative")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkDetails("", d); err != nil {
		return models.Product{}, err
	}
	p := l.insert(l.newID(), d, initialStock, l.now())
	return p.Clone(), nil
}

// UpdateStock sets stock to newStock and records the difference.
func (l *InMemoryLedger) UpdateStock(id string, newStock int) (models.Product, error) {
	if newStock < 0 {
		return models.Product{}, appErrors.FieldValidationError("stock", "stock cannot be negative")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.find(id)
	if err != nil {
		return models.Product{}, err
	}
	l.record(p, newStock-p.Stock, models.ReasonStockUpdate, l.now())
	return p.Clone(), nil
}

// AdjustStock applies a relative change to stock.
func (l *InMemoryLedger) AdjustStock(id string, delta int) (models.Product, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.find(id)
	if err != nil {
		return models.Product{}, err
	}
	if p.Stock+delta < 0 {
		return models.Product{}, appErrors.FieldValidationError("delta", "stock cannot go negative").
			WithDetail(fmt.Sprintf("stock=%d delta=%d", p.Stock, delta))
	}
	l.record(p, delta, models.ReasonAdjustment, l.now())
	return p.Clone(), nil
}

// ResetStock retires a product by bringing its stock to zero. The product and
// its history are kept.
func (l *InMemoryLedger) ResetStock(id string) (models.Product, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.find(id)
	if err != nil {
		return models.Product{}, err
	}
	l.record(p, -p.Stock, models.ReasonRetired, l.now())
	return p.Clone(), nil
}

// UpdateDetails replaces the descriptive metadata of a product.
func (l *InMemoryLedger) UpdateDetails(id string, details models.ProductDetails) (models.Product, error) {
	d := normalize(details)

	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.find(id)
	if err != nil {
		return models.Product{}, err
	}
	if err := l.checkDetails(id, d); err != nil {
		return models.Product{}, err
	}
	l.applyDetails(p, d, l.now())
	return p.Clone(), nil
}

func (l *InMemoryLedger) applyDetails(p *models.Product, d models.ProductDetails, at time.Time) {
	if p.Barcode != d.Barcode {
		delete(l.barcodes, p.Barcode)
		if d.Barcode != "" {
			l.barcodes[d.Barcode] = p.ID
		}
	}
	if p.Details() != d {
		p.UpdatedAt = at
	}
	p.Name = d.Name
	p.Category = d.Category
	p.Brand = d.Brand
	p.Warehouse = d.Warehouse
	p.Barcode = d.Barcode
}

func (l *InMemoryLedger) GetProduct(id string) (models.Product, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, err := l.find(id)
	if err != nil {
		return models.Product{}, err
	}
	return p.Clone(), nil
}

func (l *InMemoryLedger) GetByBarcode(code string) (models.Product, error) {
	code = strings.TrimSpace(code)

	l.mu.RLock()
	defer l.mu.RUnlock()

	id, ok := l.barcodes[code]
	if !ok || code == "" {
		return models.Product{}, appErrors.NotFoundError("product not found").WithDetail("barcode=" + code)
	}
	return l.products[l.index[id]].Clone(), nil
}

// ListProducts returns every product in insertion order.
func (l *InMemoryLedger) ListProducts() []models.Product {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Product, len(l.products))
	for i, p := range l.products {
		out[i] = p.Clone()
	}
	return out
}

func matchesFilter(p models.Product, pf ProductFilter) bool {
	if pf.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(pf.Name)) {
		return false
	}
	if pf.Category != "" && p.Category != pf.Category {
		return false
	}
	if pf.Warehouse != "" && p.Warehouse != pf.Warehouse {
		return false
	}
	if pf.MinStock != nil && p.Stock < *pf.MinStock {
		return false
	}
	if pf.MaxStock != nil && p.Stock > *pf.MaxStock {
		return false
	}
	if pf.LowStock && !p.IsLowStock() {
		return false
	}
	return true
}

// Filter returns the page of products matching pf and the total match count.
func (l *InMemoryLedger) Filter(pf ProductFilter) ([]models.Product, int) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	filtered := []models.Product{}
	for _, p := range l.products {
		if matchesFilter(p, pf) {
			filtered = append(filtered, p.Clone())
		}
	}
	return Paginate(filtered, pf.Offset, pf.Limit), len(filtered)
}

// LowStock lists the products currently below models.LowStockThreshold.
func (l *InMemoryLedger) LowStock() []models.Product {
	products, _ := l.Filter(ProductFilter{LowStock: true})
	return products
}

// History returns one product's movements newest first.
func (l *InMemoryLedger) History(id string, mf MovementFilter) ([]models.MovementRecord, int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, err := l.find(id)
	if err != nil {
		return nil, 0, err
	}

	filtered := []models.MovementRecord{}
	for i := len(p.History) - 1; i >= 0; i-- {
		if mf.matches(p.History[i]) {
			filtered = append(filtered, p.History[i])
		}
	}
	return Paginate(filtered, mf.Offset, mf.Limit), len(filtered), nil
}

func (l *InMemoryLedger) distinct(field func(models.Product) string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seen := make(map[string]struct{})
	values := []string{}
	for _, p := range l.products {
		v := field(p)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func (l *InMemoryLedger) Categories() []string {
	return l.distinct(func(p models.Product) string { return p.Category })
}

func (l *InMemoryLedger) Brands() []string {
	return l.distinct(func(p models.Product) string { return p.Brand })
}

func (l *InMemoryLedger) Warehouses() []string {
	return l.distinct(func(p models.Product) string { return p.Warehouse })
}

func (l *InMemoryLedger) ProductNames() []string {
	return l.distinct(func(p models.Product) string { return p.Name })
}

func checkRemote(rp models.RemoteProduct) (models.RemoteProduct, error) {
	rp.ID = strings.TrimSpace(rp.ID)
	if rp.ID == "" {
		return rp, appErrors.FieldValidationError("id", "remote product has no identifier")
	}
	if rp.Has(models.RemoteStock) && rp.Stock < 0 {
		return rp, appErrors.FieldValidationError("stock", "stock cannot be negative").WithDetail("id=" + rp.ID)
	}
	d := normalize(rp.Details())
	rp.Name, rp.Category, rp.Brand, rp.Warehouse, rp.Barcode = d.Name, d.Category, d.Brand, d.Warehouse, d.Barcode
	if rp.Name == "" {
		return rp, appErrors.FieldValidationError("name", "name is required").WithDetail("id=" + rp.ID)
	}
	return rp, nil
}

// AdoptRemote adds a product under the identifier assigned by the remote service.
func (l *InMemoryLedger) AdoptRemote(rp models.RemoteProduct) (models.Product, error) {
	rp, err := checkRemote(rp)
	if err != nil {
		return models.Product{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.index[rp.ID]; exists {
		return models.Product{}, appErrors.FieldValidationError("id", "product already exists").WithDetail("id=" + rp.ID)
	}
	if err := l.checkDetails("", rp.Details()); err != nil {
		return models.Product{}, err
	}
	p := l.insert(rp.ID, rp.Details(), rp.Stock, l.now())
	return p.Clone(), nil
}

// Merge applies a remote listing. Unknown products are added and known ones
// take the metadata and stock the listing carries; fields the listing leaves
// out keep their local values. Nothing is applied if any item is invalid.
func (l *InMemoryLedger) Merge(items []models.RemoteProduct) (MergeResult, error) {
	checked := make([]models.RemoteProduct, 0, len(items))
	batch := make(map[string]struct{}, len(items))
	for _, item := range items {
		rp, err := checkRemote(item)
		if err != nil {
			return MergeResult{}, err
		}
		if _, dup := batch[rp.ID]; dup {
			return MergeResult{}, appErrors.FieldValidationError("id", "duplicate product in listing").WithDetail("id=" + rp.ID)
		}
		batch[rp.ID] = struct{}{}
		checked = append(checked, rp)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	details := make([]models.ProductDetails, len(checked))
	for n, rp := range checked {
		if i, known := l.index[rp.ID]; known {
			details[n] = rp.Over(l.products[i])
		} else {
			details[n] = rp.Details()
		}
	}

	// barcode ownership once the listing is applied
	owners := make(map[string]string, len(l.barcodes))
	for code, id := range l.barcodes {
		if _, replaced := batch[id]; !replaced {
			owners[code] = id
		}
	}
	for n, rp := range checked {
		code := details[n].Barcode
		if code == "" {
			continue
		}
		if owner, taken := owners[code]; taken && owner != rp.ID {
			return MergeResult{}, appErrors.FieldValidationError("barcode", "barcode already assigned").WithDetail(code)
		}
		owners[code] = rp.ID
	}

	var res MergeResult
	now := l.now()
	for n, rp := range checked {
		i, known := l.index[rp.ID]
		if !known {
			l.insert(rp.ID, details[n], rp.Stock, now)
			res.Added++
			continue
		}
		p := &l.products[i]
		if p.Details() != details[n] {
			res.Updated++
		}
		// barcodes are rebuilt below
		l.applyDetails(p, details[n], now)
		if rp.Has(models.RemoteStock) && l.record(p, rp.Stock-p.Stock, models.ReasonRemoteSync, now) {
			res.Moved++
		}
	}
	l.barcodes = owners
	return res, nil
}

// Snapshot returns a deep copy of the ledger for archiving.
func (l *InMemoryLedger) Snapshot() []models.Product {
	return l.ListProducts()
}

// Restore replaces the ledger content with an archived snapshot. Each product's
// stock must equal the net of its history.
func (l *InMemoryLedger) Restore(products []models.Product) error {
	index := make(map[string]int, len(products))
	barcodes := make(map[string]string)
	restored := make([]models.Product, 0, len(products))
	var seq uint64

	for i, p := range products {
		if p.ID == "" || p.Name == "" {
			return appErrors.ValidationError("snapshot product is missing id or name").WithDetail(fmt.Sprintf("position=%d", i))
		}
		if _, dup := index[p.ID]; dup {
			return appErrors.ValidationError("duplicate product id in snapshot").WithDetail("id=" + p.ID)
		}
		if p.Stock < 0 || p.Stock != p.NetHistory() {
			return appErrors.ValidationError("snapshot stock does not match history").
				WithDetail(fmt.Sprintf("id=%s stock=%d net=%d", p.ID, p.Stock, p.NetHistory()))
		}
		if p.Barcode != "" {
			if _, taken := barcodes[p.Barcode]; taken {
				return appErrors.ValidationError("duplicate barcode in snapshot").WithDetail(p.Barcode)
			}
			barcodes[p.Barcode] = p.ID
		}
		for _, m := range p.History {
			if !m.Type.Valid() || m.Amount <= 0 {
				return appErrors.ValidationError("invalid movement in snapshot").WithDetail("id=" + p.ID)
			}
			if m.Sequence > seq {
				seq = m.Sequence
			}
		}
		index[p.ID] = i
		restored = append(restored, p.Clone())
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.products = restored
	l.index = index
	l.barcodes = barcodes
	l.seq = seq
	return nil
}
