package repo

import (
	"fmt"
	"sync"
	"testing"
	"time"

	appErrors "github.com/rogerio-castellano/stock-ledger/internal/errors"
	"github.com/rogerio-castellano/stock-ledger/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func newTestLedger() *InMemoryLedger {
	return NewInMemoryLedger(WithClock(fixedClock(time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC))))
}

func details(name, category, brand, warehouse string) models.ProductDetails {
	return models.ProductDetails{Name: name, Category: category, Brand: brand, Warehouse: warehouse}
}

func assertStockMatchesHistory(t *testing.T, p models.Product) {
	t.Helper()
	assert.Equal(t, p.Stock, p.NetHistory(), "stock must equal net of history for %s", p.Name)
}

func TestInMemoryLedger_AddProduct(t *testing.T) {
	t.Run("Success - positive initial stock records one in movement", func(t *testing.T) {
		l := newTestLedger()

		p, err := l.AddProduct(details("Rice", "Food", "Acme", "W1"), 10)

		require.NoError(t, err)
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, 10, p.Stock)
		require.Len(t, p.History, 1)
		assert.Equal(t, models.MovementIn, p.History[0].Type)
		assert.Equal(t, 10, p.History[0].Amount)
		assert.Equal(t, models.ReasonInitialStock, p.History[0].Reason)
		assert.Equal(t, p.CreatedAt, p.History[0].Date)
	})

	t.Run("Success - zero initial stock leaves history empty", func(t *testing.T) {
		l := newTestLedger()

		p, err := l.AddProduct(details("Hammer", "Tools", "Stanley", "W2"), 0)

		require.NoError(t, err)
		assert.Equal(t, 0, p.Stock)
		assert.Empty(t, p.History)
	})

	t.Run("Fail - empty name", func(t *testing.T) {
		l := newTestLedger()

		_, err := l.AddProduct(details("   ", "Food", "", ""), 1)

		assert.True(t, appErrors.IsValidation(err))
		assert.Empty(t, l.ListProducts())
	})

	t.Run("Fail - negative initial stock", func(t *testing.T) {
		l := newTestLedger()

		_, err := l.AddProduct(details("Rice", "Food", "", ""), -1)

		assert.True(t, appErrors.IsValidation(err))
		assert.Empty(t, l.ListProducts())
	})

	t.Run("Fail - duplicate barcode", func(t *testing.T) {
		l := newTestLedger()
		d := details("Rice", "Food", "", "")
		d.Barcode = "7790001"
		_, err := l.AddProduct(d, 1)
		require.NoError(t, err)

		d.Name = "Beans"
		_, err = l.AddProduct(d, 1)

		assert.True(t, appErrors.IsValidation(err))
		assert.Len(t, l.ListProducts(), 1)
	})

	t.Run("Fail - id collision panics", func(t *testing.T) {
		l := NewInMemoryLedger(WithIDGenerator(func() string { return "fixed" }))
		_, err := l.AddProduct(details("Rice", "", "", ""), 1)
		require.NoError(t, err)

		assert.Panics(t, func() {
			_, _ = l.AddProduct(details("Beans", "", "", ""), 1)
		})
	})
}

func TestInMemoryLedger_UpdateStock(t *testing.T) {
	t.Run("Success - example scenario", func(t *testing.T) {
		l := newTestLedger()
		a, err := l.AddProduct(details("A", "Food", "Acme", "W1"), 10)
		require.NoError(t, err)

		a, err = l.UpdateStock(a.ID, 3)

		require.NoError(t, err)
		assert.Equal(t, 3, a.Stock)
		require.Len(t, a.History, 2)
		assert.Equal(t, models.MovementIn, a.History[0].Type)
		assert.Equal(t, 10, a.History[0].Amount)
		assert.Equal(t, models.MovementOut, a.History[1].Type)
		assert.Equal(t, 7, a.History[1].Amount)
		assert.True(t, a.IsLowStock())

		b, err := l.AddProduct(details("B", "Tools", "Stanley", "W2"), 0)
		require.NoError(t, err)
		b, err = l.UpdateStock(b.ID, 5)
		require.NoError(t, err)
		require.Len(t, b.History, 1)
		assert.Equal(t, models.MovementIn, b.History[0].Type)
		assert.Equal(t, 5, b.History[0].Amount)
		assert.False(t, b.IsLowStock())
	})

	t.Run("Success - read after write returns the target", func(t *testing.T) {
		l := newTestLedger()
		p, _ := l.AddProduct(details("Rice", "", "", ""), 4)

		for _, target := range []int{12, 0, 7, 7, 1} {
			_, err := l.UpdateStock(p.ID, target)
			require.NoError(t, err)

			got, err := l.GetProduct(p.ID)
			require.NoError(t, err)
			assert.Equal(t, target, got.Stock)
			assertStockMatchesHistory(t, got)
		}
	})

	t.Run("Success - same value appends nothing", func(t *testing.T) {
		l := newTestLedger()
		p, _ := l.AddProduct(details("Rice", "", "", ""), 8)

		got, err := l.UpdateStock(p.ID, 8)

		require.NoError(t, err)
		assert.Len(t, got.History, len(p.History))
	})

	t.Run("Fail - negative target", func(t *testing.T) {
		l := newTestLedger()
		p, _ := l.AddProduct(details("Rice", "", "", ""), 8)

		_, err := l.UpdateStock(p.ID, -1)

		assert.True(t, appErrors.IsValidation(err))
		got, _ := l.GetProduct(p.ID)
		assert.Equal(t, 8, got.Stock)
		assert.Len(t, got.History, 1)
	})

	t.Run("Fail - unknown product", func(t *testing.T) {
		l := newTestLedger()

		_, err := l.UpdateStock("missing", 3)

		assert.True(t, appErrors.IsNotFound(err))
	})
}

func TestInMemoryLedger_AdjustStock(t *testing.T) {
	l := newTestLedger()
	p, _ := l.AddProduct(details("Rice", "", "", ""), 5)

	t.Run("Success - negative delta", func(t *testing.T) {
		got, err := l.AdjustStock(p.ID, -2)

		require.NoError(t, err)
		assert.Equal(t, 3, got.Stock)
		last := got.History[len(got.History)-1]
		assert.Equal(t, models.MovementOut, last.Type)
		assert.Equal(t, models.ReasonAdjustment, last.Reason)
	})

	t.Run("Success - zero delta is a no-op", func(t *testing.T) {
		before, _ := l.GetProduct(p.ID)

		got, err := l.AdjustStock(p.ID, 0)

		require.NoError(t, err)
		assert.Len(t, got.History, len(before.History))
	})

	t.Run("Fail - would go negative", func(t *testing.T) {
		_, err := l.AdjustStock(p.ID, -4)

		assert.True(t, appErrors.IsValidation(err))
		got, _ := l.GetProduct(p.ID)
		assert.Equal(t, 3, got.Stock)
	})
}

func TestInMemoryLedger_ResetStock(t *testing.T) {
	l := newTestLedger()
	p, _ := l.AddProduct(details("Rice", "Food", "", ""), 6)

	got, err := l.ResetStock(p.ID)

	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
	require.Len(t, got.History, 2)
	assert.Equal(t, models.MovementOut, got.History[1].Type)
	assert.Equal(t, 6, got.History[1].Amount)
	assert.Equal(t, models.ReasonRetired, got.History[1].Reason)

	// retired products remain listed
	assert.Len(t, l.ListProducts(), 1)

	again, err := l.ResetStock(p.ID)
	require.NoError(t, err)
	assert.Len(t, again.History, 2)

	_, err = l.ResetStock("missing")
	assert.True(t, appErrors.IsNotFound(err))
}

func TestInMemoryLedger_UpdateDetails(t *testing.T) {
	l := newTestLedger()
	first := details("Rice", "Food", "Acme", "W1")
	first.Barcode = "111"
	p, _ := l.AddProduct(first, 1)
	second := details("Nails", "Tools", "", "W2")
	second.Barcode = "222"
	q, _ := l.AddProduct(second, 1)

	t.Run("Success - derived sets follow edits", func(t *testing.T) {
		edit := details("Brown Rice", "Grains", "Acme", "W3")
		edit.Barcode = "333"

		got, err := l.UpdateDetails(p.ID, edit)

		require.NoError(t, err)
		assert.Equal(t, "Brown Rice", got.Name)
		assert.Equal(t, []string{"Grains", "Tools"}, l.Categories())
		assert.Equal(t, []string{"W2", "W3"}, l.Warehouses())

		byCode, err := l.GetByBarcode("333")
		require.NoError(t, err)
		assert.Equal(t, p.ID, byCode.ID)
		_, err = l.GetByBarcode("111")
		assert.True(t, appErrors.IsNotFound(err))
	})

	t.Run("Fail - barcode owned by another product", func(t *testing.T) {
		edit := details("Nails", "Tools", "", "W2")
		edit.Barcode = "333"

		_, err := l.UpdateDetails(q.ID, edit)

		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("Fail - empty name", func(t *testing.T) {
		_, err := l.UpdateDetails(q.ID, details("", "Tools", "", "W2"))

		assert.True(t, appErrors.IsValidation(err))
	})
}

func TestInMemoryLedger_DerivedSets(t *testing.T) {
	l := newTestLedger()
	_, _ = l.AddProduct(details("Rice", "Food", "Acme", "W1"), 1)
	_, _ = l.AddProduct(details("Hammer", "Tools", "Stanley", ""), 1)
	_, _ = l.AddProduct(details("Beans", "Food", "Acme", "W1"), 1)

	assert.Equal(t, []string{"Food", "Tools"}, l.Categories())
	assert.Equal(t, []string{"Acme", "Stanley"}, l.Brands())
	assert.Equal(t, []string{"W1"}, l.Warehouses())
	assert.Equal(t, []string{"Beans", "Hammer", "Rice"}, l.ProductNames())
}

func TestInMemoryLedger_ListAndFilter(t *testing.T) {
	l := newTestLedger()
	for i, stock := range []int{4, 5, 0, 12} {
		_, err := l.AddProduct(details(fmt.Sprintf("Item %d", i), "Food", "", "W1"), stock)
		require.NoError(t, err)
	}

	t.Run("Success - insertion order", func(t *testing.T) {
		products := l.ListProducts()

		require.Len(t, products, 4)
		for i, p := range products {
			assert.Equal(t, fmt.Sprintf("Item %d", i), p.Name)
		}
	})

	t.Run("Success - low stock boundary", func(t *testing.T) {
		low := l.LowStock()

		names := []string{}
		for _, p := range low {
			names = append(names, p.Name)
		}
		assert.Equal(t, []string{"Item 0", "Item 2"}, names)
	})

	t.Run("Success - paginated filter", func(t *testing.T) {
		minStock := 1
		offset, limit := 1, 1

		page, total := l.Filter(ProductFilter{MinStock: &minStock, Offset: &offset, Limit: &limit})

		assert.Equal(t, 3, total)
		require.Len(t, page, 1)
		assert.Equal(t, "Item 1", page[0].Name)
	})

	t.Run("Success - snapshots do not alias the store", func(t *testing.T) {
		products := l.ListProducts()
		products[0].Stock = 999
		products[0].History[0].Amount = 999

		fresh, err := l.GetProduct(products[0].ID)
		require.NoError(t, err)
		assert.Equal(t, 4, fresh.Stock)
		assert.Equal(t, 4, fresh.History[0].Amount)
	})
}

func TestInMemoryLedger_History(t *testing.T) {
	l := newTestLedger()
	p, _ := l.AddProduct(details("Rice", "", "", ""), 10)
	_, _ = l.UpdateStock(p.ID, 4)
	_, _ = l.UpdateStock(p.ID, 9)

	t.Run("Success - newest first", func(t *testing.T) {
		records, total, err := l.History(p.ID, MovementFilter{})

		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Equal(t, []int{5, -6, 10}, []int{records[0].Delta(), records[1].Delta(), records[2].Delta()})
	})

	t.Run("Success - type filter and paging", func(t *testing.T) {
		limit := 1
		records, total, err := l.History(p.ID, MovementFilter{Type: models.MovementIn, Limit: &limit})

		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, records, 1)
		assert.Equal(t, 5, records[0].Amount)
	})

	t.Run("Fail - unknown product", func(t *testing.T) {
		_, _, err := l.History("missing", MovementFilter{})
		assert.True(t, appErrors.IsNotFound(err))
	})
}

func TestInMemoryLedger_Merge(t *testing.T) {
	t.Run("Success - adds new and syncs known products", func(t *testing.T) {
		l := newTestLedger()
		local, err := l.AdoptRemote(models.RemoteProduct{ID: "17", Name: "Rice", Category: "Food", Stock: 3})
		require.NoError(t, err)

		res, err := l.Merge([]models.RemoteProduct{
			{ID: "17", Name: "Rice", Category: "Grains", Stock: 8},
			{ID: "18", Name: "Hammer", Category: "Tools", Stock: 2},
		})

		require.NoError(t, err)
		assert.Equal(t, MergeResult{Added: 1, Updated: 1, Moved: 1}, res)
		got, _ := l.GetProduct(local.ID)
		assert.Equal(t, 8, got.Stock)
		assert.Equal(t, "Grains", got.Category)
		assert.Equal(t, models.ReasonRemoteSync, got.History[len(got.History)-1].Reason)
		assertStockMatchesHistory(t, got)
		assert.Len(t, l.ListProducts(), 2)
	})

	t.Run("Fail - one invalid item applies nothing", func(t *testing.T) {
		l := newTestLedger()
		_, _ = l.AdoptRemote(models.RemoteProduct{ID: "1", Name: "Rice", Stock: 3})

		_, err := l.Merge([]models.RemoteProduct{
			{ID: "1", Name: "Rice", Stock: 9},
			{ID: "2", Name: "", Stock: 1},
		})

		assert.True(t, appErrors.IsValidation(err))
		got, _ := l.GetProduct("1")
		assert.Equal(t, 3, got.Stock)
		assert.Len(t, l.ListProducts(), 1)
	})

	t.Run("Fail - barcode conflict with untouched product", func(t *testing.T) {
		l := newTestLedger()
		_, _ = l.AdoptRemote(models.RemoteProduct{ID: "1", Name: "Rice", Barcode: "A1"})

		_, err := l.Merge([]models.RemoteProduct{{ID: "2", Name: "Beans", Barcode: "A1"}})

		assert.True(t, appErrors.IsValidation(err))
		assert.Len(t, l.ListProducts(), 1)
	})

	t.Run("Success - barcode moves between products in one listing", func(t *testing.T) {
		l := newTestLedger()
		_, _ = l.AdoptRemote(models.RemoteProduct{ID: "1", Name: "Rice", Barcode: "A1"})
		_, _ = l.AdoptRemote(models.RemoteProduct{ID: "2", Name: "Beans", Barcode: "B2"})

		_, err := l.Merge([]models.RemoteProduct{
			{ID: "1", Name: "Rice", Barcode: "B2"},
			{ID: "2", Name: "Beans", Barcode: "A1"},
		})

		require.NoError(t, err)
		got, err := l.GetByBarcode("A1")
		require.NoError(t, err)
		assert.Equal(t, "2", got.ID)
	})
}

func TestInMemoryLedger_MergePartialListing(t *testing.T) {
	const idAndName = models.RemoteCategory | models.RemoteBrand | models.RemoteWarehouse | models.RemoteStock

	t.Run("Success - omitted fields keep local stock and metadata", func(t *testing.T) {
		l := newTestLedger()
		_, err := l.AdoptRemote(models.RemoteProduct{ID: "1", Name: "Rice", Category: "Food", Brand: "Acme", Warehouse: "W1", Stock: 10})
		require.NoError(t, err)

		res, err := l.Merge([]models.RemoteProduct{{ID: "1", Name: "Rice", Barcode: "123", Omitted: idAndName}})

		require.NoError(t, err)
		assert.Equal(t, MergeResult{Updated: 1}, res)
		got, _ := l.GetProduct("1")
		assert.Equal(t, 10, got.Stock)
		assert.Equal(t, "Food", got.Category)
		assert.Equal(t, "Acme", got.Brand)
		assert.Equal(t, "W1", got.Warehouse)
		assert.Equal(t, "123", got.Barcode)
		assert.Len(t, got.History, 1)
		assert.Equal(t, []string{"W1"}, l.Warehouses())

		byCode, err := l.GetByBarcode("123")
		require.NoError(t, err)
		assert.Equal(t, "1", byCode.ID)
	})

	t.Run("Success - unchanged partial listing is a no-op", func(t *testing.T) {
		l := newTestLedger()
		before, _ := l.AdoptRemote(models.RemoteProduct{ID: "1", Name: "Rice", Category: "Food", Barcode: "123", Stock: 10})

		res, err := l.Merge([]models.RemoteProduct{{ID: "1", Name: "Rice", Barcode: "123", Omitted: idAndName}})

		require.NoError(t, err)
		assert.Equal(t, MergeResult{}, res)
		got, _ := l.GetProduct("1")
		assert.Equal(t, before.UpdatedAt, got.UpdatedAt)
	})

	t.Run("Success - unknown product without stock starts empty", func(t *testing.T) {
		l := newTestLedger()

		res, err := l.Merge([]models.RemoteProduct{{ID: "9", Name: "Beans", Omitted: idAndName}})

		require.NoError(t, err)
		assert.Equal(t, MergeResult{Added: 1}, res)
		got, _ := l.GetProduct("9")
		assert.Equal(t, 0, got.Stock)
		assert.Empty(t, got.History)
	})

	t.Run("Success - metadata change bumps UpdatedAt", func(t *testing.T) {
		l := newTestLedger()
		before, _ := l.AdoptRemote(models.RemoteProduct{ID: "1", Name: "Rice", Category: "Food", Stock: 10})

		_, err := l.Merge([]models.RemoteProduct{{ID: "1", Name: "Brown rice", Omitted: idAndName}})

		require.NoError(t, err)
		got, _ := l.GetProduct("1")
		assert.Equal(t, "Brown rice", got.Name)
		assert.True(t, got.UpdatedAt.After(before.UpdatedAt))
		assert.Len(t, got.History, 1)
	})
}

func TestInMemoryLedger_AdoptRemote(t *testing.T) {
	l := newTestLedger()

	_, err := l.AdoptRemote(models.RemoteProduct{ID: "42", Name: "Rice", Stock: 2})
	require.NoError(t, err)

	_, err = l.AdoptRemote(models.RemoteProduct{ID: "42", Name: "Rice again"})
	assert.True(t, appErrors.IsValidation(err))

	_, err = l.AdoptRemote(models.RemoteProduct{ID: "", Name: "No id"})
	assert.True(t, appErrors.IsValidation(err))
}

func TestInMemoryLedger_SnapshotRestore(t *testing.T) {
	src := newTestLedger()
	p, _ := src.AddProduct(details("Rice", "Food", "", "W1"), 10)
	_, _ = src.UpdateStock(p.ID, 2)

	t.Run("Success - round trip keeps sequence counter", func(t *testing.T) {
		dst := newTestLedger()

		require.NoError(t, dst.Restore(src.Snapshot()))

		got, err := dst.GetProduct(p.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Stock)
		got, err = dst.UpdateStock(p.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), got.History[2].Sequence)
	})

	t.Run("Fail - stock disagrees with history", func(t *testing.T) {
		snapshot := src.Snapshot()
		snapshot[0].Stock = 50
		dst := newTestLedger()

		err := dst.Restore(snapshot)

		assert.True(t, appErrors.IsValidation(err))
		assert.Empty(t, dst.ListProducts())
	})
}

func TestInMemoryLedger_ConcurrentMutations(t *testing.T) {
	l := NewInMemoryLedger()
	p, err := l.AddProduct(details("Rice", "", "", ""), 100)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = l.AdjustStock(p.ID, -1)
		}()
		go func() {
			defer wg.Done()
			got, err := l.GetProduct(p.ID)
			if assert.NoError(t, err) {
				assertStockMatchesHistory(t, got)
			}
		}()
	}
	wg.Wait()

	got, _ := l.GetProduct(p.ID)
	assert.Equal(t, 50, got.Stock)
	assert.Len(t, got.History, 51)
}
