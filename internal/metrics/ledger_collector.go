package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ledgerCollector reports ledger state computed at scrape time.
type ledgerCollector struct {
	source LedgerSource

	products  *prometheus.Desc
	lowStock  *prometheus.Desc
	stock     *prometheus.Desc
	movements *prometheus.Desc
}

func newLedgerCollector(source LedgerSource) *ledgerCollector {
	return &ledgerCollector{
		source:    source,
		products:  prometheus.NewDesc("ledger_products", "Products in the ledger.", nil, nil),
		lowStock:  prometheus.NewDesc("ledger_low_stock_products", "Products below the low-stock threshold.", nil, nil),
		stock:     prometheus.NewDesc("ledger_stock_units", "Units on hand per warehouse.", []string{"warehouse"}, nil),
		movements: prometheus.NewDesc("ledger_movements", "Recorded stock movements.", nil, nil),
	}
}

func (c *ledgerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.products
	ch <- c.lowStock
	ch <- c.stock
	ch <- c.movements
}

func (c *ledgerCollector) Collect(ch chan<- prometheus.Metric) {
	products := c.source.ListProducts()

	var low, movements int
	perWarehouse := make(map[string]int)
	for _, p := range products {
		if p.IsLowStock() {
			low++
		}
		movements += len(p.History)
		perWarehouse[p.Warehouse] += p.Stock
	}

	ch <- prometheus.MustNewConstMetric(c.products, prometheus.GaugeValue, float64(len(products)))
	ch <- prometheus.MustNewConstMetric(c.lowStock, prometheus.GaugeValue, float64(low))
	ch <- prometheus.MustNewConstMetric(c.movements, prometheus.GaugeValue, float64(movements))
	for warehouse, units := range perWarehouse {
		ch <- prometheus.MustNewConstMetric(c.stock, prometheus.GaugeValue, float64(units), warehouse)
	}
}
