package alerts

import (
	"context"
	"sync"
	"time"

	"github.com/rogerio-castellano/stock-ledger/internal/logger"
	"github.com/rogerio-castellano/stock-ledger/internal/models"
)

// LogNotifier logs alerts and keeps the latest ones in memory.
type LogNotifier struct {
	log *logger.Logger
	max int

	mu     sync.Mutex
	recent []Alert
	now    func() time.Time
}

func NewLogNotifier(log *logger.Logger, max int) *LogNotifier {
	if max <= 0 {
		max = 100
	}
	return &LogNotifier{log: log, max: max, now: time.Now}
}

func (n *LogNotifier) LowStock(_ context.Context, p models.Product) error {
	a := NewAlert(p, n.now())
	n.log.Warn().
		Str("product_id", a.ProductID).
		Str("product", a.Product).
		Str("warehouse", a.Warehouse).
		Int("stock", a.Stock).
		Int("threshold", a.Threshold).
		Msg("stock is critically low")

	n.mu.Lock()
	defer n.mu.Unlock()
	n.recent = append(n.recent, a)
	if len(n.recent) > n.max {
		n.recent = n.recent[len(n.recent)-n.max:]
	}
	return nil
}

func (n *LogNotifier) Recent(_ context.Context, limit int) ([]Alert, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := []Alert{}
	for i := len(n.recent) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, n.recent[i])
	}
	return out, nil
}
