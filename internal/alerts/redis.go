package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/stock-ledger/internal/models"
)

const DefaultKey = "ledger:alerts:low_stock"

// RedisNotifier keeps the latest alerts in a capped Redis list.
type RedisNotifier struct {
	rdb redis.Cmdable
	key string
	max int64
	now func() time.Time
}

func NewRedisNotifier(rdb redis.Cmdable, key string, max int64) *RedisNotifier {
	if key == "" {
		key = DefaultKey
	}
	if max <= 0 {
		max = 100
	}
	return &RedisNotifier{rdb: rdb, key: key, max: max, now: time.Now}
}

func (n *RedisNotifier) LowStock(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(NewAlert(p, n.now()))
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}
	if err := n.rdb.RPush(ctx, n.key, data).Err(); err != nil {
		return fmt.Errorf("push alert: %w", err)
	}
	if err := n.rdb.LTrim(ctx, n.key, -n.max, -1).Err(); err != nil {
		return fmt.Errorf("trim alerts: %w", err)
	}
	return nil
}

func (n *RedisNotifier) Recent(ctx context.Context, limit int) ([]Alert, error) {
	if limit <= 0 {
		return []Alert{}, nil
	}
	entries, err := n.rdb.LRange(ctx, n.key, int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read alerts: %w", err)
	}

	out := make([]Alert, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		var a Alert
		if err := json.Unmarshal([]byte(entries[i]), &a); err != nil {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
