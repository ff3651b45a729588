package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rogerio-castellano/stock-ledger/internal/models"
)

// PostgresLedgerArchive stores ledger snapshots in Postgres.
type PostgresLedgerArchive struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresLedgerArchive(db *sql.DB) *PostgresLedgerArchive {
	return &PostgresLedgerArchive{db: db, timeout: 10 * time.Second}
}

// Save replaces the archived snapshot with products in a single transaction.
func (r *PostgresLedgerArchive) Save(ctx context.Context, products []models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_movements`); err != nil {
		return fmt.Errorf("clear movements: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_products`); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}

	productQuery := `INSERT INTO ledger_products (id, position, name, category, brand, warehouse, barcode, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	movementQuery := `INSERT INTO ledger_movements (sequence, product_id, type, amount, reason, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for i, p := range products {
		if _, err := tx.ExecContext(ctx, productQuery,
			p.ID, i, p.Name, p.Category, p.Brand, p.Warehouse, p.Barcode, p.Stock, p.CreatedAt, p.UpdatedAt); err != nil {
			return fmt.Errorf("insert product %s: %w", p.ID, err)
		}
		for _, m := range p.History {
			if _, err := tx.ExecContext(ctx, movementQuery,
				m.Sequence, p.ID, string(m.Type), m.Amount, string(m.Reason), m.Date); err != nil {
				return fmt.Errorf("insert movement %d: %w", m.Sequence, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Load reads the archived snapshot back with each history in append order.
func (r *PostgresLedgerArchive) Load(ctx context.Context) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, category, brand, warehouse, barcode, stock, created_at, updated_at
		FROM ledger_products ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	index := make(map[string]int)
	for rows.Next() {
		p := models.Product{History: []models.MovementRecord{}}
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Brand, &p.Warehouse, &p.Barcode, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	mrows, err := r.db.QueryContext(ctx, `SELECT sequence, product_id, type, amount, reason, recorded_at
		FROM ledger_movements ORDER BY sequence`)
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	defer mrows.Close()

	for mrows.Next() {
		var (
			m         models.MovementRecord
			productID string
		)
		if err := mrows.Scan(&m.Sequence, &productID, &m.Type, &m.Amount, &m.Reason, &m.Date); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		i, ok := index[productID]
		if !ok {
			return nil, fmt.Errorf("movement %d references unknown product %s", m.Sequence, productID)
		}
		products[i].History = append(products[i].History, m)
	}
	if err := mrows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
