package repositories

import (
	"context"
	"fmt"

	"catering-backend/internal/ledger"
	"catering-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CostLinkRepository keeps expenses, workforce payments and stock movements
// attached to an order when the order is folded into another one.
type CostLinkRepository struct {
	DB DBTX
}

func NewCostLinkRepository(db *pgxpool.Pool) *CostLinkRepository {
	return &CostLinkRepository{DB: db}
}

func (r *CostLinkRepository) WithTx(tx pgx.Tx) *CostLinkRepository {
	return &CostLinkRepository{DB: tx}
}

var (
	orderLinkedTables     = []string{"expenses", "workforce_payments", "stock_txns"}
	allocationOwnerTables = []string{"expenses", "workforce_payments"}
)

// ReassignOrder points every cost row linked to order from at order to,
// including bulk allocation entries. It returns the number of rows changed.
func (r *CostLinkRepository) ReassignOrder(ctx context.Context, from, to int, toNumber string) (int, error) {
	changed := 0
	for _, table := range orderLinkedTables {
		tag, err := r.DB.Exec(ctx, `UPDATE `+table+` SET order_id = $1 WHERE order_id = $2`, to, from)
		if err != nil {
			return changed, fmt.Errorf("relink %s: %w", table, err)
		}
		changed += int(tag.RowsAffected())
	}

	for _, table := range allocationOwnerTables {
		n, err := r.reassignAllocations(ctx, table, from, to, toNumber)
		changed += n
		if err != nil {
			return changed, err
		}
	}
	return changed, nil
}

func (r *CostLinkRepository) reassignAllocations(ctx context.Context, table string, from, to int, toNumber string) (int, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, bulk_allocations FROM `+table+` WHERE bulk_allocations @> $1::jsonb FOR UPDATE`,
		fmt.Sprintf(`[{"order_id": %d}]`, from))
	if err != nil {
		return 0, fmt.Errorf("load %s allocations: %w", table, err)
	}

	type owner struct {
		id     int
		allocs []models.Allocation
	}
	var owners []owner
	for rows.Next() {
		var o owner
		if err := rows.Scan(&o.id, &o.allocs); err != nil {
			rows.Close()
			return 0, err
		}
		owners = append(owners, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	changed := 0
	for _, o := range owners {
		allocs, ok := ledger.ReassignAllocations(o.allocs, from, to, toNumber)
		if !ok {
			continue
		}
		if _, err := r.DB.Exec(ctx,
			`UPDATE `+table+` SET bulk_allocations = $1, updated_at = NOW() WHERE id = $2`,
			allocationsOrEmpty(allocs), o.id); err != nil {
			return changed, fmt.Errorf("update %s %d allocations: %w", table, o.id, err)
		}
		changed++
	}
	return changed, nil
}
