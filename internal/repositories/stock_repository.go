package repositories

import (
	"context"

	"catering-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StockRepository struct {
	DB DBTX
}

func NewStockRepository(db *pgxpool.Pool) *StockRepository {
	return &StockRepository{DB: db}
}

func (r *StockRepository) WithTx(tx pgx.Tx) *StockRepository {
	return &StockRepository{DB: tx}
}

const stockItemColumns = `id, name, sku, category, unit, current_qty, reorder_level, unit_cost, created_at, updated_at`

func scanStockItem(row pgx.Row) (*models.StockItem, error) {
	var s models.StockItem
	err := row.Scan(&s.ID, &s.Name, &s.SKU, &s.Category, &s.Unit, &s.CurrentQty, &s.ReorderLevel,
		&s.UnitCost, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *StockRepository) CreateItem(ctx context.Context, s *models.StockItem) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO stock_items (name, sku, category, unit, current_qty, reorder_level, unit_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		s.Name, s.SKU, s.Category, s.Unit, s.CurrentQty, s.ReorderLevel, s.UnitCost,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *StockRepository) GetItem(ctx context.Context, id int) (*models.StockItem, error) {
	return scanStockItem(r.DB.QueryRow(ctx, `SELECT `+stockItemColumns+` FROM stock_items WHERE id = $1`, id))
}

// GetItemForUpdate locks the row for the rest of the transaction.
func (r *StockRepository) GetItemForUpdate(ctx context.Context, id int) (*models.StockItem, error) {
	return scanStockItem(r.DB.QueryRow(ctx,
		`SELECT `+stockItemColumns+` FROM stock_items WHERE id = $1 FOR UPDATE`, id))
}

func (r *StockRepository) ListItems(ctx context.Context, category string, lowOnly bool) ([]*models.StockItem, error) {
	var f filterBuilder
	if category != "" {
		f.add("category = $%d", category)
	}
	if lowOnly {
		f.conds = append(f.conds, "reorder_level > 0 AND current_qty <= reorder_level")
	}

	rows, err := r.DB.Query(ctx,
		`SELECT `+stockItemColumns+` FROM stock_items `+f.where()+` ORDER BY name`, f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.StockItem{}
	for rows.Next() {
		s, err := scanStockItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// UpdateItem changes descriptive fields only; quantities move through transactions.
func (r *StockRepository) UpdateItem(ctx context.Context, s *models.StockItem) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE stock_items SET name = $2, sku = $3, category = $4, unit = $5,
			reorder_level = $6, unit_cost = $7, updated_at = NOW()
		WHERE id = $1`,
		s.ID, s.Name, s.SKU, s.Category, s.Unit, s.ReorderLevel, s.UnitCost)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *StockRepository) SetQuantity(ctx context.Context, id int, qty float64) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE stock_items SET current_qty = $2, updated_at = NOW() WHERE id = $1`, id, qty)
	return err
}

func (r *StockRepository) DeleteItem(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM stock_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *StockRepository) CreateTxn(ctx context.Context, t *models.StockTxn) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO stock_txns (item_id, type, qty, unit_price, total, reason, order_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		t.ItemID, t.Type, t.Qty, t.UnitPrice, t.Total, t.Reason, t.OrderID, t.CreatedBy,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *StockRepository) ListTxns(ctx context.Context, itemID int, limit int) ([]*models.StockTxn, error) {
	var f filterBuilder
	if itemID > 0 {
		f.add("t.item_id = $%d", itemID)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT t.id, t.item_id, i.name, t.type, t.qty, t.unit_price, t.total, t.reason,
			t.order_id, t.created_by, t.created_at
		FROM stock_txns t
		JOIN stock_items i ON i.id = t.item_id
		`+f.where()+`
		ORDER BY t.created_at DESC, t.id DESC`+f.page(limit, 0), f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := []*models.StockTxn{}
	for rows.Next() {
		var t models.StockTxn
		if err := rows.Scan(&t.ID, &t.ItemID, &t.ItemName, &t.Type, &t.Qty, &t.UnitPrice, &t.Total,
			&t.Reason, &t.OrderID, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		txns = append(txns, &t)
	}
	return txns, rows.Err()
}
