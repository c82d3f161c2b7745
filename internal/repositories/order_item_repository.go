package repositories

import (
	"context"

	"catering-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderItemRepository struct {
	DB DBTX
}

func NewOrderItemRepository(db *pgxpool.Pool) *OrderItemRepository {
	return &OrderItemRepository{DB: db}
}

func (r *OrderItemRepository) WithTx(tx pgx.Tx) *OrderItemRepository {
	return &OrderItemRepository{DB: tx}
}

func (r *OrderItemRepository) Create(ctx context.Context, it *models.OrderItem) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO order_items (order_id, menu_item_id, name, session_key, quantity, unit_price, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		it.OrderID, it.MenuItemID, it.Name, it.SessionKey, it.Quantity, it.UnitPrice, it.Amount,
	).Scan(&it.ID, &it.CreatedAt)
}

func (r *OrderItemRepository) ListByOrder(ctx context.Context, orderID int) ([]*models.OrderItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, menu_item_id, name, session_key, quantity, unit_price, amount, created_at
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.SessionKey,
			&it.Quantity, &it.UnitPrice, &it.Amount, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// Move reassigns the given items to another order.
func (r *OrderItemRepository) Move(ctx context.Context, itemIDs []int, toOrderID int) (int, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	tag, err := r.DB.Exec(ctx, `UPDATE order_items SET order_id = $2 WHERE id = ANY($1)`, itemIDs, toOrderID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// MoveAll reassigns every item of fromOrderID, renaming session keys found in
// renames.
func (r *OrderItemRepository) MoveAll(ctx context.Context, fromOrderID, toOrderID int, renames map[string]string) (int, error) {
	if renames == nil {
		renames = map[string]string{}
	}
	tag, err := r.DB.Exec(ctx, `
		UPDATE order_items
		SET order_id = $2, session_key = COALESCE(($3::jsonb)->>session_key, session_key)
		WHERE order_id = $1`, fromOrderID, toOrderID, renames)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *OrderItemRepository) DeleteByOrder(ctx context.Context, orderID int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID)
	return err
}
