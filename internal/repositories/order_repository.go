package repositories

import (
	"context"

	"catering-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	DB DBTX
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{DB: db}
}

func (r *OrderRepository) WithTx(tx pgx.Tx) *OrderRepository {
	return &OrderRepository{DB: tx}
}

const orderSelect = `
	SELECT o.id, o.order_number, o.customer_id, c.name, c.phone, o.event_name, o.venue,
		o.status, o.source, o.meal_type_amounts, o.stalls, o.services,
		o.transport_cost, o.water_cost, o.discount,
		o.total_amount, o.advance_amount, o.remaining_amount, o.notes,
		o.split_from_order_id, o.created_by, o.created_at, o.updated_at
	FROM orders o
	JOIN customers c ON c.id = o.customer_id`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.CustomerName, &o.CustomerPhone,
		&o.EventName, &o.Venue, &o.Status, &o.Source, &o.MealTypeAmounts, &o.Stalls, &o.Services,
		&o.TransportCost, &o.WaterCost, &o.Discount,
		&o.TotalAmount, &o.AdvanceAmount, &o.RemainingAmount, &o.Notes,
		&o.SplitFromOrderID, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	normalizeOrder(&o)
	return &o, nil
}

// normalizeOrder replaces nil collections so JSONB columns never hold null.
func normalizeOrder(o *models.Order) {
	if o.MealTypeAmounts == nil {
		o.MealTypeAmounts = models.Sessions{}
	}
	if o.Stalls == nil {
		o.Stalls = []models.Stall{}
	}
	if o.Services == nil {
		o.Services = []string{}
	}
}

// Create inserts the order and assigns the next ORD- number.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	normalizeOrder(o)
	return r.DB.QueryRow(ctx, `
		INSERT INTO orders (
			order_number, customer_id, event_name, venue, status, source,
			meal_type_amounts, stalls, services, transport_cost, water_cost, discount,
			total_amount, advance_amount, remaining_amount, notes, split_from_order_id, created_by
		) VALUES (
			'ORD-' || LPAD(nextval('order_number_seq')::text, 6, '0'), $1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		)
		RETURNING id, order_number, created_at, updated_at`,
		o.CustomerID, o.EventName, o.Venue, o.Status, o.Source,
		o.MealTypeAmounts, o.Stalls, o.Services, o.TransportCost, o.WaterCost, o.Discount,
		o.TotalAmount, o.AdvanceAmount, o.RemainingAmount, o.Notes, o.SplitFromOrderID, o.CreatedBy,
	).Scan(&o.ID, &o.OrderNumber, &o.CreatedAt, &o.UpdatedAt)
}

func (r *OrderRepository) Get(ctx context.Context, id int) (*models.Order, error) {
	return scanOrder(r.DB.QueryRow(ctx, orderSelect+` WHERE o.id = $1`, id))
}

// GetMany loads the given orders; missing ids are simply absent.
func (r *OrderRepository) GetMany(ctx context.Context, ids []int) (map[int]*models.Order, error) {
	rows, err := r.DB.Query(ctx, orderSelect+` WHERE o.id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int]*models.Order, len(ids))
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out[o.ID] = o
	}
	return out, rows.Err()
}

// List returns orders matching the filter, newest first. From/To match any
// session date inside the range.
func (r *OrderRepository) List(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	var f filterBuilder
	if filter.Status != "" {
		f.add("o.status = $%d", filter.Status)
	}
	if filter.CustomerID > 0 {
		f.add("o.customer_id = $%d", filter.CustomerID)
	}
	if filter.Source != "" {
		f.add("o.source = $%d", filter.Source)
	}
	if filter.From != "" {
		f.add("EXISTS (SELECT 1 FROM jsonb_each(o.meal_type_amounts) s WHERE s.value->>'date' >= $%d)", filter.From)
	}
	if filter.To != "" {
		f.add("EXISTS (SELECT 1 FROM jsonb_each(o.meal_type_amounts) s WHERE s.value->>'date' <= $%d)", filter.To)
	}
	if filter.Search != "" {
		f.add("(o.order_number ILIKE $%[1]d OR o.event_name ILIKE $%[1]d OR c.name ILIKE $%[1]d OR c.phone ILIKE $%[1]d)",
			"%"+filter.Search+"%")
	}

	query := orderSelect + " " + f.where() + " ORDER BY o.created_at DESC" + f.page(filter.Limit, filter.Offset)
	rows, err := r.DB.Query(ctx, query, f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListOpen returns pending and in-progress orders, used for reminders and
// the upcoming events panel.
func (r *OrderRepository) ListOpen(ctx context.Context) ([]*models.Order, error) {
	rows, err := r.DB.Query(ctx, orderSelect+` WHERE o.status IN ('pending', 'in_progress') ORDER BY o.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// Update persists every editable column including the derived amounts.
func (r *OrderRepository) Update(ctx context.Context, o *models.Order) error {
	normalizeOrder(o)
	return r.DB.QueryRow(ctx, `
		UPDATE orders SET
			customer_id = $2, event_name = $3, venue = $4, status = $5,
			meal_type_amounts = $6, stalls = $7, services = $8,
			transport_cost = $9, water_cost = $10, discount = $11,
			total_amount = $12, advance_amount = $13, remaining_amount = $14,
			notes = $15, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		o.ID, o.CustomerID, o.EventName, o.Venue, o.Status,
		o.MealTypeAmounts, o.Stalls, o.Services,
		o.TransportCost, o.WaterCost, o.Discount,
		o.TotalAmount, o.AdvanceAmount, o.RemainingAmount, o.Notes,
	).Scan(&o.UpdatedAt)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	tag, err := r.DB.Exec(ctx, `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAdvance mirrors a bill's paid amount onto its order.
func (r *OrderRepository) SetAdvance(ctx context.Context, id int, advance, remaining float64) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE orders SET advance_amount = $2, remaining_amount = $3, updated_at = NOW() WHERE id = $1`,
		id, advance, remaining)
	return err
}

func (r *OrderRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistingIDs returns the order numbers of the ids that exist.
func (r *OrderRepository) ExistingIDs(ctx context.Context, ids []int) (map[int]string, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, order_number FROM orders WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int]string, len(ids))
	for rows.Next() {
		var id int
		var number string
		if err := rows.Scan(&id, &number); err != nil {
			return nil, err
		}
		out[id] = number
	}
	return out, rows.Err()
}
