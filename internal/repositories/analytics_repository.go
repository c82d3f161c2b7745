package repositories

import (
	"context"

	"catering-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AnalyticsRepository runs the read-only aggregate queries behind the dashboard.
type AnalyticsRepository struct {
	DB DBTX
}

func NewAnalyticsRepository(db *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

// Money totals for bills of non-cancelled orders created between from and to (inclusive, IST dates).
func (r *AnalyticsRepository) BillTotals(ctx context.Context, from, to string) (billed, collected, outstanding float64, err error) {
	err = r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(b.total_amount), 0), COALESCE(SUM(b.paid_amount), 0), COALESCE(SUM(b.remaining_amount), 0)
		FROM bills b
		JOIN orders o ON o.id = b.order_id
		WHERE o.status <> 'cancelled'
		  AND (o.created_at AT TIME ZONE 'Asia/Kolkata')::date BETWEEN $1::date AND $2::date`,
		from, to).Scan(&billed, &collected, &outstanding)
	return
}

func (r *AnalyticsRepository) ExpenseTotal(ctx context.Context, from, to string) (float64, error) {
	var total float64
	err := r.DB.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE expense_date BETWEEN $1::date AND $2::date`,
		from, to).Scan(&total)
	return total, err
}

func (r *AnalyticsRepository) WorkforceTotal(ctx context.Context, from, to string) (float64, error) {
	var total float64
	err := r.DB.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM workforce_payments WHERE payment_date BETWEEN $1::date AND $2::date`,
		from, to).Scan(&total)
	return total, err
}

func (r *AnalyticsRepository) countBy(ctx context.Context, query, from, to string) (map[string]int, error) {
	rows, err := r.DB.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key] = n
	}
	return out, rows.Err()
}

func (r *AnalyticsRepository) OrdersByStatus(ctx context.Context, from, to string) (map[string]int, error) {
	return r.countBy(ctx, `
		SELECT status, COUNT(*) FROM orders
		WHERE (created_at AT TIME ZONE 'Asia/Kolkata')::date BETWEEN $1::date AND $2::date
		GROUP BY status`, from, to)
}

func (r *AnalyticsRepository) BillsByStatus(ctx context.Context, from, to string) (map[string]int, error) {
	return r.countBy(ctx, `
		SELECT b.status, COUNT(*) FROM bills b
		JOIN orders o ON o.id = b.order_id
		WHERE o.status <> 'cancelled'
		  AND (o.created_at AT TIME ZONE 'Asia/Kolkata')::date BETWEEN $1::date AND $2::date
		GROUP BY b.status`, from, to)
}

// Monthly returns one point per calendar month between from and to.
func (r *AnalyticsRepository) Monthly(ctx context.Context, from, to string) ([]models.MonthlyPoint, error) {
	rows, err := r.DB.Query(ctx, `
		WITH months AS (
			SELECT to_char(m, 'YYYY-MM') AS month
			FROM generate_series(date_trunc('month', $1::date), date_trunc('month', $2::date), interval '1 month') m
		),
		billed AS (
			SELECT to_char(o.created_at AT TIME ZONE 'Asia/Kolkata', 'YYYY-MM') AS month,
				SUM(b.total_amount) AS billed, SUM(b.paid_amount) AS collected
			FROM bills b JOIN orders o ON o.id = b.order_id
			WHERE o.status <> 'cancelled'
			GROUP BY 1
		),
		spent AS (
			SELECT to_char(expense_date, 'YYYY-MM') AS month, SUM(amount) AS amount
			FROM expenses GROUP BY 1
		),
		wages AS (
			SELECT to_char(payment_date, 'YYYY-MM') AS month, SUM(amount) AS amount
			FROM workforce_payments GROUP BY 1
		)
		SELECT m.month,
			COALESCE(b.billed, 0), COALESCE(b.collected, 0),
			COALESCE(s.amount, 0), COALESCE(w.amount, 0)
		FROM months m
		LEFT JOIN billed b ON b.month = m.month
		LEFT JOIN spent s ON s.month = m.month
		LEFT JOIN wages w ON w.month = m.month
		ORDER BY m.month`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []models.MonthlyPoint{}
	for rows.Next() {
		var p models.MonthlyPoint
		if err := rows.Scan(&p.Month, &p.Billed, &p.Collected, &p.Expenses, &p.Workforce); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (r *AnalyticsRepository) TopCustomers(ctx context.Context, limit int) ([]models.TopCustomer, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.DB.Query(ctx, `
		SELECT c.id, c.name, c.phone, COUNT(o.id),
			COALESCE(SUM(b.total_amount), 0), COALESCE(SUM(b.paid_amount), 0)
		FROM customers c
		JOIN orders o ON o.customer_id = c.id AND o.status <> 'cancelled'
		LEFT JOIN bills b ON b.order_id = o.id
		GROUP BY c.id, c.name, c.phone
		ORDER BY 5 DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.TopCustomer{}
	for rows.Next() {
		var t models.TopCustomer
		if err := rows.Scan(&t.CustomerID, &t.Name, &t.Phone, &t.Orders, &t.Billed, &t.Paid); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// OrderCosts attributes expenses and workforce payments to orders. A record
// with bulk allocations counts through its allocations only; otherwise its
// direct order link carries the full amount.
func (r *AnalyticsRepository) OrderCosts(ctx context.Context, orderIDs []int) ([]models.OrderProfit, error) {
	rows, err := r.DB.Query(ctx, `
		WITH expense_alloc AS (
			SELECT order_id, amount FROM expenses
			WHERE order_id IS NOT NULL AND jsonb_array_length(bulk_allocations) = 0
			UNION ALL
			SELECT (a->>'order_id')::int, (a->>'amount')::numeric
			FROM expenses, jsonb_array_elements(bulk_allocations) a
		),
		wage_alloc AS (
			SELECT order_id, amount FROM workforce_payments
			WHERE order_id IS NOT NULL AND jsonb_array_length(bulk_allocations) = 0
			UNION ALL
			SELECT (a->>'order_id')::int, (a->>'amount')::numeric
			FROM workforce_payments, jsonb_array_elements(bulk_allocations) a
		)
		SELECT o.id, o.order_number, c.name, o.total_amount,
			COALESCE((SELECT SUM(amount) FROM expense_alloc e WHERE e.order_id = o.id), 0),
			COALESCE((SELECT SUM(amount) FROM wage_alloc w WHERE w.order_id = o.id), 0)
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = ANY($1)
		ORDER BY o.id`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.OrderProfit{}
	for rows.Next() {
		var p models.OrderProfit
		if err := rows.Scan(&p.OrderID, &p.OrderNumber, &p.CustomerName, &p.Revenue, &p.Expenses, &p.WorkforceCost); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RecentOrderIDs returns ids of non-cancelled orders created in the range.
func (r *AnalyticsRepository) RecentOrderIDs(ctx context.Context, from, to string, limit int) ([]int, error) {
	var f filterBuilder
	f.add("(created_at AT TIME ZONE 'Asia/Kolkata')::date >= $%d::date", from)
	f.add("(created_at AT TIME ZONE 'Asia/Kolkata')::date <= $%d::date", to)
	f.conds = append(f.conds, "status <> 'cancelled'")

	rows, err := r.DB.Query(ctx, `SELECT id FROM orders `+f.where()+` ORDER BY created_at DESC`+f.page(limit, 0), f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
