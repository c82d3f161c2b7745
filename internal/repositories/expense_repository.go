package repositories

import (
	"context"

	"catering-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExpenseRepository struct {
	DB DBTX
}

func NewExpenseRepository(db *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{DB: db}
}

const expenseColumns = `id, category, description, amount, expense_date, payment_method, vendor,
	order_id, bulk_allocations, created_by, created_at, updated_at`

func scanExpense(row pgx.Row) (*models.Expense, error) {
	var e models.Expense
	err := row.Scan(&e.ID, &e.Category, &e.Description, &e.Amount, &e.ExpenseDate, &e.PaymentMethod,
		&e.Vendor, &e.OrderID, &e.BulkAllocations, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if e.BulkAllocations == nil {
		e.BulkAllocations = []models.Allocation{}
	}
	return &e, nil
}

func allocationsOrEmpty(a []models.Allocation) []models.Allocation {
	if a == nil {
		return []models.Allocation{}
	}
	return a
}

func (r *ExpenseRepository) Create(ctx context.Context, e *models.Expense) error {
	e.BulkAllocations = allocationsOrEmpty(e.BulkAllocations)
	return r.DB.QueryRow(ctx, `
		INSERT INTO expenses (category, description, amount, expense_date, payment_method, vendor,
			order_id, bulk_allocations, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		e.Category, e.Description, e.Amount, e.ExpenseDate, e.PaymentMethod, e.Vendor,
		e.OrderID, e.BulkAllocations, e.CreatedBy,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *ExpenseRepository) Get(ctx context.Context, id int) (*models.Expense, error) {
	return scanExpense(r.DB.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id))
}

// List filters by category, date range and order. OrderID matches both the
// direct link and bulk allocations.
func (r *ExpenseRepository) List(ctx context.Context, filter models.ExpenseFilter) ([]*models.Expense, error) {
	var f filterBuilder
	if filter.Category != "" {
		f.add("category = $%d", filter.Category)
	}
	if filter.From != "" {
		f.add("expense_date >= $%d::date", filter.From)
	}
	if filter.To != "" {
		f.add("expense_date <= $%d::date", filter.To)
	}
	if filter.OrderID > 0 {
		f.add(`(order_id = $%[1]d OR EXISTS (
			SELECT 1 FROM jsonb_array_elements(bulk_allocations) a WHERE (a->>'order_id')::int = $%[1]d))`,
			filter.OrderID)
	}

	rows, err := r.DB.Query(ctx,
		`SELECT `+expenseColumns+` FROM expenses `+f.where()+` ORDER BY expense_date DESC, id DESC`, f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := []*models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *ExpenseRepository) Update(ctx context.Context, e *models.Expense) error {
	e.BulkAllocations = allocationsOrEmpty(e.BulkAllocations)
	err := r.DB.QueryRow(ctx, `
		UPDATE expenses SET category = $2, description = $3, amount = $4, expense_date = $5,
			payment_method = $6, vendor = $7, order_id = $8, bulk_allocations = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		e.ID, e.Category, e.Description, e.Amount, e.ExpenseDate,
		e.PaymentMethod, e.Vendor, e.OrderID, e.BulkAllocations,
	).Scan(&e.UpdatedAt)
	return notFound(err)
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ExpenseRepository) TotalsByCategory(ctx context.Context, from, to string) ([]models.CategoryTotal, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT category, COALESCE(SUM(amount), 0), COUNT(*)
		FROM expenses
		WHERE expense_date BETWEEN $1::date AND $2::date
		GROUP BY category
		ORDER BY 2 DESC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []models.CategoryTotal{}
	for rows.Next() {
		var t models.CategoryTotal
		if err := rows.Scan(&t.Category, &t.Total, &t.Count); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
