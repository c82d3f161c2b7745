package repositories

import (
	"context"

	"catering-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BillRepository struct {
	DB DBTX
}

func NewBillRepository(db *pgxpool.Pool) *BillRepository {
	return &BillRepository{DB: db}
}

func (r *BillRepository) WithTx(tx pgx.Tx) *BillRepository {
	return &BillRepository{DB: tx}
}

const billSelect = `
	SELECT b.id, b.bill_number, b.order_id, b.customer_id, c.name, o.order_number,
		b.total_amount, b.paid_amount, b.remaining_amount, b.status,
		b.payment_history, b.document_key, b.created_at, b.updated_at
	FROM bills b
	JOIN customers c ON c.id = b.customer_id
	JOIN orders o ON o.id = b.order_id`

func scanBill(row pgx.Row) (*models.Bill, error) {
	var b models.Bill
	err := row.Scan(&b.ID, &b.BillNumber, &b.OrderID, &b.CustomerID, &b.CustomerName, &b.OrderNumber,
		&b.TotalAmount, &b.PaidAmount, &b.RemainingAmount, &b.Status,
		&b.PaymentHistory, &b.DocumentKey, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if b.PaymentHistory == nil {
		b.PaymentHistory = []models.PaymentRecord{}
	}
	return &b, nil
}

// Create inserts the bill and assigns the next BILL- number.
func (r *BillRepository) Create(ctx context.Context, b *models.Bill) error {
	if b.PaymentHistory == nil {
		b.PaymentHistory = []models.PaymentRecord{}
	}
	return r.DB.QueryRow(ctx, `
		INSERT INTO bills (bill_number, order_id, customer_id, total_amount, paid_amount,
			remaining_amount, status, payment_history)
		VALUES ('BILL-' || LPAD(nextval('bill_number_seq')::text, 6, '0'), $1, $2, $3, $4, $5, $6, $7)
		RETURNING id, bill_number, created_at, updated_at`,
		b.OrderID, b.CustomerID, b.TotalAmount, b.PaidAmount, b.RemainingAmount, b.Status, b.PaymentHistory,
	).Scan(&b.ID, &b.BillNumber, &b.CreatedAt, &b.UpdatedAt)
}

func (r *BillRepository) Get(ctx context.Context, id int) (*models.Bill, error) {
	return scanBill(r.DB.QueryRow(ctx, billSelect+` WHERE b.id = $1`, id))
}

func (r *BillRepository) GetByOrderID(ctx context.Context, orderID int) (*models.Bill, error) {
	return scanBill(r.DB.QueryRow(ctx, billSelect+` WHERE b.order_id = $1`, orderID))
}

func (r *BillRepository) List(ctx context.Context, filter models.BillFilter) ([]*models.Bill, error) {
	var f filterBuilder
	if filter.Status != "" {
		f.add("b.status = $%d", filter.Status)
	}
	if filter.CustomerID > 0 {
		f.add("b.customer_id = $%d", filter.CustomerID)
	}

	rows, err := r.DB.Query(ctx,
		billSelect+" "+f.where()+" ORDER BY b.created_at DESC"+f.page(filter.Limit, filter.Offset), f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bills := []*models.Bill{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// Update persists the amounts, status, customer and payment log.
func (r *BillRepository) Update(ctx context.Context, b *models.Bill) error {
	if b.PaymentHistory == nil {
		b.PaymentHistory = []models.PaymentRecord{}
	}
	return r.DB.QueryRow(ctx, `
		UPDATE bills SET customer_id = $2, total_amount = $3, paid_amount = $4,
			remaining_amount = $5, status = $6, payment_history = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		b.ID, b.CustomerID, b.TotalAmount, b.PaidAmount, b.RemainingAmount, b.Status, b.PaymentHistory,
	).Scan(&b.UpdatedAt)
}

func (r *BillRepository) SetDocumentKey(ctx context.Context, id int, key string) error {
	_, err := r.DB.Exec(ctx, `UPDATE bills SET document_key = $2, updated_at = NOW() WHERE id = $1`, id, key)
	return err
}

func (r *BillRepository) DeleteByOrderID(ctx context.Context, orderID int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM bills WHERE order_id = $1`, orderID)
	return err
}

// CustomersWithDues sums the remaining amount of unsettled bills per
// customer, keeping customers owing at least minDue.
func (r *BillRepository) CustomersWithDues(ctx context.Context, minDue float64) ([]models.CustomerDue, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT c.id, c.name, c.phone, SUM(b.remaining_amount), COUNT(*)
		FROM bills b
		JOIN customers c ON c.id = b.customer_id
		WHERE b.remaining_amount > 0
		GROUP BY c.id, c.name, c.phone
		HAVING SUM(b.remaining_amount) >= $1
		ORDER BY SUM(b.remaining_amount) DESC`, minDue)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dues := []models.CustomerDue{}
	for rows.Next() {
		var d models.CustomerDue
		if err := rows.Scan(&d.CustomerID, &d.Name, &d.Phone, &d.Due, &d.OpenBills); err != nil {
			return nil, err
		}
		dues = append(dues, d)
	}
	return dues, rows.Err()
}
