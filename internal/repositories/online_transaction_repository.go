package repositories

import (
	"context"

	"catering-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OnlineTransactionRepository struct {
	DB DBTX
}

func NewOnlineTransactionRepository(db *pgxpool.Pool) *OnlineTransactionRepository {
	return &OnlineTransactionRepository{DB: db}
}

func (r *OnlineTransactionRepository) WithTx(tx pgx.Tx) *OnlineTransactionRepository {
	return &OnlineTransactionRepository{DB: tx}
}

const onlineTxColumns = `id, razorpay_order_id, razorpay_payment_id, bill_id, customer_id, amount,
	method, status, failure_reason, created_at, updated_at`

func scanOnlineTx(row pgx.Row) (*models.OnlineTransaction, error) {
	var t models.OnlineTransaction
	err := row.Scan(&t.ID, &t.RazorpayOrderID, &t.RazorpayPaymentID, &t.BillID, &t.CustomerID, &t.Amount,
		&t.Method, &t.Status, &t.FailureReason, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// Create inserts a new pending online transaction
func (r *OnlineTransactionRepository) Create(ctx context.Context, t *models.OnlineTransaction) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO online_transactions (razorpay_order_id, bill_id, customer_id, amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		t.RazorpayOrderID, t.BillID, t.CustomerID, t.Amount, t.Status,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *OnlineTransactionRepository) GetByRazorpayOrderID(ctx context.Context, orderID string) (*models.OnlineTransaction, error) {
	return scanOnlineTx(r.DB.QueryRow(ctx,
		`SELECT `+onlineTxColumns+` FROM online_transactions WHERE razorpay_order_id = $1`, orderID))
}

// MarkSuccess only transitions pending rows, so a replayed verification is a no-op.
func (r *OnlineTransactionRepository) MarkSuccess(ctx context.Context, id int, paymentID, method string) (bool, error) {
	tag, err := r.DB.Exec(ctx, `
		UPDATE online_transactions
		SET status = 'success', razorpay_payment_id = $2, method = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`, id, paymentID, method)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *OnlineTransactionRepository) MarkFailed(ctx context.Context, id int, reason string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE online_transactions
		SET status = 'failed', failure_reason = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`, id, reason)
	return err
}

func (r *OnlineTransactionRepository) ListByCustomer(ctx context.Context, customerID int) ([]*models.OnlineTransaction, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+onlineTxColumns+` FROM online_transactions WHERE customer_id = $1 ORDER BY created_at DESC`,
		customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := []*models.OnlineTransaction{}
	for rows.Next() {
		t, err := scanOnlineTx(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}
