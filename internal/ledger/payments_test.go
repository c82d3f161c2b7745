package ledger

import (
	"testing"
	"time"

	"catering-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBill(total float64) *models.Bill {
	b := &models.Bill{TotalAmount: total}
	ApplyToBill(b)
	return b
}

func TestAppendPayment(t *testing.T) {
	b := newBill(10000)
	at := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)

	rec, err := AppendPayment(b, models.PaymentRecord{Amount: 4000, Source: models.PaymentSourceAdvance, Method: "cash", PaidAt: at})
	require.NoError(t, err)
	assert.Equal(t, 4000.0, rec.TotalPaid)
	assert.Equal(t, 6000.0, rec.Remaining)
	assert.Equal(t, models.BillStatusPartial, rec.Status)

	_, err = AppendPayment(b, models.PaymentRecord{Amount: 6500, Source: models.PaymentSourceAdmin, Method: "upi", PaidAt: at})
	require.NoError(t, err)

	assert.Equal(t, 10500.0, b.PaidAmount)
	assert.Equal(t, 0.0, b.RemainingAmount)
	assert.Equal(t, models.BillStatusPaid, b.Status)
	assert.Len(t, b.PaymentHistory, 2)

	_, err = AppendPayment(b, models.PaymentRecord{Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Len(t, b.PaymentHistory, 2)
}

func TestEditPayment(t *testing.T) {
	b := newBill(10000)
	AppendPayment(b, models.PaymentRecord{Amount: 3000, Method: "cash"})
	AppendPayment(b, models.PaymentRecord{Amount: 2000, Method: "cash"})
	AppendPayment(b, models.PaymentRecord{Amount: 5000, Method: "upi"})
	require.Equal(t, models.BillStatusPaid, b.Status)

	require.NoError(t, EditPayment(b, 1, 500, "bank_transfer", "corrected"))

	assert.Equal(t, 8500.0, b.PaidAmount)
	assert.Equal(t, 1500.0, b.RemainingAmount)
	assert.Equal(t, models.BillStatusPartial, b.Status)
	assert.True(t, b.PaymentHistory[1].Edited)
	assert.Equal(t, "bank_transfer", b.PaymentHistory[1].Method)
	// Running figures are re-derived for later entries too.
	assert.Equal(t, 3500.0, b.PaymentHistory[1].TotalPaid)
	assert.Equal(t, 8500.0, b.PaymentHistory[2].TotalPaid)
	assert.Equal(t, 1500.0, b.PaymentHistory[2].Remaining)

	assert.ErrorIs(t, EditPayment(b, 3, 100, "", ""), ErrPaymentOutOfRange)
	assert.ErrorIs(t, EditPayment(b, 0, -1, "", ""), ErrInvalidAmount)
}

func TestDeletePayment(t *testing.T) {
	b := newBill(1000)
	AppendPayment(b, models.PaymentRecord{Amount: 400})
	AppendPayment(b, models.PaymentRecord{Amount: 600})

	removed, err := DeletePayment(b, 0)
	require.NoError(t, err)
	assert.Equal(t, 400.0, removed.Amount)
	assert.Len(t, b.PaymentHistory, 1)
	assert.Equal(t, 600.0, b.PaidAmount)
	assert.Equal(t, 600.0, b.PaymentHistory[0].TotalPaid)
	assert.Equal(t, models.BillStatusPartial, b.Status)

	_, err = DeletePayment(b, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, b.PaidAmount)
	assert.Equal(t, models.BillStatusPending, b.Status)

	_, err = DeletePayment(b, 0)
	assert.ErrorIs(t, err, ErrPaymentOutOfRange)
}
