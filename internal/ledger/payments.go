package ledger

import (
	"errors"

	"catering-backend/internal/models"
)

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrPaymentOutOfRange = errors.New("payment entry not found")
)

// AppendPayment adds an entry to the bill's payment log and recomputes the
// bill. The entry records the bill figures right after it was applied.
func AppendPayment(b *models.Bill, rec models.PaymentRecord) (models.PaymentRecord, error) {
	if rec.Amount <= 0 {
		return rec, ErrInvalidAmount
	}
	rec.Amount = Round(rec.Amount)
	b.PaidAmount = Sum(b.PaidAmount, rec.Amount)
	t := ApplyToBill(b)

	rec.TotalPaid = t.Paid
	rec.Remaining = t.Remaining
	rec.Status = t.Status
	b.PaymentHistory = append(b.PaymentHistory, rec)
	return rec, nil
}

// RebuildHistory re-derives the running figures of every log entry against
// the bill's current total and sets the paid amount to the log's sum.
func RebuildHistory(b *models.Bill) {
	running := 0.0
	for i := range b.PaymentHistory {
		running = Sum(running, b.PaymentHistory[i].Amount)
		t := Recompute(b.TotalAmount, running)
		b.PaymentHistory[i].TotalPaid = t.Paid
		b.PaymentHistory[i].Remaining = t.Remaining
		b.PaymentHistory[i].Status = t.Status
	}
	b.PaidAmount = running
	ApplyToBill(b)
}

// EditPayment changes the amount (and optionally method/note) of one entry.
func EditPayment(b *models.Bill, index int, amount float64, method, note string) error {
	if index < 0 || index >= len(b.PaymentHistory) {
		return ErrPaymentOutOfRange
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	entry := &b.PaymentHistory[index]
	entry.Amount = Round(amount)
	if method != "" {
		entry.Method = method
	}
	if note != "" {
		entry.Note = note
	}
	entry.Edited = true
	RebuildHistory(b)
	return nil
}

// DeletePayment removes one entry and recomputes the bill.
func DeletePayment(b *models.Bill, index int) (models.PaymentRecord, error) {
	if index < 0 || index >= len(b.PaymentHistory) {
		return models.PaymentRecord{}, ErrPaymentOutOfRange
	}
	removed := b.PaymentHistory[index]
	b.PaymentHistory = append(b.PaymentHistory[:index:index], b.PaymentHistory[index+1:]...)
	RebuildHistory(b)
	return removed, nil
}
