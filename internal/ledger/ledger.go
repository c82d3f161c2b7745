// Package ledger holds the money rules shared by orders and bills: the
// total/paid/remaining/status recompute, session partitioning for splits,
// order merging, the payment log and bulk allocation checks.
//
// Everything here is pure. Callers load records, run a plan and persist the
// result inside one database transaction.
package ledger

import (
	"catering-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Tolerance is the largest difference treated as equal when comparing money.
var Tolerance = decimal.New(1, -2)

// Totals is the derived triple persisted together on orders and bills.
type Totals struct {
	Total     float64
	Paid      float64
	Remaining float64
	Status    string
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// Round rounds an amount to paise.
func Round(v float64) float64 {
	return dec(v).InexactFloat64()
}

// Recompute derives remaining and status from total and paid:
// remaining = max(0, total - paid); status is paid when nothing remains,
// partial when something was paid, pending otherwise.
func Recompute(total, paid float64) Totals {
	t := dec(total)
	p := dec(paid)

	remaining := t.Sub(p)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	status := models.BillStatusPending
	switch {
	case !remaining.IsPositive():
		status = models.BillStatusPaid
	case p.IsPositive():
		status = models.BillStatusPartial
	}

	return Totals{
		Total:     t.InexactFloat64(),
		Paid:      p.InexactFloat64(),
		Remaining: remaining.InexactFloat64(),
		Status:    status,
	}
}

// ApplyToBill recomputes the bill's remaining amount and status in place.
func ApplyToBill(b *models.Bill) Totals {
	t := Recompute(b.TotalAmount, b.PaidAmount)
	b.TotalAmount = t.Total
	b.PaidAmount = t.Paid
	b.RemainingAmount = t.Remaining
	b.Status = t.Status
	return t
}

// ApplyToOrder recomputes the order's remaining amount from its advance.
func ApplyToOrder(o *models.Order) Totals {
	t := Recompute(o.TotalAmount, o.AdvanceAmount)
	o.TotalAmount = t.Total
	o.AdvanceAmount = t.Paid
	o.RemainingAmount = t.Remaining
	return t
}

// SyncOrderToBill makes the bill mirror the order total and the order mirror
// the bill's paid amount, recomputing both sides.
func SyncOrderToBill(o *models.Order, b *models.Bill) {
	b.TotalAmount = o.TotalAmount
	ApplyToBill(b)
	o.AdvanceAmount = b.PaidAmount
	ApplyToOrder(o)
}

// Equal reports whether two amounts match within Tolerance.
func Equal(a, b float64) bool {
	return dec(a).Sub(dec(b)).Abs().LessThanOrEqual(Tolerance)
}

// Sum adds amounts with decimal precision.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(dec(v))
	}
	return total.InexactFloat64()
}
