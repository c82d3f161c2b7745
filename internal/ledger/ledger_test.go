package ledger

import (
	"math"
	"testing"

	"catering-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRecompute(t *testing.T) {
	tests := []struct {
		name      string
		total     float64
		paid      float64
		remaining float64
		status    string
	}{
		{"nothing paid", 1000, 0, 1000, models.BillStatusPending},
		{"part paid", 1000, 250.5, 749.5, models.BillStatusPartial},
		{"fully paid", 1000, 1000, 0, models.BillStatusPaid},
		{"overpaid clamps", 1000, 1200, 0, models.BillStatusPaid},
		{"zero total is paid", 0, 0, 0, models.BillStatusPaid},
		{"float noise", 0.3, 0.1 + 0.2, 0, models.BillStatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recompute(tt.total, tt.paid)
			assert.Equal(t, tt.remaining, got.Remaining)
			assert.Equal(t, tt.status, got.Status)
		})
	}
}

func TestRecompute_Invariant(t *testing.T) {
	amounts := []float64{0, 0.01, 1, 99.99, 100, 250.75, 1000, 12345.67}
	for _, total := range amounts {
		for _, paid := range amounts {
			got := Recompute(total, paid)

			want := math.Max(0, Round(total-paid))
			assert.InDelta(t, want, got.Remaining, 0.001, "total=%v paid=%v", total, paid)

			switch {
			case got.Remaining == 0:
				assert.Equal(t, models.BillStatusPaid, got.Status)
			case paid > 0:
				assert.Equal(t, models.BillStatusPartial, got.Status)
			default:
				assert.Equal(t, models.BillStatusPending, got.Status)
			}
		}
	}
}

func TestSyncOrderToBill(t *testing.T) {
	o := &models.Order{TotalAmount: 5000}
	b := &models.Bill{TotalAmount: 1, PaidAmount: 2000}

	SyncOrderToBill(o, b)

	assert.Equal(t, 5000.0, b.TotalAmount)
	assert.Equal(t, 3000.0, b.RemainingAmount)
	assert.Equal(t, models.BillStatusPartial, b.Status)
	assert.Equal(t, 2000.0, o.AdvanceAmount)
	assert.Equal(t, 3000.0, o.RemainingAmount)
}

func TestOrderTotal(t *testing.T) {
	o := &models.Order{
		MealTypeAmounts: models.Sessions{
			"lunch":  {Date: "2026-11-01", Amount: 12000, Guests: 100},
			"dinner": {Date: "2026-11-01", Amount: 18000, Guests: 150},
		},
		Stalls:        []models.Stall{{Name: "chaat", Cost: 2500}, {Name: "juice", Cost: 1500}},
		TransportCost: 800,
		WaterCost:     400,
		Discount:      1200,
	}
	assert.Equal(t, 34000.0, OrderTotal(o))

	o.Discount = 100000
	assert.Equal(t, 0.0, OrderTotal(o), "total clamps at zero")
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(100, 100.01))
	assert.True(t, Equal(100, 99.995))
	assert.False(t, Equal(100, 100.02))
}
