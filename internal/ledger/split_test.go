package ledger

import (
	"testing"

	"catering-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weddingOrder() *models.Order {
	return &models.Order{
		ID:          7,
		OrderNumber: "ORD-000007",
		CustomerID:  3,
		EventName:   "Wedding",
		Status:      models.OrderStatusInProgress,
		Source:      models.OrderSourceAdmin,
		MealTypeAmounts: models.Sessions{
			"breakfast": {Date: "2026-12-01", Amount: 8000, Guests: 80},
			"lunch":     {Date: "2026-12-01", Amount: 15000, Guests: 120},
			"dinner":    {Date: "2026-12-02", Amount: 22000, Guests: 200},
		},
		Stalls:        []models.Stall{{Name: "dosa counter", Cost: 3000}},
		Services:      []string{"waiters"},
		TransportCost: 1500,
		WaterCost:     500,
		Discount:      2000,
	}
}

func TestPlanSplit_ByDate(t *testing.T) {
	order := weddingOrder()
	order.TotalAmount = OrderTotal(order)
	require.Equal(t, 48000.0, order.TotalAmount)

	plan, err := PlanSplit(order, 10000, ByDate("2026-12-02"))
	require.NoError(t, err)

	assert.False(t, plan.DeleteOriginal)
	assert.Equal(t, map[string]bool{"dinner": true}, plan.SeparatedKeys)

	// New order: separated sessions only, no advance.
	assert.Equal(t, 22000.0, plan.NewOrder.TotalAmount)
	assert.Equal(t, 0.0, plan.NewOrder.AdvanceAmount)
	assert.Equal(t, 22000.0, plan.NewOrder.RemainingAmount)
	assert.Equal(t, models.OrderStatusPending, plan.NewOrder.Status)
	require.NotNil(t, plan.NewOrder.SplitFromOrderID)
	assert.Equal(t, 7, *plan.NewOrder.SplitFromOrderID)
	assert.Zero(t, plan.CarriedPaid)

	// Original keeps fixed costs and the paid amount.
	assert.Len(t, plan.Original.MealTypeAmounts, 2)
	assert.Equal(t, 26000.0, plan.Original.TotalAmount)
	assert.Equal(t, 10000.0, plan.Original.AdvanceAmount)
	assert.Equal(t, 16000.0, plan.Original.RemainingAmount)

	// The caller's order is untouched.
	assert.Len(t, order.MealTypeAmounts, 3)
}

func TestPlanSplit_Reconciles(t *testing.T) {
	order := weddingOrder()
	order.TotalAmount = OrderTotal(order)

	for _, pred := range []Predicate{ByDate("2026-12-01"), ByKeys("dinner"), ByKeys("breakfast", "dinner")} {
		plan, err := PlanSplit(order, 0, pred)
		require.NoError(t, err)
		assert.InDelta(t, order.TotalAmount,
			plan.Original.TotalAmount+plan.NewOrder.TotalAmount, 0.01)
	}
}

func TestPlanSplit_RFC3339Dates(t *testing.T) {
	order := weddingOrder()
	order.MealTypeAmounts["dinner"] = models.MealSession{Date: "2026-12-01T18:30:00Z", Amount: 22000}

	plan, err := PlanSplit(order, 0, ByDate("2026-12-02"))
	require.NoError(t, err)
	assert.Contains(t, plan.SeparatedKeys, "dinner", "18:30 UTC is the next day in IST")
}

func TestPlanSplit_NothingMatches(t *testing.T) {
	_, err := PlanSplit(weddingOrder(), 0, ByKeys("snacks"))
	assert.ErrorIs(t, err, ErrNothingToSplit)
}

func TestPlanSplit_EmptiesOriginal(t *testing.T) {
	order := weddingOrder()
	order.TotalAmount = OrderTotal(order)

	plan, err := PlanSplit(order, 5000, ByKeys("breakfast", "lunch", "dinner"))
	require.NoError(t, err)

	assert.True(t, plan.DeleteOriginal)
	assert.Equal(t, 5000.0, plan.CarriedPaid)
	assert.Equal(t, order.TotalAmount, plan.NewOrder.TotalAmount)
	assert.Equal(t, 5000.0, plan.NewOrder.AdvanceAmount)
	assert.Equal(t, 43000.0, plan.NewOrder.RemainingAmount)
}

func TestSplitPlan_ItemsToMove(t *testing.T) {
	plan, err := PlanSplit(weddingOrder(), 0, ByKeys("lunch"))
	require.NoError(t, err)

	items := []*models.OrderItem{
		{ID: 1, SessionKey: "breakfast"},
		{ID: 2, SessionKey: "lunch"},
		{ID: 3, SessionKey: "lunch"},
		{ID: 4, SessionKey: ""},
	}
	assert.Equal(t, []int{2, 3}, plan.ItemsToMove(items))
}
