package ledger

import (
	"testing"

	"catering-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanMerge(t *testing.T) {
	primary := &models.Order{
		ID: 1, OrderNumber: "ORD-000001", CustomerID: 9,
		MealTypeAmounts: models.Sessions{"lunch": {Date: "2026-10-20", Amount: 10000}},
		Stalls:          []models.Stall{{Name: "pani puri", Cost: 1000}},
		Services:        []string{"waiters", "crockery"},
		TransportCost:   500, WaterCost: 200, Discount: 100,
		TotalAmount: 11600, AdvanceAmount: 3000,
	}
	second := &models.Order{
		ID: 2, OrderNumber: "ORD-000002", CustomerID: 9,
		MealTypeAmounts: models.Sessions{
			"lunch":  {Date: "2026-10-21", Amount: 9000},
			"dinner": {Date: "2026-10-21", Amount: 14000},
		},
		Services:    []string{"crockery", "decor"},
		TotalAmount: 23000, AdvanceAmount: 2000,
	}
	third := &models.Order{
		ID: 3, OrderNumber: "ORD-000003", CustomerID: 9,
		MealTypeAmounts: models.Sessions{"lunch": {Date: "2026-10-22", Amount: 7000}},
		Stalls:          []models.Stall{{Name: "ice cream", Cost: 1500}},
		TransportCost:   300,
		TotalAmount:     8800,
	}

	plan, err := PlanMerge(
		MergeInput{Order: primary, Paid: 3000},
		[]MergeInput{{Order: second, Paid: 2000}, {Order: third, Paid: 0}},
	)
	require.NoError(t, err)
	m := plan.Order

	// Totals and advances move by exactly the secondaries' sums.
	assert.Equal(t, 23000.0+8800.0, m.TotalAmount-primary.TotalAmount)
	assert.Equal(t, 2000.0, plan.AbsorbedPaid)
	assert.Equal(t, 5000.0, plan.Paid)
	assert.Equal(t, 5000.0, m.AdvanceAmount)
	assert.Equal(t, 43400.0-5000.0, m.RemainingAmount)
	assert.Equal(t, 800.0, m.TransportCost)

	// Sessions: colliding keys renamed with the smallest free suffix.
	assert.Len(t, m.MealTypeAmounts, 4)
	assert.Equal(t, "2026-10-20", m.MealTypeAmounts["lunch"].Date)
	assert.Equal(t, "2026-10-21", m.MealTypeAmounts["lunch_2"].Date)
	assert.Equal(t, "2026-10-22", m.MealTypeAmounts["lunch_3"].Date)
	assert.Equal(t, "lunch_2", plan.SessionKeyFor(2, "lunch"))
	assert.Equal(t, "dinner", plan.SessionKeyFor(2, "dinner"))
	assert.Equal(t, "lunch_3", plan.SessionKeyFor(3, "lunch"))

	assert.Equal(t, []string{"waiters", "crockery", "decor"}, m.Services)
	assert.Len(t, m.Stalls, 2)
	assert.Contains(t, m.Notes, "ORD-000002, ORD-000003")

	// Inputs are not mutated.
	assert.Len(t, primary.MealTypeAmounts, 1)
	assert.Len(t, primary.Stalls, 1)
}

func TestPlanMerge_Rejects(t *testing.T) {
	a := &models.Order{ID: 1, CustomerID: 1}
	b := &models.Order{ID: 2, CustomerID: 1}
	other := &models.Order{ID: 3, CustomerID: 2}

	_, err := PlanMerge(MergeInput{Order: a}, nil)
	assert.ErrorIs(t, err, ErrNoSecondaries)

	_, err = PlanMerge(MergeInput{Order: a}, []MergeInput{{Order: a}})
	assert.ErrorIs(t, err, ErrDuplicateOrder)

	_, err = PlanMerge(MergeInput{Order: a}, []MergeInput{{Order: b}, {Order: b}})
	assert.ErrorIs(t, err, ErrDuplicateOrder)

	_, err = PlanMerge(MergeInput{Order: a}, []MergeInput{{Order: other}})
	assert.ErrorIs(t, err, ErrCustomerMismatch)
}
