package services

import (
	"testing"

	"catering-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestWithProfit(t *testing.T) {
	rows := withProfit([]models.OrderProfit{
		{OrderID: 1, Revenue: 1000, Expenses: 300, WorkforceCost: 200},
		{OrderID: 2, Revenue: 0, Expenses: 150},
		{OrderID: 3, Revenue: 3000, Expenses: 1000},
	})

	assert.Equal(t, 500.0, rows[0].Profit)
	assert.Equal(t, 50.0, rows[0].Margin)
	assert.Equal(t, -150.0, rows[1].Profit)
	assert.Equal(t, 0.0, rows[1].Margin)
	assert.Equal(t, 2000.0, rows[2].Profit)
	assert.Equal(t, 66.67, rows[2].Margin)
}

func TestGuestsBetween(t *testing.T) {
	orders := []*models.Order{
		{MealTypeAmounts: models.Sessions{
			"lunch":  {Date: "2026-03-01", Guests: 50},
			"dinner": {Date: "2026-04-02", Guests: 70},
		}},
		{MealTypeAmounts: models.Sessions{
			"breakfast": {Date: "2026-03-31", Guests: 25},
		}},
	}
	assert.Equal(t, 75, guestsBetween(orders, "2026-03-01", "2026-03-31"))
	assert.Equal(t, 0, guestsBetween(nil, "2026-03-01", "2026-03-31"))
}
