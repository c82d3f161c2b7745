package services

import (
	"context"
	"testing"

	"catering-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsOn(t *testing.T) {
	orders := []*models.Order{
		{ID: 1, OrderNumber: "ORD-000001", CustomerName: "Asha", Venue: "Hall A", MealTypeAmounts: models.Sessions{
			"lunch":  {Date: "2026-03-14", Guests: 40},
			"dinner": {Date: "2026-03-15", Guests: 60},
		}},
		{ID: 2, OrderNumber: "ORD-000002", CustomerName: "Ravi", Venue: "Farmhouse", MealTypeAmounts: models.Sessions{
			"hi-tea": {Date: "2026-03-15", Time: "17:00", Guests: 30},
		}},
	}

	got := sessionsOn(orders, "2026-03-15")
	require.Len(t, got, 2)
	assert.Equal(t, "dinner", got[0].SessionKey)
	assert.Equal(t, "ORD-000002", got[1].OrderNumber)
	assert.Equal(t, "Farmhouse", got[1].Venue)

	assert.Empty(t, sessionsOn(orders, "2026-03-20"))
}

func TestReminderBody(t *testing.T) {
	body := reminderBody("2026-03-15", []models.UpcomingEvent{
		{OrderNumber: "ORD-000002", SessionKey: "hi-tea", CustomerName: "Ravi", Venue: "Farmhouse", Guests: 30, Time: "17:00"},
		{OrderNumber: "ORD-000001", SessionKey: "dinner", CustomerName: "Asha", Venue: "Hall A", Guests: 60},
	})

	assert.Contains(t, body, "15-Mar-2026")
	assert.Contains(t, body, "- ORD-000002 hi-tea (Ravi): Farmhouse, 30 guests at 17:00\n")
	assert.Contains(t, body, "- ORD-000001 dinner (Asha): Hall A, 60 guests\n")
}

func TestDueMessage(t *testing.T) {
	d := models.CustomerDue{Name: "Ravi", Due: 1500.5}
	assert.Equal(t, "Dear Ravi, your pending balance with Annapurna is Rs.1500.50. Please clear the dues at your earliest. Thank you!",
		dueMessage("Annapurna", "", d))
	assert.Equal(t, "Hi Ravi, Rs.1500.50 due", dueMessage("Annapurna", "Hi {name}, Rs.{due} due", d))
}

func TestSendPaymentRemindersRejectsNegativeThreshold(t *testing.T) {
	s := &NotificationService{}
	_, err := s.SendPaymentReminders(context.Background(), &models.PaymentReminderRequest{MinDue: -1})
	assert.ErrorIs(t, err, ErrValidation)
}
