package services

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"catering-backend/internal/models"
	"catering-backend/internal/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() *models.Order {
	return &models.Order{
		ID:            1,
		OrderNumber:   "ORD-000001",
		CustomerName:  "Asha Verma",
		CustomerPhone: "9876543210",
		EventName:     "Engagement",
		Venue:         "Lake View Lawn",
		Status:        models.OrderStatusPending,
		MealTypeAmounts: models.Sessions{
			"dinner": {Date: "2026-03-15", Time: "19:30", Guests: 120, Amount: 36000},
			"lunch":  {Date: "2026-03-14", Guests: 80, Amount: 20000},
		},
		Stalls:        []models.Stall{{Name: "Chaat", Cost: 3000, Notes: "near gate"}},
		Services:      []string{"waiters"},
		TransportCost: 1500,
		Discount:      500,
		TotalAmount:   60000,
		Notes:         "Jain food for 10 guests",
		Items: []*models.OrderItem{
			{Name: "Paneer Tikka", SessionKey: "dinner", Quantity: 120},
		},
	}
}

func TestGenerateBillPDF(t *testing.T) {
	s := NewReportService(BusinessInfo{Name: "Annapurna Caterers", Phone: "0141-222333"})
	bill := &models.Bill{
		BillNumber:      "BILL-000001",
		TotalAmount:     60000,
		PaidAmount:      10000,
		RemainingAmount: 50000,
		Status:          models.BillStatusPartial,
		PaymentHistory: []models.PaymentRecord{
			{Amount: 10000, Source: models.PaymentSourceAdvance, Method: "cash", Note: "Advance at booking", PaidAt: time.Now()},
		},
	}

	out, err := s.GenerateBillPDF(bill, sampleOrder())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateOrderSheetPDF(t *testing.T) {
	out, err := NewReportService(BusinessInfo{}).GenerateOrderSheetPDF(sampleOrder())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestNewReportServiceDefaultsName(t *testing.T) {
	assert.Equal(t, "Catering Services", NewReportService(BusinessInfo{}).Business.Name)
}

func TestSortedByDate(t *testing.T) {
	assert.Equal(t, []string{"lunch", "dinner"}, sortedByDate(sampleOrder().MealTypeAmounts))
}

func TestExpensesCSV(t *testing.T) {
	orderID := 4
	day, err := timeutil.ParseInIST(timeutil.DateLayout, "2026-03-14")
	require.NoError(t, err)

	out, err := NewReportService(BusinessInfo{}).ExpensesCSV([]*models.Expense{
		{Category: "groceries", Description: "Vegetables", Vendor: "Mandi", PaymentMethod: "cash",
			Amount: 4500, ExpenseDate: day, OrderID: &orderID},
		{Category: "fuel", Amount: 900, ExpenseDate: day, PaymentMethod: "upi", BulkAllocations: []models.Allocation{
			{OrderID: 1, OrderNumber: "ORD-000001", Amount: 600},
			{OrderID: 2, Amount: 300},
		}},
	})
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Category", rows[0][2])
	assert.Equal(t, []string{"1", "2026-03-14", "groceries", "Vegetables", "Mandi", "cash", "4500.00", "4", ""}, rows[1])
	assert.Equal(t, "ORD-000001:600.00; 2:300.00", rows[2][8])
}

func TestDisplayDate(t *testing.T) {
	assert.Equal(t, "14-Mar-2026", displayDate("2026-03-14"))
	assert.Equal(t, "soon", displayDate("soon"))
}
