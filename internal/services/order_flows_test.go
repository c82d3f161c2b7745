package services

import (
	"context"
	"testing"

	"catering-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitByDateMovesWholeOrder(t *testing.T) {
	ctx := context.Background()
	m := newMemDB()
	o := m.addOrder(&models.Order{
		ID:         1,
		CustomerID: 7,
		MealTypeAmounts: models.Sessions{
			"lunch": {Date: "2026-11-01", Amount: 10000, Guests: 80},
		},
		Stalls:        []models.Stall{},
		Services:      []string{"waiters"},
		TransportCost: 500,
	})
	m.addBill(1, o, 3000)
	m.addItem(11, 1, "lunch")
	m.addItem(12, 1, "")

	s := &OrderService{runTx: m.runner()}
	res, err := s.SplitByDate(ctx, Actor{}, 1, "2026-11-01")
	require.NoError(t, err)

	assert.True(t, res.OriginalDeleted)
	assert.Equal(t, 2, res.MovedItems)
	assert.NotContains(t, m.orders, 1)
	assert.Nil(t, m.billFor(1))

	newID := res.NewOrder.ID
	require.Contains(t, m.orders, newID)
	assert.Nil(t, res.NewOrder.SplitFromOrderID)
	assert.Equal(t, 10500.0, m.orders[newID].TotalAmount, "fixed costs follow the sessions")
	assert.Equal(t, 3000.0, m.orders[newID].AdvanceAmount)
	assert.Equal(t, []string{"waiters"}, m.orders[newID].Services)

	nb := m.billFor(newID)
	require.NotNil(t, nb)
	assert.Equal(t, 3000.0, nb.PaidAmount)
	assert.Equal(t, 7500.0, nb.RemainingAmount)
	require.Len(t, nb.PaymentHistory, 1)
	assert.Equal(t, models.PaymentSourceSplit, nb.PaymentHistory[0].Source)
	assert.Equal(t, "carried", nb.PaymentHistory[0].Method)

	for _, it := range m.items {
		assert.Equal(t, newID, it.OrderID)
	}
	assert.Equal(t, [][2]int{{1, newID}}, m.relinked)
}

func TestSplitBySessionKeepsOriginal(t *testing.T) {
	ctx := context.Background()
	m := newMemDB()
	o := m.addOrder(&models.Order{
		ID:         1,
		CustomerID: 7,
		MealTypeAmounts: models.Sessions{
			"lunch":  {Date: "2026-11-01", Amount: 6000},
			"dinner": {Date: "2026-11-02", Amount: 4000},
		},
	})
	m.addBill(1, o, 2000)
	m.addItem(11, 1, "lunch")
	m.addItem(12, 1, "dinner")

	s := &OrderService{runTx: m.runner()}
	res, err := s.SplitBySession(ctx, Actor{}, 1, []string{"dinner"})
	require.NoError(t, err)

	assert.False(t, res.OriginalDeleted)
	assert.Equal(t, 1, res.MovedItems)

	orig := m.orders[1]
	require.NotNil(t, orig)
	assert.Equal(t, 6000.0, orig.TotalAmount)
	assert.Equal(t, 2000.0, orig.AdvanceAmount)
	assert.Equal(t, 4000.0, orig.RemainingAmount)
	assert.NotContains(t, orig.MealTypeAmounts, "dinner")
	assert.Equal(t, 6000.0, m.bills[1].TotalAmount)
	assert.Equal(t, 2000.0, m.bills[1].PaidAmount)

	newID := res.NewOrder.ID
	assert.Equal(t, 4000.0, m.orders[newID].TotalAmount)
	assert.Equal(t, 0.0, m.orders[newID].AdvanceAmount)
	require.NotNil(t, m.orders[newID].SplitFromOrderID)
	assert.Equal(t, 1, *m.orders[newID].SplitFromOrderID)
	assert.Equal(t, 0.0, m.billFor(newID).PaidAmount)

	assert.Equal(t, 1, m.items[11].OrderID)
	assert.Equal(t, newID, m.items[12].OrderID)
	assert.Empty(t, m.relinked, "costs stay with a surviving original")
}

func TestSplitRejectsClosedOrders(t *testing.T) {
	ctx := context.Background()
	for _, status := range []string{models.OrderStatusCompleted, models.OrderStatusCancelled} {
		t.Run(status, func(t *testing.T) {
			m := newMemDB()
			o := m.addOrder(&models.Order{
				ID:              1,
				CustomerID:      7,
				Status:          status,
				MealTypeAmounts: models.Sessions{"lunch": {Date: "2026-11-01", Amount: 1000}},
			})
			m.addBill(1, o)

			s := &OrderService{runTx: m.runner()}
			_, err := s.SplitByDate(ctx, Actor{}, 1, "2026-11-01")
			assert.ErrorIs(t, err, ErrValidation)
			_, err = s.SplitBySession(ctx, Actor{}, 1, []string{"lunch"})
			assert.ErrorIs(t, err, ErrValidation)
			assert.Len(t, m.orders, 1)
			assert.Len(t, m.bills, 1)
		})
	}
}

func TestUpdateOrderRejectsClosedOrders(t *testing.T) {
	ctx := context.Background()
	for _, status := range []string{models.OrderStatusCompleted, models.OrderStatusCancelled} {
		t.Run(status, func(t *testing.T) {
			m := newMemDB()
			o := m.addOrder(&models.Order{
				ID:              1,
				CustomerID:      7,
				Status:          status,
				MealTypeAmounts: models.Sessions{"lunch": {Date: "2026-11-01", Amount: 1000}},
			})
			m.addBill(1, o)

			s := &OrderService{runTx: m.runner()}
			_, err := s.UpdateOrder(ctx, Actor{}, 1, &models.UpdateOrderRequest{
				MealTypeAmounts: models.Sessions{"lunch": {Date: "2026-11-01", Amount: 5000}},
			})
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, 1000.0, m.orders[1].TotalAmount)
		})
	}
}

func TestMergeOrders(t *testing.T) {
	ctx := context.Background()
	m := newMemDB()
	m.addOrder(&models.Order{
		ID:              1,
		CustomerID:      7,
		MealTypeAmounts: models.Sessions{"lunch": {Date: "2026-11-01", Amount: 1000}},
	})
	o2 := m.addOrder(&models.Order{
		ID:              2,
		CustomerID:      7,
		MealTypeAmounts: models.Sessions{"lunch": {Date: "2026-11-02", Amount: 2000}},
	})
	o3 := m.addOrder(&models.Order{
		ID:              3,
		CustomerID:      7,
		MealTypeAmounts: models.Sessions{"dinner": {Date: "2026-11-02", Amount: 1500}},
	})
	m.addBill(2, o2, 500)
	m.addBill(3, o3)
	m.addItem(21, 2, "lunch")
	m.addItem(31, 3, "dinner")

	s := &OrderService{runTx: m.runner()}
	res, err := s.MergeOrders(ctx, Actor{}, &models.MergeOrdersRequest{PrimaryOrderID: 1, SecondaryOrderIDs: []int{2, 3}})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3}, res.DeletedOrderIDs)
	assert.Equal(t, 2, res.MovedItems)
	assert.Len(t, m.orders, 1)
	assert.Nil(t, m.billFor(2))
	assert.Nil(t, m.billFor(3))

	merged := m.orders[1]
	assert.Equal(t, 4500.0, merged.TotalAmount)
	assert.Equal(t, 500.0, merged.AdvanceAmount)
	assert.ElementsMatch(t, []string{"lunch", "lunch_2", "dinner"}, keysOf(merged.MealTypeAmounts))

	assert.Equal(t, "lunch_2", m.items[21].SessionKey)
	assert.Equal(t, 1, m.items[21].OrderID)
	assert.Equal(t, "dinner", m.items[31].SessionKey)
	assert.Equal(t, map[string]string{"ORD-000002/lunch": "lunch_2"}, res.RenamedSessions)

	bill := m.billFor(1)
	require.NotNil(t, bill, "primary bill is created when missing")
	assert.Equal(t, 4500.0, bill.TotalAmount)
	assert.Equal(t, 500.0, bill.PaidAmount)
	require.Len(t, bill.PaymentHistory, 1)
	assert.Equal(t, models.PaymentSourceMerge, bill.PaymentHistory[0].Source)
	assert.Equal(t, "BILL-000002,BILL-000003", bill.PaymentHistory[0].Reference)

	assert.Equal(t, [][2]int{{2, 1}, {3, 1}}, m.relinked)
}

func TestMergeRejectsCancelledOrder(t *testing.T) {
	ctx := context.Background()
	m := newMemDB()
	m.addOrder(&models.Order{ID: 1, CustomerID: 7, MealTypeAmounts: models.Sessions{"lunch": {Date: "2026-11-01", Amount: 1000}}})
	m.addOrder(&models.Order{ID: 2, CustomerID: 7, Status: models.OrderStatusCancelled,
		MealTypeAmounts: models.Sessions{"dinner": {Date: "2026-11-01", Amount: 1000}}})

	s := &OrderService{runTx: m.runner()}
	_, err := s.MergeOrders(ctx, Actor{}, &models.MergeOrdersRequest{PrimaryOrderID: 1, SecondaryOrderIDs: []int{2}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.MergeOrders(ctx, Actor{}, &models.MergeOrdersRequest{PrimaryOrderID: 1, SecondaryOrderIDs: []int{9}})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, m.orders, 2)
	assert.Empty(t, m.relinked)
}

func TestPaymentChangesSyncOrderAdvance(t *testing.T) {
	ctx := context.Background()
	m := newMemDB()
	o := m.addOrder(&models.Order{ID: 1, CustomerID: 7, MealTypeAmounts: models.Sessions{"lunch": {Date: "2026-11-01", Amount: 5000}}})
	m.addBill(1, o, 1000, 500)

	s := &BillService{runTx: m.runner()}

	b, err := s.EditPayment(ctx, Actor{}, 1, 1, &models.EditPaymentRequest{Amount: 800})
	require.NoError(t, err)
	assert.Equal(t, 1800.0, b.PaidAmount)
	assert.Equal(t, [2]float64{1800, 3200}, m.advances[1])
	assert.True(t, m.bills[1].PaymentHistory[1].Edited)

	b, err = s.DeletePayment(ctx, Actor{}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 800.0, b.PaidAmount)
	assert.Equal(t, [2]float64{800, 4200}, m.advances[1])
	assert.Equal(t, 800.0, m.orders[1].AdvanceAmount)
	require.Len(t, m.bills[1].PaymentHistory, 1)
	assert.Equal(t, 800.0, m.bills[1].PaymentHistory[0].TotalPaid)

	_, err = s.DeletePayment(ctx, Actor{}, 1, 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordPaymentSyncsOrderAdvance(t *testing.T) {
	ctx := context.Background()
	m := newMemDB()
	o := m.addOrder(&models.Order{ID: 1, CustomerID: 7, MealTypeAmounts: models.Sessions{"lunch": {Date: "2026-11-01", Amount: 5000}}})
	m.addBill(1, o)

	s := &BillService{runTx: m.runner()}
	b, err := s.RecordPayment(ctx, Actor{}, 1, &models.RecordPaymentRequest{Amount: 5000, Method: "upi"})
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusPaid, b.Status)
	assert.Equal(t, [2]float64{5000, 0}, m.advances[1])
}

func keysOf(s models.Sessions) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}
