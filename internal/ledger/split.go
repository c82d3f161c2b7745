package ledger

import (
	"errors"
	"fmt"

	"catering-backend/internal/models"
)

var ErrNothingToSplit = errors.New("no sessions match the split criteria")

// SplitPlan is the outcome of separating sessions from an order.
type SplitPlan struct {
	// Original carries the kept sessions and recomputed totals. When
	// DeleteOriginal is set it must be removed together with its bill.
	Original       *models.Order
	DeleteOriginal bool

	// NewOrder owns the separated sessions. It has no ID yet.
	NewOrder *models.Order
	// CarriedPaid is the paid amount moved to NewOrder, non-zero only when
	// the original is deleted.
	CarriedPaid float64

	SeparatedKeys map[string]bool
}

// PlanSplit partitions order's sessions with pred. paid is what the order's
// bill has collected so far.
//
// The separated sessions form a new order with a total computed from those
// sessions alone and zero advance. The original keeps its fixed costs,
// discount and paid amount, and its total is recomputed from the remaining
// sessions. If nothing remains, the new order takes over the original's fixed
// costs, discount and paid amount so no money disappears with the deleted
// order.
func PlanSplit(order *models.Order, paid float64, pred Predicate) (*SplitPlan, error) {
	kept, separated := Partition(order.MealTypeAmounts, pred)
	if len(separated) == 0 {
		return nil, ErrNothingToSplit
	}

	original := *order
	original.MealTypeAmounts = kept
	original.Items = nil

	splitFrom := order.ID
	newOrder := &models.Order{
		CustomerID:       order.CustomerID,
		CustomerName:     order.CustomerName,
		CustomerPhone:    order.CustomerPhone,
		EventName:        order.EventName,
		Venue:            order.Venue,
		Status:           models.OrderStatusPending,
		Source:           order.Source,
		MealTypeAmounts:  separated,
		Stalls:           []models.Stall{},
		Services:         []string{},
		Notes:            fmt.Sprintf("Split from %s", order.OrderNumber),
		SplitFromOrderID: &splitFrom,
		CreatedBy:        order.CreatedBy,
	}

	plan := &SplitPlan{
		Original:      &original,
		NewOrder:      newOrder,
		SeparatedKeys: make(map[string]bool, len(separated)),
	}
	for k := range separated {
		plan.SeparatedKeys[k] = true
	}

	if len(kept) == 0 {
		plan.DeleteOriginal = true
		newOrder.Stalls = order.Stalls
		newOrder.Services = order.Services
		newOrder.TransportCost = order.TransportCost
		newOrder.WaterCost = order.WaterCost
		newOrder.Discount = order.Discount
		newOrder.TotalAmount = OrderTotal(newOrder)
		newOrder.AdvanceAmount = paid
		plan.CarriedPaid = Round(paid)
		ApplyToOrder(newOrder)
		return plan, nil
	}

	newOrder.TotalAmount = SessionsTotal(separated)
	newOrder.AdvanceAmount = 0
	ApplyToOrder(newOrder)

	original.TotalAmount = OrderTotal(&original)
	original.AdvanceAmount = paid
	ApplyToOrder(&original)

	return plan, nil
}

// ItemsToMove returns the ids of items attached to the separated sessions.
func (p *SplitPlan) ItemsToMove(items []*models.OrderItem) []int {
	var ids []int
	for _, it := range items {
		if p.SeparatedKeys[it.SessionKey] {
			ids = append(ids, it.ID)
		}
	}
	return ids
}
