package services

import (
	"context"
	"time"

	"catering-backend/internal/ledger"
	"catering-backend/internal/models"
	"catering-backend/internal/timeutil"
)

// orderLookup resolves order ids to order numbers.
type orderLookup interface {
	ExistingIDs(ctx context.Context, ids []int) (map[int]string, error)
}

// checkAllocations validates a cost record's order link. A record is linked
// to a single order or spread over several, never both. Allocations get their
// order numbers filled in.
func checkAllocations(ctx context.Context, orders orderLookup, amount float64, orderID *int, allocs []models.Allocation) ([]models.Allocation, error) {
	if orderID != nil && *orderID <= 0 {
		orderID = nil
	}
	if orderID != nil && len(allocs) > 0 {
		return nil, invalid("use either order_id or bulk_allocations, not both")
	}
	if err := ledger.ValidateAllocations(amount, allocs); err != nil {
		return nil, invalid("%v", err)
	}

	ids := ledger.AllocationOrderIDs(allocs)
	if orderID != nil {
		ids = append(ids, *orderID)
	}
	if len(ids) == 0 {
		return []models.Allocation{}, nil
	}

	existing, err := orders.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := existing[id]; !ok {
			return nil, invalid("order %d does not exist", id)
		}
	}

	out := make([]models.Allocation, len(allocs))
	for i, a := range allocs {
		a.Amount = ledger.Round(a.Amount)
		a.OrderNumber = existing[a.OrderID]
		out[i] = a
	}
	return out, nil
}

// parseDay reads a YYYY-MM-DD (or RFC3339) value as an IST calendar day.
// Empty means today.
func parseDay(value, field string) (time.Time, error) {
	if value == "" {
		return timeutil.StartOfDay(timeutil.Now()), nil
	}
	norm, err := timeutil.NormalizeDate(value)
	if err != nil {
		return time.Time{}, invalid("%s is invalid", field)
	}
	t, err := timeutil.ParseInIST(timeutil.DateLayout, norm)
	if err != nil {
		return time.Time{}, invalid("%s is invalid", field)
	}
	return t, nil
}

// dateRange normalizes optional from/to filters.
func dateRange(from, to string) (string, string, error) {
	var err error
	if from != "" {
		if from, err = timeutil.NormalizeDate(from); err != nil {
			return "", "", invalid("from date is invalid")
		}
	}
	if to != "" {
		if to, err = timeutil.NormalizeDate(to); err != nil {
			return "", "", invalid("to date is invalid")
		}
	}
	if from != "" && to != "" && from > to {
		return "", "", invalid("from date must not be after to date")
	}
	return from, to, nil
}
