package ledger

import (
	"errors"
	"fmt"

	"catering-backend/internal/models"

	"github.com/shopspring/decimal"
)

var ErrAllocationMismatch = errors.New("bulk allocations must sum to the total amount")

// ValidateAllocations checks a bulk allocation against its parent amount:
// every entry names a distinct order, carries a positive amount, and the
// entries sum to amount within Tolerance. An empty allocation is valid.
func ValidateAllocations(amount float64, allocs []models.Allocation) error {
	if len(allocs) == 0 {
		return nil
	}

	seen := make(map[int]bool, len(allocs))
	sum := decimal.Zero
	for i, a := range allocs {
		if a.OrderID <= 0 {
			return fmt.Errorf("allocation %d: order_id is required", i+1)
		}
		if seen[a.OrderID] {
			return fmt.Errorf("allocation %d: order %d listed twice", i+1, a.OrderID)
		}
		seen[a.OrderID] = true
		if a.Amount <= 0 {
			return fmt.Errorf("allocation %d: amount must be positive", i+1)
		}
		sum = sum.Add(dec(a.Amount))
	}

	if sum.Sub(dec(amount)).Abs().GreaterThan(Tolerance) {
		return fmt.Errorf("%w: allocated %s of %s", ErrAllocationMismatch,
			sum.StringFixed(2), dec(amount).StringFixed(2))
	}
	return nil
}

// AllocationOrderIDs lists the orders referenced by an allocation.
func AllocationOrderIDs(allocs []models.Allocation) []int {
	ids := make([]int, 0, len(allocs))
	for _, a := range allocs {
		ids = append(ids, a.OrderID)
	}
	return ids
}

// ReassignAllocations points every entry for order from at order to, folding
// the amount into an existing entry for to. It reports whether anything
// changed.
func ReassignAllocations(allocs []models.Allocation, from, to int, toNumber string) ([]models.Allocation, bool) {
	idx := -1
	for i, a := range allocs {
		if a.OrderID == from {
			idx = i
			break
		}
	}
	if idx < 0 || from == to {
		return allocs, false
	}

	moved := allocs[idx]
	out := make([]models.Allocation, 0, len(allocs))
	folded := false
	for i, a := range allocs {
		if i == idx {
			continue
		}
		if a.OrderID == to {
			a.Amount = Sum(a.Amount, moved.Amount)
			if toNumber != "" {
				a.OrderNumber = toNumber
			}
			folded = true
		}
		out = append(out, a)
	}
	if !folded {
		moved.OrderID = to
		moved.OrderNumber = toNumber
		out = append(out[:idx], append([]models.Allocation{moved}, out[idx:]...)...)
	}
	return out, true
}
