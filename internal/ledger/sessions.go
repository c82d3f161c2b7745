package ledger

import (
	"sort"

	"catering-backend/internal/models"
	"catering-backend/internal/timeutil"

	"github.com/shopspring/decimal"
)

// Predicate selects the sessions that are separated from an order.
type Predicate func(key string, s models.MealSession) bool

// ByDate selects sessions held on the given calendar date.
func ByDate(date string) Predicate {
	return func(_ string, s models.MealSession) bool {
		return timeutil.SameDate(s.Date, date)
	}
}

// ByKeys selects sessions by key.
func ByKeys(keys ...string) Predicate {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return func(key string, _ models.MealSession) bool {
		return set[key]
	}
}

// Partition splits sessions into those kept and those matching pred.
// Both results are non-nil.
func Partition(sessions models.Sessions, pred Predicate) (kept, separated models.Sessions) {
	kept = models.Sessions{}
	separated = models.Sessions{}
	for key, s := range sessions {
		if pred(key, s) {
			separated[key] = s
		} else {
			kept[key] = s
		}
	}
	return kept, separated
}

// SortedKeys returns the session keys in a stable order.
func SortedKeys(sessions models.Sessions) []string {
	keys := make([]string, 0, len(sessions))
	for k := range sessions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SessionsTotal sums the session amounts.
func SessionsTotal(sessions models.Sessions) float64 {
	total := decimal.Zero
	for _, s := range sessions {
		total = total.Add(dec(s.Amount))
	}
	return total.InexactFloat64()
}

// StallsTotal sums stall costs.
func StallsTotal(stalls []models.Stall) float64 {
	total := decimal.Zero
	for _, s := range stalls {
		total = total.Add(dec(s.Cost))
	}
	return total.InexactFloat64()
}

// FixedCosts is transport + water + stalls for an order.
func FixedCosts(o *models.Order) float64 {
	return Sum(o.TransportCost, o.WaterCost, StallsTotal(o.Stalls))
}

// OrderTotal computes sessions + fixed costs - discount, clamped at zero.
func OrderTotal(o *models.Order) float64 {
	total := dec(SessionsTotal(o.MealTypeAmounts)).
		Add(dec(FixedCosts(o))).
		Sub(dec(o.Discount))
	if total.IsNegative() {
		return 0
	}
	return total.InexactFloat64()
}

// GuestCount sums guests across sessions.
func GuestCount(sessions models.Sessions) int {
	n := 0
	for _, s := range sessions {
		n += s.Guests
	}
	return n
}
