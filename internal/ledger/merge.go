package ledger

import (
	"errors"
	"fmt"
	"strings"

	"catering-backend/internal/models"
)

var (
	ErrNoSecondaries    = errors.New("at least one secondary order is required")
	ErrDuplicateOrder   = errors.New("orders in a merge must be distinct")
	ErrCustomerMismatch = errors.New("all merged orders must belong to the same customer")
)

// MergeInput is an order together with the amount its bill has collected.
type MergeInput struct {
	Order *models.Order
	Paid  float64
}

// MergePlan is the primary order after absorbing the secondaries.
type MergePlan struct {
	Order *models.Order
	// Paid is the primary bill's new paid amount.
	Paid float64
	// AbsorbedPaid is the part of Paid that came from the secondaries.
	AbsorbedPaid float64
	// Renamed maps secondary order id -> old session key -> new key for
	// sessions renamed on collision.
	Renamed map[int]map[string]string
}

// PlanMerge folds the secondaries into the primary. Monetary fields are
// summed, services are unioned, stalls are concatenated, and session keys
// that already exist get a numeric suffix.
func PlanMerge(primary MergeInput, secondaries []MergeInput) (*MergePlan, error) {
	if len(secondaries) == 0 {
		return nil, ErrNoSecondaries
	}

	seen := map[int]bool{primary.Order.ID: true}
	for _, s := range secondaries {
		if seen[s.Order.ID] {
			return nil, ErrDuplicateOrder
		}
		seen[s.Order.ID] = true
		if s.Order.CustomerID != primary.Order.CustomerID {
			return nil, ErrCustomerMismatch
		}
	}

	merged := *primary.Order
	merged.Items = nil
	merged.MealTypeAmounts = make(models.Sessions, len(primary.Order.MealTypeAmounts))
	for k, v := range primary.Order.MealTypeAmounts {
		merged.MealTypeAmounts[k] = v
	}
	merged.Stalls = append([]models.Stall{}, primary.Order.Stalls...)
	merged.Services = unionStrings(nil, primary.Order.Services)

	plan := &MergePlan{
		Order:   &merged,
		Renamed: map[int]map[string]string{},
	}

	total := []float64{primary.Order.TotalAmount}
	transport := []float64{primary.Order.TransportCost}
	water := []float64{primary.Order.WaterCost}
	discount := []float64{primary.Order.Discount}
	absorbed := []float64{}
	var mergedNumbers []string

	for _, s := range secondaries {
		o := s.Order
		total = append(total, o.TotalAmount)
		transport = append(transport, o.TransportCost)
		water = append(water, o.WaterCost)
		discount = append(discount, o.Discount)
		absorbed = append(absorbed, s.Paid)

		for _, key := range SortedKeys(o.MealTypeAmounts) {
			newKey := key
			if _, taken := merged.MealTypeAmounts[key]; taken {
				newKey = freeKey(merged.MealTypeAmounts, key)
				if plan.Renamed[o.ID] == nil {
					plan.Renamed[o.ID] = map[string]string{}
				}
				plan.Renamed[o.ID][key] = newKey
			}
			merged.MealTypeAmounts[newKey] = o.MealTypeAmounts[key]
		}

		merged.Stalls = append(merged.Stalls, o.Stalls...)
		merged.Services = unionStrings(merged.Services, o.Services)
		mergedNumbers = append(mergedNumbers, o.OrderNumber)
	}

	merged.TotalAmount = Sum(total...)
	merged.TransportCost = Sum(transport...)
	merged.WaterCost = Sum(water...)
	merged.Discount = Sum(discount...)

	plan.AbsorbedPaid = Sum(absorbed...)
	plan.Paid = Sum(primary.Paid, plan.AbsorbedPaid)
	merged.AdvanceAmount = plan.Paid
	ApplyToOrder(&merged)

	note := "Merged " + strings.Join(mergedNumbers, ", ")
	if merged.Notes != "" {
		merged.Notes += "\n" + note
	} else {
		merged.Notes = note
	}

	return plan, nil
}

// SessionKeyFor returns the key an item of the given secondary order should
// carry after the merge.
func (p *MergePlan) SessionKeyFor(orderID int, key string) string {
	if renamed, ok := p.Renamed[orderID][key]; ok {
		return renamed
	}
	return key
}

func freeKey(sessions models.Sessions, key string) string {
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", key, n)
		if _, taken := sessions[candidate]; !taken {
			return candidate
		}
	}
}

func unionStrings(dst, src []string) []string {
	if dst == nil {
		dst = []string{}
	}
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		dst = append(dst, s)
	}
	return dst
}
