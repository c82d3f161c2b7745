package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"catering-backend/internal/cache"
	"catering-backend/internal/events"
	"catering-backend/internal/ledger"
	"catering-backend/internal/logging"
	"catering-backend/internal/metrics"
	"catering-backend/internal/models"
	"catering-backend/internal/repositories"
	"catering-backend/internal/timeutil"
	"catering-backend/internal/validation"

	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderService struct {
	Pool       *pgxpool.Pool
	Orders     *repositories.OrderRepository
	Items      *repositories.OrderItemRepository
	Bills      *repositories.BillRepository
	Customers  *repositories.CustomerRepository
	Costs      *repositories.CostLinkRepository
	ActionLogs *repositories.AdminActionLogRepository
	Bus        events.Publisher

	runTx txRunner
}

func NewOrderService(pool *pgxpool.Pool, orders *repositories.OrderRepository, items *repositories.OrderItemRepository,
	bills *repositories.BillRepository, customers *repositories.CustomerRepository, costs *repositories.CostLinkRepository,
	actionLogs *repositories.AdminActionLogRepository, bus events.Publisher) *OrderService {
	return &OrderService{
		Pool:       pool,
		Orders:     orders,
		Items:      items,
		Bills:      bills,
		Customers:  customers,
		Costs:      costs,
		ActionLogs: actionLogs,
		Bus:        bus,
	}
}

func (s *OrderService) inTx(ctx context.Context, fn func(r txRepos) error) error {
	if s.runTx != nil {
		return s.runTx(ctx, fn)
	}
	return poolRunner(s.Pool, repoSet{
		Orders:     s.Orders,
		Items:      s.Items,
		Bills:      s.Bills,
		Customers:  s.Customers,
		Costs:      s.Costs,
		ActionLogs: s.ActionLogs,
	})(ctx, fn)
}

// relinkCosts moves cost records from an order that is about to be deleted
// onto the order that absorbs it.
func relinkCosts(ctx context.Context, r txRepos, from int, to *models.Order) error {
	if r.costs == nil {
		return nil
	}
	n, err := r.costs.ReassignOrder(ctx, from, to.ID, to.OrderNumber)
	if err != nil {
		return fmt.Errorf("relink costs of order %d: %w", from, err)
	}
	if n > 0 {
		logging.For("Orders").Infof("moved %d cost record(s) from order %d to %s", n, from, to.OrderNumber)
	}
	return nil
}

// editable rejects orders whose content is frozen.
func editable(o *models.Order, what string) error {
	switch o.Status {
	case models.OrderStatusCancelled, models.OrderStatusCompleted:
		return invalid("%s orders cannot be %s", o.Status, what)
	}
	return nil
}

func publish(bus events.Publisher, typ, title, message string, data any) {
	if bus != nil {
		bus.Publish(typ, title, message, data)
	}
}

// normalizeSessions validates session slots and rewrites dates to
// YYYY-MM-DD.
func normalizeSessions(sessions models.Sessions) (models.Sessions, error) {
	out := make(models.Sessions, len(sessions))
	for key, s := range sessions {
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, invalid("session key is required")
		}
		date, err := timeutil.NormalizeDate(s.Date)
		if err != nil {
			return nil, invalid("session %s: date is invalid", key)
		}
		if s.Amount < 0 {
			return nil, invalid("session %s: amount cannot be negative", key)
		}
		if s.Guests < 0 {
			return nil, invalid("session %s: guests cannot be negative", key)
		}
		s.Date = date
		s.Amount = ledger.Round(s.Amount)
		out[key] = s
	}
	return out, nil
}

func normalizeStalls(stalls []models.Stall) ([]models.Stall, error) {
	out := make([]models.Stall, 0, len(stalls))
	for i, st := range stalls {
		st.Name = strings.TrimSpace(st.Name)
		if st.Name == "" {
			return nil, invalid("stall %d: name is required", i+1)
		}
		if st.Cost < 0 {
			return nil, invalid("stall %s: cost cannot be negative", st.Name)
		}
		st.Cost = ledger.Round(st.Cost)
		out = append(out, st)
	}
	return out, nil
}

func normalizeServices(services []string) []string {
	out := make([]string, 0, len(services))
	seen := map[string]bool{}
	for _, svc := range services {
		svc = strings.TrimSpace(svc)
		if svc == "" || seen[svc] {
			continue
		}
		seen[svc] = true
		out = append(out, svc)
	}
	return out
}

// buildItems turns item inputs into order items. Session keys must name a
// session of the order when set.
func buildItems(inputs []models.OrderItemInput, sessions models.Sessions) ([]*models.OrderItem, error) {
	items := make([]*models.OrderItem, 0, len(inputs))
	for i, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, invalid("item %d: name is required", i+1)
		}
		if in.Quantity <= 0 {
			return nil, invalid("item %s: quantity must be positive", name)
		}
		if in.UnitPrice < 0 {
			return nil, invalid("item %s: unit price cannot be negative", name)
		}
		if in.SessionKey != "" {
			if _, ok := sessions[in.SessionKey]; !ok {
				return nil, invalid("item %s: unknown session %q", name, in.SessionKey)
			}
		}
		items = append(items, &models.OrderItem{
			MenuItemID: in.MenuItemID,
			Name:       name,
			SessionKey: in.SessionKey,
			Quantity:   in.Quantity,
			UnitPrice:  ledger.Round(in.UnitPrice),
			Amount:     ledger.Round(in.Quantity * in.UnitPrice),
		})
	}
	return items, nil
}

// orderDetails is the editable part shared by create and update.
type orderDetails struct {
	EventName     string
	Venue         string
	Sessions      models.Sessions
	Stalls        []models.Stall
	Services      []string
	TransportCost float64
	WaterCost     float64
	Discount      float64
	Notes         string
}

func (d orderDetails) apply(o *models.Order) error {
	var errs validation.Errors
	errs.Check(len(d.Sessions) > 0, "at least one meal session is required")
	errs.Check(d.TransportCost >= 0, "transport cost cannot be negative")
	errs.Check(d.WaterCost >= 0, "water cost cannot be negative")
	errs.Check(d.Discount >= 0, "discount cannot be negative")
	if err := invalidErrs(errs); err != nil {
		return err
	}

	sessions, err := normalizeSessions(d.Sessions)
	if err != nil {
		return err
	}
	stalls, err := normalizeStalls(d.Stalls)
	if err != nil {
		return err
	}

	o.EventName = strings.TrimSpace(d.EventName)
	o.Venue = strings.TrimSpace(d.Venue)
	o.MealTypeAmounts = sessions
	o.Stalls = stalls
	o.Services = normalizeServices(d.Services)
	o.TransportCost = ledger.Round(d.TransportCost)
	o.WaterCost = ledger.Round(d.WaterCost)
	o.Discount = ledger.Round(d.Discount)
	o.Notes = d.Notes
	o.TotalAmount = ledger.OrderTotal(o)
	return nil
}

// CreateOrder stores an order together with its bill. A non-zero advance is
// the bill's first payment entry.
func (s *OrderService) CreateOrder(ctx context.Context, actor Actor, req *models.CreateOrderRequest, source string) (*models.Order, error) {
	if req.CustomerID <= 0 {
		return nil, invalid("customer_id is required")
	}
	if req.AdvanceAmount < 0 {
		return nil, invalid("advance amount cannot be negative")
	}
	method := req.PaymentMethod
	if method == "" {
		method = "cash"
	}
	if req.AdvanceAmount > 0 && !models.ValidPaymentMethod(method) {
		return nil, invalid("payment method must be one of %s", strings.Join(models.PaymentMethods, ", "))
	}

	order := &models.Order{
		CustomerID: req.CustomerID,
		Status:     models.OrderStatusPending,
		Source:     source,
		CreatedBy:  actor.userRef(),
	}
	details := orderDetails{
		EventName:     req.EventName,
		Venue:         req.Venue,
		Sessions:      req.MealTypeAmounts,
		Stalls:        req.Stalls,
		Services:      req.Services,
		TransportCost: req.TransportCost,
		WaterCost:     req.WaterCost,
		Discount:      req.Discount,
		Notes:         req.Notes,
	}
	if err := details.apply(order); err != nil {
		return nil, err
	}
	items, err := buildItems(req.Items, order.MealTypeAmounts)
	if err != nil {
		return nil, err
	}

	bill := &models.Bill{CustomerID: req.CustomerID, TotalAmount: order.TotalAmount}
	if req.AdvanceAmount > 0 {
		if _, err := ledger.AppendPayment(bill, models.PaymentRecord{
			Amount:     req.AdvanceAmount,
			Source:     models.PaymentSourceAdvance,
			Method:     method,
			Note:       "Advance at booking",
			PaidAt:     timeutil.Now(),
			RecordedBy: actor.userRef(),
		}); err != nil {
			return nil, invalid("%v", err)
		}
	}
	ledger.SyncOrderToBill(order, bill)

	err = s.inTx(ctx, func(r txRepos) error {
		customer, err := r.customers.Get(ctx, req.CustomerID)
		if err != nil {
			return lookup(err, "customer")
		}
		if err := r.orders.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		order.CustomerName = customer.Name
		order.CustomerPhone = customer.Phone

		bill.OrderID = order.ID
		if err := r.bills.Create(ctx, bill); err != nil {
			return fmt.Errorf("create bill: %w", err)
		}
		for _, it := range items {
			it.OrderID = order.ID
			if err := r.items.Create(ctx, it); err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	order.Items = items

	metrics.OrdersCreated.WithLabelValues(source).Inc()
	cache.InvalidateAnalytics(ctx)
	logging.For("Orders").Infof("created %s (%s) total=%.2f advance=%.2f", order.OrderNumber, source, order.TotalAmount, order.AdvanceAmount)

	typ, title := events.OrderCreated, "New order"
	if source == models.OrderSourceCustomer {
		typ, title = events.OrderSubmitted, "Order submitted by customer"
	}
	publish(s.Bus, typ, title, fmt.Sprintf("%s for %s (%.2f)", order.OrderNumber, order.CustomerName, order.TotalAmount),
		map[string]any{"order_id": order.ID, "order_number": order.OrderNumber})
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id int) (*models.Order, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return nil, lookup(err, "order")
	}
	if o.Items, err = s.Items.ListByOrder(ctx, id); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) ListOrders(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	for _, d := range []*string{&filter.From, &filter.To} {
		if *d == "" {
			continue
		}
		norm, err := timeutil.NormalizeDate(*d)
		if err != nil {
			return nil, invalid("invalid date filter %q", *d)
		}
		*d = norm
	}
	return s.Orders.List(ctx, filter)
}

// UpdateOrder replaces the order's details and sessions, recomputes its total
// and carries the change to the bill.
func (s *OrderService) UpdateOrder(ctx context.Context, actor Actor, id int, req *models.UpdateOrderRequest) (*models.Order, error) {
	var order *models.Order
	err := s.inTx(ctx, func(r txRepos) error {
		o, err := r.orders.Get(ctx, id)
		if err != nil {
			return lookup(err, "order")
		}
		if err := editable(o, "edited"); err != nil {
			return err
		}
		before := *o

		details := orderDetails{
			EventName:     req.EventName,
			Venue:         req.Venue,
			Sessions:      req.MealTypeAmounts,
			Stalls:        req.Stalls,
			Services:      req.Services,
			TransportCost: req.TransportCost,
			WaterCost:     req.WaterCost,
			Discount:      req.Discount,
			Notes:         req.Notes,
		}
		if err := details.apply(o); err != nil {
			return err
		}

		var items []*models.OrderItem
		if req.Items != nil {
			if items, err = buildItems(*req.Items, o.MealTypeAmounts); err != nil {
				return err
			}
		}

		bill, err := r.bills.GetByOrderID(ctx, id)
		if err != nil {
			return lookup(err, "bill")
		}
		ledger.SyncOrderToBill(o, bill)

		if err := r.orders.Update(ctx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if err := r.bills.Update(ctx, bill); err != nil {
			return fmt.Errorf("update bill: %w", err)
		}
		if req.Items != nil {
			if err := r.items.DeleteByOrder(ctx, id); err != nil {
				return err
			}
			for _, it := range items {
				it.OrderID = id
				if err := r.items.Create(ctx, it); err != nil {
					return fmt.Errorf("create order item: %w", err)
				}
			}
		}
		if o.Items, err = r.items.ListByOrder(ctx, id); err != nil {
			return err
		}

		if !ledger.Equal(before.TotalAmount, o.TotalAmount) {
			recordAction(ctx, r.actions, actor, "order_update", "order", id,
				fmt.Sprintf("Updated %s, total %.2f -> %.2f", o.OrderNumber, before.TotalAmount, o.TotalAmount),
				map[string]any{"total_amount": before.TotalAmount, "sessions": before.MealTypeAmounts},
				map[string]any{"total_amount": o.TotalAmount, "sessions": o.MealTypeAmounts})
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateAnalytics(ctx)
	return order, nil
}

// CanTransition reports whether an order may move from one status to
// another: pending -> in_progress -> completed, and anything not yet
// completed may be cancelled.
func CanTransition(from, to string) bool {
	switch to {
	case models.OrderStatusInProgress:
		return from == models.OrderStatusPending
	case models.OrderStatusCompleted:
		return from == models.OrderStatusInProgress
	case models.OrderStatusCancelled:
		return from == models.OrderStatusPending || from == models.OrderStatusInProgress
	}
	return false
}

func (s *OrderService) UpdateStatus(ctx context.Context, actor Actor, id int, status string) (*models.Order, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return nil, lookup(err, "order")
	}
	if !CanTransition(o.Status, status) {
		return nil, invalid("cannot change status from %s to %s", o.Status, status)
	}
	if err := s.Orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, lookup(err, "order")
	}

	from := o.Status
	o.Status = status
	recordAction(ctx, s.ActionLogs, actor, "order_status", "order", id,
		fmt.Sprintf("%s: %s -> %s", o.OrderNumber, from, status), from, status)
	publish(s.Bus, events.OrderStatusChanged, "Order status changed",
		fmt.Sprintf("%s is now %s", o.OrderNumber, status),
		map[string]any{"order_id": id, "from": from, "to": status})
	cache.InvalidateAnalytics(ctx)
	return o, nil
}

// DeleteOrder removes the order, its items and its bill.
func (s *OrderService) DeleteOrder(ctx context.Context, actor Actor, id int) error {
	var removed *models.Order
	err := s.inTx(ctx, func(r txRepos) error {
		o, err := r.orders.Get(ctx, id)
		if err != nil {
			return lookup(err, "order")
		}
		if err := r.bills.DeleteByOrderID(ctx, id); err != nil {
			return err
		}
		if err := r.items.DeleteByOrder(ctx, id); err != nil {
			return err
		}
		if err := r.orders.Delete(ctx, id); err != nil {
			return lookup(err, "order")
		}
		recordAction(ctx, r.actions, actor, "order_delete", "order", id,
			fmt.Sprintf("Deleted %s (%s)", o.OrderNumber, o.CustomerName), o, nil)
		removed = o
		return nil
	})
	if err != nil {
		return err
	}
	publish(s.Bus, events.OrderDeleted, "Order deleted", removed.OrderNumber+" was deleted",
		map[string]any{"order_id": id})
	cache.InvalidateAnalytics(ctx)
	return nil
}

// SplitByDate moves every session held on date into a new order.
func (s *OrderService) SplitByDate(ctx context.Context, actor Actor, id int, date string) (*models.SplitResult, error) {
	norm, err := timeutil.NormalizeDate(date)
	if err != nil {
		return nil, invalid("date is invalid")
	}
	return s.split(ctx, actor, id, ledger.ByDate(norm), "split_by_date", "date "+norm)
}

// SplitBySession moves the named sessions into a new order.
func (s *OrderService) SplitBySession(ctx context.Context, actor Actor, id int, keys []string) (*models.SplitResult, error) {
	if len(keys) == 0 {
		return nil, invalid("session_keys is required")
	}
	return s.split(ctx, actor, id, ledger.ByKeys(keys...), "split_by_session", "sessions "+strings.Join(keys, ", "))
}

func (s *OrderService) split(ctx context.Context, actor Actor, id int, pred ledger.Predicate, operation, what string) (*models.SplitResult, error) {
	result := &models.SplitResult{}
	err := s.inTx(ctx, func(r txRepos) error {
		order, err := r.orders.Get(ctx, id)
		if err != nil {
			return lookup(err, "order")
		}
		if err := editable(order, "split"); err != nil {
			return err
		}
		bill, err := r.bills.GetByOrderID(ctx, id)
		if err != nil {
			return lookup(err, "bill")
		}
		items, err := r.items.ListByOrder(ctx, id)
		if err != nil {
			return err
		}

		plan, err := ledger.PlanSplit(order, bill.PaidAmount, pred)
		if errors.Is(err, ledger.ErrNothingToSplit) {
			return invalid("nothing to split")
		}
		if err != nil {
			return err
		}

		newOrder := plan.NewOrder
		if err := r.orders.Create(ctx, newOrder); err != nil {
			return fmt.Errorf("create split order: %w", err)
		}
		newBill := &models.Bill{OrderID: newOrder.ID, CustomerID: newOrder.CustomerID, TotalAmount: newOrder.TotalAmount}
		if plan.CarriedPaid > 0 {
			if _, err := ledger.AppendPayment(newBill, models.PaymentRecord{
				Amount:     plan.CarriedPaid,
				Source:     models.PaymentSourceSplit,
				Method:     "carried",
				Note:       "Carried from " + bill.BillNumber,
				PaidAt:     timeutil.Now(),
				RecordedBy: actor.userRef(),
			}); err != nil {
				return err
			}
		}
		ledger.SyncOrderToBill(newOrder, newBill)
		if err := r.bills.Create(ctx, newBill); err != nil {
			return fmt.Errorf("create split bill: %w", err)
		}

		if plan.DeleteOriginal {
			if result.MovedItems, err = r.items.MoveAll(ctx, id, newOrder.ID, nil); err != nil {
				return err
			}
			if err := relinkCosts(ctx, r, id, newOrder); err != nil {
				return err
			}
			if err := r.bills.DeleteByOrderID(ctx, id); err != nil {
				return err
			}
			if err := r.orders.Delete(ctx, id); err != nil {
				return err
			}
			newOrder.SplitFromOrderID = nil
			result.OriginalDeleted = true
		} else {
			if result.MovedItems, err = r.items.Move(ctx, plan.ItemsToMove(items), newOrder.ID); err != nil {
				return err
			}
			original := plan.Original
			ledger.SyncOrderToBill(original, bill)
			if err := r.orders.Update(ctx, original); err != nil {
				return fmt.Errorf("update original order: %w", err)
			}
			if err := r.bills.Update(ctx, bill); err != nil {
				return fmt.Errorf("update original bill: %w", err)
			}
			result.Original = original
			result.OriginalBill = bill
		}

		newOrder.CustomerName = order.CustomerName
		newBill.CustomerName = order.CustomerName
		newBill.OrderNumber = newOrder.OrderNumber
		result.NewOrder = newOrder
		result.NewBill = newBill

		recordAction(ctx, r.actions, actor, operation, "order", id,
			fmt.Sprintf("Split %s (%s) into %s", order.OrderNumber, what, newOrder.OrderNumber),
			map[string]any{"order_number": order.OrderNumber, "total_amount": order.TotalAmount, "sessions": order.MealTypeAmounts},
			map[string]any{"new_order_number": newOrder.OrderNumber, "new_total": newOrder.TotalAmount, "original_deleted": plan.DeleteOriginal})
		return nil
	})
	metrics.LedgerOperations.WithLabelValues(operation, metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}

	cache.InvalidateAnalytics(ctx)
	logging.For("Orders").Infof("split order %d by %s into %s (original deleted: %t)", id, what, result.NewOrder.OrderNumber, result.OriginalDeleted)
	publish(s.Bus, events.OrderSplit, "Order split",
		fmt.Sprintf("%s split off %s", result.NewOrder.OrderNumber, what),
		map[string]any{"order_id": id, "new_order_id": result.NewOrder.ID})
	return result, nil
}

// MergeOrders folds the secondary orders into the primary. Secondary bills
// and orders are deleted; their paid amounts move to the primary bill as one
// merge entry.
func (s *OrderService) MergeOrders(ctx context.Context, actor Actor, req *models.MergeOrdersRequest) (*models.MergeResult, error) {
	if req.PrimaryOrderID <= 0 {
		return nil, invalid("primary_order_id is required")
	}
	if len(req.SecondaryOrderIDs) == 0 {
		return nil, invalid("%v", ledger.ErrNoSecondaries)
	}

	result := &models.MergeResult{}
	err := s.inTx(ctx, func(r txRepos) error {
		ids := append([]int{req.PrimaryOrderID}, req.SecondaryOrderIDs...)
		orders, err := r.orders.GetMany(ctx, ids)
		if err != nil {
			return err
		}
		for _, oid := range ids {
			o, ok := orders[oid]
			if !ok {
				return notFound(fmt.Sprintf("order %d", oid))
			}
			if o.Status == models.OrderStatusCancelled {
				return invalid("%s is cancelled and cannot be merged", o.OrderNumber)
			}
		}

		paidOf := func(orderID int) (*models.Bill, float64, error) {
			b, err := r.bills.GetByOrderID(ctx, orderID)
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, 0, nil
			}
			if err != nil {
				return nil, 0, err
			}
			return b, b.PaidAmount, nil
		}

		primaryBill, primaryPaid, err := paidOf(req.PrimaryOrderID)
		if err != nil {
			return err
		}
		primary := ledger.MergeInput{Order: orders[req.PrimaryOrderID], Paid: primaryPaid}
		secondaries := make([]ledger.MergeInput, 0, len(req.SecondaryOrderIDs))
		var billNumbers []string
		for _, oid := range req.SecondaryOrderIDs {
			b, paid, err := paidOf(oid)
			if err != nil {
				return err
			}
			if b != nil {
				billNumbers = append(billNumbers, b.BillNumber)
			}
			secondaries = append(secondaries, ledger.MergeInput{Order: orders[oid], Paid: paid})
		}

		plan, err := ledger.PlanMerge(primary, secondaries)
		if err != nil {
			return invalid("%v", err)
		}

		for _, sec := range secondaries {
			oid := sec.Order.ID
			moved, err := r.items.MoveAll(ctx, oid, req.PrimaryOrderID, plan.Renamed[oid])
			if err != nil {
				return err
			}
			result.MovedItems += moved
			if err := relinkCosts(ctx, r, oid, orders[req.PrimaryOrderID]); err != nil {
				return err
			}
			if err := r.bills.DeleteByOrderID(ctx, oid); err != nil {
				return err
			}
			if err := r.orders.Delete(ctx, oid); err != nil {
				return err
			}
			result.DeletedOrderIDs = append(result.DeletedOrderIDs, oid)
			for oldKey, newKey := range plan.Renamed[oid] {
				if result.RenamedSessions == nil {
					result.RenamedSessions = map[string]string{}
				}
				result.RenamedSessions[sec.Order.OrderNumber+"/"+oldKey] = newKey
			}
		}

		merged := plan.Order
		bill := primaryBill
		if bill == nil {
			bill = &models.Bill{OrderID: merged.ID, CustomerID: merged.CustomerID, PaidAmount: primaryPaid}
		}
		bill.TotalAmount = merged.TotalAmount
		appendMergeEntry(bill, plan.AbsorbedPaid, "Merged "+strings.Join(orderNumbers(secondaries), ", "), billNumbers, actor.userRef())
		ledger.SyncOrderToBill(merged, bill)

		if err := r.orders.Update(ctx, merged); err != nil {
			return fmt.Errorf("update merged order: %w", err)
		}
		if primaryBill == nil {
			err = r.bills.Create(ctx, bill)
		} else {
			err = r.bills.Update(ctx, bill)
		}
		if err != nil {
			return fmt.Errorf("save merged bill: %w", err)
		}
		if merged.Items, err = r.items.ListByOrder(ctx, merged.ID); err != nil {
			return err
		}

		result.Order = merged
		result.Bill = bill
		recordAction(ctx, r.actions, actor, "order_merge", "order", merged.ID,
			fmt.Sprintf("Merged %s into %s", strings.Join(orderNumbers(secondaries), ", "), merged.OrderNumber),
			map[string]any{"primary_total": primary.Order.TotalAmount, "primary_paid": primaryPaid, "secondary_ids": req.SecondaryOrderIDs},
			map[string]any{"total_amount": merged.TotalAmount, "paid_amount": bill.PaidAmount, "renamed_sessions": result.RenamedSessions})
		return nil
	})
	metrics.LedgerOperations.WithLabelValues("merge", metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}

	cache.InvalidateAnalytics(ctx)
	logging.For("Orders").Infof("merged %v into %s", result.DeletedOrderIDs, result.Order.OrderNumber)
	publish(s.Bus, events.OrderMerged, "Orders merged",
		fmt.Sprintf("%d order(s) merged into %s", len(result.DeletedOrderIDs), result.Order.OrderNumber),
		map[string]any{"order_id": result.Order.ID, "merged_ids": result.DeletedOrderIDs})
	return result, nil
}

func orderNumbers(inputs []ledger.MergeInput) []string {
	out := make([]string, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, in.Order.OrderNumber)
	}
	return out
}

// appendMergeEntry records the absorbed paid amount on the primary bill. A
// merge that absorbed nothing still leaves a zero entry in the log.
func appendMergeEntry(b *models.Bill, absorbed float64, note string, billNumbers []string, by *int) {
	rec := models.PaymentRecord{
		Amount:     absorbed,
		Source:     models.PaymentSourceMerge,
		Method:     "merge",
		Note:       note,
		Reference:  strings.Join(billNumbers, ","),
		PaidAt:     timeutil.Now(),
		RecordedBy: by,
	}
	if absorbed > 0 {
		_, _ = ledger.AppendPayment(b, rec)
		return
	}
	t := ledger.ApplyToBill(b)
	rec.Amount = 0
	rec.TotalPaid = t.Paid
	rec.Remaining = t.Remaining
	rec.Status = t.Status
	b.PaymentHistory = append(b.PaymentHistory, rec)
}

// sessionsOnOrAfter lists the order's sessions from day onwards, sorted by
// date then key.
func sessionsOnOrAfter(o *models.Order, day time.Time) []models.UpcomingEvent {
	from := day.In(timeutil.IST).Format(timeutil.DateLayout)
	var out []models.UpcomingEvent
	for _, key := range ledger.SortedKeys(o.MealTypeAmounts) {
		sess := o.MealTypeAmounts[key]
		if sess.Date < from {
			continue
		}
		out = append(out, models.UpcomingEvent{
			OrderID:      o.ID,
			OrderNumber:  o.OrderNumber,
			CustomerName: o.CustomerName,
			SessionKey:   key,
			Date:         sess.Date,
			Time:         sess.Time,
			Venue:        o.Venue,
			Guests:       sess.Guests,
			Amount:       sess.Amount,
		})
	}
	return out
}
