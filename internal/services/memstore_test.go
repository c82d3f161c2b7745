package services

import (
	"context"
	"fmt"
	"sort"

	"catering-backend/internal/ledger"
	"catering-backend/internal/models"
	"catering-backend/internal/repositories"
)

// memDB is an in-memory stand-in for the transactional repositories.
type memDB struct {
	orders    map[int]*models.Order
	items     map[int]*models.OrderItem
	bills     map[int]*models.Bill
	customers map[int]*models.Customer
	nextID    int

	relinked [][2]int
	advances map[int][2]float64
}

func newMemDB() *memDB {
	return &memDB{
		orders:    map[int]*models.Order{},
		items:     map[int]*models.OrderItem{},
		bills:     map[int]*models.Bill{},
		customers: map[int]*models.Customer{},
		nextID:    100,
		advances:  map[int][2]float64{},
	}
}

func (m *memDB) id() int {
	m.nextID++
	return m.nextID
}

func (m *memDB) runner() txRunner {
	return func(ctx context.Context, fn func(r txRepos) error) error {
		return fn(txRepos{
			orders:    memOrders{m},
			items:     memItems{m},
			bills:     memBills{m},
			customers: memCustomers{m},
			costs:     memCosts{m},
		})
	}
}

func (m *memDB) addOrder(o *models.Order) *models.Order {
	if o.OrderNumber == "" {
		o.OrderNumber = fmt.Sprintf("ORD-%06d", o.ID)
	}
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
	o.TotalAmount = ledger.OrderTotal(o)
	ledger.ApplyToOrder(o)
	m.orders[o.ID] = o
	return o
}

// addBill stores a bill for order with one payment entry per amount.
func (m *memDB) addBill(id int, o *models.Order, payments ...float64) *models.Bill {
	b := &models.Bill{
		ID:          id,
		BillNumber:  fmt.Sprintf("BILL-%06d", id),
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		TotalAmount: o.TotalAmount,
	}
	for _, amt := range payments {
		if _, err := ledger.AppendPayment(b, models.PaymentRecord{Amount: amt, Source: models.PaymentSourceAdmin, Method: "cash"}); err != nil {
			panic(err)
		}
	}
	ledger.ApplyToBill(b)
	ledger.SyncOrderToBill(o, b)
	m.bills[b.ID] = b
	return b
}

func (m *memDB) addItem(id, orderID int, session string) {
	m.items[id] = &models.OrderItem{ID: id, OrderID: orderID, Name: fmt.Sprintf("item %d", id), SessionKey: session, Quantity: 1}
}

func (m *memDB) billFor(orderID int) *models.Bill {
	for _, b := range m.bills {
		if b.OrderID == orderID {
			return b
		}
	}
	return nil
}

type memOrders struct{ m *memDB }

func (r memOrders) Create(_ context.Context, o *models.Order) error {
	o.ID = r.m.id()
	o.OrderNumber = fmt.Sprintf("ORD-%06d", o.ID)
	cp := *o
	r.m.orders[o.ID] = &cp
	return nil
}

func (r memOrders) Get(_ context.Context, id int) (*models.Order, error) {
	o, ok := r.m.orders[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r memOrders) GetMany(ctx context.Context, ids []int) (map[int]*models.Order, error) {
	out := map[int]*models.Order{}
	for _, id := range ids {
		if o, err := r.Get(ctx, id); err == nil {
			out[id] = o
		}
	}
	return out, nil
}

func (r memOrders) Update(_ context.Context, o *models.Order) error {
	if _, ok := r.m.orders[o.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *o
	cp.Items = nil
	r.m.orders[o.ID] = &cp
	return nil
}

func (r memOrders) SetAdvance(_ context.Context, id int, advance, remaining float64) error {
	r.m.advances[id] = [2]float64{advance, remaining}
	if o, ok := r.m.orders[id]; ok {
		o.AdvanceAmount = advance
		o.RemainingAmount = remaining
	}
	return nil
}

func (r memOrders) Delete(_ context.Context, id int) error {
	if _, ok := r.m.orders[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.orders, id)
	return nil
}

type memItems struct{ m *memDB }

func (r memItems) Create(_ context.Context, it *models.OrderItem) error {
	it.ID = r.m.id()
	cp := *it
	r.m.items[it.ID] = &cp
	return nil
}

func (r memItems) ListByOrder(_ context.Context, orderID int) ([]*models.OrderItem, error) {
	out := []*models.OrderItem{}
	for _, it := range r.m.items {
		if it.OrderID == orderID {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memItems) Move(_ context.Context, itemIDs []int, toOrderID int) (int, error) {
	n := 0
	for _, id := range itemIDs {
		if it, ok := r.m.items[id]; ok {
			it.OrderID = toOrderID
			n++
		}
	}
	return n, nil
}

func (r memItems) MoveAll(_ context.Context, fromOrderID, toOrderID int, renames map[string]string) (int, error) {
	n := 0
	for _, it := range r.m.items {
		if it.OrderID != fromOrderID {
			continue
		}
		it.OrderID = toOrderID
		if key, ok := renames[it.SessionKey]; ok {
			it.SessionKey = key
		}
		n++
	}
	return n, nil
}

func (r memItems) DeleteByOrder(_ context.Context, orderID int) error {
	for id, it := range r.m.items {
		if it.OrderID == orderID {
			delete(r.m.items, id)
		}
	}
	return nil
}

type memBills struct{ m *memDB }

func (r memBills) Create(_ context.Context, b *models.Bill) error {
	b.ID = r.m.id()
	if b.BillNumber == "" {
		b.BillNumber = fmt.Sprintf("BILL-%06d", b.ID)
	}
	cp := *b
	r.m.bills[b.ID] = &cp
	return nil
}

func (r memBills) Get(_ context.Context, id int) (*models.Bill, error) {
	b, ok := r.m.bills[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *b
	cp.PaymentHistory = append([]models.PaymentRecord(nil), b.PaymentHistory...)
	return &cp, nil
}

func (r memBills) GetByOrderID(ctx context.Context, orderID int) (*models.Bill, error) {
	if b := r.m.billFor(orderID); b != nil {
		return r.Get(ctx, b.ID)
	}
	return nil, repositories.ErrNotFound
}

func (r memBills) Update(_ context.Context, b *models.Bill) error {
	if _, ok := r.m.bills[b.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *b
	r.m.bills[b.ID] = &cp
	return nil
}

func (r memBills) DeleteByOrderID(_ context.Context, orderID int) error {
	for id, b := range r.m.bills {
		if b.OrderID == orderID {
			delete(r.m.bills, id)
		}
	}
	return nil
}

type memCustomers struct{ m *memDB }

func (r memCustomers) Get(_ context.Context, id int) (*models.Customer, error) {
	c, ok := r.m.customers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return c, nil
}

type memCosts struct{ m *memDB }

func (r memCosts) ReassignOrder(_ context.Context, from, to int, _ string) (int, error) {
	r.m.relinked = append(r.m.relinked, [2]int{from, to})
	return 1, nil
}
