package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catering-backend/internal/db"
	"catering-backend/internal/events"
	"catering-backend/internal/ledger"
	"catering-backend/internal/logging"
	"catering-backend/internal/models"
	"catering-backend/internal/repositories"
	"catering-backend/internal/validation"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type StockService struct {
	Pool   *pgxpool.Pool
	Repo   *repositories.StockRepository
	Orders *repositories.OrderRepository
	Bus    events.Publisher
}

// nextQuantity applies a movement to the current quantity. Stock-in and
// stock-out take a positive qty; adjust sets the quantity outright.
func nextQuantity(current float64, typ string, qty float64) (float64, error) {
	cur := decimal.NewFromFloat(current)
	q := decimal.NewFromFloat(qty)
	switch typ {
	case models.StockTxnIn:
		if !q.IsPositive() {
			return 0, invalid("quantity must be positive")
		}
		return cur.Add(q).Round(3).InexactFloat64(), nil
	case models.StockTxnOut:
		if !q.IsPositive() {
			return 0, invalid("quantity must be positive")
		}
		next := cur.Sub(q)
		if next.IsNegative() {
			return 0, ErrInsufficientStock
		}
		return next.Round(3).InexactFloat64(), nil
	case models.StockTxnAdjust:
		if q.IsNegative() {
			return 0, invalid("quantity cannot be negative")
		}
		return q.Round(3).InexactFloat64(), nil
	}
	return 0, invalid("unknown movement type %q", typ)
}

func validateStockItem(req *models.StockItemRequest) error {
	var errs validation.Errors
	errs.Require("name", req.Name)
	errs.Require("unit", req.Unit)
	errs.Check(req.ReorderLevel >= 0, "reorder level cannot be negative")
	errs.Check(req.UnitCost >= 0, "unit cost cannot be negative")
	errs.Check(req.OpeningQty >= 0, "opening quantity cannot be negative")
	return invalidErrs(errs)
}

func applyStockItem(s *models.StockItem, req *models.StockItemRequest) {
	s.Name = strings.TrimSpace(req.Name)
	s.SKU = strings.TrimSpace(req.SKU)
	s.Category = strings.TrimSpace(req.Category)
	s.Unit = strings.TrimSpace(req.Unit)
	s.ReorderLevel = req.ReorderLevel
	s.UnitCost = ledger.Round(req.UnitCost)
}

func (s *StockService) CreateItem(ctx context.Context, actor Actor, req *models.StockItemRequest) (*models.StockItem, error) {
	if err := validateStockItem(req); err != nil {
		return nil, err
	}
	item := &models.StockItem{}
	applyStockItem(item, req)

	err := db.WithTx(ctx, s.Pool, func(tx pgx.Tx) error {
		repo := s.Repo.WithTx(tx)
		if err := repo.CreateItem(ctx, item); err != nil {
			if isUniqueViolation(err) {
				return conflict("SKU %s already exists", item.SKU)
			}
			return err
		}
		if req.OpeningQty <= 0 {
			return nil
		}
		txn := &models.StockTxn{
			ItemID:    item.ID,
			Type:      models.StockTxnIn,
			Qty:       req.OpeningQty,
			UnitPrice: item.UnitCost,
			Total:     ledger.Round(req.OpeningQty * item.UnitCost),
			Reason:    "opening stock",
			CreatedBy: actor.userRef(),
		}
		if err := repo.CreateTxn(ctx, txn); err != nil {
			return err
		}
		item.CurrentQty = req.OpeningQty
		return repo.SetQuantity(ctx, item.ID, item.CurrentQty)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *StockService) GetItem(ctx context.Context, id int) (*models.StockItem, error) {
	item, err := s.Repo.GetItem(ctx, id)
	return item, lookup(err, "stock item")
}

func (s *StockService) ListItems(ctx context.Context, category string, lowOnly bool) ([]*models.StockItem, error) {
	return s.Repo.ListItems(ctx, category, lowOnly)
}

func (s *StockService) UpdateItem(ctx context.Context, id int, req *models.StockItemRequest) (*models.StockItem, error) {
	if err := validateStockItem(req); err != nil {
		return nil, err
	}
	item, err := s.Repo.GetItem(ctx, id)
	if err != nil {
		return nil, lookup(err, "stock item")
	}
	applyStockItem(item, req)
	if err := s.Repo.UpdateItem(ctx, item); err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("SKU %s already exists", item.SKU)
		}
		return nil, lookup(err, "stock item")
	}
	return item, nil
}

func (s *StockService) DeleteItem(ctx context.Context, id int) error {
	return lookup(s.Repo.DeleteItem(ctx, id), "stock item")
}

// StockIn records a purchase or return into stock.
func (s *StockService) StockIn(ctx context.Context, actor Actor, req *models.StockMovementRequest) (*models.StockItem, *models.StockTxn, error) {
	return s.move(ctx, actor, req.ItemID, models.StockTxnIn, req.Qty, req.UnitPrice, req.Reason, req.OrderID)
}

// StockOut records consumption; it fails when the quantity on hand is short.
func (s *StockService) StockOut(ctx context.Context, actor Actor, req *models.StockMovementRequest) (*models.StockItem, *models.StockTxn, error) {
	return s.move(ctx, actor, req.ItemID, models.StockTxnOut, req.Qty, req.UnitPrice, req.Reason, req.OrderID)
}

// Adjust sets the quantity after a physical count.
func (s *StockService) Adjust(ctx context.Context, actor Actor, req *models.StockAdjustRequest) (*models.StockItem, *models.StockTxn, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return nil, nil, invalid("reason is required for adjustments")
	}
	return s.move(ctx, actor, req.ItemID, models.StockTxnAdjust, req.NewQty, 0, req.Reason, nil)
}

func (s *StockService) move(ctx context.Context, actor Actor, itemID int, typ string, qty, unitPrice float64, reason string, orderID *int) (*models.StockItem, *models.StockTxn, error) {
	if itemID <= 0 {
		return nil, nil, invalid("item_id is required")
	}
	if unitPrice < 0 {
		return nil, nil, invalid("unit price cannot be negative")
	}
	if orderID != nil && *orderID > 0 {
		existing, err := s.Orders.ExistingIDs(ctx, []int{*orderID})
		if err != nil {
			return nil, nil, err
		}
		if _, ok := existing[*orderID]; !ok {
			return nil, nil, invalid("order %d does not exist", *orderID)
		}
	} else {
		orderID = nil
	}

	var item *models.StockItem
	var txn *models.StockTxn
	wasLow := false
	err := db.WithTx(ctx, s.Pool, func(tx pgx.Tx) error {
		repo := s.Repo.WithTx(tx)
		it, err := repo.GetItemForUpdate(ctx, itemID)
		if err != nil {
			return lookup(err, "stock item")
		}
		wasLow = it.IsLow()

		next, err := nextQuantity(it.CurrentQty, typ, qty)
		if errors.Is(err, ErrInsufficientStock) {
			return invalid("insufficient stock: %g %s on hand, %g requested", it.CurrentQty, it.Unit, qty)
		}
		if err != nil {
			return err
		}

		moved := qty
		if typ == models.StockTxnAdjust {
			moved, _ = decimal.NewFromFloat(next).Sub(decimal.NewFromFloat(it.CurrentQty)).Float64()
		}
		price := unitPrice
		if price == 0 {
			price = it.UnitCost
		}
		t := &models.StockTxn{
			ItemID:    it.ID,
			ItemName:  it.Name,
			Type:      typ,
			Qty:       moved,
			UnitPrice: price,
			Total:     ledger.Round(moved * price),
			Reason:    strings.TrimSpace(reason),
			OrderID:   orderID,
			CreatedBy: actor.userRef(),
		}
		if err := repo.CreateTxn(ctx, t); err != nil {
			return err
		}
		if err := repo.SetQuantity(ctx, it.ID, next); err != nil {
			return err
		}
		it.CurrentQty = next
		item, txn = it, t
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if item.IsLow() && !wasLow {
		logging.For("Stock").Warnf("%s is low: %g %s (reorder at %g)", item.Name, item.CurrentQty, item.Unit, item.ReorderLevel)
		publish(s.Bus, events.StockLow, "Low stock",
			fmt.Sprintf("%s is down to %g %s", item.Name, item.CurrentQty, item.Unit),
			map[string]any{"item_id": item.ID, "current_qty": item.CurrentQty, "reorder_level": item.ReorderLevel})
	}
	return item, txn, nil
}

func (s *StockService) ListTxns(ctx context.Context, itemID, limit int) ([]*models.StockTxn, error) {
	return s.Repo.ListTxns(ctx, itemID, limit)
}

// Summary reports item counts, low stock and stock value at unit cost.
func (s *StockService) Summary(ctx context.Context) (*models.StockSummary, error) {
	items, err := s.Repo.ListItems(ctx, "", false)
	if err != nil {
		return nil, err
	}
	sum := &models.StockSummary{TotalItems: len(items), LowStock: []*models.StockItem{}}
	value := decimal.Zero
	for _, it := range items {
		value = value.Add(decimal.NewFromFloat(it.CurrentQty).Mul(decimal.NewFromFloat(it.UnitCost)))
		if it.IsLow() {
			sum.LowStock = append(sum.LowStock, it)
		}
	}
	sum.LowStockCount = len(sum.LowStock)
	sum.StockValue = value.Round(2).InexactFloat64()
	return sum, nil
}
