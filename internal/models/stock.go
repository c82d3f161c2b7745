package models

import "time"

const (
	StockTxnIn     = "in"
	StockTxnOut    = "out"
	StockTxnAdjust = "adjust"
)

type StockItem struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	Category     string    `json:"category"`
	Unit         string    `json:"unit"`
	CurrentQty   float64   `json:"current_qty"`
	ReorderLevel float64   `json:"reorder_level"`
	UnitCost     float64   `json:"unit_cost"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsLow reports whether the item is at or below its reorder level.
func (s *StockItem) IsLow() bool {
	return s.ReorderLevel > 0 && s.CurrentQty <= s.ReorderLevel
}

type StockItemRequest struct {
	Name         string  `json:"name"`
	SKU          string  `json:"sku"`
	Category     string  `json:"category"`
	Unit         string  `json:"unit"`
	ReorderLevel float64 `json:"reorder_level"`
	UnitCost     float64 `json:"unit_cost"`
	OpeningQty   float64 `json:"opening_qty"`
}

type StockTxn struct {
	ID        int       `json:"id"`
	ItemID    int       `json:"item_id"`
	ItemName  string    `json:"item_name,omitempty"`
	Type      string    `json:"type"`
	Qty       float64   `json:"qty"`
	UnitPrice float64   `json:"unit_price"`
	Total     float64   `json:"total"`
	Reason    string    `json:"reason"`
	OrderID   *int      `json:"order_id,omitempty"`
	CreatedBy *int      `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type StockMovementRequest struct {
	ItemID    int     `json:"item_id"`
	Qty       float64 `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
	Reason    string  `json:"reason"`
	OrderID   *int    `json:"order_id,omitempty"`
}

type StockAdjustRequest struct {
	ItemID int     `json:"item_id"`
	NewQty float64 `json:"new_qty"`
	Reason string  `json:"reason"`
}

type StockSummary struct {
	TotalItems    int          `json:"total_items"`
	LowStockCount int          `json:"low_stock_count"`
	StockValue    float64      `json:"stock_value"`
	LowStock      []*StockItem `json:"low_stock"`
}
