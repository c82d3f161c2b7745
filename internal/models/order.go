package models

import "time"

const (
	OrderStatusPending    = "pending"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

const (
	OrderSourceAdmin    = "admin"
	OrderSourceCustomer = "customer"
)

// MealSession is one dated meal/event slot of an order.
type MealSession struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
	Guests int     `json:"guests"`
	Time   string  `json:"time,omitempty"`
	Notes  string  `json:"notes,omitempty"`
}

// Sessions maps a session key (e.g. "lunch", "dinner_day2") to its slot.
type Sessions map[string]MealSession

// Stall is an ad-hoc cost line item (live counters, chaat stall, ...).
type Stall struct {
	Name  string  `json:"name"`
	Cost  float64 `json:"cost"`
	Notes string  `json:"notes,omitempty"`
}

type Order struct {
	ID               int       `json:"id"`
	OrderNumber      string    `json:"order_number"`
	CustomerID       int       `json:"customer_id"`
	CustomerName     string    `json:"customer_name,omitempty"`
	CustomerPhone    string    `json:"customer_phone,omitempty"`
	EventName        string    `json:"event_name"`
	Venue            string    `json:"venue"`
	Status           string    `json:"status"`
	Source           string    `json:"source"`
	MealTypeAmounts  Sessions  `json:"meal_type_amounts"`
	Stalls           []Stall   `json:"stalls"`
	Services         []string  `json:"services"`
	TransportCost    float64   `json:"transport_cost"`
	WaterCost        float64   `json:"water_cost"`
	Discount         float64   `json:"discount"`
	TotalAmount      float64   `json:"total_amount"`
	AdvanceAmount    float64   `json:"advance_amount"`
	RemainingAmount  float64   `json:"remaining_amount"`
	Notes            string    `json:"notes"`
	SplitFromOrderID *int      `json:"split_from_order_id,omitempty"`
	CreatedBy        *int      `json:"created_by,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Items []*OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	ID         int       `json:"id"`
	OrderID    int       `json:"order_id"`
	MenuItemID *int      `json:"menu_item_id,omitempty"`
	Name       string    `json:"name"`
	SessionKey string    `json:"session_key"`
	Quantity   float64   `json:"quantity"`
	UnitPrice  float64   `json:"unit_price"`
	Amount     float64   `json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
}

type OrderItemInput struct {
	MenuItemID *int    `json:"menu_item_id,omitempty"`
	Name       string  `json:"name"`
	SessionKey string  `json:"session_key"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
}

type CreateOrderRequest struct {
	CustomerID      int              `json:"customer_id"`
	EventName       string           `json:"event_name"`
	Venue           string           `json:"venue"`
	MealTypeAmounts Sessions         `json:"meal_type_amounts"`
	Stalls          []Stall          `json:"stalls"`
	Services        []string         `json:"services"`
	TransportCost   float64          `json:"transport_cost"`
	WaterCost       float64          `json:"water_cost"`
	Discount        float64          `json:"discount"`
	AdvanceAmount   float64          `json:"advance_amount"`
	PaymentMethod   string           `json:"payment_method"`
	Notes           string           `json:"notes"`
	Items           []OrderItemInput `json:"items"`
}

// UpdateOrderRequest replaces the editable parts of an order. Items, when
// non-nil, replace the order's items.
type UpdateOrderRequest struct {
	EventName       string            `json:"event_name"`
	Venue           string            `json:"venue"`
	MealTypeAmounts Sessions          `json:"meal_type_amounts"`
	Stalls          []Stall           `json:"stalls"`
	Services        []string          `json:"services"`
	TransportCost   float64           `json:"transport_cost"`
	WaterCost       float64           `json:"water_cost"`
	Discount        float64           `json:"discount"`
	Notes           string            `json:"notes"`
	Items           *[]OrderItemInput `json:"items,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type SplitByDateRequest struct {
	Date string `json:"date"`
}

type SplitBySessionRequest struct {
	SessionKeys []string `json:"session_keys"`
}

// SplitResult describes both sides of a split. Original is nil when the
// source order had no sessions left and was removed.
type SplitResult struct {
	Original        *Order `json:"original,omitempty"`
	OriginalBill    *Bill  `json:"original_bill,omitempty"`
	OriginalDeleted bool   `json:"original_deleted"`
	NewOrder        *Order `json:"new_order"`
	NewBill         *Bill  `json:"new_bill"`
	MovedItems      int    `json:"moved_items"`
}

type MergeOrdersRequest struct {
	PrimaryOrderID    int   `json:"primary_order_id"`
	SecondaryOrderIDs []int `json:"secondary_order_ids"`
}

type MergeResult struct {
	Order           *Order            `json:"order"`
	Bill            *Bill             `json:"bill"`
	RenamedSessions map[string]string `json:"renamed_sessions,omitempty"`
	DeletedOrderIDs []int             `json:"deleted_order_ids"`
	MovedItems      int               `json:"moved_items"`
}

type OrderFilter struct {
	Status     string
	CustomerID int
	Source     string
	From       string
	To         string
	Search     string
	Limit      int
	Offset     int
}
