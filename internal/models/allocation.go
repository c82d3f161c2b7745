package models

// Allocation assigns part of a cost record to one order.
type Allocation struct {
	OrderID     int     `json:"order_id"`
	Amount      float64 `json:"amount"`
	OrderNumber string  `json:"order_number,omitempty"`
}
