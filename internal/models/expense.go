package models

import "time"

var ExpenseCategories = []string{
	"groceries", "vegetables", "meat", "dairy", "gas", "transport",
	"rentals", "utensils", "decoration", "salary_advance", "misc",
}

type Expense struct {
	ID              int          `json:"id"`
	Category        string       `json:"category"`
	Description     string       `json:"description"`
	Amount          float64      `json:"amount"`
	ExpenseDate     time.Time    `json:"expense_date"`
	PaymentMethod   string       `json:"payment_method"`
	Vendor          string       `json:"vendor"`
	OrderID         *int         `json:"order_id,omitempty"`
	BulkAllocations []Allocation `json:"bulk_allocations"`
	CreatedBy       *int         `json:"created_by,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

type ExpenseRequest struct {
	Category        string       `json:"category"`
	Description     string       `json:"description"`
	Amount          float64      `json:"amount"`
	ExpenseDate     string       `json:"expense_date"`
	PaymentMethod   string       `json:"payment_method"`
	Vendor          string       `json:"vendor"`
	OrderID         *int         `json:"order_id,omitempty"`
	BulkAllocations []Allocation `json:"bulk_allocations"`
}

type ExpenseFilter struct {
	Category string
	OrderID  int
	From     string
	To       string
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}
