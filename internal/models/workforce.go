package models

import "time"

type WorkforceMember struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	DailyWage float64   `json:"daily_wage"`
	IsActive  bool      `json:"is_active"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type WorkforceMemberRequest struct {
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Role      string  `json:"role"`
	DailyWage float64 `json:"daily_wage"`
	IsActive  *bool   `json:"is_active,omitempty"`
	Notes     string  `json:"notes"`
}

type WorkforcePayment struct {
	ID              int          `json:"id"`
	MemberID        int          `json:"member_id"`
	MemberName      string       `json:"member_name,omitempty"`
	Amount          float64      `json:"amount"`
	PaymentDate     time.Time    `json:"payment_date"`
	PaymentMethod   string       `json:"payment_method"`
	Notes           string       `json:"notes"`
	OrderID         *int         `json:"order_id,omitempty"`
	BulkAllocations []Allocation `json:"bulk_allocations"`
	CreatedBy       *int         `json:"created_by,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

type WorkforcePaymentRequest struct {
	MemberID        int          `json:"member_id"`
	Amount          float64      `json:"amount"`
	PaymentDate     string       `json:"payment_date"`
	PaymentMethod   string       `json:"payment_method"`
	Notes           string       `json:"notes"`
	OrderID         *int         `json:"order_id,omitempty"`
	BulkAllocations []Allocation `json:"bulk_allocations"`
}

type WorkforceMemberSummary struct {
	Member        *WorkforceMember `json:"member"`
	TotalPaid     float64          `json:"total_paid"`
	PaymentCount  int              `json:"payment_count"`
	LastPaymentAt *time.Time       `json:"last_payment_at,omitempty"`
}
