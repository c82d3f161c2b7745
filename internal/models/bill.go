package models

import "time"

const (
	BillStatusPending = "pending"
	BillStatusPartial = "partial"
	BillStatusPaid    = "paid"
)

// Payment history sources.
const (
	PaymentSourceAdvance = "advance"
	PaymentSourceAdmin   = "admin"
	PaymentSourceOnline  = "online"
	PaymentSourceMerge   = "merge"
	PaymentSourceSplit   = "split"
)

var PaymentMethods = []string{"cash", "upi", "bank_transfer", "card", "cheque", "razorpay"}

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// PaymentRecord is one entry of a bill's append-only payment log. TotalPaid,
// Remaining and Status are the bill's figures right after this entry.
type PaymentRecord struct {
	Amount     float64   `json:"amount"`
	TotalPaid  float64   `json:"total_paid"`
	Remaining  float64   `json:"remaining"`
	Status     string    `json:"status"`
	Source     string    `json:"source"`
	Method     string    `json:"method"`
	Note       string    `json:"note,omitempty"`
	Reference  string    `json:"reference,omitempty"`
	PaidAt     time.Time `json:"paid_at"`
	RecordedBy *int      `json:"recorded_by,omitempty"`
	Edited     bool      `json:"edited,omitempty"`
}

type Bill struct {
	ID              int             `json:"id"`
	BillNumber      string          `json:"bill_number"`
	OrderID         int             `json:"order_id"`
	CustomerID      int             `json:"customer_id"`
	CustomerName    string          `json:"customer_name,omitempty"`
	OrderNumber     string          `json:"order_number,omitempty"`
	TotalAmount     float64         `json:"total_amount"`
	PaidAmount      float64         `json:"paid_amount"`
	RemainingAmount float64         `json:"remaining_amount"`
	Status          string          `json:"status"`
	PaymentHistory  []PaymentRecord `json:"payment_history"`
	DocumentKey     string          `json:"document_key,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type RecordPaymentRequest struct {
	Amount    float64    `json:"amount"`
	Method    string     `json:"method"`
	Note      string     `json:"note"`
	Reference string     `json:"reference"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

type EditPaymentRequest struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
	Note   string  `json:"note"`
}

type BillFilter struct {
	Status     string
	CustomerID int
	Limit      int
	Offset     int
}

type EmailBillRequest struct {
	To string `json:"to"`
}

// CustomerDue is a customer's unpaid balance across their open bills.
type CustomerDue struct {
	CustomerID int     `json:"customer_id"`
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	Due        float64 `json:"due"`
	OpenBills  int     `json:"open_bills"`
}

type PaymentReminderRequest struct {
	MinDue  float64 `json:"min_due"`
	Message string  `json:"message"`
}

type ReminderResult struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}
