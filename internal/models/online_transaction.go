package models

import "time"

const (
	OnlineTxStatusPending = "pending"
	OnlineTxStatusSuccess = "success"
	OnlineTxStatusFailed  = "failed"
)

// OnlineTransaction represents a Razorpay payment against a bill.
type OnlineTransaction struct {
	ID                int       `json:"id"`
	RazorpayOrderID   string    `json:"razorpay_order_id"`
	RazorpayPaymentID string    `json:"razorpay_payment_id,omitempty"`
	BillID            int       `json:"bill_id"`
	CustomerID        int       `json:"customer_id"`
	Amount            float64   `json:"amount"`
	Method            string    `json:"method,omitempty"`
	Status            string    `json:"status"`
	FailureReason     string    `json:"failure_reason,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type CreateOnlinePaymentRequest struct {
	BillID int     `json:"bill_id"`
	Amount float64 `json:"amount"`
}

type CreateOnlinePaymentResponse struct {
	RazorpayOrderID string  `json:"razorpay_order_id"`
	AmountPaise     int64   `json:"amount_paise"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	KeyID           string  `json:"key_id"`
	CustomerName    string  `json:"customer_name"`
	CustomerPhone   string  `json:"customer_phone"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}
