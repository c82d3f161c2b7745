package models

import "time"

type Customer struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Address      string    `json:"address"`
	Notes        string    `json:"notes"`
	PasswordHash string    `json:"-"`
	PortalAccess bool      `json:"portal_access"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type UpdateCustomerRequest = CreateCustomerRequest

// CustomerSummary is the CRM card for one customer.
type CustomerSummary struct {
	Customer    *Customer  `json:"customer"`
	OrderCount  int        `json:"order_count"`
	TotalBilled float64    `json:"total_billed"`
	TotalPaid   float64    `json:"total_paid"`
	Outstanding float64    `json:"outstanding"`
	LastOrderAt *time.Time `json:"last_order_at,omitempty"`
}

// Customer portal

// CustomerSignupRequest creates a portal account. OTP is required when the
// phone already belongs to a customer on file.
type CustomerSignupRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
	OTP      string `json:"otp,omitempty"`
}

type CustomerLoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type CustomerAuthResponse struct {
	Token    string    `json:"token"`
	Customer *Customer `json:"customer"`
}

// PortalOrderRequest is an order placed by a customer. Session amounts are
// estimates staff confirm later; pricing fields stay with staff.
type PortalOrderRequest struct {
	EventName       string           `json:"event_name"`
	Venue           string           `json:"venue"`
	MealTypeAmounts Sessions         `json:"meal_type_amounts"`
	Services        []string         `json:"services"`
	Notes           string           `json:"notes"`
	Items           []OrderItemInput `json:"items"`
}
