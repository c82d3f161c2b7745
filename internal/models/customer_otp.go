package models

import "time"

// CustomerOTP is a one-time code sent by SMS to verify a portal phone number.
type CustomerOTP struct {
	ID        int       `json:"id"`
	Phone     string    `json:"phone"`
	OTPCode   string    `json:"-"`
	IPAddress *string   `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Verified  bool      `json:"verified"`
	Attempts  int       `json:"attempts"`
}

type SendOTPRequest struct {
	Phone string `json:"phone"`
}

type VerifyOTPRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}
