// Package validation holds the small input checks shared by services.
package validation

import (
	"fmt"
	"net/mail"
	"strings"
)

// Errors collects failed checks in order.
type Errors []string

func (e *Errors) Add(format string, args ...any) {
	*e = append(*e, fmt.Sprintf(format, args...))
}

// Require adds "<field> is required" when value is blank.
func (e *Errors) Require(field, value string) {
	if strings.TrimSpace(value) == "" {
		e.Add("%s is required", field)
	}
}

// Check adds msg when ok is false.
func (e *Errors) Check(ok bool, msg string) {
	if !ok {
		*e = append(*e, msg)
	}
}

func (e Errors) Empty() bool {
	return len(e) == 0
}

// Error joins the messages.
func (e Errors) Error() string {
	return strings.Join(e, "; ")
}

// Digits returns only the digits of s.
func Digits(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// ValidPhone accepts 10-digit local numbers and +country numbers of 8 to 15 digits.
func ValidPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	d := Digits(phone)
	if strings.HasPrefix(phone, "+") {
		return len(d) >= 8 && len(d) <= 15
	}
	return len(d) == 10
}

// NormalizePhone strips formatting from a local number, keeping a leading +.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "+") {
		return "+" + Digits(phone)
	}
	return Digits(phone)
}

func ValidEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// MinPasswordLength is enforced for staff and portal passwords.
const MinPasswordLength = 8

func ValidPassword(p string) bool {
	return len(p) >= MinPasswordLength
}

// OneOf reports whether v is in allowed.
func OneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}
