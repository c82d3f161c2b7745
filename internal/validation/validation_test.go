package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsCollects(t *testing.T) {
	var errs Errors
	errs.Require("name", "  ")
	errs.Require("phone", "9876543210")
	errs.Check(false, "amount must be positive")
	errs.Add("status %q is invalid", "done")

	assert.False(t, errs.Empty())
	assert.Equal(t, `name is required; amount must be positive; status "done" is invalid`, errs.Error())
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("9876543210"))
	assert.True(t, ValidPhone("98765-43210"))
	assert.True(t, ValidPhone("+14155550100"))
	assert.False(t, ValidPhone("12345"))
	assert.False(t, ValidPhone(""))
	assert.Equal(t, "9876543210", NormalizePhone(" 98765 43210 "))
	assert.Equal(t, "+919876543210", NormalizePhone("+91 98765 43210"))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("chef@example.com"))
	assert.False(t, ValidEmail("Chef <chef@example.com>"))
	assert.False(t, ValidEmail("nope"))
	assert.False(t, ValidEmail(""))
}

func TestOneOfAndPassword(t *testing.T) {
	assert.True(t, OneOf("cash", []string{"cash", "upi"}))
	assert.False(t, OneOf("gold", []string{"cash", "upi"}))
	assert.True(t, ValidPassword("longenough"))
	assert.False(t, ValidPassword("short"))
}
