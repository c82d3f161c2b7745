package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPath(t *testing.T) {
	assert.Equal(t, "/api/orders/:id/split/date", CanonicalPath("/api/orders/42/split/date"))
	assert.Equal(t, "/api/bills/:id/payments/:id", CanonicalPath("/api/bills/7/payments/0"))
	assert.Equal(t, "/health", CanonicalPath("/health"))
	assert.Equal(t, "/", CanonicalPath("/"))
}

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "error", Result(errors.New("x")))
}
