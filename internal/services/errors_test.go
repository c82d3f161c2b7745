package services

import (
	"errors"
	"fmt"
	"testing"

	"catering-backend/internal/repositories"

	"github.com/stretchr/testify/assert"
)

func TestServiceErrorsMatchKinds(t *testing.T) {
	err := invalid("amount %s", "must be positive")
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "amount must be positive", err.Error())

	wrapped := fmt.Errorf("create: %w", notFound("order"))
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, "create: order not found", wrapped.Error())
}

func TestLookup(t *testing.T) {
	assert.ErrorIs(t, lookup(repositories.ErrNotFound, "bill"), ErrNotFound)
	other := errors.New("connection reset")
	assert.Equal(t, other, lookup(other, "bill"))
	assert.NoError(t, lookup(nil, "bill"))
}
