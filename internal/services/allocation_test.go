package services

import (
	"context"
	"testing"

	"catering-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrders map[int]string

func (f fakeOrders) ExistingIDs(_ context.Context, ids []int) (map[int]string, error) {
	out := map[int]string{}
	for _, id := range ids {
		if n, ok := f[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

func TestCheckAllocations(t *testing.T) {
	ctx := context.Background()
	orders := fakeOrders{1: "ORD-000001", 2: "ORD-000002"}

	t.Run("fills order numbers", func(t *testing.T) {
		got, err := checkAllocations(ctx, orders, 100, nil, []models.Allocation{
			{OrderID: 1, Amount: 60},
			{OrderID: 2, Amount: 40},
		})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "ORD-000001", got[0].OrderNumber)
		assert.Equal(t, "ORD-000002", got[1].OrderNumber)
	})

	t.Run("single order link", func(t *testing.T) {
		id := 2
		got, err := checkAllocations(ctx, orders, 100, &id, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("unlinked", func(t *testing.T) {
		got, err := checkAllocations(ctx, orders, 100, nil, nil)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("zero order id is no link", func(t *testing.T) {
		id := 0
		_, err := checkAllocations(ctx, orders, 100, &id, []models.Allocation{{OrderID: 1, Amount: 100}})
		assert.NoError(t, err)
	})

	t.Run("both order and allocations", func(t *testing.T) {
		id := 1
		_, err := checkAllocations(ctx, orders, 100, &id, []models.Allocation{{OrderID: 2, Amount: 100}})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("sum mismatch", func(t *testing.T) {
		_, err := checkAllocations(ctx, orders, 100, nil, []models.Allocation{{OrderID: 1, Amount: 90}})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := checkAllocations(ctx, orders, 100, nil, []models.Allocation{
			{OrderID: 1, Amount: 50},
			{OrderID: 9, Amount: 50},
		})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "order 9")
	})

	t.Run("unknown single order", func(t *testing.T) {
		id := 7
		_, err := checkAllocations(ctx, orders, 100, &id, nil)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestDateRange(t *testing.T) {
	from, to, err := dateRange("2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", from)
	assert.Equal(t, "2026-03-31", to)

	from, to, err = dateRange("", "")
	require.NoError(t, err)
	assert.Empty(t, from)
	assert.Empty(t, to)

	_, _, err = dateRange("2026-04-01", "2026-03-01")
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = dateRange("yesterday", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDefaultRange(t *testing.T) {
	from, to, err := defaultRange("", "")
	require.NoError(t, err)
	assert.NotEmpty(t, from)
	assert.NotEmpty(t, to)
	assert.LessOrEqual(t, from, to)
	assert.Equal(t, "01", from[8:])

	from, to, err = defaultRange("2026-01-05", "2026-01-20")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-05", from)
	assert.Equal(t, "2026-01-20", to)
}

func TestParseDay(t *testing.T) {
	d, err := parseDay("2026-03-14", "payment_date")
	require.NoError(t, err)
	assert.Equal(t, 14, d.Day())

	_, err = parseDay("14/03/2026", "payment_date")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "payment_date")

	d, err = parseDay("", "payment_date")
	require.NoError(t, err)
	assert.Equal(t, 0, d.Hour())
}
