package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestCheckBasic(t *testing.T) {
	ctx := context.Background()
	cacheOK := func(context.Context) bool { return true }
	cacheDown := func(context.Context) bool { return false }

	s := NewHealthChecker(pinger{}, cacheOK).CheckBasic(ctx)
	assert.Equal(t, "healthy", s.Status)
	assert.Equal(t, "healthy", s.Cache.Status)

	s = NewHealthChecker(pinger{}, cacheDown).CheckBasic(ctx)
	assert.Equal(t, "degraded", s.Status)

	s = NewHealthChecker(pinger{}, nil).CheckBasic(ctx)
	assert.Equal(t, "healthy", s.Status)
	assert.Equal(t, "disabled", s.Cache.Status)

	s = NewHealthChecker(pinger{err: errors.New("refused")}, cacheOK).CheckBasic(ctx)
	assert.Equal(t, "unhealthy", s.Status)
	assert.Equal(t, "unhealthy", s.Database.Status)
}

func TestCheckDetailed(t *testing.T) {
	d := NewHealthChecker(pinger{}, nil).CheckDetailed(context.Background())
	assert.Equal(t, "healthy", d.Status)
	assert.Positive(t, d.Goroutines)
	assert.NotEmpty(t, d.Uptime)
}
