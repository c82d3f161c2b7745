package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"catering-backend/internal/logging"
	"catering-backend/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logging.SetOutput(io.Discard)
	m.Run()
}

func TestAddRejectsBadSpec(t *testing.T) {
	s := New()
	assert.Error(t, s.Add("broken", "every tuesday", func(context.Context) error { return nil }))
	assert.NoError(t, s.Add("reminders", "0 8 * * *", func(context.Context) error { return nil }))
	assert.NoError(t, s.Add("cache_warm", "@every 1h", func(context.Context) error { return nil }))
}

func TestRunRecordsOutcome(t *testing.T) {
	ok := metrics.ScheduledJobRuns.WithLabelValues("test_job", "ok")
	failed := metrics.ScheduledJobRuns.WithLabelValues("test_job", "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	var gotDeadline bool
	run("test_job", func(ctx context.Context) error {
		_, gotDeadline = ctx.Deadline()
		return nil
	})
	run("test_job", func(context.Context) error { return errors.New("smtp down") })

	assert.True(t, gotDeadline)
	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestStartStop(t *testing.T) {
	s := New()
	ran := make(chan struct{}, 1)
	require.NoError(t, s.Add("tick", "@every 1s", func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}))
	s.Start()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
