package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in, want string
		ok       bool
	}{
		{"2026-11-01", "2026-11-01", true},
		{" 2026-11-01 ", "2026-11-01", true},
		{"2026-10-31T20:00:00Z", "2026-11-01", true},
		{"2026-11-01T10:00:00+05:30", "2026-11-01", true},
		{"", "", false},
		{"01/11/2026", "", false},
	}
	for _, tc := range cases {
		got, err := NormalizeDate(tc.in)
		if !tc.ok {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestSameDate(t *testing.T) {
	assert.True(t, SameDate("2026-11-01", "2026-10-31T19:00:00Z"))
	assert.False(t, SameDate("2026-11-01", "2026-11-02"))
	assert.False(t, SameDate("garbage", "garbage"))
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2026, 10, 31, 20, 15, 0, 0, time.UTC)
	got := StartOfDay(in)
	assert.Equal(t, "2026-11-01 00:00:00", got.Format("2006-01-02 15:04:05"))
	assert.Equal(t, IST.String(), got.Location().String())
}
