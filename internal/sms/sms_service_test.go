package sms

import (
	"context"
	"testing"

	"catering-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"9876543210":       "+919876543210",
		"98765 43210":      "+919876543210",
		"09876543210":      "+919876543210",
		"919876543210":     "+919876543210",
		"+14155550100":     "+14155550100",
		"12345":            "",
		"":                 "",
		"+91-98765-43210":  "+919876543210",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}

func TestNewFallsBackToMock(t *testing.T) {
	p := New(&config.Config{})
	mock, ok := p.(*MockSMSService)
	require.True(t, ok)

	require.NoError(t, mock.SendSMS(context.Background(), "9876543210", "hello"))
	assert.Len(t, mock.Sent, 1)
}
