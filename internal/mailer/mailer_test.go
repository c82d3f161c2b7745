package mailer

import (
	"context"
	"strings"
	"testing"

	"catering-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlain(t *testing.T) {
	raw, err := Build("billing@example.com", &Message{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Your bill",
		Body:    "Thanks for your order.",
	})
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, s, "Content-Type: text/plain; charset=utf-8")
	assert.True(t, strings.HasSuffix(s, "Thanks for your order."))
}

func TestBuildWithAttachment(t *testing.T) {
	raw, err := Build("billing@example.com", &Message{
		To:      []string{"a@example.com"},
		Subject: "Bill BILL-000001",
		Body:    "Attached.",
		Attachments: []Attachment{
			{Filename: "BILL-000001.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3 fake")},
		},
	})
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "multipart/mixed; boundary=")
	assert.Contains(t, s, `filename="BILL-000001.pdf"`)
	assert.Contains(t, s, "JVBERi0xLjMgZmFrZQ==")
}

func TestNewWithoutHostLogsOnly(t *testing.T) {
	m := New(&config.Config{})
	lm, ok := m.(*LogMailer)
	require.True(t, ok)
	require.NoError(t, lm.Send(context.Background(), &Message{To: []string{"x@example.com"}, Subject: "hi"}))
	assert.Len(t, lm.Sent, 1)
}

func TestSMTPMailerRequiresRecipients(t *testing.T) {
	m := &SMTPMailer{Host: "localhost", Port: 25}
	err := m.Send(context.Background(), &Message{Subject: "no one"})
	assert.Error(t, err)
}
