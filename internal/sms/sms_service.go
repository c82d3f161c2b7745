package sms

import (
	"context"
	"fmt"
	"strings"

	"catering-backend/internal/config"
	"catering-backend/internal/logging"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSProvider is an interface for sending SMS messages
type SMSProvider interface {
	SendSMS(ctx context.Context, phone, message string) error
}

// New returns a Twilio sender when credentials are configured, otherwise a
// sender that only logs.
func New(cfg *config.Config) SMSProvider {
	if cfg.Twilio.AccountSID == "" || cfg.Twilio.AuthToken == "" || cfg.Twilio.FromNumber == "" {
		logging.For("SMS").Info("Twilio not configured, SMS will be logged only")
		return &MockSMSService{}
	}
	return NewTwilioService(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber)
}

// TwilioService implements SMSProvider with the Twilio REST API.
type TwilioService struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioService(accountSID, authToken, from string) *TwilioService {
	return &TwilioService{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

// SendSMS sends a single SMS message
func (s *TwilioService) SendSMS(ctx context.Context, phone, message string) error {
	to := NormalizePhone(phone)
	if to == "" {
		return fmt.Errorf("invalid phone number: %q", phone)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(message)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s: %w", to, err)
	}
	if resp.Sid != nil {
		logging.For("SMS").WithField("sid", *resp.Sid).Debugf("Message sent to %s", to)
	}
	return nil
}

// MockSMSService logs messages instead of sending them.
type MockSMSService struct {
	Sent []string
}

func (m *MockSMSService) SendSMS(ctx context.Context, phone, message string) error {
	m.Sent = append(m.Sent, phone+": "+message)
	logging.For("SMS").Infof("[mock] to=%s msg=%q", phone, message)
	return nil
}

// NormalizePhone converts local 10-digit Indian numbers to E.164. Numbers
// already carrying a + prefix are kept.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, c := range strings.TrimSpace(phone) {
		if c >= '0' && c <= '9' || (c == '+' && i == 0) {
			b.WriteRune(c)
		}
	}
	p := b.String()
	switch {
	case strings.HasPrefix(p, "+"):
		if len(p) < 8 {
			return ""
		}
		return p
	case len(p) == 10:
		return "+91" + p
	case len(p) == 12 && strings.HasPrefix(p, "91"):
		return "+" + p
	case len(p) == 11 && strings.HasPrefix(p, "0"):
		return "+91" + p[1:]
	}
	return ""
}
