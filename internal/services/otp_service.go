package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"catering-backend/internal/logging"
	"catering-backend/internal/models"
	"catering-backend/internal/repositories"
	"catering-backend/internal/sms"
	"catering-backend/internal/timeutil"
	"catering-backend/internal/validation"
)

const (
	OTPLength      = 6
	OTPExpiry      = 5 * time.Minute
	MaxOTPAttempts = 3
)

// OTPLimits caps how often codes are issued; 0 disables a limit.
type OTPLimits struct {
	Cooldown     time.Duration
	MaxPerHour   int
	MaxPerIPHour int
}

type otpStore interface {
	Create(ctx context.Context, otp *models.CustomerOTP) error
	GetLatestByPhone(ctx context.Context, phone string) (*models.CustomerOTP, error)
	IncrementAttempts(ctx context.Context, id int) error
	MarkVerified(ctx context.Context, id int) error
	CountRecent(ctx context.Context, phone string, window time.Duration) (int, error)
	CountRecentByIP(ctx context.Context, ip string, window time.Duration) (int, error)
}

// OTPService issues and checks SMS one-time codes for portal phone numbers.
type OTPService struct {
	OTPs     otpStore
	SMS      sms.SMSProvider
	Limits   OTPLimits
	Business string
}

func NewOTPService(otps *repositories.OTPRepository, provider sms.SMSProvider, limits OTPLimits, business string) *OTPService {
	return &OTPService{OTPs: otps, SMS: provider, Limits: limits, Business: business}
}

// GenerateOTP returns a random zero-padded 6-digit code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", OTPLength, n.Int64()), nil
}

func (s *OTPService) checkLimits(ctx context.Context, phone, ip string) error {
	if s.Limits.Cooldown > 0 {
		n, err := s.OTPs.CountRecent(ctx, phone, s.Limits.Cooldown)
		if err != nil {
			return fmt.Errorf("check otp cooldown: %w", err)
		}
		if n > 0 {
			return rateLimited("please wait %d seconds before requesting another code", int(s.Limits.Cooldown.Seconds()))
		}
	}
	if s.Limits.MaxPerHour > 0 {
		n, err := s.OTPs.CountRecent(ctx, phone, time.Hour)
		if err != nil {
			return fmt.Errorf("check otp hourly limit: %w", err)
		}
		if n >= s.Limits.MaxPerHour {
			return rateLimited("too many codes requested, try again in an hour")
		}
	}
	if s.Limits.MaxPerIPHour > 0 && ip != "" {
		n, err := s.OTPs.CountRecentByIP(ctx, ip, time.Hour)
		if err != nil {
			return fmt.Errorf("check otp ip limit: %w", err)
		}
		if n >= s.Limits.MaxPerIPHour {
			return rateLimited("too many requests from your network, try again later")
		}
	}
	return nil
}

// SendOTP issues a new code for phone and texts it.
func (s *OTPService) SendOTP(ctx context.Context, phone, ip string) error {
	if !validation.ValidPhone(phone) {
		return invalid("phone number must be 10 digits or include a country code")
	}
	phone = validation.NormalizePhone(phone)
	if err := s.checkLimits(ctx, phone, ip); err != nil {
		return err
	}

	code, err := GenerateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	otp := &models.CustomerOTP{
		Phone:     phone,
		OTPCode:   code,
		ExpiresAt: timeutil.Now().Add(OTPExpiry),
	}
	if ip != "" {
		otp.IPAddress = &ip
	}
	if err := s.OTPs.Create(ctx, otp); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	msg := fmt.Sprintf("%s is your %s verification code. It expires in %d minutes.",
		code, s.Business, int(OTPExpiry.Minutes()))
	if err := s.SMS.SendSMS(ctx, phone, msg); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	logging.For("OTP").Infof("code sent to %s", phone)
	return nil
}

// VerifyOTP checks code against the latest code issued to phone. A code is
// good for one successful check and MaxOTPAttempts tries.
func (s *OTPService) VerifyOTP(ctx context.Context, phone, code string) error {
	phone = validation.NormalizePhone(phone)
	otp, err := s.OTPs.GetLatestByPhone(ctx, phone)
	if errors.Is(err, repositories.ErrNotFound) {
		return unauthorized("no verification code was requested for this phone")
	}
	if err != nil {
		return err
	}

	switch {
	case timeutil.Now().After(otp.ExpiresAt):
		return unauthorized("verification code has expired, request a new one")
	case otp.Verified:
		return unauthorized("verification code was already used, request a new one")
	case otp.Attempts >= MaxOTPAttempts:
		return unauthorized("too many attempts, request a new code")
	}

	if err := s.OTPs.IncrementAttempts(ctx, otp.ID); err != nil {
		return fmt.Errorf("count otp attempt: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(otp.OTPCode), []byte(code)) != 1 {
		logging.For("OTP").Warnf("wrong code for %s (attempt %d)", phone, otp.Attempts+1)
		return unauthorized("invalid verification code")
	}
	if err := s.OTPs.MarkVerified(ctx, otp.ID); err != nil {
		return fmt.Errorf("mark otp verified: %w", err)
	}
	return nil
}
