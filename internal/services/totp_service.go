package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"

	"catering-backend/internal/auth"
	"catering-backend/internal/models"
	"catering-backend/internal/repositories"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

type TOTPService struct {
	userRepo *repositories.UserRepository
	issuer   string
}

func NewTOTPService(userRepo *repositories.UserRepository, issuer string) *TOTPService {
	if issuer == "" {
		issuer = "Catering"
	}
	return &TOTPService{userRepo: userRepo, issuer: issuer}
}

// GenerateSetup creates a new TOTP secret and QR code for a user
func (s *TOTPService) GenerateSetup(ctx context.Context, user *models.User) (*models.TOTPSetupResponse, error) {
	if user.TOTPEnabled {
		return nil, invalid("two-factor authentication is already enabled")
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, err
	}

	// Store the secret (not yet enabled)
	if err := s.userRepo.SetTOTPSecret(ctx, user.ID, key.Secret()); err != nil {
		return nil, err
	}

	qrImage, err := key.Image(200, 200)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, qrImage); err != nil {
		return nil, err
	}

	return &models.TOTPSetupResponse{
		Secret:      key.Secret(),
		QRCode:      "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Issuer:      s.issuer,
		AccountName: user.Email,
	}, nil
}

// VerifyAndEnable verifies a TOTP code and enables 2FA for the user
func (s *TOTPService) VerifyAndEnable(ctx context.Context, userID int, code string) error {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return lookup(err, "user")
	}
	if user.TOTPSecret == "" {
		return invalid("start two-factor setup first")
	}
	if !totp.Validate(code, user.TOTPSecret) {
		return invalid("invalid verification code")
	}
	return s.userRepo.EnableTOTP(ctx, userID)
}

// Verify validates a TOTP code during login
func (s *TOTPService) Verify(ctx context.Context, userID int, code string) error {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return lookup(err, "user")
	}
	if !user.TOTPEnabled || user.TOTPSecret == "" {
		return invalid("two-factor authentication is not enabled")
	}
	if !totp.Validate(code, user.TOTPSecret) {
		return unauthorized("invalid verification code")
	}
	return nil
}

// Disable turns 2FA off after checking the password and a current code.
func (s *TOTPService) Disable(ctx context.Context, userID int, password, code string) error {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return lookup(err, "user")
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return unauthorized("password is incorrect")
	}
	if !totp.Validate(code, user.TOTPSecret) {
		return invalid("invalid verification code")
	}
	return s.userRepo.DisableTOTP(ctx, userID)
}
