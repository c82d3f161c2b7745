package auth

import (
	"errors"
	"time"

	"catering-backend/internal/config"
	"catering-backend/internal/models"
	"catering-backend/internal/timeutil"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeTemp    = "2fa_pending"
)

type Claims struct {
	UserID       int    `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Type         string `json:"type"`
	TokenVersion int    `json:"tv"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	cfg *config.Config
}

func NewJWTManager(cfg *config.Config) *JWTManager {
	return &JWTManager{cfg: cfg}
}

func (j *JWTManager) AccessTTL() time.Duration {
	return time.Duration(j.cfg.JWT.AccessTTLMinutes) * time.Minute
}

func (j *JWTManager) RefreshTTL() time.Duration {
	return time.Duration(j.cfg.JWT.RefreshTTLHours) * time.Hour
}

func (j *JWTManager) sign(user *models.User, typ string, ttl time.Duration, secret string) (string, error) {
	now := timeutil.Now()
	claims := &Claims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		Type:         typ,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    j.cfg.JWT.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (j *JWTManager) parse(tokenString, typ, secret string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Type != typ {
		return nil, errors.New("invalid token type")
	}
	return claims, nil
}

// GenerateToken creates a short-lived access token for a user
func (j *JWTManager) GenerateToken(user *models.User) (string, error) {
	return j.sign(user, TokenTypeAccess, j.AccessTTL(), j.cfg.JWT.Secret)
}

// ValidateToken verifies an access token and returns the claims
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	return j.parse(tokenString, TokenTypeAccess, j.cfg.JWT.Secret)
}

// GenerateRefreshToken creates a long-lived token carrying the user's token
// version. Bumping the version on logout revokes it.
func (j *JWTManager) GenerateRefreshToken(user *models.User) (string, error) {
	return j.sign(user, TokenTypeRefresh, j.RefreshTTL(), j.cfg.JWT.RefreshSecret)
}

func (j *JWTManager) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.parse(tokenString, TokenTypeRefresh, j.cfg.JWT.RefreshSecret)
}

// GenerateTempToken creates a short-lived token for 2FA verification (5 minutes)
func (j *JWTManager) GenerateTempToken(user *models.User) (string, error) {
	return j.sign(user, TokenTypeTemp, 5*time.Minute, j.cfg.JWT.Secret)
}

// ValidateTempToken verifies a temporary 2FA token and returns the claims
func (j *JWTManager) ValidateTempToken(tokenString string) (*Claims, error) {
	return j.parse(tokenString, TokenTypeTemp, j.cfg.JWT.Secret)
}
