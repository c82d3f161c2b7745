package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"catering-backend/internal/auth"
	"catering-backend/internal/config"
	"catering-backend/internal/models"
	"catering-backend/internal/repositories"
	"catering-backend/internal/sms"
	"catering-backend/internal/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCustomers struct {
	byID      map[int]*models.Customer
	passwords map[int]string
	nextID    int
}

func newFakeCustomers(cs ...*models.Customer) *fakeCustomers {
	f := &fakeCustomers{byID: map[int]*models.Customer{}, passwords: map[int]string{}, nextID: 100}
	for _, c := range cs {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeCustomers) Create(_ context.Context, c *models.Customer) error {
	f.nextID++
	c.ID = f.nextID
	c.PortalAccess = c.PasswordHash != ""
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCustomers) Get(_ context.Context, id int) (*models.Customer, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeCustomers) GetByPhone(_ context.Context, phone string) (*models.Customer, error) {
	for _, c := range f.byID {
		if c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeCustomers) SetPassword(_ context.Context, id int, hash string) error {
	f.passwords[id] = hash
	f.byID[id].PasswordHash = hash
	f.byID[id].PortalAccess = true
	return nil
}

type fakeOTPs struct {
	codes []*models.CustomerOTP
}

func (f *fakeOTPs) Create(_ context.Context, otp *models.CustomerOTP) error {
	otp.ID = len(f.codes) + 1
	otp.CreatedAt = timeutil.Now()
	f.codes = append(f.codes, otp)
	return nil
}

func (f *fakeOTPs) GetLatestByPhone(_ context.Context, phone string) (*models.CustomerOTP, error) {
	for i := len(f.codes) - 1; i >= 0; i-- {
		if f.codes[i].Phone == phone {
			cp := *f.codes[i]
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeOTPs) IncrementAttempts(_ context.Context, id int) error {
	f.codes[id-1].Attempts++
	return nil
}

func (f *fakeOTPs) MarkVerified(_ context.Context, id int) error {
	f.codes[id-1].Verified = true
	return nil
}

func (f *fakeOTPs) CountRecent(_ context.Context, phone string, window time.Duration) (int, error) {
	n := 0
	for _, c := range f.codes {
		if c.Phone == phone && timeutil.Now().Sub(c.CreatedAt) < window {
			n++
		}
	}
	return n, nil
}

func (f *fakeOTPs) CountRecentByIP(_ context.Context, ip string, window time.Duration) (int, error) {
	n := 0
	for _, c := range f.codes {
		if c.IPAddress != nil && *c.IPAddress == ip && timeutil.Now().Sub(c.CreatedAt) < window {
			n++
		}
	}
	return n, nil
}

func testJWTManager() *auth.JWTManager {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.RefreshSecret = "test-refresh-secret"
	cfg.JWT.AccessTTLMinutes = 15
	cfg.JWT.RefreshTTLHours = 168
	cfg.JWT.CustomerTTLHours = 24
	cfg.JWT.Issuer = "catering-test"
	return auth.NewJWTManager(cfg)
}

type portalFixture struct {
	svc       *CustomerPortalService
	customers *fakeCustomers
	otps      *fakeOTPs
	sms       *sms.MockSMSService
}

func newPortalFixture(limits OTPLimits, cs ...*models.Customer) *portalFixture {
	f := &portalFixture{
		customers: newFakeCustomers(cs...),
		otps:      &fakeOTPs{},
		sms:       &sms.MockSMSService{},
	}
	f.svc = &CustomerPortalService{
		Customers:  f.customers,
		OTP:        &OTPService{OTPs: f.otps, SMS: f.sms, Limits: limits, Business: "Annapurna Caterers"},
		JWTManager: testJWTManager(),
	}
	return f
}

// lastCode pulls the code out of the most recent text message.
func (f *portalFixture) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sms.Sent)
	msg := f.sms.Sent[len(f.sms.Sent)-1]
	_, body, ok := strings.Cut(msg, ": ")
	require.True(t, ok)
	return body[:OTPLength]
}

func walkIn() *models.Customer {
	return &models.Customer{ID: 42, Name: "Meera Iyer", Phone: "9876543210"}
}

func TestSignupClaimRequiresPhoneVerification(t *testing.T) {
	ctx := context.Background()
	f := newPortalFixture(OTPLimits{}, walkIn())
	req := &models.CustomerSignupRequest{Name: "Someone Else", Phone: "9876543210", Password: "hunter2hunter2"}

	_, err := f.svc.Signup(ctx, req)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, f.customers.passwords, "record must not be claimed without a code")

	req.OTP = "000000"
	_, err = f.svc.Signup(ctx, req)
	assert.ErrorIs(t, err, ErrUnauthorized, "no code was ever sent")

	require.NoError(t, f.svc.RequestOTP(ctx, "9876543210", "10.0.0.1"))
	code := f.lastCode(t)
	assert.True(t, strings.HasPrefix(f.sms.Sent[0], "9876543210: "+code+" is your Annapurna Caterers verification code"))

	wrong := "123456"
	if code == wrong {
		wrong = "654321"
	}
	req.OTP = wrong
	_, err = f.svc.Signup(ctx, req)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, f.customers.passwords)

	req.OTP = code
	resp, err := f.svc.Signup(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 42, resp.Customer.ID)
	assert.True(t, resp.Customer.PortalAccess)
	assert.Contains(t, f.customers.passwords, 42)
	assert.True(t, auth.VerifyPassword(f.customers.passwords[42], "hunter2hunter2"))

	claims, err := f.svc.JWTManager.ValidateCustomerToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.CustomerID)
}

func TestSignupCodeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	f := newPortalFixture(OTPLimits{}, walkIn())

	require.NoError(t, f.svc.RequestOTP(ctx, "9876543210", ""))
	code := f.lastCode(t)
	require.NoError(t, f.svc.OTP.VerifyOTP(ctx, "9876543210", code))

	_, err := f.svc.Signup(ctx, &models.CustomerSignupRequest{
		Name: "Meera Iyer", Phone: "9876543210", Password: "hunter2hunter2", OTP: code,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, f.customers.passwords)
}

func TestSignupExistingPortalAccount(t *testing.T) {
	c := walkIn()
	c.PortalAccess = true
	f := newPortalFixture(OTPLimits{}, c)

	_, err := f.svc.Signup(context.Background(), &models.CustomerSignupRequest{
		Name: "Meera Iyer", Phone: "9876543210", Password: "hunter2hunter2", OTP: "123456",
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, f.sms.Sent)
}

func TestSignupNewPhoneCreatesCustomer(t *testing.T) {
	f := newPortalFixture(OTPLimits{}, walkIn())

	resp, err := f.svc.Signup(context.Background(), &models.CustomerSignupRequest{
		Name: "  Ravi Kumar ", Phone: "9123456780", Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, 101, resp.Customer.ID)
	assert.Equal(t, "Ravi Kumar", resp.Customer.Name)
	assert.Equal(t, "9123456780", resp.Customer.Phone)
	assert.NotEmpty(t, resp.Token)
}

func TestVerifyOTPLimits(t *testing.T) {
	ctx := context.Background()

	t.Run("cooldown", func(t *testing.T) {
		f := newPortalFixture(OTPLimits{Cooldown: time.Minute})
		require.NoError(t, f.svc.RequestOTP(ctx, "9876543210", ""))
		assert.ErrorIs(t, f.svc.RequestOTP(ctx, "9876543210", ""), ErrRateLimited)
		assert.Len(t, f.sms.Sent, 1)
	})

	t.Run("per ip", func(t *testing.T) {
		f := newPortalFixture(OTPLimits{MaxPerIPHour: 2})
		require.NoError(t, f.svc.RequestOTP(ctx, "9876543210", "10.0.0.9"))
		require.NoError(t, f.svc.RequestOTP(ctx, "9123456780", "10.0.0.9"))
		assert.ErrorIs(t, f.svc.RequestOTP(ctx, "9000000001", "10.0.0.9"), ErrRateLimited)
	})

	t.Run("expired", func(t *testing.T) {
		f := newPortalFixture(OTPLimits{})
		require.NoError(t, f.svc.RequestOTP(ctx, "9876543210", ""))
		code := f.lastCode(t)
		f.otps.codes[0].ExpiresAt = timeutil.Now().Add(-time.Second)
		assert.ErrorIs(t, f.svc.OTP.VerifyOTP(ctx, "9876543210", code), ErrUnauthorized)
	})

	t.Run("attempts exhausted", func(t *testing.T) {
		f := newPortalFixture(OTPLimits{})
		require.NoError(t, f.svc.RequestOTP(ctx, "9876543210", ""))
		code := f.lastCode(t)
		for i := 0; i < MaxOTPAttempts; i++ {
			assert.ErrorIs(t, f.svc.OTP.VerifyOTP(ctx, "9876543210", "x"), ErrUnauthorized)
		}
		assert.ErrorIs(t, f.svc.OTP.VerifyOTP(ctx, "9876543210", code), ErrUnauthorized)
		assert.False(t, f.otps.codes[0].Verified)
	})

	t.Run("bad phone", func(t *testing.T) {
		f := newPortalFixture(OTPLimits{})
		assert.ErrorIs(t, f.svc.RequestOTP(ctx, "12", ""), ErrValidation)
	})
}

func TestLoginWithOTP(t *testing.T) {
	ctx := context.Background()
	portal := &models.Customer{ID: 7, Name: "Anil", Phone: "9123456780", PortalAccess: true}
	f := newPortalFixture(OTPLimits{}, walkIn(), portal)

	require.NoError(t, f.svc.RequestOTP(ctx, "9123456780", ""))
	resp, err := f.svc.LoginWithOTP(ctx, &models.VerifyOTPRequest{Phone: "9123456780", OTP: f.lastCode(t)})
	require.NoError(t, err)
	assert.Equal(t, 7, resp.Customer.ID)

	require.NoError(t, f.svc.RequestOTP(ctx, "9876543210", ""))
	_, err = f.svc.LoginWithOTP(ctx, &models.VerifyOTPRequest{Phone: "9876543210", OTP: f.lastCode(t)})
	assert.ErrorIs(t, err, ErrUnauthorized, "records without portal access cannot sign in")
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		assert.Len(t, code, OTPLength)
		assert.Empty(t, strings.Trim(code, "0123456789"))
	}
}
