package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catering-backend/internal/auth"
	"catering-backend/internal/config"
	"catering-backend/internal/logging"
	"catering-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers map[int]*models.User

func (f fakeUsers) Get(_ context.Context, id int) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func testJWT() *auth.JWTManager {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.RefreshSecret = "test-refresh"
	cfg.JWT.AccessTTLMinutes = 15
	cfg.JWT.RefreshTTLHours = 1
	cfg.JWT.CustomerTTLHours = 1
	return auth.NewJWTManager(cfg)
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	role, _ := GetRoleFromContext(r.Context())
	w.Write([]byte(role))
}

func TestMain(m *testing.M) {
	logging.SetOutput(io.Discard)
	m.Run()
}

func TestAuthenticate(t *testing.T) {
	jwtm := testJWT()
	users := fakeUsers{
		1: {ID: 1, Email: "admin@example.com", Role: models.RoleAdmin, IsActive: true},
		2: {ID: 2, Email: "off@example.com", Role: models.RoleStaff, IsActive: false},
		3: {ID: 3, Email: "old@example.com", Role: models.RoleStaff, IsActive: true, TokenVersion: 2},
	}
	h := NewAuthMiddleware(jwtm, users).Authenticate(http.HandlerFunc(okHandler))

	token := func(u *models.User) string {
		s, err := jwtm.GenerateToken(u)
		require.NoError(t, err)
		return s
	}

	t.Run("bearer token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		r.Header.Set("Authorization", "Bearer "+token(users[1]))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, models.RoleAdmin, rec.Body.String())
	})

	t.Run("cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		r.AddCookie(&http.Cookie{Name: auth.AccessCookieName, Value: token(users[1])})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		r.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("suspended", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		r.Header.Set("Authorization", "Bearer "+token(users[2]))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("revoked by logout", func(t *testing.T) {
		stale := *users[3]
		stale.TokenVersion = 1
		r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		r.Header.Set("Authorization", "Bearer "+token(&stale))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		refresh, err := jwtm.GenerateRefreshToken(users[1])
		require.NoError(t, err)
		r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		r.Header.Set("Authorization", "Bearer "+refresh)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	jwtm := testJWT()
	users := fakeUsers{
		1: {ID: 1, Role: models.RoleAdmin, IsActive: true},
		2: {ID: 2, Role: models.RoleStaff, IsActive: true},
	}
	m := NewAuthMiddleware(jwtm, users)
	guarded := m.RequireRole(models.RoleAdmin, models.RoleManager)(http.HandlerFunc(okHandler))

	call := func(h http.Handler, u *models.User) int {
		tok, err := jwtm.GenerateToken(u)
		require.NoError(t, err)
		r := httptest.NewRequest(http.MethodDelete, "/api/orders/1", nil)
		r.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call(guarded, users[1]))
	assert.Equal(t, http.StatusForbidden, call(guarded, users[2]))

	// behind Authenticate the role comes from the context
	chained := m.Authenticate(guarded)
	assert.Equal(t, http.StatusOK, call(chained, users[1]))
	assert.Equal(t, http.StatusForbidden, call(chained, users[2]))

	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCustomerAuth(t *testing.T) {
	jwtm := testJWT()
	h := NewCustomerAuthMiddleware(jwtm).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetCustomerIDFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, 42, id)
	}))

	tok, err := jwtm.GenerateCustomerToken(&models.Customer{ID: 42, Phone: "9876543210"})
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	r.AddCookie(&http.Cookie{Name: auth.CustomerCookieName, Value: tok})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)

	staff, err := jwtm.GenerateToken(&models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)
	r = httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	r.Header.Set("Authorization", "Bearer "+staff)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPanicRecovery(t *testing.T) {
	h := PanicRecovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "Internal server error"}`, rec.Body.String())
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	call := func(ip string) int {
		r := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		r.RemoteAddr = ip + ":5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2"))

	assert.Equal(t, 0, rl.Cleanup(time.Hour))
	assert.Equal(t, 2, rl.Cleanup(0))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.168.1.5:40000"
	assert.Equal(t, "192.168.1.5", ClientIP(r))

	r.Header.Set("X-Real-IP", "10.1.1.1")
	assert.Equal(t, "10.1.1.1", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(r))
}

func TestStatusRecorder(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, statusCode: http.StatusOK}
	sr.WriteHeader(http.StatusCreated)
	sr.Write([]byte("hello"))
	sr.Flush()

	assert.Equal(t, http.StatusCreated, sr.statusCode)
	assert.Equal(t, 5, sr.bytesWritten)
	assert.True(t, rec.Flushed)

	_, _, err := sr.Hijack()
	assert.Error(t, err)
}

func TestMetricsAndLoggerPassThrough(t *testing.T) {
	h := RequestLogger(MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/12", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
