package handlers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"catering-backend/internal/events"
	"catering-backend/internal/health"
	"catering-backend/internal/logging"
	"catering-backend/internal/middleware"
	"catering-backend/internal/services"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logging.SetOutput(io.Discard)
	m.Run()
}

// serviceErr produces the same sentinels the services return.
type serviceErr struct{ target error }

func (e serviceErr) Error() string        { return "boom" }
func (e serviceErr) Is(target error) bool { return target == e.target }

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{serviceErr{services.ErrValidation}, http.StatusBadRequest},
		{serviceErr{services.ErrNotFound}, http.StatusNotFound},
		{serviceErr{services.ErrUnauthorized}, http.StatusUnauthorized},
		{serviceErr{services.ErrForbidden}, http.StatusForbidden},
		{serviceErr{services.ErrConflict}, http.StatusConflict},
		{serviceErr{services.ErrRateLimited}, http.StatusTooManyRequests},
		{fmt.Errorf("load order: %w", serviceErr{services.ErrNotFound}), http.StatusNotFound},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestWriteError(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/orders/9", nil)
	w := httptest.NewRecorder()
	writeError(w, r, serviceErr{services.ErrNotFound})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "boom")
}

func TestDecode(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Asha"}`))
	require.True(t, decode(w, r, &v))
	assert.Equal(t, "Asha", v.Name)

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	assert.False(t, decode(w, r, &v))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPathInt(t *testing.T) {
	r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "42", "index": "x"})

	w := httptest.NewRecorder()
	id, ok := pathID(w, r)
	require.True(t, ok)
	assert.Equal(t, 42, id)

	w = httptest.NewRecorder()
	_, ok = pathInt(w, r, "index")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActorFrom(t *testing.T) {
	ctx := context.WithValue(context.Background(), middleware.UserIDKey, 7)
	ctx = context.WithValue(ctx, middleware.RoleKey, "manager")
	r := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	r.RemoteAddr = "10.0.0.5:5123"

	a := actorFrom(r)
	assert.Equal(t, 7, a.UserID)
	assert.Equal(t, "manager", a.Role)
	assert.Equal(t, "10.0.0.5", a.IP)
}

func TestNotificationRecent(t *testing.T) {
	bus := events.NewBus(10)
	bus.Publish(events.OrderCreated, "Order created", "ORD-000001", nil)
	bus.Publish(events.PaymentRecorded, "Payment", "BILL-000001", nil)

	w := httptest.NewRecorder()
	NewNotificationHandler(bus, nil).Recent(w, httptest.NewRequest(http.MethodGet, "/api/notifications?limit=1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), events.PaymentRecorded)
	assert.NotContains(t, w.Body.String(), events.OrderCreated)
}

func waitForSubscribers(t *testing.T, bus *events.Bus, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return bus.SubscriberCount() == n }, time.Second, 5*time.Millisecond)
}

func TestNotificationStream(t *testing.T) {
	bus := events.NewBus(10)
	srv := httptest.NewServer(http.HandlerFunc(NewNotificationHandler(bus, nil).Stream))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	waitForSubscribers(t, bus, 1)
	ev := bus.Publish(events.StockLow, "Low stock", "Paneer below 5 kg", nil)

	var lines []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		lines = append(lines, line)
		if strings.HasPrefix(line, "data: ") {
			break
		}
	}
	resp.Body.Close()

	body := strings.Join(lines, "\n")
	assert.Contains(t, body, "id: "+ev.ID)
	assert.Contains(t, body, "event: stock.low")
	assert.Contains(t, body, `"message":"Paneer below 5 kg"`)
	waitForSubscribers(t, bus, 0)
}

func TestNotificationWebSocket(t *testing.T) {
	bus := events.NewBus(10)
	srv := httptest.NewServer(http.HandlerFunc(NewNotificationHandler(bus, nil).WebSocket))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	waitForSubscribers(t, bus, 1)
	bus.Publish(events.OrderSubmitted, "New customer order", "ORD-000004", nil)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got events.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, events.OrderSubmitted, got.Type)
	assert.Equal(t, "ORD-000004", got.Message)
}

func TestNotificationWebSocketOrigin(t *testing.T) {
	bus := events.NewBus(10)
	srv := httptest.NewServer(http.HandlerFunc(NewNotificationHandler(bus, []string{"https://admin.example.com"}).WebSocket))
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	dial := func(origin string) (*http.Response, error) {
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {origin}})
		if err == nil {
			conn.Close()
		}
		return resp, err
	}

	resp, err := dial("https://evil.example.net")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, err = dial("https://admin.example.com")
	assert.NoError(t, err)

	_, err = dial(srv.URL)
	assert.NoError(t, err, "same host")
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(health.NewHealthChecker(pinger{}, nil))
	w := httptest.NewRecorder()
	h.ReadinessHealth(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	cacheDown := func(context.Context) bool { return false }
	h = NewHealthHandler(health.NewHealthChecker(pinger{}, cacheDown))
	w = httptest.NewRecorder()
	h.ReadinessHealth(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)

	h = NewHealthHandler(health.NewHealthChecker(pinger{err: errors.New("refused")}, nil))
	w = httptest.NewRecorder()
	h.ReadinessHealth(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	h.BasicHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
