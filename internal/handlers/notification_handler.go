package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"catering-backend/internal/events"
	"catering-backend/internal/logging"
	"catering-backend/internal/metrics"
	"catering-backend/pkg/utils"

	"github.com/gorilla/websocket"
)

const (
	subscriberBuffer = 32
	keepAlive        = 25 * time.Second
	wsWriteTimeout   = 10 * time.Second
)

// NotificationHandler pushes bus events to staff dashboards over SSE or a
// WebSocket.
type NotificationHandler struct {
	Bus      *events.Bus
	origins  []string
	upgrader websocket.Upgrader
}

// NewNotificationHandler accepts WebSocket upgrades from the same host or from
// one of allowedOrigins, the list CORS is configured with.
func NewNotificationHandler(bus *events.Bus, allowedOrigins []string) *NotificationHandler {
	h := &NotificationHandler{Bus: bus, origins: allowedOrigins}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin passes requests without an Origin header, which browsers always
// send on cross-site upgrades.
func (h *NotificationHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}

// Recent returns the latest events, newest first. ?limit= defaults to 20.
func (h *NotificationHandler) Recent(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, h.Bus.Recent(utils.QueryInt(r, "limit", 20)))
}

// Stream is a text/event-stream of bus events.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, cancel := h.Bus.Subscribe(subscriberBuffer)
	defer cancel()
	gauge := metrics.NotificationSubscribers.WithLabelValues("sse")
	gauge.Inc()
	defer gauge.Dec()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Type, data)
			flusher.Flush()
		}
	}
}

// WebSocket delivers the same events as Stream, one JSON message each.
func (h *NotificationHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	log := logging.For("Notifications")
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ch, cancel := h.Bus.Subscribe(subscriberBuffer)
	defer cancel()
	gauge := metrics.NotificationSubscribers.WithLabelValues("websocket")
	gauge.Inc()
	defer gauge.Dec()

	// The client never sends anything we use; reading detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		case ev, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				log.WithError(err).Debug("websocket write failed")
				return
			}
		}
	}
}
