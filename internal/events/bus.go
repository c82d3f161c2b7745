// Package events is the in-process notification bus. Services publish
// business events; the SSE and WebSocket endpoints fan them out to staff.
package events

import (
	"sync"
	"time"

	"catering-backend/internal/timeutil"

	"github.com/google/uuid"
)

// Event types.
const (
	OrderCreated         = "order.created"
	OrderSubmitted       = "order.customer_submitted"
	OrderStatusChanged   = "order.status_changed"
	OrderSplit           = "order.split"
	OrderMerged          = "order.merged"
	OrderDeleted         = "order.deleted"
	PaymentRecorded      = "bill.payment_recorded"
	PaymentEdited        = "bill.payment_edited"
	OnlinePaymentCreated = "bill.payment_online"
	StockLow             = "stock.low"
	SessionReminder      = "session.reminder"
)

type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher is the side services depend on.
type Publisher interface {
	Publish(typ, title, message string, data any) Event
}

type Bus struct {
	mu        sync.RWMutex
	subs      map[int]chan Event
	nextID    int
	recent    []Event
	maxRecent int
}

// NewBus keeps the last maxRecent events for late subscribers.
func NewBus(maxRecent int) *Bus {
	if maxRecent <= 0 {
		maxRecent = 50
	}
	return &Bus{
		subs:      make(map[int]chan Event),
		maxRecent: maxRecent,
	}
}

// Publish stamps and delivers an event. Subscribers whose buffer is full
// miss it rather than block the publisher.
func (b *Bus) Publish(typ, title, message string, data any) Event {
	ev := Event{
		ID:        uuid.NewString(),
		Type:      typ,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: timeutil.Now(),
	}

	b.mu.Lock()
	b.recent = append(b.recent, ev)
	if len(b.recent) > b.maxRecent {
		b.recent = b.recent[len(b.recent)-b.maxRecent:]
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	b.mu.Unlock()

	return ev
}

// Subscribe registers a listener. The returned cancel func unregisters it and
// closes the channel; it is safe to call more than once.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// Recent returns up to n of the latest events, newest first.
func (b *Bus) Recent(n int) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n <= 0 || n > len(b.recent) {
		n = len(b.recent)
	}
	out := make([]Event, 0, n)
	for i := len(b.recent) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, b.recent[i])
	}
	return out
}

func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
