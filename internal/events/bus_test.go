package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := NewBus(10)
	ch1, cancel1 := bus.Subscribe(4)
	defer cancel1()
	ch2, cancel2 := bus.Subscribe(4)
	defer cancel2()

	ev := bus.Publish(OrderCreated, "New order", "ORD-000001", map[string]int{"order_id": 1})
	assert.NotEmpty(t, ev.ID)

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case got := <-ch:
			assert.Equal(t, ev.ID, got.ID)
			assert.Equal(t, OrderCreated, got.Type)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	bus := NewBus(10)
	_, cancel := bus.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			bus.Publish(StockLow, "low", "rice", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestCancelUnsubscribes(t *testing.T) {
	bus := NewBus(10)
	ch, cancel := bus.Subscribe(1)
	assert.Equal(t, 1, bus.SubscriberCount())

	cancel()
	cancel()
	assert.Equal(t, 0, bus.SubscriberCount())

	_, open := <-ch
	assert.False(t, open)

	bus.Publish(OrderDeleted, "gone", "", nil)
}

func TestRecentIsBoundedAndNewestFirst(t *testing.T) {
	bus := NewBus(3)
	for _, msg := range []string{"a", "b", "c", "d"} {
		bus.Publish(PaymentRecorded, msg, msg, nil)
	}

	recent := bus.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "d", recent[0].Message)
	assert.Equal(t, "b", recent[2].Message)

	assert.Len(t, bus.Recent(2), 2)
}
