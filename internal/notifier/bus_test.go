package notifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()

	id1, ch1 := bus.Subscribe()
	id2, ch2 := bus.Subscribe()
	defer bus.Unsubscribe(id1)
	defer bus.Unsubscribe(id2)

	sig := Signal{DeviceID: "esp32-01", Location: "north-field", Timestamp: 1000}
	bus.Publish(sig)

	select {
	case got := <-ch1:
		assert.Equal(t, sig, got)
	case <-time.After(time.Second):
		t.Fatal("subscriber 1 did not receive the signal")
	}

	select {
	case got := <-ch2:
		assert.Equal(t, sig, got)
	case <-time.After(time.Second):
		t.Fatal("subscriber 2 did not receive the signal")
	}
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()

	id, ch := bus.Subscribe()
	bus.Unsubscribe(id)

	_, ok := <-ch
	assert.False(t, ok)

	// Unknown ids are a no-op.
	bus.Unsubscribe(id)
	bus.Unsubscribe(42)
}

func TestBusPublishNeverBlocks(t *testing.T) {
	bus := NewBus()

	id, ch := bus.Subscribe()
	defer bus.Unsubscribe(id)

	// Overfill the subscriber buffer; extra publishes are dropped instead
	// of blocking the publisher.
	for i := 0; i < cap(ch)+5; i++ {
		bus.Publish(Signal{DeviceID: "esp32-01", Timestamp: int64(i)})
	}

	require.Equal(t, cap(ch), len(ch))
}
