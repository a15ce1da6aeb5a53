package notifier

import "sync"

// Signal is the in-process broadcast published after a successful motion
// submission, so same-process listeners update without waiting for the next
// poll tick.
type Signal struct {
	DeviceID  string
	Location  string
	Timestamp int64 // milliseconds since epoch; 0 means "use receive time"
}

// Bus is a minimal in-process publish/subscribe channel owned by whoever
// wires the pipeline, replacing the process-wide named-event bus the
// browser version relied on. Each subscriber owns a buffered channel;
// publishes never block, a full subscriber simply misses the signal (the
// poller picks the event up on the next tick anyway).
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Signal
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Signal)}
}

// Subscribe registers a listener and returns its id and receive channel.
func (b *Bus) Subscribe() (int, <-chan Signal) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++

	ch := make(chan Signal, 16)
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a listener and closes its channel. No-op for unknown
// ids.
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers the signal to every current subscriber without blocking.
func (b *Bus) Publish(sig Signal) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- sig:
		default:
		}
	}
}
