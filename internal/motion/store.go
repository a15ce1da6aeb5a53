package motion

import (
	"context"
	"sync"

	"farmwatch-backend/internal/models"
)

// Store is the single-slot event store behind the /api/motion endpoint.
// It retains at most one event: the most recently submitted one. A second
// submission overwrites the first even if no poller observed it.
type Store interface {
	// Put overwrites the slot with the given event.
	Put(ctx context.Context, event models.MotionEvent) error

	// Since returns the stored event when it is newer than the given
	// millisecond timestamp and carries a device id, nil otherwise. The
	// check is level-triggered: repeated calls with the same argument
	// return the same result until the slot changes.
	Since(ctx context.Context, since int64) (*models.MotionEvent, error)
}

// MemoryStore keeps the slot in process memory. The zero value is ready to
// use; each instance is fully isolated.
type MemoryStore struct {
	mu    sync.RWMutex
	event models.MotionEvent
	set   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Put(_ context.Context, event models.MotionEvent) error {
	s.mu.Lock()
	s.event = event
	s.set = true
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Since(_ context.Context, since int64) (*models.MotionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.set || s.event.Device == "" || s.event.Timestamp <= since {
		return nil, nil
	}

	event := s.event
	return &event, nil
}
