package motion

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"farmwatch-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const slotKey = "farmwatch:motion:last"

// RedisStore keeps the single slot in Redis so multiple server instances
// share the same "most recent event". The slot semantics are identical to
// MemoryStore: a write overwrites whatever was there.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{
		client: client,
		key:    slotKey,
		ttl:    ttl,
	}
}

func (s *RedisStore) Put(ctx context.Context, event models.MotionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal motion event: %w", err)
	}

	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store motion event: %w", err)
	}

	return nil
}

func (s *RedisStore) Since(ctx context.Context, since int64) (*models.MotionEvent, error) {
	data, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read motion slot: %w", err)
	}

	var event models.MotionEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal motion event: %w", err)
	}

	if event.Device == "" || event.Timestamp <= since {
		return nil, nil
	}

	return &event, nil
}
