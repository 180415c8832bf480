package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dkotelnikov/spotlist/internal/common"
)

// DefaultDraftTTL bounds how long an abandoned draft is kept.
const DefaultDraftTTL = 14 * 24 * time.Hour

// RedisStore persists drafts in Redis, for deployments where drafts must
// survive the device the form was started on.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, key string, d *Draft) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	if err := s.rdb.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, key string) (*Draft, error) {
	payload, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("loading draft: %w", err)
	}

	var d Draft
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("decoding draft: %w", err)
	}
	return &d, nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("clearing draft: %w", err)
	}
	return nil
}
