// Package cache implements the short-lived confirmation-code store on
// Redis. Two record families share it: pending records keyed by a 5-digit
// code (15 min TTL) and resend markers keyed by the address itself (1 min
// TTL). Records are write-once-then-expire; nothing deletes them
// explicitly, they fall out when their TTL lapses.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spaps/rental-backend/internal/apperr"
)

// CodeStore is the contract the auth flows depend on. Absence is reported
// through ok=false, never through an error; errors mean Redis itself is
// unreachable, which the flows treat as fatal for code issuance.
type CodeStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (value string, ok bool, err error)
}

// RedisCodeStore is the production CodeStore.
type RedisCodeStore struct {
	rdb *redis.Client
}

func NewRedisCodeStore(rdb *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{rdb: rdb}
}

// Set writes value under key with a per-entry TTL.
func (s *RedisCodeStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return apperr.Unavailable("code store unavailable")
	}
	return nil
}

// Get reads key. A missing or expired key is (_, false, nil).
func (s *RedisCodeStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperr.Unavailable("code store unavailable")
	}
	return v, true, nil
}
