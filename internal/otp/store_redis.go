package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"docgate/pkg/platform/sentinel"
)

const challengeKeyPrefix = "otp:user:"

// RedisStore keeps challenges in Redis with a TTL matching the challenge
// expiry, so multi-instance deployments share OTP state and stale codes age
// out without a sweeper.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, userID string, challenge Challenge) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}
	ttl := time.Until(challenge.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	// SET with TTL overwrites any outstanding challenge atomically.
	if err := s.client.Set(ctx, challengeKeyPrefix+userID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store challenge: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, userID string) (*Challenge, error) {
	payload, err := s.client.Get(ctx, challengeKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load challenge: %w", err)
	}
	var challenge Challenge
	if err := json.Unmarshal(payload, &challenge); err != nil {
		return nil, fmt.Errorf("unmarshal challenge: %w", err)
	}
	return &challenge, nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, challengeKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	return nil
}
