package oauthstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"allad/internal/connect/models"
	"allad/internal/sentinel"
)

// RedisStore keeps OAuth states in Redis with native TTL, so abandoned flows
// expire without a sweep.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedis constructs a Redis-backed OAuth state store.
func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, state *models.OAuthState) error {
	if state == nil || state.State == "" {
		return fmt.Errorf("state is required: %w", sentinel.ErrInvalidInput)
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal oauth state: %w", err)
	}
	ttl := time.Until(state.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("state already expired: %w", sentinel.ErrInvalidInput)
	}
	if err := s.client.Set(ctx, redisKey(state.State, state.Platform), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save oauth state: %w", err)
	}
	return nil
}

// Consume atomically fetches and deletes the state via GETDEL.
func (s *RedisStore) Consume(ctx context.Context, state string, platform models.Platform) (*models.OAuthState, error) {
	payload, err := s.client.GetDel(ctx, redisKey(state, platform)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("oauth state: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("consume oauth state: %w", err)
	}
	var stored models.OAuthState
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, fmt.Errorf("decode oauth state: %w", err)
	}
	return &stored, nil
}

// DeleteExpired is a no-op: Redis TTL already evicts expired states.
func (s *RedisStore) DeleteExpired(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

func redisKey(state string, platform models.Platform) string {
	return "oauth_state:" + string(platform) + ":" + state
}
