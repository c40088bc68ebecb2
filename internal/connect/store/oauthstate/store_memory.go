package oauthstate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"allad/internal/connect/models"
	"allad/internal/sentinel"
)

// InMemoryStore keeps in-flight OAuth states in a map. States are single-use:
// Consume removes the row whether or not the caller proceeds.
type InMemoryStore struct {
	mu     sync.Mutex
	states map[string]*models.OAuthState
	now    func() time.Time
}

func NewInMemoryStore(opts ...Option) *InMemoryStore {
	cfg := newSettings(opts...)
	return &InMemoryStore{
		states: make(map[string]*models.OAuthState),
		now:    cfg.now,
	}
}

func (s *InMemoryStore) Save(_ context.Context, state *models.OAuthState) error {
	if state == nil || state.State == "" {
		return fmt.Errorf("state is required: %w", sentinel.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *state
	s.states[stateKey(state.State, state.Platform)] = &stored
	return nil
}

// Consume atomically looks up and deletes the state. Expired rows are deleted
// and reported as expired so the callback fails closed.
func (s *InMemoryStore) Consume(_ context.Context, state string, platform models.Platform) (*models.OAuthState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := stateKey(state, platform)
	stored, ok := s.states[key]
	if !ok {
		return nil, fmt.Errorf("oauth state: %w", sentinel.ErrNotFound)
	}
	delete(s.states, key)
	if stored.Expired(s.now()) {
		return nil, fmt.Errorf("oauth state: %w", sentinel.ErrExpired)
	}
	out := *stored
	return &out, nil
}

// DeleteExpired sweeps abandoned flows past their TTL.
func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for key, stored := range s.states {
		if stored.Expired(now) {
			delete(s.states, key)
			deleted++
		}
	}
	return deleted, nil
}

func stateKey(state string, platform models.Platform) string {
	return string(platform) + ":" + state
}
