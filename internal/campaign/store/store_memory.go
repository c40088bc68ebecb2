// Package store persists the local campaign cache. Mutations write here
// first; the platform push happens after, so the dashboard always reflects
// the user's intent even when the platform call fails.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"allad/internal/campaign/models"
	connect "allad/internal/connect/models"
	"allad/internal/sentinel"
)

// InMemoryStore keeps campaigns in memory. Used in tests and local development.
type InMemoryStore struct {
	mu        sync.RWMutex
	campaigns map[uuid.UUID]*models.Campaign
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{campaigns: make(map[uuid.UUID]*models.Campaign)}
}

// UpsertBatch inserts or updates campaigns keyed on (credential, remote id).
// Existing rows keep their ID and CreatedAt.
func (s *InMemoryStore) UpsertBatch(_ context.Context, campaigns []*models.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, in := range campaigns {
		var existing *models.Campaign
		for _, c := range s.campaigns {
			if c.CredentialID == in.CredentialID && c.RemoteID == in.RemoteID {
				existing = c
				break
			}
		}
		stored := *in
		if existing != nil {
			stored.ID = existing.ID
			stored.CreatedAt = existing.CreatedAt
		} else {
			stored.ID = uuid.New()
			stored.CreatedAt = now
		}
		stored.UpdatedAt = now
		s.campaigns[stored.ID] = &stored
	}
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.campaigns[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *c
	return &out, nil
}

// ListByCredential returns a credential's campaigns, name-ordered.
func (s *InMemoryStore) ListByCredential(_ context.Context, credentialID uuid.UUID) ([]*models.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Campaign
	for _, c := range s.campaigns {
		if c.CredentialID == credentialID {
			copied := *c
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListByTeam returns a team's campaigns, optionally narrowed to one platform.
func (s *InMemoryStore) ListByTeam(_ context.Context, teamID uuid.UUID, platform connect.Platform) ([]*models.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Campaign
	for _, c := range s.campaigns {
		if c.TeamID != teamID {
			continue
		}
		if platform != "" && c.Platform != platform {
			continue
		}
		copied := *c
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryStore) UpdateBudget(_ context.Context, id uuid.UUID, dailyBudget int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.DailyBudget = dailyBudget
	c.UpdatedAt = time.Now()
	return nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	return nil
}
