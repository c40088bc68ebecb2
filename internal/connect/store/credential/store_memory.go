package credential

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"allad/internal/connect/models"
	"allad/internal/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return sentinel.ErrNotFound (wrapped) when the requested entity does not exist
// - Return sentinel.ErrStaleWrite when a conditional update lost a race
// - Return nil for successful operations
//
// In-memory stores keep the initial implementation lightweight and testable.
// They intentionally favor clarity over performance.
type InMemoryStore struct {
	mu    sync.RWMutex
	creds map[uuid.UUID]*models.Credential
	now   func() time.Time
}

func NewInMemoryStore(opts ...Option) *InMemoryStore {
	cfg := newSettings(opts...)
	return &InMemoryStore{
		creds: make(map[uuid.UUID]*models.Credential),
		now:   cfg.now,
	}
}

// Upsert inserts the credential or, when a row already exists for the same
// (team, platform, account) triple, updates it in place. The stored row keeps
// its original ID and CreatedAt on conflict.
func (s *InMemoryStore) Upsert(_ context.Context, cred *models.Credential) (*models.Credential, error) {
	if cred == nil {
		return nil, fmt.Errorf("credential is required: %w", sentinel.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, existing := range s.creds {
		if existing.TeamID == cred.TeamID && existing.Platform == cred.Platform && existing.AccountID == cred.AccountID {
			updated := *cred
			updated.ID = existing.ID
			updated.CreatedAt = existing.CreatedAt
			updated.UpdatedAt = now
			s.creds[existing.ID] = &updated
			out := updated
			return &out, nil
		}
	}

	stored := *cred
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.creds[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cred, ok := s.creds[id]; ok {
		out := *cred
		return &out, nil
	}
	return nil, fmt.Errorf("credential %s: %w", id, sentinel.ErrNotFound)
}

func (s *InMemoryStore) Find(_ context.Context, teamID uuid.UUID, platform models.Platform, accountID string) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cred := range s.creds {
		if cred.TeamID == teamID && cred.Platform == platform && cred.AccountID == accountID {
			out := *cred
			return &out, nil
		}
	}
	return nil, fmt.Errorf("credential for %s/%s: %w", platform, accountID, sentinel.ErrNotFound)
}

// List returns a team's credentials, newest first. Platform narrows the list
// when non-empty.
func (s *InMemoryStore) List(_ context.Context, teamID uuid.UUID, platform models.Platform) ([]*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Credential
	for _, cred := range s.creds {
		if cred.TeamID != teamID {
			continue
		}
		if platform != "" && cred.Platform != platform {
			continue
		}
		c := *cred
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListDue returns active credentials holding a refresh token whose expiry
// falls inside the window, restricted to the refresh-capable platform set.
func (s *InMemoryStore) ListDue(_ context.Context, now time.Time, window time.Duration) ([]*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Credential
	for _, cred := range s.creds {
		if cred.DueForRefresh(now, window) {
			c := *cred
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(*out[j].ExpiresAt) })
	return out, nil
}

// UpdateTokens rotates the credential's tokens, conditional on the expiry
// observed when the credential was read. A concurrent refresh that already
// rotated the row makes this a stale write.
func (s *InMemoryStore) UpdateTokens(_ context.Context, id uuid.UUID, prevExpiresAt *time.Time, accessToken, refreshToken, scope string, expiresAt *time.Time, syncedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.creds[id]
	if !ok {
		return fmt.Errorf("credential %s: %w", id, sentinel.ErrNotFound)
	}
	if !timePtrEqual(cred.ExpiresAt, prevExpiresAt) {
		return sentinel.ErrStaleWrite
	}
	cred.AccessToken = accessToken
	if refreshToken != "" {
		cred.RefreshToken = refreshToken
	}
	if scope != "" {
		cred.Scope = scope
	}
	cred.ExpiresAt = expiresAt
	cred.LastSyncedAt = &syncedAt
	cred.ErrorMessage = ""
	cred.UpdatedAt = s.now()
	return nil
}

// UpdateIdentity patches the account id, display name, and platform data in
// place. Used by the Google customer-id resolution after connect.
func (s *InMemoryStore) UpdateIdentity(_ context.Context, id uuid.UUID, accountID, accountName string, data models.PlatformData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.creds[id]
	if !ok {
		return fmt.Errorf("credential %s: %w", id, sentinel.ErrNotFound)
	}
	cred.AccountID = accountID
	cred.AccountName = accountName
	cred.Data = data
	cred.UpdatedAt = s.now()
	return nil
}

// Deactivate flips the credential inactive and stamps the failure reason.
// The row is kept for audit; it is never deleted here.
func (s *InMemoryStore) Deactivate(_ context.Context, id uuid.UUID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.creds[id]
	if !ok {
		return fmt.Errorf("credential %s: %w", id, sentinel.ErrNotFound)
	}
	now := s.now()
	cred.IsActive = false
	cred.ErrorMessage = fmt.Sprintf("[%s] %s", now.UTC().Format(time.RFC3339), reason)
	cred.UpdatedAt = now
	return nil
}

// SetActive toggles the activity flag from a manual user action.
func (s *InMemoryStore) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.creds[id]
	if !ok {
		return fmt.Errorf("credential %s: %w", id, sentinel.ErrNotFound)
	}
	cred.IsActive = active
	if active {
		cred.ErrorMessage = ""
	}
	cred.UpdatedAt = s.now()
	return nil
}

// Delete removes the credential entirely. Only manual disconnect uses this;
// the refresh path deactivates instead.
func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.creds[id]; !ok {
		return fmt.Errorf("credential %s: %w", id, sentinel.ErrNotFound)
	}
	delete(s.creds, id)
	return nil
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
