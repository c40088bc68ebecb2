package models

import (
	"time"

	"github.com/google/uuid"
)

// OAuthState is the single-use CSRF token correlating an authorization
// redirect with its callback. It is deleted when consumed; abandoned rows
// expire at ExpiresAt and are swept by the refresh worker.
type OAuthState struct {
	State     string
	Platform  Platform
	UserID    uuid.UUID
	TeamID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the state is past its TTL.
func (s *OAuthState) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && s.ExpiresAt.Before(now)
}
