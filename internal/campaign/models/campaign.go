// Package models holds the normalized campaign types shared by every
// platform adapter. Each platform reports in its own shapes and units; the
// adapters translate into these before anything else sees the data.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	connect "allad/internal/connect/models"
)

// Status is the normalized campaign delivery state.
type Status string

const (
	StatusActive   Status = "active"
	StatusPaused   Status = "paused"
	StatusArchived Status = "archived"
)

// ParseStatus validates a status string from the API surface.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusPaused, StatusArchived:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown campaign status %q", s)
}

// Campaign is one ad campaign, normalized across platforms. RemoteID is the
// platform's own identifier; ID is ours.
type Campaign struct {
	ID           uuid.UUID
	CredentialID uuid.UUID
	TeamID       uuid.UUID
	Platform     connect.Platform
	RemoteID     string
	Name         string
	Status       Status
	// DailyBudget is in the account's smallest currency unit (KRW has no
	// minor unit; USD budgets arrive as cents).
	DailyBudget int64
	Currency    string

	SyncedAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Point is one day of performance for a campaign.
type Point struct {
	Date        time.Time
	Impressions int64
	Clicks      int64
	// Cost uses the same unit convention as Campaign.DailyBudget.
	Cost        int64
	Conversions int64
	Revenue     int64
}

// DateRange is a closed day range for performance queries.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Valid reports whether the range is ordered and no wider than a year.
func (r DateRange) Valid() bool {
	if r.From.IsZero() || r.To.IsZero() || r.To.Before(r.From) {
		return false
	}
	return r.To.Sub(r.From) <= 366*24*time.Hour
}
