// Package audit publishes credential lifecycle events for compliance and
// analytics consumers. Publishing is best-effort: a broker outage must never
// fail a connect or refresh.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"allad/internal/connect/models"
)

// Event actions emitted by the gateway.
const (
	EventCredentialConnected    = "credential.connected"
	EventCredentialRefreshed    = "credential.refreshed"
	EventCredentialDeactivated  = "credential.deactivated"
	EventCredentialDisconnected = "credential.disconnected"
)

// Event is one credential lifecycle occurrence.
type Event struct {
	Action       string          `json:"action"`
	CredentialID uuid.UUID       `json:"credential_id"`
	TeamID       uuid.UUID       `json:"team_id"`
	Platform     models.Platform `json:"platform"`
	Detail       string          `json:"detail,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

// Publisher emits audit events. Implementations must be safe for concurrent use.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// NopPublisher discards all events. Used when Kafka is not configured and in tests.
type NopPublisher struct{}

func (NopPublisher) Emit(context.Context, Event) error { return nil }
