package models

import (
	"time"

	"github.com/google/uuid"
)

// Credential stores the OAuth tokens and identity for one connected external
// ad account, scoped to one team. At most one active credential exists per
// (team, platform, account) triple; inactive rows are retained for audit.
type Credential struct {
	ID          uuid.UUID
	TeamID      uuid.UUID
	Platform    Platform
	AccountID   string
	AccountName string

	AccessToken  string
	RefreshToken string // empty when the platform issued no refresh token
	Scope        string

	ExpiresAt    *time.Time // nil for tokens without a fixed expiry
	IsActive     bool
	ErrorMessage string
	LastSyncedAt *time.Time

	Data PlatformData

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlatformData carries platform-specific extras on a credential. Fields are
// typed per platform instead of an opaque JSON bag so reads are checked where
// they happen.
type PlatformData struct {
	// GoogleCustomerID is the resolved advertiser customer ID, patched in
	// after connect once the secondary lookup completes.
	GoogleCustomerID string `json:"google_customer_id,omitempty"`
	// TikTokBusinessCenterID scopes TikTok API calls to a business center.
	TikTokBusinessCenterID string `json:"tiktok_bc_id,omitempty"`
	// MetaBusinessID scopes Meta marketing API calls.
	MetaBusinessID string `json:"meta_business_id,omitempty"`
	// NaverCustomerID is Naver SearchAd's numeric customer identifier.
	NaverCustomerID string `json:"naver_customer_id,omitempty"`
}

// Empty reports whether no platform-specific extras are set.
func (d PlatformData) Empty() bool {
	return d == PlatformData{}
}

// DueForRefresh reports whether the credential falls inside the refresh
// window: active, refreshable, holding a refresh token, and expiring within
// window of now.
func (c *Credential) DueForRefresh(now time.Time, window time.Duration) bool {
	if !c.IsActive || c.RefreshToken == "" || c.ExpiresAt == nil {
		return false
	}
	if !c.Platform.SupportsRefresh() {
		return false
	}
	return c.ExpiresAt.Before(now.Add(window))
}
