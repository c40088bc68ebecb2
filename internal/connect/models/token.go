package models

import "time"

// TokenResponse is the normalized result of a token endpoint call.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	ExpiresIn    int64  `json:"expires_in"`
	IDToken      string `json:"id_token"`
}

// ExpiryTime computes the absolute expiry, or nil for tokens without one.
func (t *TokenResponse) ExpiryTime(now time.Time) *time.Time {
	if t.ExpiresIn <= 0 {
		return nil
	}
	expiry := now.Add(time.Duration(t.ExpiresIn) * time.Second)
	return &expiry
}

// AccountInfo is the external account identity resolved after token exchange.
// The authorization code alone does not identify which advertiser account was
// granted, so every flow fetches this before persisting a credential.
type AccountInfo struct {
	AccountID   string
	AccountName string
	Data        PlatformData
}
