package oauth

import "allad/internal/connect/models"

// RefreshStrategy names how a platform rotates an expiring token. Not every
// provider follows RFC 6749 refresh semantics, so the refresh routine
// branches on this instead of assuming a refresh_token grant everywhere.
type RefreshStrategy string

const (
	// RefreshStandard uses the refresh_token grant against the token endpoint.
	RefreshStandard RefreshStrategy = "refresh_token"
	// RefreshExchange trades the current access token for a new long-lived
	// one (Meta's fb_exchange_token flow).
	RefreshExchange RefreshStrategy = "fb_exchange_token"
	// RefreshNone marks platforms whose tokens cannot be rotated; the user
	// reconnects when they lapse.
	RefreshNone RefreshStrategy = "none"
)

// Provider is the static per-platform OAuth configuration. Client credentials
// live in config; everything else a flow needs is here, so adding a platform
// touches this table and an adapter registration, not N call sites.
type Provider struct {
	Platform   models.Platform
	AuthURL    string
	TokenURL   string
	AccountURL string
	Scopes     []string
	// ExtraAuthParams are provider-specific authorization URL parameters,
	// e.g. Google's access_type=offline&prompt=consent which is required to
	// receive a refresh token at all.
	ExtraAuthParams map[string]string
	Refresh         RefreshStrategy
}

var providers = map[models.Platform]Provider{
	models.PlatformGoogle: {
		Platform:   models.PlatformGoogle,
		AuthURL:    "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:   "https://oauth2.googleapis.com/token",
		AccountURL: "https://openidconnect.googleapis.com/v1/userinfo",
		Scopes:     []string{"https://www.googleapis.com/auth/adwords", "openid", "email"},
		ExtraAuthParams: map[string]string{
			"access_type": "offline",
			"prompt":      "consent",
		},
		Refresh: RefreshStandard,
	},
	models.PlatformFacebook: {
		Platform:   models.PlatformFacebook,
		AuthURL:    "https://www.facebook.com/v19.0/dialog/oauth",
		TokenURL:   "https://graph.facebook.com/v19.0/oauth/access_token",
		AccountURL: "https://graph.facebook.com/v19.0/me?fields=id,name",
		Scopes:     []string{"ads_management", "ads_read", "business_management"},
		Refresh:    RefreshExchange,
	},
	models.PlatformNaver: {
		Platform:   models.PlatformNaver,
		AuthURL:    "https://nid.naver.com/oauth2.0/authorize",
		TokenURL:   "https://nid.naver.com/oauth2.0/token",
		AccountURL: "https://openapi.naver.com/v1/nid/me",
		Refresh:    RefreshNone,
	},
	models.PlatformKakao: {
		Platform:   models.PlatformKakao,
		AuthURL:    "https://kauth.kakao.com/oauth/authorize",
		TokenURL:   "https://kauth.kakao.com/oauth/token",
		AccountURL: "https://kapi.kakao.com/v2/user/me",
		Scopes:     []string{"moment:read", "moment:write"},
		Refresh:    RefreshStandard,
	},
	models.PlatformTikTok: {
		Platform:   models.PlatformTikTok,
		AuthURL:    "https://business-api.tiktok.com/portal/auth",
		TokenURL:   "https://business-api.tiktok.com/open_api/v1.3/oauth2/access_token/",
		AccountURL: "https://business-api.tiktok.com/open_api/v1.3/oauth2/advertiser/get/",
		Refresh:    RefreshNone,
	},
	models.PlatformAmazon: {
		Platform:   models.PlatformAmazon,
		AuthURL:    "https://www.amazon.com/ap/oa",
		TokenURL:   "https://api.amazon.com/auth/o2/token",
		AccountURL: "https://advertising-api.amazon.com/v2/profiles",
		Scopes:     []string{"advertising::campaign_management"},
		Refresh:    RefreshNone,
	},
	models.PlatformCoupang: {
		Platform:   models.PlatformCoupang,
		AuthURL:    "https://partners.coupang.com/oauth/authorize",
		TokenURL:   "https://api-gateway.coupang.com/oauth/token",
		AccountURL: "https://api-gateway.coupang.com/v2/providers/seller_api/apis/api/v1/vendors",
		Refresh:    RefreshNone,
	},
}

// ProviderFor returns the static configuration for a platform.
func ProviderFor(platform models.Platform) (Provider, bool) {
	p, ok := providers[platform]
	return p, ok
}

// GoogleCustomerListURL is the secondary lookup that resolves the true
// advertiser customer ID after a Google connect.
const GoogleCustomerListURL = "https://googleads.googleapis.com/v17/customers:listAccessibleCustomers"
