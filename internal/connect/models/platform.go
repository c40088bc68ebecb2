package models

import "fmt"

// Platform identifies one supported external advertising system.
type Platform string

const (
	PlatformGoogle   Platform = "google"
	PlatformFacebook Platform = "facebook"
	PlatformNaver    Platform = "naver"
	PlatformKakao    Platform = "kakao"
	PlatformTikTok   Platform = "tiktok"
	PlatformAmazon   Platform = "amazon"
	PlatformCoupang  Platform = "coupang"
)

// AllPlatforms lists every platform a team can connect.
var AllPlatforms = []Platform{
	PlatformGoogle,
	PlatformFacebook,
	PlatformNaver,
	PlatformKakao,
	PlatformTikTok,
	PlatformAmazon,
	PlatformCoupang,
}

// RefreshablePlatforms is the subset whose tokens the scheduled refresh scan
// rotates. The remaining platforms issue long-lived tokens or use signed
// request auth and are reconnected manually when they lapse.
var RefreshablePlatforms = []Platform{
	PlatformGoogle,
	PlatformFacebook,
	PlatformKakao,
}

func (p Platform) String() string {
	return string(p)
}

// Valid reports whether the platform is in the supported set.
func (p Platform) Valid() bool {
	switch p {
	case PlatformGoogle, PlatformFacebook, PlatformNaver, PlatformKakao,
		PlatformTikTok, PlatformAmazon, PlatformCoupang:
		return true
	}
	return false
}

// SupportsRefresh reports whether the platform participates in the scheduled
// token refresh scan.
func (p Platform) SupportsRefresh() bool {
	for _, rp := range RefreshablePlatforms {
		if p == rp {
			return true
		}
	}
	return false
}

// ParsePlatform converts a string key into a Platform, rejecting unknown keys.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(s)
	if !p.Valid() {
		return "", fmt.Errorf("unsupported platform %q", s)
	}
	return p, nil
}
