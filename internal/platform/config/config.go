package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process level configuration for the gateway.
type Server struct {
	Addr        string
	SiteURL     string
	Environment string

	DatabaseURL  string
	Redis        RedisConfig
	KafkaBrokers string
	AuditTopic   string

	// RefreshWindow is the time-before-expiry threshold that marks a
	// credential as due for token refresh.
	RefreshWindow      time.Duration
	RefreshInterval    time.Duration
	RefreshConcurrency int

	// StateTTL bounds how long an abandoned OAuth flow keeps its state row.
	StateTTL time.Duration

	ProviderTimeout time.Duration

	OAuthApps map[string]OAuthApp
}

// OAuthApp holds the client credentials registered with one ad platform.
type OAuthApp struct {
	ClientID     string
	ClientSecret string
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// platformKeys is the set of supported ad platforms. Adding a platform means
// adding its key here and registering an adapter; client credentials are read
// from {PLATFORM}_CLIENT_ID / {PLATFORM}_CLIENT_SECRET.
var platformKeys = []string{"google", "facebook", "naver", "kakao", "tiktok", "amazon", "coupang"}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:               envOr("ALLAD_ADDR", ":8080"),
		SiteURL:            strings.TrimSuffix(envOr("SITE_URL", "http://localhost:3000"), "/"),
		Environment:        envOr("ALLAD_ENV", "development"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		KafkaBrokers:       os.Getenv("KAFKA_BROKERS"),
		AuditTopic:         envOr("AUDIT_TOPIC", "allad.credential.events"),
		RefreshWindow:      durationOr("REFRESH_WINDOW", 30*time.Minute),
		RefreshInterval:    durationOr("REFRESH_INTERVAL", time.Hour),
		RefreshConcurrency: 4,
		StateTTL:           durationOr("OAUTH_STATE_TTL", 10*time.Minute),
		ProviderTimeout:    durationOr("PROVIDER_TIMEOUT", 15*time.Second),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		OAuthApps: make(map[string]OAuthApp, len(platformKeys)),
	}

	for _, key := range platformKeys {
		prefix := strings.ToUpper(key)
		cfg.OAuthApps[key] = OAuthApp{
			ClientID:     os.Getenv(prefix + "_CLIENT_ID"),
			ClientSecret: os.Getenv(prefix + "_CLIENT_SECRET"),
		}
	}
	return cfg
}

// RedirectURI computes the per-platform OAuth callback URL.
func (s Server) RedirectURI(platform string) string {
	return s.SiteURL + "/api/auth/callback/" + platform + "-ads"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
