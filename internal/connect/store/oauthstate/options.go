package oauthstate

import "time"

// Option configures a state store.
type Option func(*settings)

type settings struct {
	now func() time.Time
}

// WithClock overrides the expiry clock. The Redis store ignores it; expiry
// there is native TTL.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

func newSettings(opts ...Option) settings {
	s := settings{now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
