package credential

import "time"

// Option configures a credential store.
type Option func(*settings)

type settings struct {
	now func() time.Time
}

// WithClock overrides the timestamp clock used for UpdatedAt and the
// deactivation reason stamp.
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
