// Package refresh rotates expiring platform tokens ahead of their expiry so
// scheduled syncs never run with a dead credential.
package refresh

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"allad/internal/connect/audit"
	"allad/internal/connect/classify"
	"allad/internal/connect/metrics"
	"allad/internal/connect/models"
	"allad/internal/platform/config"
	"allad/internal/sentinel"
)

// CredentialStore is the persistence the refresh service needs.
type CredentialStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Credential, error)
	ListDue(ctx context.Context, now time.Time, window time.Duration) ([]*models.Credential, error)
	UpdateTokens(ctx context.Context, id uuid.UUID, prevExpiresAt *time.Time, accessToken, refreshToken, scope string, expiresAt *time.Time, syncedAt time.Time) error
	Deactivate(ctx context.Context, id uuid.UUID, reason string) error
}

// TokenRefresher performs the provider-side token rotation.
type TokenRefresher interface {
	Refresh(ctx context.Context, cred *models.Credential) (*models.TokenResponse, error)
}

// StateSweeper deletes abandoned authorization states past their TTL.
type StateSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Outcome is the result of one refresh attempt on one credential.
type Outcome string

const (
	OutcomeRefreshed Outcome = "refreshed"
	OutcomeNotNeeded Outcome = "not_needed"
	OutcomeFailed    Outcome = "failed"
)

// Summary aggregates one scan over the due credentials.
type Summary struct {
	Attempted int `json:"attempted"`
	Refreshed int `json:"refreshed"`
	NotNeeded int `json:"not_needed"`
	Failed    int `json:"failed"`
	// StatesSwept counts expired authorization states removed in the same pass.
	StatesSwept int `json:"states_swept"`
}

// Filter narrows a scan to one team, platform, or external account. Zero
// value scans everything.
type Filter struct {
	TeamID    uuid.UUID
	Platform  models.Platform
	AccountID string
}

func (f Filter) matches(cred *models.Credential) bool {
	if f.TeamID != uuid.Nil && cred.TeamID != f.TeamID {
		return false
	}
	if f.Platform != "" && cred.Platform != f.Platform {
		return false
	}
	if f.AccountID != "" && cred.AccountID != f.AccountID {
		return false
	}
	return true
}

// Service owns the periodic refresh scan. Safe to run on multiple nodes: the
// conditional token update makes concurrent rotations of the same credential
// collapse to one winner.
type Service struct {
	creds     CredentialStore
	refresher TokenRefresher
	sweeper   StateSweeper

	window      time.Duration
	interval    time.Duration
	concurrency int
	maxAttempts int
	retry       backoff

	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   audit.Publisher
	now     func() time.Time
}

// Option configures optional Service dependencies.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAudit(p audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

// WithSweeper enables expired-state cleanup during each scan.
func WithSweeper(sweeper StateSweeper) Option {
	return func(s *Service) { s.sweeper = sweeper }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMaxAttempts overrides the retry budget per credential.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithRetryBackoff overrides the retry delay schedule.
func WithRetryBackoff(base, max time.Duration) Option {
	return func(s *Service) { s.retry = backoff{base: base, max: max} }
}

// NewService constructs the refresh service from config.
func NewService(creds CredentialStore, refresher TokenRefresher, cfg config.Server, opts ...Option) *Service {
	s := &Service{
		creds:       creds,
		refresher:   refresher,
		window:      cfg.RefreshWindow,
		interval:    cfg.RefreshInterval,
		concurrency: cfg.RefreshConcurrency,
		maxAttempts: 3,
		retry:       backoff{base: time.Second, max: 30 * time.Second},
		logger:      slog.Default(),
		audit:       audit.NopPublisher{},
		now:         time.Now,
	}
	if s.window <= 0 {
		s.window = 30 * time.Minute
	}
	if s.interval <= 0 {
		s.interval = time.Hour
	}
	if s.concurrency <= 0 {
		s.concurrency = 4
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the periodic scan until ctx ends. One scan runs immediately.
func (s *Service) Start(ctx context.Context) {
	s.logger.Info("token refresh worker started",
		slog.Duration("interval", s.interval),
		slog.Duration("window", s.window))

	s.runScan(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("token refresh worker stopped")
			return
		case <-ticker.C:
			s.runScan(ctx)
		}
	}
}

func (s *Service) runScan(ctx context.Context) {
	summary, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error("refresh scan failed", slog.String("error", err.Error()))
		return
	}
	s.logger.Info("refresh scan complete",
		slog.Int("attempted", summary.Attempted),
		slog.Int("refreshed", summary.Refreshed),
		slog.Int("not_needed", summary.NotNeeded),
		slog.Int("failed", summary.Failed),
		slog.Int("states_swept", summary.StatesSwept))
}

// RunOnce performs one full scan: sweep expired states, then refresh every
// due credential.
func (s *Service) RunOnce(ctx context.Context) (Summary, error) {
	summary, err := s.RefreshDue(ctx, Filter{})
	if err != nil {
		return summary, err
	}

	if s.sweeper != nil {
		swept, err := s.sweeper.DeleteExpired(ctx, s.now())
		if err != nil {
			s.logger.Warn("state sweep failed", slog.String("error", err.Error()))
		} else {
			summary.StatesSwept = swept
			if s.metrics != nil && swept > 0 {
				s.metrics.AddStatesSwept(swept)
			}
		}
	}
	return summary, nil
}

// RefreshDue refreshes every credential inside the refresh window that
// matches the filter, fanning out up to the configured concurrency.
func (s *Service) RefreshDue(ctx context.Context, filter Filter) (Summary, error) {
	due, err := s.creds.ListDue(ctx, s.now(), s.window)
	if err != nil {
		return Summary{}, err
	}

	var (
		mu      sync.Mutex
		summary Summary
	)
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)

	for _, cred := range due {
		if !filter.matches(cred) {
			continue
		}
		group.Go(func() error {
			outcome := s.refreshOne(gctx, cred)
			mu.Lock()
			summary.Attempted++
			switch outcome {
			case OutcomeRefreshed:
				summary.Refreshed++
			case OutcomeNotNeeded:
				summary.NotNeeded++
			case OutcomeFailed:
				summary.Failed++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()
	return summary, nil
}

// DueCredentials lists a team's credentials currently inside the refresh
// window, for the refresh status endpoint.
func (s *Service) DueCredentials(ctx context.Context, teamID uuid.UUID) ([]*models.Credential, error) {
	due, err := s.creds.ListDue(ctx, s.now(), s.window)
	if err != nil {
		return nil, err
	}
	filter := Filter{TeamID: teamID}
	out := make([]*models.Credential, 0, len(due))
	for _, cred := range due {
		if filter.matches(cred) {
			out = append(out, cred)
		}
	}
	return out, nil
}

// refreshOne rotates a single credential. Retryable provider errors are
// retried with backoff inside the attempt budget; terminal failures
// deactivate the credential instead of deleting it.
func (s *Service) refreshOne(ctx context.Context, cred *models.Credential) Outcome {
	if !cred.DueForRefresh(s.now(), s.window) {
		return OutcomeNotNeeded
	}
	if s.metrics != nil {
		s.metrics.IncrementRefreshAttempts(cred.Platform.String())
	}

	// The expiry read here guards the write: if another node rotates the
	// token first, our conditional update misses and we stand down.
	prevExpiresAt := cred.ExpiresAt
	start := s.now()

	for attempt := 0; ; attempt++ {
		tok, err := s.refresher.Refresh(ctx, cred)
		if err == nil {
			return s.storeRotated(ctx, cred, prevExpiresAt, tok, start)
		}

		classified := classify.Classify(err, cred.Platform)
		if s.metrics != nil {
			s.metrics.IncrementClassifiedErrors(cred.Platform.String(), string(classified.Code))
		}

		if classified.Retryable && attempt+1 < s.maxAttempts {
			delay := s.retry.delay(attempt, time.Duration(classified.RetryAfterSeconds)*time.Second)
			if waitErr := wait(ctx, delay); waitErr != nil {
				return s.countFailed(cred, classified)
			}
			continue
		}

		if !classified.Retryable {
			s.deactivate(ctx, cred, classified)
		}
		return s.countFailed(cred, classified)
	}
}

func (s *Service) storeRotated(ctx context.Context, cred *models.Credential, prevExpiresAt *time.Time, tok *models.TokenResponse, start time.Time) Outcome {
	now := s.now()
	err := s.creds.UpdateTokens(ctx, cred.ID, prevExpiresAt,
		tok.AccessToken, tok.RefreshToken, tok.Scope, tok.ExpiryTime(now), now)
	if err != nil {
		if errors.Is(err, sentinel.ErrStaleWrite) {
			// Another writer already rotated this credential.
			return OutcomeNotNeeded
		}
		s.logger.Error("token update failed",
			slog.String("credential_id", cred.ID.String()),
			slog.String("error", err.Error()))
		if s.metrics != nil {
			s.metrics.IncrementRefreshFailures(cred.Platform.String(), "store_error")
		}
		return OutcomeFailed
	}

	if s.metrics != nil {
		s.metrics.IncrementRefreshSuccesses(cred.Platform.String())
		s.metrics.ObserveRefreshDuration(cred.Platform.String(), float64(now.Sub(start).Milliseconds()))
	}
	s.emitAudit(ctx, audit.EventCredentialRefreshed, cred, "")
	s.logger.Info("credential refreshed",
		slog.String("platform", cred.Platform.String()),
		slog.String("credential_id", cred.ID.String()))
	return OutcomeRefreshed
}

func (s *Service) deactivate(ctx context.Context, cred *models.Credential, classified *classify.PlatformError) {
	reason := classified.UserMessage
	if reason == "" {
		reason = string(classified.Code)
	}
	if err := s.creds.Deactivate(ctx, cred.ID, reason); err != nil {
		s.logger.Error("deactivate failed",
			slog.String("credential_id", cred.ID.String()),
			slog.String("error", err.Error()))
		return
	}
	if s.metrics != nil {
		s.metrics.IncrementDeactivations(cred.Platform.String())
	}
	s.emitAudit(ctx, audit.EventCredentialDeactivated, cred, reason)
	s.logger.Warn("credential deactivated after refresh failure",
		slog.String("platform", cred.Platform.String()),
		slog.String("credential_id", cred.ID.String()),
		slog.String("code", string(classified.Code)))
}

func (s *Service) countFailed(cred *models.Credential, classified *classify.PlatformError) Outcome {
	if s.metrics != nil {
		s.metrics.IncrementRefreshFailures(cred.Platform.String(), string(classified.Code))
	}
	return OutcomeFailed
}

func (s *Service) emitAudit(ctx context.Context, action string, cred *models.Credential, detail string) {
	event := audit.Event{
		Action:       action,
		CredentialID: cred.ID,
		TeamID:       cred.TeamID,
		Platform:     cred.Platform,
		Detail:       detail,
		Timestamp:    s.now().UTC(),
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.Warn("audit emit failed",
			slog.String("action", action),
			slog.String("error", err.Error()))
	}
}
