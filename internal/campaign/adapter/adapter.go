// Package adapter dispatches campaign operations to per-platform API
// clients. The registry is built once at startup and injected; callers never
// switch on platform themselves. Every error leaving this package is
// classifier-shaped.
package adapter

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"allad/internal/campaign/models"
	"allad/internal/connect/classify"
	connect "allad/internal/connect/models"
	dErrors "allad/pkg/domain-errors"
)

// Adapter is one platform's campaign operations.
type Adapter interface {
	Platform() connect.Platform
	FetchCampaigns(ctx context.Context, cred *connect.Credential) ([]*models.Campaign, error)
	FetchPerformance(ctx context.Context, cred *connect.Credential, remoteID string, rng models.DateRange) ([]models.Point, error)
	UpdateBudget(ctx context.Context, cred *connect.Credential, remoteID string, dailyBudget int64) error
	UpdateStatus(ctx context.Context, cred *connect.Credential, remoteID string, status models.Status) error
}

// Registry holds one adapter per platform, each behind an outbound rate
// limiter and the error classifier.
type Registry struct {
	adapters map[connect.Platform]Adapter
	limit    rate.Limit
	burst    int
}

// RegistryOption configures the registry.
type RegistryOption func(*Registry)

// WithRateLimit overrides the per-platform outbound request budget.
func WithRateLimit(limit rate.Limit, burst int) RegistryOption {
	return func(r *Registry) {
		r.limit = limit
		r.burst = burst
	}
}

// NewRegistry builds the dispatch table. Each adapter is wrapped so its
// callers see rate-limited calls and classified errors.
func NewRegistry(adapters []Adapter, opts ...RegistryOption) *Registry {
	r := &Registry{
		adapters: make(map[connect.Platform]Adapter, len(adapters)),
		limit:    rate.Limit(5),
		burst:    10,
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, a := range adapters {
		r.adapters[a.Platform()] = &guarded{
			inner:   a,
			limiter: rate.NewLimiter(r.limit, r.burst),
		}
	}
	return r
}

// Get returns the adapter for a platform.
func (r *Registry) Get(platform connect.Platform) (Adapter, error) {
	a, ok := r.adapters[platform]
	if !ok {
		return nil, dErrors.New(dErrors.CodePlatformUnknown,
			fmt.Sprintf("no campaign adapter for platform %q", platform))
	}
	return a, nil
}

// Platforms lists the registered platforms.
func (r *Registry) Platforms() []connect.Platform {
	out := make([]connect.Platform, 0, len(r.adapters))
	for p := range r.adapters {
		out = append(out, p)
	}
	return out
}

// guarded wraps an adapter with the outbound rate limiter and funnels every
// error through the classifier so callers always get a PlatformError.
type guarded struct {
	inner   Adapter
	limiter *rate.Limiter
}

func (g *guarded) Platform() connect.Platform { return g.inner.Platform() }

func (g *guarded) FetchCampaigns(ctx context.Context, cred *connect.Credential) ([]*models.Campaign, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, classify.Classify(err, g.Platform())
	}
	campaigns, err := g.inner.FetchCampaigns(ctx, cred)
	if err != nil {
		return nil, classify.Classify(err, g.Platform())
	}
	return campaigns, nil
}

func (g *guarded) FetchPerformance(ctx context.Context, cred *connect.Credential, remoteID string, rng models.DateRange) ([]models.Point, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, classify.Classify(err, g.Platform())
	}
	points, err := g.inner.FetchPerformance(ctx, cred, remoteID, rng)
	if err != nil {
		return nil, classify.Classify(err, g.Platform())
	}
	return points, nil
}

func (g *guarded) UpdateBudget(ctx context.Context, cred *connect.Credential, remoteID string, dailyBudget int64) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return classify.Classify(err, g.Platform())
	}
	if err := g.inner.UpdateBudget(ctx, cred, remoteID, dailyBudget); err != nil {
		return classify.Classify(err, g.Platform())
	}
	return nil
}

func (g *guarded) UpdateStatus(ctx context.Context, cred *connect.Credential, remoteID string, status models.Status) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return classify.Classify(err, g.Platform())
	}
	if err := g.inner.UpdateStatus(ctx, cred, remoteID, status); err != nil {
		return classify.Classify(err, g.Platform())
	}
	return nil
}

// All constructs the full adapter set with one shared HTTP client.
func All(timeout time.Duration) []Adapter {
	c := newRESTClient(timeout)
	return []Adapter{
		newGoogleAdapter(c),
		newFacebookAdapter(c),
		newNaverAdapter(c),
		newKakaoAdapter(c),
		newTikTokAdapter(c),
		newAmazonAdapter(c),
		newCoupangAdapter(c),
	}
}
