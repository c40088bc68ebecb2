// Package service coordinates campaign reads and mutations across the local
// cache and the platform adapters.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"allad/internal/campaign/adapter"
	"allad/internal/campaign/models"
	"allad/internal/connect/classify"
	connect "allad/internal/connect/models"
	"allad/internal/sentinel"
	dErrors "allad/pkg/domain-errors"
)

// CampaignStore is the local campaign cache.
type CampaignStore interface {
	UpsertBatch(ctx context.Context, campaigns []*models.Campaign) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID, platform connect.Platform) ([]*models.Campaign, error)
	UpdateBudget(ctx context.Context, id uuid.UUID, dailyBudget int64) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) error
}

// CredentialReader resolves the credential a campaign operation runs under.
type CredentialReader interface {
	Find(ctx context.Context, teamID uuid.UUID, platform connect.Platform, accountID string) (*connect.Credential, error)
	FindByID(ctx context.Context, id uuid.UUID) (*connect.Credential, error)
}

// MutationResult reports a local-first mutation. Warning is set when the
// local write succeeded but the platform push failed; the caller surfaces it
// instead of failing the request.
type MutationResult struct {
	Campaign *models.Campaign
	Warning  string
}

// Service exposes the campaign operations behind the HTTP surface.
type Service struct {
	campaigns CampaignStore
	creds     CredentialReader
	registry  *adapter.Registry

	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// Option configures optional Service dependencies.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs the campaign service.
func NewService(campaigns CampaignStore, creds CredentialReader, registry *adapter.Registry, opts ...Option) *Service {
	s := &Service{
		campaigns: campaigns,
		creds:     creds,
		registry:  registry,
		logger:    slog.Default(),
		tracer:    otel.Tracer("allad/campaign/service"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync pulls a credential's campaigns from the platform and refreshes the
// local cache, returning the fetched set.
func (s *Service) Sync(ctx context.Context, teamID uuid.UUID, platform connect.Platform, accountID string) ([]*models.Campaign, error) {
	ctx, span := s.tracer.Start(ctx, "campaign.Sync")
	defer span.End()

	cred, err := s.credential(ctx, teamID, platform, accountID)
	if err != nil {
		return nil, err
	}
	a, err := s.registry.Get(cred.Platform)
	if err != nil {
		return nil, err
	}

	campaigns, err := a.FetchCampaigns(ctx, cred)
	if err != nil {
		return nil, err
	}
	if err := s.campaigns.UpsertBatch(ctx, campaigns); err != nil {
		// The fetch is still good; serve it and log the cache miss.
		s.logger.Warn("campaign cache update failed",
			slog.String("platform", cred.Platform.String()),
			slog.String("error", err.Error()))
	}
	return campaigns, nil
}

// List returns the locally cached campaigns for a team.
func (s *Service) List(ctx context.Context, teamID uuid.UUID, platform connect.Platform) ([]*models.Campaign, error) {
	campaigns, err := s.campaigns.ListByTeam(ctx, teamID, platform)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list campaigns")
	}
	return campaigns, nil
}

// Performance fetches daily performance for one campaign.
func (s *Service) Performance(ctx context.Context, teamID, campaignID uuid.UUID, rng models.DateRange) ([]models.Point, error) {
	if !rng.Valid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid date range")
	}

	campaign, cred, err := s.resolve(ctx, teamID, campaignID)
	if err != nil {
		return nil, err
	}
	a, err := s.registry.Get(campaign.Platform)
	if err != nil {
		return nil, err
	}
	return a.FetchPerformance(ctx, cred, campaign.RemoteID, rng)
}

// UpdateBudget updates the budget locally first and then pushes to the
// platform. A platform failure downgrades to a warning; the local value wins
// and the next sync reconciles.
func (s *Service) UpdateBudget(ctx context.Context, teamID, campaignID uuid.UUID, dailyBudget int64) (*MutationResult, error) {
	if dailyBudget <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "daily budget must be positive")
	}

	campaign, cred, err := s.resolve(ctx, teamID, campaignID)
	if err != nil {
		return nil, err
	}
	if err := s.campaigns.UpdateBudget(ctx, campaignID, dailyBudget); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update budget")
	}
	campaign.DailyBudget = dailyBudget

	result := &MutationResult{Campaign: campaign}
	if err := s.push(ctx, campaign, func(a adapter.Adapter) error {
		return a.UpdateBudget(ctx, cred, campaign.RemoteID, dailyBudget)
	}); err != nil {
		result.Warning = classify.UserErrorMessage(err, campaign.Platform, "budget update")
	}
	return result, nil
}

// UpdateStatus mirrors UpdateBudget for the delivery status.
func (s *Service) UpdateStatus(ctx context.Context, teamID, campaignID uuid.UUID, status models.Status) (*MutationResult, error) {
	campaign, cred, err := s.resolve(ctx, teamID, campaignID)
	if err != nil {
		return nil, err
	}
	if err := s.campaigns.UpdateStatus(ctx, campaignID, status); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update status")
	}
	campaign.Status = status

	result := &MutationResult{Campaign: campaign}
	if err := s.push(ctx, campaign, func(a adapter.Adapter) error {
		return a.UpdateStatus(ctx, cred, campaign.RemoteID, status)
	}); err != nil {
		result.Warning = classify.UserErrorMessage(err, campaign.Platform, "status update")
	}
	return result, nil
}

func (s *Service) push(ctx context.Context, campaign *models.Campaign, op func(adapter.Adapter) error) error {
	a, err := s.registry.Get(campaign.Platform)
	if err != nil {
		return err
	}
	if err := op(a); err != nil {
		s.logger.Warn("platform push failed after local write",
			slog.String("platform", campaign.Platform.String()),
			slog.String("campaign_id", campaign.ID.String()),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (s *Service) credential(ctx context.Context, teamID uuid.UUID, platform connect.Platform, accountID string) (*connect.Credential, error) {
	cred, err := s.creds.Find(ctx, teamID, platform, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "no credential for account")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find credential")
	}
	if !cred.IsActive {
		return nil, dErrors.New(dErrors.CodeBadRequest, "credential is deactivated; reconnect the account")
	}
	return cred, nil
}

// resolve loads a campaign with team ownership checked, plus its credential.
func (s *Service) resolve(ctx context.Context, teamID, campaignID uuid.UUID) (*models.Campaign, *connect.Credential, error) {
	campaign, err := s.campaigns.FindByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.Wrap(err, dErrors.CodeNotFound, "campaign not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "find campaign")
	}
	if campaign.TeamID != teamID {
		return nil, nil, dErrors.New(dErrors.CodeNotFound, "campaign not found")
	}

	cred, err := s.creds.FindByID(ctx, campaign.CredentialID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.Wrap(err, dErrors.CodeNotFound, "credential not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "find credential")
	}
	if !cred.IsActive {
		return nil, nil, dErrors.New(dErrors.CodeBadRequest, "credential is deactivated; reconnect the account")
	}
	return campaign, cred, nil
}
