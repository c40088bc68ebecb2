package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"allad/internal/connect/audit"
	"allad/internal/connect/classify"
	"allad/internal/connect/metrics"
	"allad/internal/connect/models"
	"allad/internal/platform/config"
	"allad/internal/sentinel"
	dErrors "allad/pkg/domain-errors"
	"allad/pkg/secrets"
)

// CredentialStore is the credential persistence used by the controller.
type CredentialStore interface {
	Upsert(ctx context.Context, cred *models.Credential) (*models.Credential, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Credential, error)
	List(ctx context.Context, teamID uuid.UUID, platform models.Platform) ([]*models.Credential, error)
	UpdateIdentity(ctx context.Context, id uuid.UUID, accountID, accountName string, data models.PlatformData) error
	Deactivate(ctx context.Context, id uuid.UUID, reason string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// StateStore persists single-use authorization states.
type StateStore interface {
	Save(ctx context.Context, state *models.OAuthState) error
	Consume(ctx context.Context, state string, platform models.Platform) (*models.OAuthState, error)
}

// Controller drives the authorization flows and owns credential lifecycle
// operations exposed over the API.
type Controller struct {
	creds    CredentialStore
	states   StateStore
	provider ProviderClient
	cfg      config.Server

	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   audit.Publisher
	tracer  trace.Tracer
	now     func() time.Time
}

// Option configures optional Controller dependencies.
type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

func WithAudit(p audit.Publisher) Option {
	return func(c *Controller) { c.audit = p }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController constructs a Controller. Logger, metrics and audit default to
// no-ops when not provided.
func NewController(creds CredentialStore, states StateStore, provider ProviderClient, cfg config.Server, opts ...Option) *Controller {
	c := &Controller{
		creds:    creds,
		states:   states,
		provider: provider,
		cfg:      cfg,
		logger:   slog.Default(),
		audit:    audit.NopPublisher{},
		tracer:   otel.Tracer("allad/connect/oauth"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initiate starts the authorization flow: mints a single-use state, persists
// it with its TTL, and returns the provider authorization URL to redirect to.
func (c *Controller) Initiate(ctx context.Context, platform models.Platform, userID, teamID uuid.UUID) (string, error) {
	ctx, span := c.tracer.Start(ctx, "oauth.Initiate",
		trace.WithAttributes(attribute.String("platform", platform.String())))
	defer span.End()

	provider, ok := ProviderFor(platform)
	if !ok {
		return "", dErrors.New(dErrors.CodePlatformUnknown, fmt.Sprintf("unsupported platform %q", platform))
	}

	state, err := secrets.GenerateState()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "generate state")
	}

	now := c.now()
	record := &models.OAuthState{
		State:     state,
		Platform:  platform,
		UserID:    userID,
		TeamID:    teamID,
		CreatedAt: now,
		ExpiresAt: now.Add(c.cfg.StateTTL),
	}
	if err := c.states.Save(ctx, record); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "save oauth state")
	}

	query := url.Values{}
	query.Set("client_id", c.cfg.OAuthApps[platform.String()].ClientID)
	query.Set("redirect_uri", c.cfg.RedirectURI(platform.String()))
	query.Set("response_type", "code")
	query.Set("state", state)
	if len(provider.Scopes) > 0 {
		query.Set("scope", strings.Join(provider.Scopes, " "))
	}
	for key, value := range provider.ExtraAuthParams {
		query.Set(key, value)
	}

	c.logger.Info("authorization flow initiated",
		slog.String("platform", platform.String()),
		slog.String("team_id", teamID.String()))
	return provider.AuthURL + "?" + query.Encode(), nil
}

// CallbackParams carries the query parameters of a provider redirect.
type CallbackParams struct {
	Platform models.Platform
	Code     string
	State    string
	// ErrorParam is the provider's error query parameter, set when the user
	// denied consent or the provider rejected the request.
	ErrorParam string
}

// HandleCallback completes the authorization flow. The state is consumed
// before anything else; a replayed or expired callback fails closed. The
// credential is persisted only after both the token exchange and the account
// lookup succeed.
func (c *Controller) HandleCallback(ctx context.Context, params CallbackParams) (*models.Credential, error) {
	ctx, span := c.tracer.Start(ctx, "oauth.HandleCallback",
		trace.WithAttributes(attribute.String("platform", params.Platform.String())))
	defer span.End()

	platform := params.Platform
	if !platform.Valid() {
		return nil, dErrors.New(dErrors.CodePlatformUnknown, fmt.Sprintf("unsupported platform %q", platform))
	}

	if params.ErrorParam != "" {
		c.countFailure(platform, "denied")
		return nil, dErrors.New(dErrors.CodeExchangeFailed,
			fmt.Sprintf("authorization was not granted: %s", params.ErrorParam))
	}
	if params.Code == "" || params.State == "" {
		c.countFailure(platform, "state")
		return nil, dErrors.New(dErrors.CodeInvalidState, "callback missing code or state")
	}

	state, err := c.states.Consume(ctx, params.State, platform)
	if err != nil {
		c.countFailure(platform, "state")
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "state not found or already used")
		case errors.Is(err, sentinel.ErrExpired):
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "state expired")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "consume state")
		}
	}

	exchangeStart := c.now()
	tok, err := c.provider.Exchange(ctx, platform, params.Code)
	if err != nil {
		c.countFailure(platform, "exchange")
		c.countClassified(platform, err)
		return nil, dErrors.Wrap(err, dErrors.CodeExchangeFailed, "token exchange failed")
	}
	if c.metrics != nil {
		c.metrics.ObserveExchangeDuration(platform.String(), float64(c.now().Sub(exchangeStart).Milliseconds()))
	}

	info, err := c.provider.FetchAccountInfo(ctx, platform, tok.AccessToken, tok)
	if err != nil {
		c.countFailure(platform, "account")
		c.countClassified(platform, err)
		return nil, dErrors.Wrap(err, dErrors.CodeAccountFetch, "account lookup failed")
	}

	refreshToken := tok.RefreshToken
	if provider, ok := ProviderFor(platform); ok && provider.Refresh == RefreshExchange && refreshToken == "" {
		// Graph token responses carry no refresh_token; the long-lived access
		// token itself is what gets re-exchanged, so store it as the refresh
		// material to keep the credential eligible for rotation.
		refreshToken = tok.AccessToken
	}

	now := c.now()
	cred := &models.Credential{
		TeamID:       state.TeamID,
		Platform:     platform,
		AccountID:    info.AccountID,
		AccountName:  info.AccountName,
		AccessToken:  tok.AccessToken,
		RefreshToken: refreshToken,
		Scope:        tok.Scope,
		ExpiresAt:    tok.ExpiryTime(now),
		IsActive:     true,
		LastSyncedAt: &now,
		Data:         info.Data,
	}
	saved, err := c.creds.Upsert(ctx, cred)
	if err != nil {
		c.countFailure(platform, "store")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist credential")
	}

	if platform == models.PlatformGoogle {
		c.resolveGoogleIdentity(ctx, saved, tok.AccessToken)
	}

	if c.metrics != nil {
		c.metrics.IncrementConnects(platform.String())
	}
	c.emitAudit(ctx, audit.EventCredentialConnected, saved, "")
	c.logger.Info("credential connected",
		slog.String("platform", platform.String()),
		slog.String("team_id", saved.TeamID.String()),
		slog.String("account_id", saved.AccountID))
	return saved, nil
}

// resolveGoogleIdentity swaps the Google user id for the real Ads customer ID.
// Best-effort: the credential is already saved and usable under the sub-based
// identity if this fails.
func (c *Controller) resolveGoogleIdentity(ctx context.Context, cred *models.Credential, accessToken string) {
	customerID, err := c.provider.ResolveGoogleCustomerID(ctx, accessToken)
	if err != nil {
		c.logger.Warn("google customer id lookup failed",
			slog.String("credential_id", cred.ID.String()),
			slog.String("error", err.Error()))
		return
	}

	data := cred.Data
	data.GoogleCustomerID = customerID
	if err := c.creds.UpdateIdentity(ctx, cred.ID, customerID, cred.AccountName, data); err != nil {
		c.logger.Warn("google identity update failed",
			slog.String("credential_id", cred.ID.String()),
			slog.String("error", err.Error()))
		return
	}
	cred.AccountID = customerID
	cred.Data = data
}

// ListCredentials returns a team's credentials, optionally filtered by platform.
func (c *Controller) ListCredentials(ctx context.Context, teamID uuid.UUID, platform models.Platform) ([]*models.Credential, error) {
	creds, err := c.creds.List(ctx, teamID, platform)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list credentials")
	}
	return creds, nil
}

// GetCredential fetches a credential and verifies team ownership.
func (c *Controller) GetCredential(ctx context.Context, teamID, id uuid.UUID) (*models.Credential, error) {
	cred, err := c.creds.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "credential not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find credential")
	}
	if cred.TeamID != teamID {
		return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
	}
	return cred, nil
}

// DeactivateCredential marks a credential inactive without deleting it. The
// row keeps its tokens and history so a later reconnect restores continuity.
func (c *Controller) DeactivateCredential(ctx context.Context, teamID, id uuid.UUID, reason string) error {
	cred, err := c.GetCredential(ctx, teamID, id)
	if err != nil {
		return err
	}
	if reason == "" {
		reason = "deactivated by user"
	}
	if err := c.creds.Deactivate(ctx, id, reason); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "deactivate credential")
	}
	if c.metrics != nil {
		c.metrics.IncrementDeactivations(cred.Platform.String())
	}
	c.emitAudit(ctx, audit.EventCredentialDeactivated, cred, reason)
	return nil
}

// ReactivateCredential re-enables a previously deactivated credential.
func (c *Controller) ReactivateCredential(ctx context.Context, teamID, id uuid.UUID) error {
	if _, err := c.GetCredential(ctx, teamID, id); err != nil {
		return err
	}
	if err := c.creds.SetActive(ctx, id, true); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "reactivate credential")
	}
	return nil
}

// DeleteCredential removes a credential permanently.
func (c *Controller) DeleteCredential(ctx context.Context, teamID, id uuid.UUID) error {
	cred, err := c.GetCredential(ctx, teamID, id)
	if err != nil {
		return err
	}
	if err := c.creds.Delete(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete credential")
	}
	c.emitAudit(ctx, audit.EventCredentialDisconnected, cred, "")
	return nil
}

func (c *Controller) emitAudit(ctx context.Context, action string, cred *models.Credential, detail string) {
	event := audit.Event{
		Action:       action,
		CredentialID: cred.ID,
		TeamID:       cred.TeamID,
		Platform:     cred.Platform,
		Detail:       detail,
		Timestamp:    c.now().UTC(),
	}
	if err := c.audit.Emit(ctx, event); err != nil {
		c.logger.Warn("audit emit failed",
			slog.String("action", action),
			slog.String("error", err.Error()))
	}
}

func (c *Controller) countFailure(platform models.Platform, stage string) {
	if c.metrics != nil {
		c.metrics.IncrementConnectFailures(platform.String(), stage)
	}
}

func (c *Controller) countClassified(platform models.Platform, err error) {
	if c.metrics == nil {
		return
	}
	classified := classify.Classify(err, platform)
	c.metrics.IncrementClassifiedErrors(platform.String(), string(classified.Code))
}
