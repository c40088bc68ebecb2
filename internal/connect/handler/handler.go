// Package handler exposes the credential and OAuth flow endpoints. Token
// material never leaves this layer: credential responses carry identity and
// health fields only.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"allad/internal/connect/models"
	"allad/internal/connect/oauth"
	"allad/internal/connect/refresh"
	"allad/internal/platform/middleware"
	httpError "allad/internal/transport/http/error"
	jsonResponse "allad/internal/transport/http/json"
	dErrors "allad/pkg/domain-errors"
	"allad/pkg/validation"
)

// ConnectService is the OAuth flow and credential lifecycle surface.
type ConnectService interface {
	Initiate(ctx context.Context, platform models.Platform, userID, teamID uuid.UUID) (string, error)
	HandleCallback(ctx context.Context, params oauth.CallbackParams) (*models.Credential, error)
	ListCredentials(ctx context.Context, teamID uuid.UUID, platform models.Platform) ([]*models.Credential, error)
	DeactivateCredential(ctx context.Context, teamID, id uuid.UUID, reason string) error
	ReactivateCredential(ctx context.Context, teamID, id uuid.UUID) error
	DeleteCredential(ctx context.Context, teamID, id uuid.UUID) error
}

// RefreshService triggers and inspects token refresh scans.
type RefreshService interface {
	RefreshDue(ctx context.Context, filter refresh.Filter) (refresh.Summary, error)
	DueCredentials(ctx context.Context, teamID uuid.UUID) ([]*models.Credential, error)
}

// Handler handles the /api/auth and /api/credentials routes.
type Handler struct {
	connect ConnectService
	refresh RefreshService
	siteURL string
	logger  *slog.Logger
}

// New creates the connect Handler.
func New(connect ConnectService, refreshSvc RefreshService, siteURL string, logger *slog.Logger) *Handler {
	return &Handler{
		connect: connect,
		refresh: refreshSvc,
		siteURL: strings.TrimSuffix(siteURL, "/"),
		logger:  logger,
	}
}

// Register registers the connect routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/auth/oauth/{platform}", h.HandleInitiate)
	r.Get("/api/auth/oauth/{platform}/callback", h.HandleCallback)
	// The redirect URI registered with the providers; {platform} carries an
	// "-ads" suffix there.
	r.Get("/api/auth/callback/{platform}", h.HandleCallback)

	r.Post("/api/auth/refresh", h.HandleRefresh)
	r.Get("/api/auth/refresh", h.HandleRefreshStatus)

	r.Get("/api/credentials", h.HandleListCredentials)
	r.Post("/api/credentials/{id}/deactivate", h.HandleDeactivate)
	r.Post("/api/credentials/{id}/reactivate", h.HandleReactivate)
	r.Delete("/api/credentials/{id}", h.HandleDelete)
}

// credentialResponse is the outward credential shape. Tokens stay server-side.
type credentialResponse struct {
	ID           string     `json:"id"`
	Platform     string     `json:"platform"`
	AccountID    string     `json:"accountId"`
	AccountName  string     `json:"accountName"`
	IsActive     bool       `json:"isActive"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`
}

func toCredentialResponse(cred *models.Credential) credentialResponse {
	return credentialResponse{
		ID:           cred.ID.String(),
		Platform:     cred.Platform.String(),
		AccountID:    cred.AccountID,
		AccountName:  cred.AccountName,
		IsActive:     cred.IsActive,
		ExpiresAt:    cred.ExpiresAt,
		ErrorMessage: cred.ErrorMessage,
		LastSyncedAt: cred.LastSyncedAt,
	}
}

// HandleInitiate implements GET /api/auth/oauth/{platform}.
// Responds with a 302 to the provider's authorization page.
func (h *Handler) HandleInitiate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	platform, err := models.ParsePlatform(chi.URLParam(r, "platform"))
	if err != nil {
		httpError.WriteError(w, dErrors.New(dErrors.CodePlatformUnknown, err.Error()))
		return
	}
	userID, err := queryUUID(r, "userId")
	if err != nil {
		httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "userId must be a UUID"))
		return
	}
	teamID, err := queryUUID(r, "teamId")
	if err != nil || teamID == uuid.Nil {
		httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "teamId must be a UUID"))
		return
	}

	redirect, err := h.connect.Initiate(ctx, platform, userID, teamID)
	if err != nil {
		h.logger.ErrorContext(ctx, "oauth initiate failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
			"platform", platform.String(),
		)
		httpError.WriteError(w, err)
		return
	}
	http.Redirect(w, r, redirect, http.StatusFound)
}

// HandleCallback implements the provider redirect target. Success and
// failure both land back on the dashboard settings page; the outcome rides
// in query parameters.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := strings.TrimSuffix(chi.URLParam(r, "platform"), "-ads")
	platform, err := models.ParsePlatform(raw)
	if err != nil {
		h.redirectError(w, r, raw, dErrors.New(dErrors.CodePlatformUnknown, err.Error()))
		return
	}

	params := oauth.CallbackParams{
		Platform:   platform,
		Code:       r.URL.Query().Get("code"),
		State:      r.URL.Query().Get("state"),
		ErrorParam: r.URL.Query().Get("error"),
	}

	cred, err := h.connect.HandleCallback(ctx, params)
	if err != nil {
		h.logger.WarnContext(ctx, "oauth callback failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
			"platform", platform.String(),
		)
		h.redirectError(w, r, platform.String(), err)
		return
	}

	query := url.Values{}
	query.Set("success", "platform_connected")
	query.Set("platform", platform.String())
	query.Set("account", cred.AccountID)
	http.Redirect(w, r, h.siteURL+"/settings?"+query.Encode(), http.StatusFound)
}

func (h *Handler) redirectError(w http.ResponseWriter, r *http.Request, platform string, err error) {
	code := dErrors.CodeInternal
	message := ""
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		code = domainErr.Code
		message = domainErr.Message
	}

	query := url.Values{}
	query.Set("error", string(code))
	query.Set("platform", platform)
	if message != "" {
		query.Set("message", message)
	}
	http.Redirect(w, r, h.siteURL+"/settings?"+query.Encode(), http.StatusFound)
}

type refreshRequest struct {
	TeamID    string `json:"teamId"`
	Platform  string `json:"platform"`
	AccountID string `json:"accountId"`
}

type refreshResponse struct {
	Success bool `json:"success"`
	refresh.Summary
	Message string `json:"message,omitempty"`
}

// HandleRefresh implements POST /api/auth/refresh: an on-demand scan over
// the due credentials, narrowed by the optional body filters. It runs the
// same path as the background worker.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
			return
		}
	}

	filter := refresh.Filter{AccountID: req.AccountID}
	if req.TeamID != "" {
		teamID, err := uuid.Parse(req.TeamID)
		if err != nil {
			httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "teamId must be a UUID"))
			return
		}
		filter.TeamID = teamID
	}
	if req.Platform != "" {
		platform, err := models.ParsePlatform(req.Platform)
		if err != nil {
			httpError.WriteError(w, dErrors.New(dErrors.CodePlatformUnknown, err.Error()))
			return
		}
		filter.Platform = platform
	}

	summary, err := h.refresh.RefreshDue(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "manual refresh failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httpError.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "refresh scan failed"))
		return
	}

	resp := refreshResponse{Success: summary.Failed == 0, Summary: summary}
	if summary.Failed > 0 {
		resp.Message = "some credentials could not be refreshed; check their status"
	}
	jsonResponse.WriteJSON(w, http.StatusOK, resp)
}

// HandleRefreshStatus implements GET /api/auth/refresh: which credentials
// are currently inside the refresh window.
func (h *Handler) HandleRefreshStatus(w http.ResponseWriter, r *http.Request) {
	teamID, err := queryUUID(r, "teamId")
	if err != nil || teamID == uuid.Nil {
		httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "teamId must be a UUID"))
		return
	}

	var platform models.Platform
	if raw := r.URL.Query().Get("platform"); raw != "" {
		platform, err = models.ParsePlatform(raw)
		if err != nil {
			httpError.WriteError(w, dErrors.New(dErrors.CodePlatformUnknown, err.Error()))
			return
		}
	}
	accountID := r.URL.Query().Get("accountId")

	due, err := h.refresh.DueCredentials(r.Context(), teamID)
	if err != nil {
		httpError.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "list due credentials"))
		return
	}

	out := make([]credentialResponse, 0, len(due))
	for _, cred := range due {
		if platform != "" && cred.Platform != platform {
			continue
		}
		if accountID != "" && cred.AccountID != accountID {
			continue
		}
		out = append(out, toCredentialResponse(cred))
	}
	jsonResponse.WriteJSON(w, http.StatusOK, map[string]any{
		"dueCount":    len(out),
		"credentials": out,
	})
}

// HandleListCredentials implements GET /api/credentials?teamId=&platform=.
func (h *Handler) HandleListCredentials(w http.ResponseWriter, r *http.Request) {
	teamID, err := queryUUID(r, "teamId")
	if err != nil || teamID == uuid.Nil {
		httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "teamId must be a UUID"))
		return
	}

	var platform models.Platform
	if raw := r.URL.Query().Get("platform"); raw != "" {
		platform, err = models.ParsePlatform(raw)
		if err != nil {
			httpError.WriteError(w, dErrors.New(dErrors.CodePlatformUnknown, err.Error()))
			return
		}
	}

	creds, err := h.connect.ListCredentials(r.Context(), teamID, platform)
	if err != nil {
		httpError.WriteError(w, err)
		return
	}

	out := make([]credentialResponse, 0, len(creds))
	for _, cred := range creds {
		out = append(out, toCredentialResponse(cred))
	}
	jsonResponse.WriteJSON(w, http.StatusOK, map[string]any{"credentials": out})
}

// HandleDeactivate implements POST /api/credentials/{id}/deactivate.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	teamID, id, err := credentialTarget(r)
	if err != nil {
		httpError.WriteError(w, err)
		return
	}

	var body struct {
		Reason string `json:"reason" validate:"omitempty,max=500"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
			return
		}
		if err := validation.Validate(&body); err != nil {
			httpError.WriteError(w, err)
			return
		}
	}

	if err := h.connect.DeactivateCredential(r.Context(), teamID, id, body.Reason); err != nil {
		httpError.WriteError(w, err)
		return
	}
	jsonResponse.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleReactivate implements POST /api/credentials/{id}/reactivate.
func (h *Handler) HandleReactivate(w http.ResponseWriter, r *http.Request) {
	teamID, id, err := credentialTarget(r)
	if err != nil {
		httpError.WriteError(w, err)
		return
	}
	if err := h.connect.ReactivateCredential(r.Context(), teamID, id); err != nil {
		httpError.WriteError(w, err)
		return
	}
	jsonResponse.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleDelete implements DELETE /api/credentials/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	teamID, id, err := credentialTarget(r)
	if err != nil {
		httpError.WriteError(w, err)
		return
	}
	if err := h.connect.DeleteCredential(r.Context(), teamID, id); err != nil {
		httpError.WriteError(w, err)
		return
	}
	jsonResponse.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func credentialTarget(r *http.Request) (teamID, id uuid.UUID, err error) {
	teamID, err = queryUUID(r, "teamId")
	if err != nil || teamID == uuid.Nil {
		return uuid.Nil, uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "teamId must be a UUID")
	}
	id, err = uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "credential id must be a UUID")
	}
	return teamID, id, nil
}

func queryUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(raw)
}
