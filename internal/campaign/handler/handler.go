// Package handler exposes the campaign endpoints over the adapter registry.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"allad/internal/campaign/models"
	"allad/internal/campaign/service"
	connect "allad/internal/connect/models"
	"allad/internal/platform/middleware"
	httpError "allad/internal/transport/http/error"
	jsonResponse "allad/internal/transport/http/json"
	dErrors "allad/pkg/domain-errors"
	"allad/pkg/validation"
)

// Service is the campaign operations surface.
type Service interface {
	Sync(ctx context.Context, teamID uuid.UUID, platform connect.Platform, accountID string) ([]*models.Campaign, error)
	List(ctx context.Context, teamID uuid.UUID, platform connect.Platform) ([]*models.Campaign, error)
	Performance(ctx context.Context, teamID, campaignID uuid.UUID, rng models.DateRange) ([]models.Point, error)
	UpdateBudget(ctx context.Context, teamID, campaignID uuid.UUID, dailyBudget int64) (*service.MutationResult, error)
	UpdateStatus(ctx context.Context, teamID, campaignID uuid.UUID, status models.Status) (*service.MutationResult, error)
}

// Handler handles the /api/campaigns routes.
type Handler struct {
	campaigns Service
	logger    *slog.Logger
}

// New creates the campaign Handler.
func New(campaigns Service, logger *slog.Logger) *Handler {
	return &Handler{campaigns: campaigns, logger: logger}
}

// Register registers the campaign routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/campaigns", h.HandleList)
	r.Get("/api/campaigns/{id}/performance", h.HandlePerformance)
	r.Patch("/api/campaigns/{id}/budget", h.HandleUpdateBudget)
	r.Patch("/api/campaigns/{id}/status", h.HandleUpdateStatus)
}

type campaignResponse struct {
	ID          string    `json:"id"`
	Platform    string    `json:"platform"`
	RemoteID    string    `json:"remoteId"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	DailyBudget int64     `json:"dailyBudget"`
	Currency    string    `json:"currency"`
	SyncedAt    time.Time `json:"syncedAt"`
}

func toCampaignResponse(c *models.Campaign) campaignResponse {
	return campaignResponse{
		ID:          c.ID.String(),
		Platform:    c.Platform.String(),
		RemoteID:    c.RemoteID,
		Name:        c.Name,
		Status:      string(c.Status),
		DailyBudget: c.DailyBudget,
		Currency:    c.Currency,
		SyncedAt:    c.SyncedAt,
	}
}

// HandleList implements GET /api/campaigns?teamId=&platform=&accountId=.
// With accountId set it syncs from the platform; otherwise it serves the
// local cache.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	teamID, err := queryUUID(r, "teamId")
	if err != nil || teamID == uuid.Nil {
		httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "teamId must be a UUID"))
		return
	}

	var platform connect.Platform
	if raw := r.URL.Query().Get("platform"); raw != "" {
		platform, err = connect.ParsePlatform(raw)
		if err != nil {
			httpError.WriteError(w, dErrors.New(dErrors.CodePlatformUnknown, err.Error()))
			return
		}
	}

	accountID := r.URL.Query().Get("accountId")
	var campaigns []*models.Campaign
	if accountID != "" {
		if platform == "" {
			httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "platform is required with accountId"))
			return
		}
		campaigns, err = h.campaigns.Sync(ctx, teamID, platform, accountID)
	} else {
		campaigns, err = h.campaigns.List(ctx, teamID, platform)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "campaign list failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
			"platform", platform.String(),
		)
		httpError.WriteError(w, err)
		return
	}

	out := make([]campaignResponse, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, toCampaignResponse(c))
	}
	jsonResponse.WriteJSON(w, http.StatusOK, map[string]any{"campaigns": out})
}

type pointResponse struct {
	Date        string `json:"date"`
	Impressions int64  `json:"impressions"`
	Clicks      int64  `json:"clicks"`
	Cost        int64  `json:"cost"`
	Conversions int64  `json:"conversions"`
	Revenue     int64  `json:"revenue"`
}

// HandlePerformance implements GET /api/campaigns/{id}/performance?from=&to=.
func (h *Handler) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	teamID, id, err := campaignTarget(r)
	if err != nil {
		httpError.WriteError(w, err)
		return
	}

	const day = "2006-01-02"
	from, err := time.Parse(day, r.URL.Query().Get("from"))
	if err != nil {
		httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "from must be YYYY-MM-DD"))
		return
	}
	to, err := time.Parse(day, r.URL.Query().Get("to"))
	if err != nil {
		httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "to must be YYYY-MM-DD"))
		return
	}

	points, err := h.campaigns.Performance(r.Context(), teamID, id, models.DateRange{From: from, To: to})
	if err != nil {
		httpError.WriteError(w, err)
		return
	}

	out := make([]pointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, pointResponse{
			Date:        p.Date.Format(day),
			Impressions: p.Impressions,
			Clicks:      p.Clicks,
			Cost:        p.Cost,
			Conversions: p.Conversions,
			Revenue:     p.Revenue,
		})
	}
	jsonResponse.WriteJSON(w, http.StatusOK, map[string]any{"performance": out})
}

// mutationResponse reports a local-first mutation; Warning is present when
// the platform push failed after the local write succeeded.
type mutationResponse struct {
	Success  bool             `json:"success"`
	Campaign campaignResponse `json:"campaign"`
	Warning  string           `json:"warning,omitempty"`
}

// HandleUpdateBudget implements PATCH /api/campaigns/{id}/budget.
func (h *Handler) HandleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	teamID, id, err := campaignTarget(r)
	if err != nil {
		httpError.WriteError(w, err)
		return
	}

	var body struct {
		DailyBudget int64 `json:"dailyBudget" validate:"required,gt=0"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
		return
	}
	if err := validation.Validate(&body); err != nil {
		httpError.WriteError(w, err)
		return
	}

	result, err := h.campaigns.UpdateBudget(r.Context(), teamID, id, body.DailyBudget)
	if err != nil {
		httpError.WriteError(w, err)
		return
	}
	h.writeMutation(w, r, result)
}

// HandleUpdateStatus implements PATCH /api/campaigns/{id}/status.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	teamID, id, err := campaignTarget(r)
	if err != nil {
		httpError.WriteError(w, err)
		return
	}

	var body struct {
		Status string `json:"status" validate:"required,notblank"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
		return
	}
	if err := validation.Validate(&body); err != nil {
		httpError.WriteError(w, err)
		return
	}
	status, err := models.ParseStatus(body.Status)
	if err != nil {
		httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, err.Error()))
		return
	}

	result, err := h.campaigns.UpdateStatus(r.Context(), teamID, id, status)
	if err != nil {
		httpError.WriteError(w, err)
		return
	}
	h.writeMutation(w, r, result)
}

func (h *Handler) writeMutation(w http.ResponseWriter, r *http.Request, result *service.MutationResult) {
	if result.Warning != "" {
		h.logger.WarnContext(r.Context(), "mutation saved locally but platform push failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"campaign_id", result.Campaign.ID.String(),
			"warning", result.Warning,
		)
	}
	jsonResponse.WriteJSON(w, http.StatusOK, mutationResponse{
		Success:  true,
		Campaign: toCampaignResponse(result.Campaign),
		Warning:  result.Warning,
	})
}

func campaignTarget(r *http.Request) (teamID, id uuid.UUID, err error) {
	teamID, err = queryUUID(r, "teamId")
	if err != nil || teamID == uuid.Nil {
		return uuid.Nil, uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "teamId must be a UUID")
	}
	id, err = uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "campaign id must be a UUID")
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
