package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"allad/internal/campaign/handler/mocks"
	"allad/internal/campaign/models"
	"allad/internal/campaign/service"
	connect "allad/internal/connect/models"
	dErrors "allad/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks Service

type HandlerSuite struct {
	suite.Suite

	ctrl   *gomock.Controller
	mock   *mocks.MockService
	router http.Handler
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mock = mocks.NewMockService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	h := New(s.mock, logger)
	r := chi.NewRouter()
	h.Register(r)
	s.router = r
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func sampleCampaign(teamID uuid.UUID) *models.Campaign {
	return &models.Campaign{
		ID:          uuid.New(),
		TeamID:      teamID,
		Platform:    connect.PlatformFacebook,
		RemoteID:    "238000001",
		Name:        "Spring Sale",
		Status:      models.StatusActive,
		DailyBudget: 7500,
		Currency:    "USD",
		SyncedAt:    time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
}

func (s *HandlerSuite) TestList() {
	teamID := uuid.New()

	s.T().Run("serves the local cache without accountId", func(t *testing.T) {
		s.mock.EXPECT().
			List(gomock.Any(), teamID, connect.Platform("")).
			Return([]*models.Campaign{sampleCampaign(teamID)}, nil)

		rec := s.serve(httptest.NewRequest(http.MethodGet, "/api/campaigns?teamId="+teamID.String(), nil))

		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), "Spring Sale")
	})

	s.T().Run("accountId triggers a platform sync", func(t *testing.T) {
		s.mock.EXPECT().
			Sync(gomock.Any(), teamID, connect.PlatformFacebook, "act_99").
			Return([]*models.Campaign{sampleCampaign(teamID)}, nil)

		rec := s.serve(httptest.NewRequest(http.MethodGet,
			"/api/campaigns?teamId="+teamID.String()+"&platform=facebook&accountId=act_99", nil))

		s.Equal(http.StatusOK, rec.Code)
	})

	s.T().Run("accountId without platform is rejected", func(t *testing.T) {
		rec := s.serve(httptest.NewRequest(http.MethodGet,
			"/api/campaigns?teamId="+teamID.String()+"&accountId=act_99", nil))

		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.T().Run("deactivated credential surfaces as a client error", func(t *testing.T) {
		s.mock.EXPECT().
			Sync(gomock.Any(), teamID, connect.PlatformGoogle, "108").
			Return(nil, dErrors.New(dErrors.CodeBadRequest, "credential is deactivated; reconnect the account"))

		rec := s.serve(httptest.NewRequest(http.MethodGet,
			"/api/campaigns?teamId="+teamID.String()+"&platform=google&accountId=108", nil))

		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "reconnect")
	})
}

func (s *HandlerSuite) TestPerformance() {
	teamID := uuid.New()
	campaignID := uuid.New()

	s.T().Run("parses the date range", func(t *testing.T) {
		rng := models.DateRange{
			From: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC),
		}
		s.mock.EXPECT().
			Performance(gomock.Any(), teamID, campaignID, rng).
			Return([]models.Point{
				{Date: rng.From, Impressions: 1000, Clicks: 40, Cost: 1200, Conversions: 3, Revenue: 9000},
			}, nil)

		rec := s.serve(httptest.NewRequest(http.MethodGet,
			"/api/campaigns/"+campaignID.String()+"/performance?teamId="+teamID.String()+
				"&from=2026-03-01&to=2026-03-07", nil))

		s.Equal(http.StatusOK, rec.Code)
		var resp struct {
			Performance []pointResponse `json:"performance"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Require().Len(resp.Performance, 1)
		s.Equal("2026-03-01", resp.Performance[0].Date)
		s.Equal(int64(1200), resp.Performance[0].Cost)
	})

	s.T().Run("malformed dates are rejected before the service", func(t *testing.T) {
		rec := s.serve(httptest.NewRequest(http.MethodGet,
			"/api/campaigns/"+campaignID.String()+"/performance?teamId="+teamID.String()+
				"&from=03-01-2026&to=2026-03-07", nil))

		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestMutations() {
	teamID := uuid.New()
	campaignID := uuid.New()

	s.T().Run("budget update returns the stored campaign", func(t *testing.T) {
		updated := sampleCampaign(teamID)
		updated.ID = campaignID
		updated.DailyBudget = 9000
		s.mock.EXPECT().
			UpdateBudget(gomock.Any(), teamID, campaignID, int64(9000)).
			Return(&service.MutationResult{Campaign: updated}, nil)

		rec := s.serve(httptest.NewRequest(http.MethodPatch,
			"/api/campaigns/"+campaignID.String()+"/budget?teamId="+teamID.String(),
			strings.NewReader(`{"dailyBudget":9000}`)))

		s.Equal(http.StatusOK, rec.Code)
		var resp mutationResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.True(resp.Success)
		s.Equal(int64(9000), resp.Campaign.DailyBudget)
		s.Empty(resp.Warning)
	})

	s.T().Run("platform push failure still succeeds with a warning", func(t *testing.T) {
		updated := sampleCampaign(teamID)
		updated.ID = campaignID
		updated.Status = models.StatusPaused
		s.mock.EXPECT().
			UpdateStatus(gomock.Any(), teamID, campaignID, models.StatusPaused).
			Return(&service.MutationResult{
				Campaign: updated,
				Warning:  "facebook rejected the status update; saved locally and will retry on next sync",
			}, nil)

		rec := s.serve(httptest.NewRequest(http.MethodPatch,
			"/api/campaigns/"+campaignID.String()+"/status?teamId="+teamID.String(),
			strings.NewReader(`{"status":"paused"}`)))

		s.Equal(http.StatusOK, rec.Code)
		var resp mutationResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.True(resp.Success)
		s.Equal("paused", resp.Campaign.Status)
		s.NotEmpty(resp.Warning)
	})

	s.T().Run("unknown status is rejected", func(t *testing.T) {
		rec := s.serve(httptest.NewRequest(http.MethodPatch,
			"/api/campaigns/"+campaignID.String()+"/status?teamId="+teamID.String(),
			strings.NewReader(`{"status":"running"}`)))

		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.T().Run("foreign campaign is invisible", func(t *testing.T) {
		s.mock.EXPECT().
			UpdateBudget(gomock.Any(), teamID, campaignID, int64(500)).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "campaign not found"))

		rec := s.serve(httptest.NewRequest(http.MethodPatch,
			"/api/campaigns/"+campaignID.String()+"/budget?teamId="+teamID.String(),
			strings.NewReader(`{"dailyBudget":500}`)))

		s.Equal(http.StatusNotFound, rec.Code)
	})
}
