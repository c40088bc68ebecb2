package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"allad/internal/campaign/adapter"
	adaptermocks "allad/internal/campaign/adapter/mocks"
	"allad/internal/campaign/models"
	campaignstore "allad/internal/campaign/store"
	"allad/internal/connect/classify"
	connect "allad/internal/connect/models"
	credstore "allad/internal/connect/store/credential"
	dErrors "allad/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	fbAdapter *adaptermocks.MockAdapter
	campaigns *campaignstore.InMemoryStore
	creds     *credstore.InMemoryStore
	service   *Service

	cred *connect.Credential
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.fbAdapter = adaptermocks.NewMockAdapter(s.ctrl)
	s.fbAdapter.EXPECT().Platform().Return(connect.PlatformFacebook).AnyTimes()

	s.campaigns = campaignstore.NewInMemoryStore()
	s.creds = credstore.NewInMemoryStore()

	registry := adapter.NewRegistry([]adapter.Adapter{s.fbAdapter})
	s.service = NewService(s.campaigns, s.creds, registry,
		WithLogger(slog.New(slog.DiscardHandler)))

	cred, err := s.creds.Upsert(context.Background(), &connect.Credential{
		TeamID:      uuid.New(),
		Platform:    connect.PlatformFacebook,
		AccountID:   "8800",
		AccountName: "Acme Ads",
		AccessToken: "at",
		IsActive:    true,
	})
	s.Require().NoError(err)
	s.cred = cred
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// seedCampaign puts one cached campaign under the suite credential.
func (s *ServiceSuite) seedCampaign(name string, budget int64) *models.Campaign {
	campaign := &models.Campaign{
		CredentialID: s.cred.ID,
		TeamID:       s.cred.TeamID,
		Platform:     connect.PlatformFacebook,
		RemoteID:     "r-" + name,
		Name:         name,
		Status:       models.StatusActive,
		DailyBudget:  budget,
		Currency:     "USD",
	}
	s.Require().NoError(s.campaigns.UpsertBatch(context.Background(), []*models.Campaign{campaign}))
	list, err := s.campaigns.ListByTeam(context.Background(), s.cred.TeamID, connect.PlatformFacebook)
	s.Require().NoError(err)
	for _, c := range list {
		if c.Name == name {
			return c
		}
	}
	s.FailNow("seeded campaign not found")
	return nil
}

func (s *ServiceSuite) TestSync() {
	s.T().Run("fetches and caches", func(t *testing.T) {
		s.fbAdapter.EXPECT().FetchCampaigns(gomock.Any(), gomock.Any()).Return([]*models.Campaign{
			{
				CredentialID: s.cred.ID,
				TeamID:       s.cred.TeamID,
				Platform:     connect.PlatformFacebook,
				RemoteID:     "c1",
				Name:         "Spring Sale",
				Status:       models.StatusActive,
				DailyBudget:  5000,
			},
		}, nil)

		fetched, err := s.service.Sync(context.Background(), s.cred.TeamID, connect.PlatformFacebook, "8800")
		s.NoError(err)
		s.Len(fetched, 1)

		cached, err := s.service.List(context.Background(), s.cred.TeamID, connect.PlatformFacebook)
		s.Require().NoError(err)
		s.Require().Len(cached, 1)
		s.Equal("Spring Sale", cached[0].Name)
	})

	s.T().Run("unknown account is not found", func(t *testing.T) {
		_, err := s.service.Sync(context.Background(), s.cred.TeamID, connect.PlatformFacebook, "other")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.T().Run("deactivated credential refuses to sync", func(t *testing.T) {
		s.Require().NoError(s.creds.Deactivate(context.Background(), s.cred.ID, "expired"))

		_, err := s.service.Sync(context.Background(), s.cred.TeamID, connect.PlatformFacebook, "8800")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

		s.Require().NoError(s.creds.SetActive(context.Background(), s.cred.ID, true))
	})
}

func (s *ServiceSuite) TestPerformance() {
	s.T().Run("passes range through the adapter", func(t *testing.T) {
		campaign := s.seedCampaign("perf", 1000)
		rng := models.DateRange{
			From: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC),
		}
		s.fbAdapter.EXPECT().FetchPerformance(gomock.Any(), gomock.Any(), campaign.RemoteID, rng).
			Return([]models.Point{{Date: rng.From, Impressions: 10, Clicks: 2, Cost: 300}}, nil)

		points, err := s.service.Performance(context.Background(), s.cred.TeamID, campaign.ID, rng)
		s.NoError(err)
		s.Len(points, 1)
	})

	s.T().Run("reversed range rejected", func(t *testing.T) {
		campaign := s.seedCampaign("perf2", 1000)
		rng := models.DateRange{
			From: time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		}
		_, err := s.service.Performance(context.Background(), s.cred.TeamID, campaign.ID, rng)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ServiceSuite) TestLocalFirstMutations() {
	s.T().Run("budget updates locally and pushes", func(t *testing.T) {
		campaign := s.seedCampaign("budget-ok", 1000)
		s.fbAdapter.EXPECT().UpdateBudget(gomock.Any(), gomock.Any(), campaign.RemoteID, int64(2500)).Return(nil)

		result, err := s.service.UpdateBudget(context.Background(), s.cred.TeamID, campaign.ID, 2500)
		s.Require().NoError(err)
		s.Empty(result.Warning)
		s.Equal(int64(2500), result.Campaign.DailyBudget)

		stored, err := s.campaigns.FindByID(context.Background(), campaign.ID)
		s.Require().NoError(err)
		s.Equal(int64(2500), stored.DailyBudget)
	})

	s.T().Run("platform push failure downgrades to warning", func(t *testing.T) {
		campaign := s.seedCampaign("budget-warn", 1000)
		s.fbAdapter.EXPECT().UpdateBudget(gomock.Any(), gomock.Any(), campaign.RemoteID, int64(9000)).
			Return(&classify.APIError{StatusCode: 429, ProviderCode: "4"})

		result, err := s.service.UpdateBudget(context.Background(), s.cred.TeamID, campaign.ID, 9000)
		s.Require().NoError(err)
		s.NotEmpty(result.Warning)

		// The local value is the source of truth until the next sync.
		stored, err := s.campaigns.FindByID(context.Background(), campaign.ID)
		s.Require().NoError(err)
		s.Equal(int64(9000), stored.DailyBudget)
	})

	s.T().Run("status mutation mirrors budget semantics", func(t *testing.T) {
		campaign := s.seedCampaign("status", 1000)
		s.fbAdapter.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), campaign.RemoteID, models.StatusPaused).
			Return(&classify.APIError{StatusCode: 500})

		result, err := s.service.UpdateStatus(context.Background(), s.cred.TeamID, campaign.ID, models.StatusPaused)
		s.Require().NoError(err)
		s.NotEmpty(result.Warning)

		stored, err := s.campaigns.FindByID(context.Background(), campaign.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPaused, stored.Status)
	})

	s.T().Run("non-positive budget rejected before any write", func(t *testing.T) {
		campaign := s.seedCampaign("budget-zero", 1000)

		_, err := s.service.UpdateBudget(context.Background(), s.cred.TeamID, campaign.ID, 0)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.T().Run("foreign team cannot mutate", func(t *testing.T) {
		campaign := s.seedCampaign("foreign", 1000)

		_, err := s.service.UpdateBudget(context.Background(), uuid.New(), campaign.ID, 4000)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
