package refresh

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"allad/internal/connect/classify"
	"allad/internal/connect/models"
	"allad/internal/connect/oauth/mocks"
	credstore "allad/internal/connect/store/credential"
	statestore "allad/internal/connect/store/oauthstate"
	"allad/internal/platform/config"
)

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	refresher *mocks.MockProviderClient
	creds     *credstore.InMemoryStore
	states    *statestore.InMemoryStore

	now     time.Time
	service *Service
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.refresher = mocks.NewMockProviderClient(s.ctrl)
	s.now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	s.creds = credstore.NewInMemoryStore(credstore.WithClock(func() time.Time { return s.now }))
	s.states = statestore.NewInMemoryStore(statestore.WithClock(func() time.Time { return s.now }))

	cfg := config.Server{
		RefreshWindow:      30 * time.Minute,
		RefreshInterval:    time.Hour,
		RefreshConcurrency: 2,
	}
	s.service = NewService(s.creds, s.refresher, cfg,
		WithLogger(slog.New(slog.DiscardHandler)),
		WithSweeper(s.states),
		WithClock(func() time.Time { return s.now }),
		WithRetryBackoff(time.Millisecond, 5*time.Millisecond),
	)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// seed inserts a credential expiring in expiresIn from the suite clock.
func (s *ServiceSuite) seed(platform models.Platform, expiresIn time.Duration, refreshToken string) *models.Credential {
	expiry := s.now.Add(expiresIn)
	cred, err := s.creds.Upsert(context.Background(), &models.Credential{
		TeamID:       uuid.New(),
		Platform:     platform,
		AccountID:    uuid.NewString(),
		AccountName:  "seeded",
		AccessToken:  "old-at",
		RefreshToken: refreshToken,
		Scope:        "ads",
		ExpiresAt:    &expiry,
		IsActive:     true,
	})
	s.Require().NoError(err)
	return cred
}

func (s *ServiceSuite) TestRunOnce() {
	s.T().Run("rotates only credentials inside the window", func(t *testing.T) {
		due := s.seed(models.PlatformGoogle, 10*time.Minute, "rt-1")
		s.seed(models.PlatformKakao, 2*time.Hour, "rt-2")   // outside window
		s.seed(models.PlatformNaver, 10*time.Minute, "")    // no refresh support
		s.seed(models.PlatformFacebook, 10*time.Minute, "") // refreshable platform, no token

		s.refresher.EXPECT().Refresh(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, cred *models.Credential) (*models.TokenResponse, error) {
				s.Equal(due.ID, cred.ID)
				return &models.TokenResponse{AccessToken: "new-at", RefreshToken: "new-rt", ExpiresIn: 3600}, nil
			})

		summary, err := s.service.RunOnce(context.Background())
		s.NoError(err)
		s.Equal(1, summary.Attempted)
		s.Equal(1, summary.Refreshed)
		s.Equal(0, summary.Failed)

		stored, err := s.creds.FindByID(context.Background(), due.ID)
		s.Require().NoError(err)
		s.Equal("new-at", stored.AccessToken)
		s.Equal("new-rt", stored.RefreshToken)
		s.Require().NotNil(stored.ExpiresAt)
		s.Equal(s.now.Add(time.Hour), *stored.ExpiresAt)
	})

	s.T().Run("sweeps expired authorization states", func(t *testing.T) {
		s.Require().NoError(s.states.Save(context.Background(), &models.OAuthState{
			State:     "stale",
			Platform:  models.PlatformGoogle,
			ExpiresAt: s.now.Add(-time.Minute),
		}))
		s.Require().NoError(s.states.Save(context.Background(), &models.OAuthState{
			State:     "fresh",
			Platform:  models.PlatformGoogle,
			ExpiresAt: s.now.Add(9 * time.Minute),
		}))

		summary, err := s.service.RunOnce(context.Background())
		s.NoError(err)
		s.Equal(1, summary.StatesSwept)

		_, err = s.states.Consume(context.Background(), "fresh", models.PlatformGoogle)
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestRefreshFailureHandling() {
	s.T().Run("terminal provider error deactivates the credential", func(t *testing.T) {
		cred := s.seed(models.PlatformFacebook, 5*time.Minute, "rt")

		s.refresher.EXPECT().Refresh(gomock.Any(), gomock.Any()).
			Return(nil, &classify.APIError{StatusCode: 400, ProviderCode: "190", Message: "session invalidated"})

		summary, err := s.service.RefreshDue(context.Background(), Filter{})
		s.NoError(err)
		s.Equal(1, summary.Failed)

		stored, err := s.creds.FindByID(context.Background(), cred.ID)
		s.Require().NoError(err)
		s.False(stored.IsActive)
		s.NotEmpty(stored.ErrorMessage)
		// Old tokens survive deactivation; nothing is deleted.
		s.Equal("old-at", stored.AccessToken)
	})

	s.T().Run("retryable error retried then succeeds", func(t *testing.T) {
		cred := s.seed(models.PlatformKakao, 5*time.Minute, "rt")

		rateLimited := &classify.APIError{StatusCode: 429, RetryAfter: 0}
		gomock.InOrder(
			s.refresher.EXPECT().Refresh(gomock.Any(), gomock.Any()).Return(nil, rateLimited),
			s.refresher.EXPECT().Refresh(gomock.Any(), gomock.Any()).
				Return(&models.TokenResponse{AccessToken: "new-at", ExpiresIn: 21600}, nil),
		)

		summary, err := s.service.RefreshDue(context.Background(), Filter{})
		s.NoError(err)
		s.Equal(1, summary.Refreshed)

		stored, err := s.creds.FindByID(context.Background(), cred.ID)
		s.Require().NoError(err)
		s.Equal("new-at", stored.AccessToken)
		// Provider returned no rotated refresh token; the stored one is kept.
		s.Equal("rt", stored.RefreshToken)
		s.True(stored.IsActive)
	})

	s.T().Run("exhausted retries fail without deactivating", func(t *testing.T) {
		cred := s.seed(models.PlatformGoogle, 5*time.Minute, "rt")

		s.refresher.EXPECT().Refresh(gomock.Any(), gomock.Any()).Times(3).
			Return(nil, &classify.APIError{StatusCode: 503})

		summary, err := s.service.RefreshDue(context.Background(), Filter{})
		s.NoError(err)
		s.Equal(1, summary.Failed)

		stored, err := s.creds.FindByID(context.Background(), cred.ID)
		s.Require().NoError(err)
		// Transient outages never deactivate; the next scan will retry.
		s.True(stored.IsActive)

		s.Require().NoError(s.creds.Delete(context.Background(), cred.ID))
	})

	s.T().Run("concurrent rotation loses quietly", func(t *testing.T) {
		cred := s.seed(models.PlatformGoogle, 5*time.Minute, "rt")

		s.refresher.EXPECT().Refresh(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, c *models.Credential) (*models.TokenResponse, error) {
				// Another node rotates the token between our read and write.
				otherExpiry := s.now.Add(50 * time.Minute)
				err := s.creds.UpdateTokens(ctx, cred.ID, c.ExpiresAt,
					"their-at", "their-rt", "ads", &otherExpiry, s.now)
				s.Require().NoError(err)
				return &models.TokenResponse{AccessToken: "our-at", ExpiresIn: 3600}, nil
			})

		summary, err := s.service.RefreshDue(context.Background(), Filter{})
		s.NoError(err)
		s.Equal(1, summary.NotNeeded)
		s.Equal(0, summary.Refreshed)

		stored, err := s.creds.FindByID(context.Background(), cred.ID)
		s.Require().NoError(err)
		s.Equal("their-at", stored.AccessToken)
	})
}

func (s *ServiceSuite) TestFilter() {
	s.T().Run("team filter narrows the scan", func(t *testing.T) {
		mine := s.seed(models.PlatformGoogle, 5*time.Minute, "rt-a")
		s.seed(models.PlatformGoogle, 5*time.Minute, "rt-b")

		s.refresher.EXPECT().Refresh(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, cred *models.Credential) (*models.TokenResponse, error) {
				s.Equal(mine.ID, cred.ID)
				return &models.TokenResponse{AccessToken: "new", ExpiresIn: 3600}, nil
			})

		summary, err := s.service.RefreshDue(context.Background(), Filter{TeamID: mine.TeamID})
		s.NoError(err)
		s.Equal(1, summary.Attempted)
	})

	s.T().Run("due credentials listing honors the team", func(t *testing.T) {
		mine := s.seed(models.PlatformKakao, 5*time.Minute, "rt-c")
		s.seed(models.PlatformKakao, 5*time.Minute, "rt-d")

		due, err := s.service.DueCredentials(context.Background(), mine.TeamID)
		s.NoError(err)
		s.Require().Len(due, 1)
		s.Equal(mine.ID, due[0].ID)
	})
}
