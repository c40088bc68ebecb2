package oauth

//go:generate mockgen -source=controller.go -destination=mocks/mocks.go -package=mocks CredentialStore,StateStore
//go:generate mockgen -source=client.go -destination=mocks/provider_mock.go -package=mocks ProviderClient
//go:generate mockgen -source=../audit/audit.go -destination=mocks/audit_mock.go -package=mocks Publisher

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"allad/internal/connect/oauth/mocks"
	"allad/internal/platform/config"
)

type ControllerSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockCreds    *mocks.MockCredentialStore
	mockStates   *mocks.MockStateStore
	mockProvider *mocks.MockProviderClient
	mockAudit    *mocks.MockPublisher

	now        time.Time
	controller *Controller
}

func (s *ControllerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockCreds = mocks.NewMockCredentialStore(s.ctrl)
	s.mockStates = mocks.NewMockStateStore(s.ctrl)
	s.mockProvider = mocks.NewMockProviderClient(s.ctrl)
	s.mockAudit = mocks.NewMockPublisher(s.ctrl)

	s.now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	cfg := config.Server{
		SiteURL:  "https://app.example.com",
		StateTTL: 10 * time.Minute,
		OAuthApps: map[string]config.OAuthApp{
			"google":   {ClientID: "google-client", ClientSecret: "google-secret"},
			"facebook": {ClientID: "fb-client", ClientSecret: "fb-secret"},
			"kakao":    {ClientID: "kakao-client", ClientSecret: "kakao-secret"},
			"naver":    {ClientID: "naver-client", ClientSecret: "naver-secret"},
		},
	}

	s.controller = NewController(s.mockCreds, s.mockStates, s.mockProvider, cfg,
		WithLogger(slog.New(slog.DiscardHandler)),
		WithAudit(s.mockAudit),
		WithClock(func() time.Time { return s.now }),
	)
}

func (s *ControllerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}
