package oauth

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"allad/internal/connect/audit"
	"allad/internal/connect/classify"
	"allad/internal/connect/models"
	"allad/internal/sentinel"
	dErrors "allad/pkg/domain-errors"
)

func (s *ControllerSuite) TestInitiate() {
	userID := uuid.New()
	teamID := uuid.New()

	s.T().Run("builds authorization url and persists state", func(t *testing.T) {
		var saved *models.OAuthState
		s.mockStates.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, state *models.OAuthState) error {
				saved = state
				return nil
			})

		redirect, err := s.controller.Initiate(context.Background(), models.PlatformGoogle, userID, teamID)
		s.NoError(err)
		require.NotNil(t, saved)

		s.Equal(models.PlatformGoogle, saved.Platform)
		s.Equal(teamID, saved.TeamID)
		s.Equal(s.now.Add(10*time.Minute), saved.ExpiresAt)
		s.NotEmpty(saved.State)

		parsed, err := url.Parse(redirect)
		require.NoError(t, err)
		query := parsed.Query()
		s.Equal("google-client", query.Get("client_id"))
		s.Equal("https://app.example.com/api/auth/callback/google-ads", query.Get("redirect_uri"))
		s.Equal("code", query.Get("response_type"))
		s.Equal(saved.State, query.Get("state"))
		s.Contains(query.Get("scope"), "adwords")
		// Offline access params required for Google to issue a refresh token.
		s.Equal("offline", query.Get("access_type"))
		s.Equal("consent", query.Get("prompt"))
	})

	s.T().Run("each initiation mints a distinct state", func(t *testing.T) {
		states := make(map[string]bool)
		s.mockStates.EXPECT().Save(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(
			func(_ context.Context, state *models.OAuthState) error {
				states[state.State] = true
				return nil
			})

		_, err := s.controller.Initiate(context.Background(), models.PlatformFacebook, userID, teamID)
		s.NoError(err)
		_, err = s.controller.Initiate(context.Background(), models.PlatformFacebook, userID, teamID)
		s.NoError(err)
		s.Len(states, 2)
	})

	s.T().Run("unknown platform rejected", func(t *testing.T) {
		_, err := s.controller.Initiate(context.Background(), models.Platform("myspace"), userID, teamID)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePlatformUnknown))
	})
}

func (s *ControllerSuite) TestHandleCallback() {
	teamID := uuid.New()
	userID := uuid.New()

	stateRecord := func(platform models.Platform) *models.OAuthState {
		return &models.OAuthState{
			State:     "state-token",
			Platform:  platform,
			UserID:    userID,
			TeamID:    teamID,
			CreatedAt: s.now.Add(-time.Minute),
			ExpiresAt: s.now.Add(9 * time.Minute),
		}
	}

	params := func(platform models.Platform) CallbackParams {
		return CallbackParams{Platform: platform, Code: "auth-code", State: "state-token"}
	}

	s.T().Run("persists credential only after exchange and account lookup", func(t *testing.T) {
		s.mockStates.EXPECT().Consume(gomock.Any(), "state-token", models.PlatformFacebook).
			Return(stateRecord(models.PlatformFacebook), nil)
		s.mockProvider.EXPECT().Exchange(gomock.Any(), models.PlatformFacebook, "auth-code").
			Return(&models.TokenResponse{AccessToken: "at", Scope: "ads_read", ExpiresIn: 3600}, nil)
		s.mockProvider.EXPECT().FetchAccountInfo(gomock.Any(), models.PlatformFacebook, "at", gomock.Any()).
			Return(&models.AccountInfo{AccountID: "act_123", AccountName: "Acme Ads"}, nil)

		s.mockCreds.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, cred *models.Credential) (*models.Credential, error) {
				assert.Equal(t, teamID, cred.TeamID)
				assert.Equal(t, "act_123", cred.AccountID)
				assert.Equal(t, "at", cred.AccessToken)
				assert.True(t, cred.IsActive)
				require.NotNil(t, cred.ExpiresAt)
				assert.Equal(t, s.now.Add(time.Hour), *cred.ExpiresAt)
				out := *cred
				out.ID = uuid.New()
				return &out, nil
			})
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, event audit.Event) error {
				assert.Equal(t, audit.EventCredentialConnected, event.Action)
				assert.Equal(t, teamID, event.TeamID)
				return nil
			})

		cred, err := s.controller.HandleCallback(context.Background(), params(models.PlatformFacebook))
		s.NoError(err)
		s.Equal("act_123", cred.AccountID)
	})

	s.T().Run("facebook stores long-lived token as refresh material", func(t *testing.T) {
		// Graph never returns a refresh_token; the long-lived access token
		// must land in RefreshToken or the credential never becomes due.
		s.mockStates.EXPECT().Consume(gomock.Any(), "state-token", models.PlatformFacebook).
			Return(stateRecord(models.PlatformFacebook), nil)
		s.mockProvider.EXPECT().Exchange(gomock.Any(), models.PlatformFacebook, "auth-code").
			Return(&models.TokenResponse{AccessToken: "ll-token", ExpiresIn: 5184000}, nil)
		s.mockProvider.EXPECT().FetchAccountInfo(gomock.Any(), models.PlatformFacebook, "ll-token", gomock.Any()).
			Return(&models.AccountInfo{AccountID: "act_42", AccountName: "Acme"}, nil)
		s.mockCreds.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, cred *models.Credential) (*models.Credential, error) {
				assert.Equal(t, "ll-token", cred.RefreshToken)
				assert.True(t, cred.DueForRefresh(s.now.Add(5184000*time.Second-time.Hour), 24*time.Hour))
				return cred, nil
			})
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.controller.HandleCallback(context.Background(), params(models.PlatformFacebook))
		s.NoError(err)
	})

	s.T().Run("standard grants keep the provider refresh token", func(t *testing.T) {
		s.mockStates.EXPECT().Consume(gomock.Any(), "state-token", models.PlatformKakao).
			Return(stateRecord(models.PlatformKakao), nil)
		s.mockProvider.EXPECT().Exchange(gomock.Any(), models.PlatformKakao, "auth-code").
			Return(&models.TokenResponse{AccessToken: "at", RefreshToken: "rt", ExpiresIn: 21600}, nil)
		s.mockProvider.EXPECT().FetchAccountInfo(gomock.Any(), models.PlatformKakao, "at", gomock.Any()).
			Return(&models.AccountInfo{AccountID: "kakao-1", AccountName: "Moment"}, nil)
		s.mockCreds.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, cred *models.Credential) (*models.Credential, error) {
				assert.Equal(t, "rt", cred.RefreshToken)
				return cred, nil
			})
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.controller.HandleCallback(context.Background(), params(models.PlatformKakao))
		s.NoError(err)
	})

	s.T().Run("token without expiry stored with nil expires_at", func(t *testing.T) {
		s.mockStates.EXPECT().Consume(gomock.Any(), "state-token", models.PlatformNaver).
			Return(stateRecord(models.PlatformNaver), nil)
		s.mockProvider.EXPECT().Exchange(gomock.Any(), models.PlatformNaver, "auth-code").
			Return(&models.TokenResponse{AccessToken: "at"}, nil)
		s.mockProvider.EXPECT().FetchAccountInfo(gomock.Any(), models.PlatformNaver, "at", gomock.Any()).
			Return(&models.AccountInfo{AccountID: "naver-1", AccountName: "Naver Shop"}, nil)
		s.mockCreds.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, cred *models.Credential) (*models.Credential, error) {
				assert.Nil(t, cred.ExpiresAt)
				return cred, nil
			})
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.controller.HandleCallback(context.Background(), params(models.PlatformNaver))
		s.NoError(err)
	})

	s.T().Run("replayed state fails closed", func(t *testing.T) {
		s.mockStates.EXPECT().Consume(gomock.Any(), "state-token", models.PlatformGoogle).
			Return(nil, sentinel.ErrNotFound)

		cred, err := s.controller.HandleCallback(context.Background(), params(models.PlatformGoogle))
		s.Error(err)
		s.Nil(cred)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.T().Run("expired state fails closed", func(t *testing.T) {
		s.mockStates.EXPECT().Consume(gomock.Any(), "state-token", models.PlatformGoogle).
			Return(nil, sentinel.ErrExpired)

		_, err := s.controller.HandleCallback(context.Background(), params(models.PlatformGoogle))
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.T().Run("provider denial surfaces without consuming state", func(t *testing.T) {
		p := params(models.PlatformKakao)
		p.Code = ""
		p.ErrorParam = "access_denied"

		_, err := s.controller.HandleCallback(context.Background(), p)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeExchangeFailed))
	})

	s.T().Run("missing state param rejected", func(t *testing.T) {
		p := params(models.PlatformKakao)
		p.State = ""

		_, err := s.controller.HandleCallback(context.Background(), p)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.T().Run("exchange failure stores nothing", func(t *testing.T) {
		s.mockStates.EXPECT().Consume(gomock.Any(), "state-token", models.PlatformKakao).
			Return(stateRecord(models.PlatformKakao), nil)
		s.mockProvider.EXPECT().Exchange(gomock.Any(), models.PlatformKakao, "auth-code").
			Return(nil, &classify.APIError{StatusCode: 400, ProviderCode: "invalid_grant"})

		_, err := s.controller.HandleCallback(context.Background(), params(models.PlatformKakao))
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeExchangeFailed))
	})

	s.T().Run("account lookup failure stores nothing", func(t *testing.T) {
		s.mockStates.EXPECT().Consume(gomock.Any(), "state-token", models.PlatformTikTok).
			Return(stateRecord(models.PlatformTikTok), nil)
		s.mockProvider.EXPECT().Exchange(gomock.Any(), models.PlatformTikTok, "auth-code").
			Return(&models.TokenResponse{AccessToken: "at"}, nil)
		s.mockProvider.EXPECT().FetchAccountInfo(gomock.Any(), models.PlatformTikTok, "at", gomock.Any()).
			Return(nil, &classify.APIError{StatusCode: 500})

		_, err := s.controller.HandleCallback(context.Background(), params(models.PlatformTikTok))
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeAccountFetch))
	})

	s.T().Run("google identity patched with resolved customer id", func(t *testing.T) {
		credID := uuid.New()
		s.mockStates.EXPECT().Consume(gomock.Any(), "state-token", models.PlatformGoogle).
			Return(stateRecord(models.PlatformGoogle), nil)
		s.mockProvider.EXPECT().Exchange(gomock.Any(), models.PlatformGoogle, "auth-code").
			Return(&models.TokenResponse{AccessToken: "at", RefreshToken: "rt", ExpiresIn: 3599}, nil)
		s.mockProvider.EXPECT().FetchAccountInfo(gomock.Any(), models.PlatformGoogle, "at", gomock.Any()).
			Return(&models.AccountInfo{AccountID: "108", AccountName: "ads@acme.com"}, nil)
		s.mockCreds.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, cred *models.Credential) (*models.Credential, error) {
				out := *cred
				out.ID = credID
				return &out, nil
			})
		s.mockProvider.EXPECT().ResolveGoogleCustomerID(gomock.Any(), "at").
			Return("1234567890", nil)
		s.mockCreds.EXPECT().UpdateIdentity(gomock.Any(), credID, "1234567890", "ads@acme.com",
			models.PlatformData{GoogleCustomerID: "1234567890"}).Return(nil)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		cred, err := s.controller.HandleCallback(context.Background(), params(models.PlatformGoogle))
		s.NoError(err)
		s.Equal("1234567890", cred.AccountID)
		s.Equal("1234567890", cred.Data.GoogleCustomerID)
	})

	s.T().Run("google customer id failure does not fail the connect", func(t *testing.T) {
		s.mockStates.EXPECT().Consume(gomock.Any(), "state-token", models.PlatformGoogle).
			Return(stateRecord(models.PlatformGoogle), nil)
		s.mockProvider.EXPECT().Exchange(gomock.Any(), models.PlatformGoogle, "auth-code").
			Return(&models.TokenResponse{AccessToken: "at", RefreshToken: "rt", ExpiresIn: 3599}, nil)
		s.mockProvider.EXPECT().FetchAccountInfo(gomock.Any(), models.PlatformGoogle, "at", gomock.Any()).
			Return(&models.AccountInfo{AccountID: "108", AccountName: "ads@acme.com"}, nil)
		s.mockCreds.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, cred *models.Credential) (*models.Credential, error) {
				out := *cred
				out.ID = uuid.New()
				return &out, nil
			})
		s.mockProvider.EXPECT().ResolveGoogleCustomerID(gomock.Any(), "at").
			Return("", fmt.Errorf("ads api unreachable"))
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		cred, err := s.controller.HandleCallback(context.Background(), params(models.PlatformGoogle))
		s.NoError(err)
		// Falls back to the identity from the id_token.
		s.Equal("108", cred.AccountID)
	})

	s.T().Run("audit failure does not fail the connect", func(t *testing.T) {
		s.mockStates.EXPECT().Consume(gomock.Any(), "state-token", models.PlatformFacebook).
			Return(stateRecord(models.PlatformFacebook), nil)
		s.mockProvider.EXPECT().Exchange(gomock.Any(), models.PlatformFacebook, "auth-code").
			Return(&models.TokenResponse{AccessToken: "at", ExpiresIn: 3600}, nil)
		s.mockProvider.EXPECT().FetchAccountInfo(gomock.Any(), models.PlatformFacebook, "at", gomock.Any()).
			Return(&models.AccountInfo{AccountID: "act_9", AccountName: "Nine"}, nil)
		s.mockCreds.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, cred *models.Credential) (*models.Credential, error) { return cred, nil })
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(fmt.Errorf("broker down"))

		_, err := s.controller.HandleCallback(context.Background(), params(models.PlatformFacebook))
		s.NoError(err)
	})
}

func (s *ControllerSuite) TestCredentialManagement() {
	teamID := uuid.New()
	credID := uuid.New()

	cred := &models.Credential{
		ID:       credID,
		TeamID:   teamID,
		Platform: models.PlatformFacebook,
		IsActive: true,
	}

	s.T().Run("deactivate keeps the row and emits audit", func(t *testing.T) {
		s.mockCreds.EXPECT().FindByID(gomock.Any(), credID).Return(cred, nil)
		s.mockCreds.EXPECT().Deactivate(gomock.Any(), credID, "token revoked by user").Return(nil)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, event audit.Event) error {
				assert.Equal(t, audit.EventCredentialDeactivated, event.Action)
				assert.Equal(t, "token revoked by user", event.Detail)
				return nil
			})

		s.NoError(s.controller.DeactivateCredential(context.Background(), teamID, credID, "token revoked by user"))
	})

	s.T().Run("other team's credential is invisible", func(t *testing.T) {
		s.mockCreds.EXPECT().FindByID(gomock.Any(), credID).Return(cred, nil)

		err := s.controller.DeactivateCredential(context.Background(), uuid.New(), credID, "")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.T().Run("delete emits disconnected", func(t *testing.T) {
		s.mockCreds.EXPECT().FindByID(gomock.Any(), credID).Return(cred, nil)
		s.mockCreds.EXPECT().Delete(gomock.Any(), credID).Return(nil)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, event audit.Event) error {
				assert.Equal(t, audit.EventCredentialDisconnected, event.Action)
				return nil
			})

		s.NoError(s.controller.DeleteCredential(context.Background(), teamID, credID))
	})

	s.T().Run("reactivate flips the flag", func(t *testing.T) {
		s.mockCreds.EXPECT().FindByID(gomock.Any(), credID).Return(cred, nil)
		s.mockCreds.EXPECT().SetActive(gomock.Any(), credID, true).Return(nil)

		s.NoError(s.controller.ReactivateCredential(context.Background(), teamID, credID))
	})

	s.T().Run("missing credential maps to not found", func(t *testing.T) {
		s.mockCreds.EXPECT().FindByID(gomock.Any(), credID).Return(nil, sentinel.ErrNotFound)

		_, err := s.controller.GetCredential(context.Background(), teamID, credID)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
