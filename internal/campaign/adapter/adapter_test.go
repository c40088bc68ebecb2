package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/time/rate"

	"allad/internal/campaign/adapter/mocks"
	"allad/internal/connect/classify"
	connect "allad/internal/connect/models"
	dErrors "allad/pkg/domain-errors"
)

func TestRegistry(t *testing.T) {
	newMock := func(t *testing.T, platform connect.Platform) *mocks.MockAdapter {
		t.Helper()
		ctrl := gomock.NewController(t)
		mock := mocks.NewMockAdapter(ctrl)
		mock.EXPECT().Platform().Return(platform).AnyTimes()
		return mock
	}

	t.Run("unknown platform is a coded error", func(t *testing.T) {
		registry := NewRegistry(nil)
		_, err := registry.Get(connect.PlatformGoogle)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodePlatformUnknown))
	})

	t.Run("every adapter error leaves classified", func(t *testing.T) {
		mock := newMock(t, connect.PlatformFacebook)
		mock.EXPECT().FetchCampaigns(gomock.Any(), gomock.Any()).
			Return(nil, &classify.APIError{StatusCode: 400, ProviderCode: "190"})

		registry := NewRegistry([]Adapter{mock})
		a, err := registry.Get(connect.PlatformFacebook)
		require.NoError(t, err)

		_, err = a.FetchCampaigns(context.Background(), &connect.Credential{})
		require.Error(t, err)
		var platformErr *classify.PlatformError
		require.ErrorAs(t, err, &platformErr)
		assert.Equal(t, classify.CodeAuthError, platformErr.Code)
		assert.False(t, platformErr.Retryable)
	})

	t.Run("mutation errors classify too", func(t *testing.T) {
		mock := newMock(t, connect.PlatformTikTok)
		mock.EXPECT().UpdateBudget(gomock.Any(), gomock.Any(), "77", int64(5000)).
			Return(&classify.APIError{StatusCode: 200, ProviderCode: "50001"})

		registry := NewRegistry([]Adapter{mock})
		a, err := registry.Get(connect.PlatformTikTok)
		require.NoError(t, err)

		err = a.UpdateBudget(context.Background(), &connect.Credential{}, "77", 5000)
		var platformErr *classify.PlatformError
		require.ErrorAs(t, err, &platformErr)
		assert.Equal(t, classify.CodeConnectionError, platformErr.Code)
		assert.True(t, platformErr.Retryable)
	})

	t.Run("rate limiter gates outbound calls", func(t *testing.T) {
		mock := newMock(t, connect.PlatformNaver)
		// Only the first call should reach the adapter.
		mock.EXPECT().FetchCampaigns(gomock.Any(), gomock.Any()).Return(nil, nil)

		registry := NewRegistry([]Adapter{mock}, WithRateLimit(rate.Every(time.Hour), 1))
		a, err := registry.Get(connect.PlatformNaver)
		require.NoError(t, err)

		_, err = a.FetchCampaigns(context.Background(), &connect.Credential{})
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = a.FetchCampaigns(ctx, &connect.Credential{})
		require.Error(t, err)
		var platformErr *classify.PlatformError
		require.ErrorAs(t, err, &platformErr)
	})

	t.Run("platforms lists registrations", func(t *testing.T) {
		registry := NewRegistry([]Adapter{newMock(t, connect.PlatformKakao)})
		assert.Equal(t, []connect.Platform{connect.PlatformKakao}, registry.Platforms())
	})
}
