package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"allad/internal/campaign/models"
	"allad/internal/connect/classify"
	connect "allad/internal/connect/models"
)

func facebookCred() *connect.Credential {
	return &connect.Credential{
		ID:          uuid.New(),
		TeamID:      uuid.New(),
		Platform:    connect.PlatformFacebook,
		AccountID:   "8800",
		AccessToken: "fb-token",
		IsActive:    true,
	}
}

func TestFacebookAdapter(t *testing.T) {
	t.Run("campaign list normalizes graph rows", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/act_8800/campaigns", r.URL.Path)
			assert.Equal(t, "Bearer fb-token", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{
					{"id": "c1", "name": "Spring Sale", "status": "ACTIVE", "daily_budget": "5000"},
					{"id": "c2", "name": "Clearance", "status": "PAUSED", "daily_budget": "1200"},
				},
			})
		}))
		defer server.Close()

		a := &facebookAdapter{rest: newRESTClient(time.Second), base: server.URL}
		cred := facebookCred()
		campaigns, err := a.FetchCampaigns(context.Background(), cred)
		require.NoError(t, err)
		require.Len(t, campaigns, 2)

		assert.Equal(t, "c1", campaigns[0].RemoteID)
		assert.Equal(t, models.StatusActive, campaigns[0].Status)
		assert.Equal(t, int64(5000), campaigns[0].DailyBudget)
		assert.Equal(t, cred.TeamID, campaigns[0].TeamID)
		assert.Equal(t, cred.ID, campaigns[0].CredentialID)
		assert.Equal(t, models.StatusPaused, campaigns[1].Status)
	})

	t.Run("graph error surfaces as APIError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":190,"message":"Error validating access token"}}`))
		}))
		defer server.Close()

		a := &facebookAdapter{rest: newRESTClient(time.Second), base: server.URL}
		_, err := a.FetchCampaigns(context.Background(), facebookCred())
		require.Error(t, err)
		var apiErr *classify.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "190", apiErr.ProviderCode)
	})

	t.Run("budget update posts to the campaign node", func(t *testing.T) {
		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/c1", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_, _ = w.Write([]byte(`{"success":true}`))
		}))
		defer server.Close()

		a := &facebookAdapter{rest: newRESTClient(time.Second), base: server.URL}
		require.NoError(t, a.UpdateBudget(context.Background(), facebookCred(), "c1", 7500))
		assert.Equal(t, float64(7500), gotBody["daily_budget"])
	})
}

func TestTikTokAdapter(t *testing.T) {
	t.Run("nonzero envelope code is an error despite HTTP 200", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"code":40100,"message":"auth failed","data":{}}`))
		}))
		defer server.Close()

		a := &tiktokAdapter{rest: newRESTClient(time.Second), base: server.URL}
		cred := &connect.Credential{AccountID: "adv-1", AccessToken: "tt-token"}
		_, err := a.FetchCampaigns(context.Background(), cred)
		require.Error(t, err)
		var apiErr *classify.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "40100", apiErr.ProviderCode)
	})

	t.Run("campaign list reads the data envelope", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "tt-token", r.Header.Get("Access-Token"))
			_, _ = w.Write([]byte(`{"code":0,"message":"OK","data":{"list":[
				{"campaign_id":"900","campaign_name":"Launch","operation_status":"ENABLE","budget":120.5}
			]}}`))
		}))
		defer server.Close()

		a := &tiktokAdapter{rest: newRESTClient(time.Second), base: server.URL}
		cred := &connect.Credential{ID: uuid.New(), AccountID: "adv-1", AccessToken: "tt-token", Platform: connect.PlatformTikTok}
		campaigns, err := a.FetchCampaigns(context.Background(), cred)
		require.NoError(t, err)
		require.Len(t, campaigns, 1)
		assert.Equal(t, "900", campaigns[0].RemoteID)
		assert.Equal(t, models.StatusActive, campaigns[0].Status)
		assert.Equal(t, int64(12050), campaigns[0].DailyBudget)
	})
}
