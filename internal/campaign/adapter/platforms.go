package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"allad/internal/campaign/models"
	"allad/internal/connect/classify"
	connect "allad/internal/connect/models"
)

const dayFormat = "2006-01-02"

// normalize stamps credential ownership onto fetched campaigns.
func normalize(cred *connect.Credential, campaigns []*models.Campaign) []*models.Campaign {
	now := time.Now()
	for _, c := range campaigns {
		c.CredentialID = cred.ID
		c.TeamID = cred.TeamID
		c.Platform = cred.Platform
		c.SyncedAt = now
	}
	return campaigns
}

// --- Facebook (Meta Marketing API) ---

type facebookAdapter struct {
	rest *restClient
	base string
}

func newFacebookAdapter(rest *restClient) *facebookAdapter {
	return &facebookAdapter{rest: rest, base: "https://graph.facebook.com/v19.0"}
}

func (a *facebookAdapter) Platform() connect.Platform { return connect.PlatformFacebook }

func (a *facebookAdapter) FetchCampaigns(ctx context.Context, cred *connect.Credential) ([]*models.Campaign, error) {
	var out struct {
		Data []struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			Status      string `json:"status"`
			DailyBudget string `json:"daily_budget"`
		} `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/act_%s/campaigns?fields=id,name,status,daily_budget", a.base, cred.AccountID)
	if err := a.rest.getJSON(ctx, endpoint, bearer(cred.AccessToken), &out); err != nil {
		return nil, err
	}

	campaigns := make([]*models.Campaign, 0, len(out.Data))
	for _, row := range out.Data {
		budget, _ := strconv.ParseInt(row.DailyBudget, 10, 64)
		campaigns = append(campaigns, &models.Campaign{
			RemoteID:    row.ID,
			Name:        row.Name,
			Status:      facebookStatus(row.Status),
			DailyBudget: budget,
			Currency:    "USD",
		})
	}
	return normalize(cred, campaigns), nil
}

func (a *facebookAdapter) FetchPerformance(ctx context.Context, cred *connect.Credential, remoteID string, rng models.DateRange) ([]models.Point, error) {
	var out struct {
		Data []struct {
			DateStart   string `json:"date_start"`
			Impressions string `json:"impressions"`
			Clicks      string `json:"clicks"`
			Spend       string `json:"spend"`
		} `json:"data"`
	}
	timeRange := fmt.Sprintf(`{"since":"%s","until":"%s"}`,
		rng.From.Format(dayFormat), rng.To.Format(dayFormat))
	endpoint := fmt.Sprintf("%s/%s/insights?fields=impressions,clicks,spend&time_increment=1&time_range=%s",
		a.base, remoteID, url.QueryEscape(timeRange))
	if err := a.rest.getJSON(ctx, endpoint, bearer(cred.AccessToken), &out); err != nil {
		return nil, err
	}

	points := make([]models.Point, 0, len(out.Data))
	for _, row := range out.Data {
		date, err := time.Parse(dayFormat, row.DateStart)
		if err != nil {
			continue
		}
		impressions, _ := strconv.ParseInt(row.Impressions, 10, 64)
		clicks, _ := strconv.ParseInt(row.Clicks, 10, 64)
		spend, _ := strconv.ParseFloat(row.Spend, 64)
		points = append(points, models.Point{
			Date:        date,
			Impressions: impressions,
			Clicks:      clicks,
			Cost:        int64(spend * 100),
		})
	}
	return points, nil
}

func (a *facebookAdapter) UpdateBudget(ctx context.Context, cred *connect.Credential, remoteID string, dailyBudget int64) error {
	endpoint := fmt.Sprintf("%s/%s", a.base, remoteID)
	body := map[string]any{"daily_budget": dailyBudget}
	return a.rest.doJSON(ctx, http.MethodPost, endpoint, bearer(cred.AccessToken), body, nil)
}

func (a *facebookAdapter) UpdateStatus(ctx context.Context, cred *connect.Credential, remoteID string, status models.Status) error {
	endpoint := fmt.Sprintf("%s/%s", a.base, remoteID)
	body := map[string]any{"status": facebookStatusOut(status)}
	return a.rest.doJSON(ctx, http.MethodPost, endpoint, bearer(cred.AccessToken), body, nil)
}

func facebookStatus(s string) models.Status {
	switch s {
	case "ACTIVE":
		return models.StatusActive
	case "PAUSED":
		return models.StatusPaused
	default:
		return models.StatusArchived
	}
}

func facebookStatusOut(s models.Status) string {
	switch s {
	case models.StatusActive:
		return "ACTIVE"
	case models.StatusPaused:
		return "PAUSED"
	default:
		return "ARCHIVED"
	}
}

// --- Google (Google Ads API) ---

type googleAdapter struct {
	rest *restClient
	base string
}

func newGoogleAdapter(rest *restClient) *googleAdapter {
	return &googleAdapter{rest: rest, base: "https://googleads.googleapis.com/v17"}
}

func (a *googleAdapter) Platform() connect.Platform { return connect.PlatformGoogle }

// customerID prefers the resolved Ads customer ID over the raw account id.
func (a *googleAdapter) customerID(cred *connect.Credential) string {
	if cred.Data.GoogleCustomerID != "" {
		return cred.Data.GoogleCustomerID
	}
	return cred.AccountID
}

type googleSearchRow struct {
	Campaign struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Status string `json:"status"`
	} `json:"campaign"`
	CampaignBudget struct {
		AmountMicros string `json:"amountMicros"`
	} `json:"campaignBudget"`
	Segments struct {
		Date string `json:"date"`
	} `json:"segments"`
	Metrics struct {
		Impressions string `json:"impressions"`
		Clicks      string `json:"clicks"`
		CostMicros  string `json:"costMicros"`
		Conversions string `json:"conversions"`
	} `json:"metrics"`
}

func (a *googleAdapter) search(ctx context.Context, cred *connect.Credential, query string) ([]googleSearchRow, error) {
	var out struct {
		Results []googleSearchRow `json:"results"`
	}
	endpoint := fmt.Sprintf("%s/customers/%s/googleAds:search", a.base, a.customerID(cred))
	body := map[string]string{"query": query}
	if err := a.rest.doJSON(ctx, http.MethodPost, endpoint, bearer(cred.AccessToken), body, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (a *googleAdapter) FetchCampaigns(ctx context.Context, cred *connect.Credential) ([]*models.Campaign, error) {
	rows, err := a.search(ctx, cred,
		`SELECT campaign.id, campaign.name, campaign.status, campaign_budget.amount_micros FROM campaign`)
	if err != nil {
		return nil, err
	}

	campaigns := make([]*models.Campaign, 0, len(rows))
	for _, row := range rows {
		micros, _ := strconv.ParseInt(row.CampaignBudget.AmountMicros, 10, 64)
		campaigns = append(campaigns, &models.Campaign{
			RemoteID:    row.Campaign.ID,
			Name:        row.Campaign.Name,
			Status:      googleStatus(row.Campaign.Status),
			DailyBudget: micros / 10000, // micros to cents
			Currency:    "USD",
		})
	}
	return normalize(cred, campaigns), nil
}

func (a *googleAdapter) FetchPerformance(ctx context.Context, cred *connect.Credential, remoteID string, rng models.DateRange) ([]models.Point, error) {
	query := fmt.Sprintf(
		`SELECT segments.date, metrics.impressions, metrics.clicks, metrics.cost_micros, metrics.conversions `+
			`FROM campaign WHERE campaign.id = %s AND segments.date BETWEEN '%s' AND '%s'`,
		remoteID, rng.From.Format(dayFormat), rng.To.Format(dayFormat))
	rows, err := a.search(ctx, cred, query)
	if err != nil {
		return nil, err
	}

	points := make([]models.Point, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse(dayFormat, row.Segments.Date)
		if err != nil {
			continue
		}
		impressions, _ := strconv.ParseInt(row.Metrics.Impressions, 10, 64)
		clicks, _ := strconv.ParseInt(row.Metrics.Clicks, 10, 64)
		costMicros, _ := strconv.ParseInt(row.Metrics.CostMicros, 10, 64)
		conversions, _ := strconv.ParseFloat(row.Metrics.Conversions, 64)
		points = append(points, models.Point{
			Date:        date,
			Impressions: impressions,
			Clicks:      clicks,
			Cost:        costMicros / 10000,
			Conversions: int64(conversions),
		})
	}
	return points, nil
}

func (a *googleAdapter) UpdateBudget(ctx context.Context, cred *connect.Credential, remoteID string, dailyBudget int64) error {
	endpoint := fmt.Sprintf("%s/customers/%s/campaignBudgets:mutate", a.base, a.customerID(cred))
	body := map[string]any{
		"operations": []map[string]any{{
			"update": map[string]any{
				"resourceName": fmt.Sprintf("customers/%s/campaignBudgets/%s", a.customerID(cred), remoteID),
				"amountMicros": strconv.FormatInt(dailyBudget*10000, 10),
			},
			"updateMask": "amount_micros",
		}},
	}
	return a.rest.doJSON(ctx, http.MethodPost, endpoint, bearer(cred.AccessToken), body, nil)
}

func (a *googleAdapter) UpdateStatus(ctx context.Context, cred *connect.Credential, remoteID string, status models.Status) error {
	endpoint := fmt.Sprintf("%s/customers/%s/campaigns:mutate", a.base, a.customerID(cred))
	body := map[string]any{
		"operations": []map[string]any{{
			"update": map[string]any{
				"resourceName": fmt.Sprintf("customers/%s/campaigns/%s", a.customerID(cred), remoteID),
				"status":       googleStatusOut(status),
			},
			"updateMask": "status",
		}},
	}
	return a.rest.doJSON(ctx, http.MethodPost, endpoint, bearer(cred.AccessToken), body, nil)
}

func googleStatus(s string) models.Status {
	switch s {
	case "ENABLED":
		return models.StatusActive
	case "PAUSED":
		return models.StatusPaused
	default:
		return models.StatusArchived
	}
}

func googleStatusOut(s models.Status) string {
	switch s {
	case models.StatusActive:
		return "ENABLED"
	case models.StatusPaused:
		return "PAUSED"
	default:
		return "REMOVED"
	}
}

// --- Naver (SearchAd API) ---

type naverAdapter struct {
	rest *restClient
	base string
}

func newNaverAdapter(rest *restClient) *naverAdapter {
	return &naverAdapter{rest: rest, base: "https://api.searchad.naver.com"}
}

func (a *naverAdapter) Platform() connect.Platform { return connect.PlatformNaver }

func (a *naverAdapter) headers(cred *connect.Credential) map[string]string {
	h := bearer(cred.AccessToken)
	if cred.Data.NaverCustomerID != "" {
		h["X-Customer"] = cred.Data.NaverCustomerID
	}
	return h
}

func (a *naverAdapter) FetchCampaigns(ctx context.Context, cred *connect.Credential) ([]*models.Campaign, error) {
	var out []struct {
		CampaignID  string `json:"nccCampaignId"`
		Name        string `json:"name"`
		Status      string `json:"status"`
		DailyBudget int64  `json:"dailyBudget"`
	}
	if err := a.rest.getJSON(ctx, a.base+"/ncc/campaigns", a.headers(cred), &out); err != nil {
		return nil, err
	}

	campaigns := make([]*models.Campaign, 0, len(out))
	for _, row := range out {
		status := models.StatusPaused
		if row.Status == "ELIGIBLE" {
			status = models.StatusActive
		}
		campaigns = append(campaigns, &models.Campaign{
			RemoteID:    row.CampaignID,
			Name:        row.Name,
			Status:      status,
			DailyBudget: row.DailyBudget,
			Currency:    "KRW",
		})
	}
	return normalize(cred, campaigns), nil
}

func (a *naverAdapter) FetchPerformance(ctx context.Context, cred *connect.Credential, remoteID string, rng models.DateRange) ([]models.Point, error) {
	var out struct {
		Data []struct {
			Date        string `json:"statDt"`
			Impressions int64  `json:"impCnt"`
			Clicks      int64  `json:"clkCnt"`
			Cost        int64  `json:"salesAmt"`
			Conversions int64  `json:"ccnt"`
		} `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/stats?id=%s&timeRange=%s", a.base, remoteID,
		url.QueryEscape(fmt.Sprintf(`{"since":"%s","until":"%s"}`,
			rng.From.Format(dayFormat), rng.To.Format(dayFormat))))
	if err := a.rest.getJSON(ctx, endpoint, a.headers(cred), &out); err != nil {
		return nil, err
	}

	points := make([]models.Point, 0, len(out.Data))
	for _, row := range out.Data {
		date, err := time.Parse(dayFormat, row.Date)
		if err != nil {
			continue
		}
		points = append(points, models.Point{
			Date:        date,
			Impressions: row.Impressions,
			Clicks:      row.Clicks,
			Cost:        row.Cost,
			Conversions: row.Conversions,
		})
	}
	return points, nil
}

func (a *naverAdapter) UpdateBudget(ctx context.Context, cred *connect.Credential, remoteID string, dailyBudget int64) error {
	endpoint := fmt.Sprintf("%s/ncc/campaigns/%s?fields=budget", a.base, remoteID)
	body := map[string]any{"nccCampaignId": remoteID, "dailyBudget": dailyBudget}
	return a.rest.doJSON(ctx, http.MethodPut, endpoint, a.headers(cred), body, nil)
}

func (a *naverAdapter) UpdateStatus(ctx context.Context, cred *connect.Credential, remoteID string, status models.Status) error {
	endpoint := fmt.Sprintf("%s/ncc/campaigns/%s?fields=userLock", a.base, remoteID)
	body := map[string]any{"nccCampaignId": remoteID, "userLock": status != models.StatusActive}
	return a.rest.doJSON(ctx, http.MethodPut, endpoint, a.headers(cred), body, nil)
}

// --- Kakao (Moment API) ---

type kakaoAdapter struct {
	rest *restClient
	base string
}

func newKakaoAdapter(rest *restClient) *kakaoAdapter {
	return &kakaoAdapter{rest: rest, base: "https://apis.moment.kakao.com"}
}

func (a *kakaoAdapter) Platform() connect.Platform { return connect.PlatformKakao }

func (a *kakaoAdapter) headers(cred *connect.Credential) map[string]string {
	h := bearer(cred.AccessToken)
	h["adAccountId"] = cred.AccountID
	return h
}

func (a *kakaoAdapter) FetchCampaigns(ctx context.Context, cred *connect.Credential) ([]*models.Campaign, error) {
	var out struct {
		Content []struct {
			ID          int64  `json:"id"`
			Name        string `json:"name"`
			Config      string `json:"config"`
			DailyBudget int64  `json:"dailyBudgetAmount"`
		} `json:"content"`
	}
	if err := a.rest.getJSON(ctx, a.base+"/openapi/v4/campaigns", a.headers(cred), &out); err != nil {
		return nil, err
	}

	campaigns := make([]*models.Campaign, 0, len(out.Content))
	for _, row := range out.Content {
		status := models.StatusPaused
		if row.Config == "ON" {
			status = models.StatusActive
		}
		campaigns = append(campaigns, &models.Campaign{
			RemoteID:    strconv.FormatInt(row.ID, 10),
			Name:        row.Name,
			Status:      status,
			DailyBudget: row.DailyBudget,
			Currency:    "KRW",
		})
	}
	return normalize(cred, campaigns), nil
}

func (a *kakaoAdapter) FetchPerformance(ctx context.Context, cred *connect.Credential, remoteID string, rng models.DateRange) ([]models.Point, error) {
	var out struct {
		Data []struct {
			Date    string `json:"start"`
			Metrics struct {
				Impressions int64   `json:"imp"`
				Clicks      int64   `json:"click"`
				Cost        int64   `json:"spending"`
				Conversions float64 `json:"convPurchase"`
			} `json:"metrics"`
		} `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/openapi/v4/campaigns/%s/report?start=%s&end=%s&timeUnit=DAY",
		a.base, remoteID, rng.From.Format(dayFormat), rng.To.Format(dayFormat))
	if err := a.rest.getJSON(ctx, endpoint, a.headers(cred), &out); err != nil {
		return nil, err
	}

	points := make([]models.Point, 0, len(out.Data))
	for _, row := range out.Data {
		date, err := time.Parse(dayFormat, row.Date)
		if err != nil {
			continue
		}
		points = append(points, models.Point{
			Date:        date,
			Impressions: row.Metrics.Impressions,
			Clicks:      row.Metrics.Clicks,
			Cost:        row.Metrics.Cost,
			Conversions: int64(row.Metrics.Conversions),
		})
	}
	return points, nil
}

func (a *kakaoAdapter) UpdateBudget(ctx context.Context, cred *connect.Credential, remoteID string, dailyBudget int64) error {
	endpoint := fmt.Sprintf("%s/openapi/v4/campaigns/%s", a.base, remoteID)
	body := map[string]any{"dailyBudgetAmount": dailyBudget}
	return a.rest.doJSON(ctx, http.MethodPut, endpoint, a.headers(cred), body, nil)
}

func (a *kakaoAdapter) UpdateStatus(ctx context.Context, cred *connect.Credential, remoteID string, status models.Status) error {
	endpoint := fmt.Sprintf("%s/openapi/v4/campaigns/%s/onOff", a.base, remoteID)
	config := "OFF"
	if status == models.StatusActive {
		config = "ON"
	}
	body := map[string]any{"config": config}
	return a.rest.doJSON(ctx, http.MethodPut, endpoint, a.headers(cred), body, nil)
}

// --- TikTok (Business API) ---

type tiktokAdapter struct {
	rest *restClient
	base string
}

func newTikTokAdapter(rest *restClient) *tiktokAdapter {
	return &tiktokAdapter{rest: rest, base: "https://business-api.tiktok.com/open_api/v1.3"}
}

func (a *tiktokAdapter) Platform() connect.Platform { return connect.PlatformTikTok }

func (a *tiktokAdapter) headers(cred *connect.Credential) map[string]string {
	return map[string]string{"Access-Token": cred.AccessToken}
}

// tiktokEnvelope is the uniform response wrapper. TikTok answers HTTP 200
// even for failures; the real result is the envelope code.
type tiktokEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e tiktokEnvelope) err(status int) error {
	if e.Code == 0 {
		return nil
	}
	return &classify.APIError{
		StatusCode:   status,
		ProviderCode: strconv.Itoa(e.Code),
		Message:      e.Message,
	}
}

func (a *tiktokAdapter) FetchCampaigns(ctx context.Context, cred *connect.Credential) ([]*models.Campaign, error) {
	var out struct {
		tiktokEnvelope
		Data struct {
			List []struct {
				CampaignID string  `json:"campaign_id"`
				Name       string  `json:"campaign_name"`
				Status     string  `json:"operation_status"`
				Budget     float64 `json:"budget"`
			} `json:"list"`
		} `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/campaign/get/?advertiser_id=%s", a.base, cred.AccountID)
	if err := a.rest.getJSON(ctx, endpoint, a.headers(cred), &out); err != nil {
		return nil, err
	}
	if err := out.err(http.StatusOK); err != nil {
		return nil, err
	}

	campaigns := make([]*models.Campaign, 0, len(out.Data.List))
	for _, row := range out.Data.List {
		status := models.StatusPaused
		if row.Status == "ENABLE" {
			status = models.StatusActive
		}
		campaigns = append(campaigns, &models.Campaign{
			RemoteID:    row.CampaignID,
			Name:        row.Name,
			Status:      status,
			DailyBudget: int64(row.Budget * 100),
			Currency:    "USD",
		})
	}
	return normalize(cred, campaigns), nil
}

func (a *tiktokAdapter) FetchPerformance(ctx context.Context, cred *connect.Credential, remoteID string, rng models.DateRange) ([]models.Point, error) {
	var out struct {
		tiktokEnvelope
		Data struct {
			List []struct {
				Dimensions struct {
					Date string `json:"stat_time_day"`
				} `json:"dimensions"`
				Metrics struct {
					Impressions string `json:"impressions"`
					Clicks      string `json:"clicks"`
					Spend       string `json:"spend"`
					Conversions string `json:"conversion"`
				} `json:"metrics"`
			} `json:"list"`
		} `json:"data"`
	}
	endpoint := fmt.Sprintf(
		"%s/report/integrated/get/?advertiser_id=%s&report_type=BASIC&dimensions=%s&filters=%s&start_date=%s&end_date=%s",
		a.base, cred.AccountID,
		url.QueryEscape(`["campaign_id","stat_time_day"]`),
		url.QueryEscape(fmt.Sprintf(`[{"field_name":"campaign_ids","filter_type":"IN","filter_value":"[%s]"}]`, remoteID)),
		rng.From.Format(dayFormat), rng.To.Format(dayFormat))
	if err := a.rest.getJSON(ctx, endpoint, a.headers(cred), &out); err != nil {
		return nil, err
	}
	if err := out.err(http.StatusOK); err != nil {
		return nil, err
	}

	points := make([]models.Point, 0, len(out.Data.List))
	for _, row := range out.Data.List {
		date, err := time.Parse(dayFormat, row.Dimensions.Date)
		if err != nil {
			continue
		}
		impressions, _ := strconv.ParseInt(row.Metrics.Impressions, 10, 64)
		clicks, _ := strconv.ParseInt(row.Metrics.Clicks, 10, 64)
		spend, _ := strconv.ParseFloat(row.Metrics.Spend, 64)
		conversions, _ := strconv.ParseInt(row.Metrics.Conversions, 10, 64)
		points = append(points, models.Point{
			Date:        date,
			Impressions: impressions,
			Clicks:      clicks,
			Cost:        int64(spend * 100),
			Conversions: conversions,
		})
	}
	return points, nil
}

func (a *tiktokAdapter) UpdateBudget(ctx context.Context, cred *connect.Credential, remoteID string, dailyBudget int64) error {
	var out tiktokEnvelope
	body := map[string]any{
		"advertiser_id": cred.AccountID,
		"campaign_id":   remoteID,
		"budget":        float64(dailyBudget) / 100,
	}
	if err := a.rest.doJSON(ctx, http.MethodPost, a.base+"/campaign/update/", a.headers(cred), body, &out); err != nil {
		return err
	}
	return out.err(http.StatusOK)
}

func (a *tiktokAdapter) UpdateStatus(ctx context.Context, cred *connect.Credential, remoteID string, status models.Status) error {
	operation := "DISABLE"
	if status == models.StatusActive {
		operation = "ENABLE"
	}
	var out tiktokEnvelope
	body := map[string]any{
		"advertiser_id":    cred.AccountID,
		"campaign_ids":     []string{remoteID},
		"operation_status": operation,
	}
	if err := a.rest.doJSON(ctx, http.MethodPost, a.base+"/campaign/status/update/", a.headers(cred), body, &out); err != nil {
		return err
	}
	return out.err(http.StatusOK)
}

// --- Amazon (Ads API) ---

type amazonAdapter struct {
	rest *restClient
	base string
}

func newAmazonAdapter(rest *restClient) *amazonAdapter {
	return &amazonAdapter{rest: rest, base: "https://advertising-api.amazon.com"}
}

func (a *amazonAdapter) Platform() connect.Platform { return connect.PlatformAmazon }

func (a *amazonAdapter) headers(cred *connect.Credential) map[string]string {
	h := bearer(cred.AccessToken)
	h["Amazon-Advertising-API-Scope"] = cred.AccountID
	return h
}

func (a *amazonAdapter) FetchCampaigns(ctx context.Context, cred *connect.Credential) ([]*models.Campaign, error) {
	var out []struct {
		CampaignID int64   `json:"campaignId"`
		Name       string  `json:"name"`
		State      string  `json:"state"`
		Budget     float64 `json:"dailyBudget"`
	}
	if err := a.rest.getJSON(ctx, a.base+"/v2/sp/campaigns", a.headers(cred), &out); err != nil {
		return nil, err
	}

	campaigns := make([]*models.Campaign, 0, len(out))
	for _, row := range out {
		status := models.StatusPaused
		switch row.State {
		case "enabled":
			status = models.StatusActive
		case "archived":
			status = models.StatusArchived
		}
		campaigns = append(campaigns, &models.Campaign{
			RemoteID:    strconv.FormatInt(row.CampaignID, 10),
			Name:        row.Name,
			Status:      status,
			DailyBudget: int64(row.Budget * 100),
			Currency:    "USD",
		})
	}
	return normalize(cred, campaigns), nil
}

func (a *amazonAdapter) FetchPerformance(ctx context.Context, cred *connect.Credential, remoteID string, rng models.DateRange) ([]models.Point, error) {
	var out []struct {
		Date        string  `json:"date"`
		Impressions int64   `json:"impressions"`
		Clicks      int64   `json:"clicks"`
		Cost        float64 `json:"cost"`
		Conversions int64   `json:"purchases14d"`
		Revenue     float64 `json:"sales14d"`
	}
	endpoint := fmt.Sprintf("%s/v2/sp/campaigns/%s/report?startDate=%s&endDate=%s",
		a.base, remoteID, rng.From.Format("20060102"), rng.To.Format("20060102"))
	if err := a.rest.getJSON(ctx, endpoint, a.headers(cred), &out); err != nil {
		return nil, err
	}

	points := make([]models.Point, 0, len(out))
	for _, row := range out {
		date, err := time.Parse(dayFormat, row.Date)
		if err != nil {
			continue
		}
		points = append(points, models.Point{
			Date:        date,
			Impressions: row.Impressions,
			Clicks:      row.Clicks,
			Cost:        int64(row.Cost * 100),
			Conversions: row.Conversions,
			Revenue:     int64(row.Revenue * 100),
		})
	}
	return points, nil
}

func (a *amazonAdapter) UpdateBudget(ctx context.Context, cred *connect.Credential, remoteID string, dailyBudget int64) error {
	id, err := strconv.ParseInt(remoteID, 10, 64)
	if err != nil {
		return fmt.Errorf("amazon campaign id %q is not numeric", remoteID)
	}
	body := []map[string]any{{"campaignId": id, "dailyBudget": float64(dailyBudget) / 100}}
	return a.rest.doJSON(ctx, http.MethodPut, a.base+"/v2/sp/campaigns", a.headers(cred), body, nil)
}

func (a *amazonAdapter) UpdateStatus(ctx context.Context, cred *connect.Credential, remoteID string, status models.Status) error {
	id, err := strconv.ParseInt(remoteID, 10, 64)
	if err != nil {
		return fmt.Errorf("amazon campaign id %q is not numeric", remoteID)
	}
	state := "paused"
	switch status {
	case models.StatusActive:
		state = "enabled"
	case models.StatusArchived:
		state = "archived"
	}
	body := []map[string]any{{"campaignId": id, "state": state}}
	return a.rest.doJSON(ctx, http.MethodPut, a.base+"/v2/sp/campaigns", a.headers(cred), body, nil)
}

// --- Coupang (Ads Open API) ---

type coupangAdapter struct {
	rest *restClient
	base string
}

func newCoupangAdapter(rest *restClient) *coupangAdapter {
	return &coupangAdapter{rest: rest, base: "https://advertising-api.coupang.com"}
}

func (a *coupangAdapter) Platform() connect.Platform { return connect.PlatformCoupang }

func (a *coupangAdapter) FetchCampaigns(ctx context.Context, cred *connect.Credential) ([]*models.Campaign, error) {
	var out struct {
		Data []struct {
			CampaignID string `json:"campaignId"`
			Name       string `json:"name"`
			Status     string `json:"status"`
			Budget     int64  `json:"dailyBudget"`
		} `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/v1/vendors/%s/campaigns", a.base, cred.AccountID)
	if err := a.rest.getJSON(ctx, endpoint, bearer(cred.AccessToken), &out); err != nil {
		return nil, err
	}

	campaigns := make([]*models.Campaign, 0, len(out.Data))
	for _, row := range out.Data {
		status := models.StatusPaused
		if row.Status == "RUNNING" {
			status = models.StatusActive
		}
		campaigns = append(campaigns, &models.Campaign{
			RemoteID:    row.CampaignID,
			Name:        row.Name,
			Status:      status,
			DailyBudget: row.Budget,
			Currency:    "KRW",
		})
	}
	return normalize(cred, campaigns), nil
}

func (a *coupangAdapter) FetchPerformance(ctx context.Context, cred *connect.Credential, remoteID string, rng models.DateRange) ([]models.Point, error) {
	var out struct {
		Data []struct {
			Date        string `json:"date"`
			Impressions int64  `json:"impressions"`
			Clicks      int64  `json:"clicks"`
			AdSpend     int64  `json:"adSpend"`
			Orders      int64  `json:"orders"`
			Sales       int64  `json:"attributedSales"`
		} `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/v1/vendors/%s/campaigns/%s/performance?from=%s&to=%s",
		a.base, cred.AccountID, remoteID, rng.From.Format(dayFormat), rng.To.Format(dayFormat))
	if err := a.rest.getJSON(ctx, endpoint, bearer(cred.AccessToken), &out); err != nil {
		return nil, err
	}

	points := make([]models.Point, 0, len(out.Data))
	for _, row := range out.Data {
		date, err := time.Parse(dayFormat, row.Date)
		if err != nil {
			continue
		}
		points = append(points, models.Point{
			Date:        date,
			Impressions: row.Impressions,
			Clicks:      row.Clicks,
			Cost:        row.AdSpend,
			Conversions: row.Orders,
			Revenue:     row.Sales,
		})
	}
	return points, nil
}

func (a *coupangAdapter) UpdateBudget(ctx context.Context, cred *connect.Credential, remoteID string, dailyBudget int64) error {
	endpoint := fmt.Sprintf("%s/v1/vendors/%s/campaigns/%s/budget", a.base, cred.AccountID, remoteID)
	body := map[string]any{"dailyBudget": dailyBudget}
	return a.rest.doJSON(ctx, http.MethodPut, endpoint, bearer(cred.AccessToken), body, nil)
}

func (a *coupangAdapter) UpdateStatus(ctx context.Context, cred *connect.Credential, remoteID string, status models.Status) error {
	endpoint := fmt.Sprintf("%s/v1/vendors/%s/campaigns/%s/status", a.base, cred.AccountID, remoteID)
	next := "PAUSED"
	if status == models.StatusActive {
		next = "RUNNING"
	}
	body := map[string]any{"status": next}
	return a.rest.doJSON(ctx, http.MethodPut, endpoint, bearer(cred.AccessToken), body, nil)
}
