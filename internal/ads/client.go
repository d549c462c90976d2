package ads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/wiederlebendig/lead-attribution-service/internal/config"
)

const (
	defaultBaseURL = "https://googleads.googleapis.com/v17"
	adwordsScope   = "https://www.googleapis.com/auth/adwords"
)

// CampaignStat is one day of performance for one campaign as reported by the
// ad platform.
type CampaignStat struct {
	Date         string
	CampaignName string
	CostMicros   int64
	Clicks       int64
	Impressions  int64
	Conversions  float64
}

// Reporter defines the interface for pulling campaign performance rows
type Reporter interface {
	// FetchCampaignStats returns per-day, per-campaign stats for the
	// inclusive date range (YYYY-MM-DD)
	FetchCampaignStats(ctx context.Context, from, to string) ([]CampaignStat, error)
}

// Client is a Google Ads searchStream reporter using the OAuth refresh-token
// flow.
type Client struct {
	config     config.GoogleAds
	httpClient *http.Client
	baseURL    string
	log        *zap.Logger
}

// NewClient creates a Google Ads client. The token source refreshes access
// tokens from the configured refresh token on demand.
func NewClient(ctx context.Context, cfg config.GoogleAds, log *zap.Logger) *Client {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{adwordsScope},
	}

	tokenSource := oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	return &Client{
		config:     cfg,
		httpClient: oauth2.NewClient(ctx, tokenSource),
		baseURL:    defaultBaseURL,
		log:        log,
	}
}

// searchStream response chunks. The REST transport encodes int64 metrics as
// strings.
type streamChunk struct {
	Results []struct {
		Campaign struct {
			Name string `json:"name"`
		} `json:"campaign"`
		Metrics struct {
			CostMicros  string  `json:"costMicros"`
			Clicks      string  `json:"clicks"`
			Impressions string  `json:"impressions"`
			Conversions float64 `json:"conversions"`
		} `json:"metrics"`
		Segments struct {
			Date string `json:"date"`
		} `json:"segments"`
	} `json:"results"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// FetchCampaignStats queries cost, clicks, impressions and conversions
// grouped by day and campaign for the inclusive date range.
func (c *Client) FetchCampaignStats(ctx context.Context, from, to string) ([]CampaignStat, error) {
	query := fmt.Sprintf(`SELECT segments.date, campaign.name, metrics.cost_micros, metrics.clicks, metrics.impressions, metrics.conversions FROM campaign WHERE segments.date BETWEEN '%s' AND '%s'`, from, to)

	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	url := fmt.Sprintf("%s/customers/%s/googleAds:searchStream", c.baseURL, c.config.CustomerID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("developer-token", c.config.DeveloperToken)
	req.Header.Set("login-customer-id", c.config.CustomerID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google ads request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Error("Failed to close response body", zap.Error(err))
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Error("Google Ads query failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody))
		return nil, fmt.Errorf("google ads query failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var chunks []streamChunk
	if err := json.Unmarshal(respBody, &chunks); err != nil {
		return nil, fmt.Errorf("failed to decode google ads response: %w", err)
	}

	var stats []CampaignStat
	for _, chunk := range chunks {
		if chunk.Error != nil {
			return nil, fmt.Errorf("google ads stream error: %s", chunk.Error.Message)
		}
		for _, res := range chunk.Results {
			stats = append(stats, CampaignStat{
				Date:         res.Segments.Date,
				CampaignName: res.Campaign.Name,
				CostMicros:   parseInt64(res.Metrics.CostMicros),
				Clicks:       parseInt64(res.Metrics.Clicks),
				Impressions:  parseInt64(res.Metrics.Impressions),
				Conversions:  res.Metrics.Conversions,
			})
		}
	}

	c.log.Info("Fetched campaign stats",
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("rows", len(stats)))

	return stats, nil
}

func parseInt64(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// MicrosToCurrency converts the platform's currency micro-units to decimal
// currency with two-decimal rounding.
func MicrosToCurrency(micros int64) float64 {
	return math.Round(float64(micros)/10000) / 100
}
