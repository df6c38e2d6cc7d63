package integrations

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bytedance/sonic"
	"github.com/shipboard-io/shipboard/internal/config"
	"go.uber.org/zap"
)

// PlausibleClient talks to the Plausible Stats API with a project's API key.
type PlausibleClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewPlausibleClient(cfg *config.Config, client *http.Client, log *zap.Logger) *PlausibleClient {
	return &PlausibleClient{
		BaseURL:    cfg.Integrations.PlausibleBaseURL,
		HTTPClient: client,
		Logger:     log,
	}
}

// TrafficSource is one row of the visit:source breakdown. Sources are
// transient: they are returned to the caller but never persisted.
type TrafficSource struct {
	Source   string `json:"source"`
	Visitors int64  `json:"visitors"`
}

// SiteStats is the normalized result of one Plausible fetch.
type SiteStats struct {
	SiteID     string          `json:"site_id"`
	Pageviews  int64           `json:"pageviews"`
	Visitors   int64           `json:"visitors"`
	TopSources []TrafficSource `json:"top_sources"`
}

type plausibleAggregateResponse struct {
	Results struct {
		Pageviews struct {
			Value int64 `json:"value"`
		} `json:"pageviews"`
		Visitors struct {
			Value int64 `json:"value"`
		} `json:"visitors"`
	} `json:"results"`
}

type plausibleBreakdownResponse struct {
	Results []TrafficSource `json:"results"`
}

// FetchSiteStats returns the 7-day visitors/pageviews aggregate plus a
// 5-result traffic-source breakdown. A breakdown failure degrades to an
// empty source list rather than failing the whole fetch.
func (c *PlausibleClient) FetchSiteStats(ctx context.Context, apiKey, siteID string) (*SiteStats, error) {
	if siteID == "" || apiKey == "" {
		return nil, &ConfigError{Provider: ProviderPlausible, Reason: "site id and api key are required"}
	}

	aggURL := fmt.Sprintf("%s/api/v1/stats/aggregate?site_id=%s&period=7d&metrics=visitors,pageviews",
		c.BaseURL, url.QueryEscape(siteID))
	var agg plausibleAggregateResponse
	if err := c.getJSON(ctx, aggURL, apiKey, &agg); err != nil {
		return nil, err
	}

	stats := &SiteStats{
		SiteID:     siteID,
		Pageviews:  agg.Results.Pageviews.Value,
		Visitors:   agg.Results.Visitors.Value,
		TopSources: []TrafficSource{},
	}

	bdURL := fmt.Sprintf("%s/api/v1/stats/breakdown?site_id=%s&period=7d&property=visit:source&limit=5",
		c.BaseURL, url.QueryEscape(siteID))
	var bd plausibleBreakdownResponse
	if err := c.getJSON(ctx, bdURL, apiKey, &bd); err != nil {
		c.Logger.Warn("plausible breakdown failed", zap.String("site_id", siteID), zap.Error(err))
	} else {
		stats.TopSources = bd.Results
	}

	return stats, nil
}

func (c *PlausibleClient) getJSON(ctx context.Context, url, apiKey string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.Logger.Warn("plausible request failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return &ProviderError{Provider: ProviderPlausible, StatusCode: resp.StatusCode}
	}

	if err := sonic.Unmarshal(body, out); err != nil {
		return &ProviderError{Provider: ProviderPlausible, Reason: "malformed response"}
	}
	return nil
}
