package integrations

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/shipboard-io/shipboard/internal/config"
	"go.uber.org/zap"
)

// TwitterClient talks to the Twitter/X API v2 with a project's bearer token.
type TwitterClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewTwitterClient(cfg *config.Config, client *http.Client, log *zap.Logger) *TwitterClient {
	return &TwitterClient{
		BaseURL:    cfg.Integrations.TwitterBaseURL,
		HTTPClient: client,
		Logger:     log,
	}
}

// UserMetrics is the normalized result of one Twitter fetch.
type UserMetrics struct {
	Handle    string `json:"handle"`
	Followers int64  `json:"followers"`
	Following int64  `json:"following"`
	Tweets    int64  `json:"tweets"`
	Listed    int64  `json:"listed"`
}

type twitterUserResponse struct {
	Data struct {
		PublicMetrics *struct {
			FollowersCount int64 `json:"followers_count"`
			FollowingCount int64 `json:"following_count"`
			TweetCount     int64 `json:"tweet_count"`
			ListedCount    int64 `json:"listed_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

// FetchUserMetrics looks up a user by handle and returns its public metrics.
// A leading "@" on the handle is stripped.
func (c *TwitterClient) FetchUserMetrics(ctx context.Context, bearerToken, handle string) (*UserMetrics, error) {
	if handle == "" || bearerToken == "" {
		return nil, &ConfigError{Provider: ProviderTwitter, Reason: "handle and bearer token are required"}
	}
	handle = strings.TrimPrefix(handle, "@")

	url := fmt.Sprintf("%s/2/users/by/username/%s?user.fields=public_metrics", c.BaseURL, handle)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.Logger.Warn("twitter request failed",
			zap.String("handle", handle),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, &ProviderError{Provider: ProviderTwitter, StatusCode: resp.StatusCode}
	}

	var parsed twitterUserResponse
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		return nil, &ProviderError{Provider: ProviderTwitter, Reason: "malformed response"}
	}
	if parsed.Data.PublicMetrics == nil {
		return nil, &ProviderError{Provider: ProviderTwitter, Reason: "no public_metrics for user"}
	}

	m := parsed.Data.PublicMetrics
	return &UserMetrics{
		Handle:    handle,
		Followers: m.FollowersCount,
		Following: m.FollowingCount,
		Tweets:    m.TweetCount,
		Listed:    m.ListedCount,
	}, nil
}
