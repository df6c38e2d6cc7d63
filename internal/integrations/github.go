package integrations

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/shipboard-io/shipboard/internal/config"
	"go.uber.org/zap"
)

// GitHubClient talks to the GitHub REST API with a project's access token.
type GitHubClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewGitHubClient(cfg *config.Config, client *http.Client, log *zap.Logger) *GitHubClient {
	return &GitHubClient{
		BaseURL:    cfg.Integrations.GitHubBaseURL,
		HTTPClient: client,
		Logger:     log,
	}
}

// RepoActivity is the normalized result of one GitHub fetch.
type RepoActivity struct {
	Repo    string `json:"repo"`
	Commits int    `json:"commits"`
	PRs     int    `json:"prs"`
}

type commitItem struct {
	SHA string `json:"sha"`
}

type pullItem struct {
	Number int `json:"number"`
}

// FetchRepoActivity returns the commit count for the trailing 30 days and
// the pull request count across all states. Both endpoints are read with a
// single page of 100, so the PR count is capped there rather than being a
// true total.
func (c *GitHubClient) FetchRepoActivity(ctx context.Context, accessToken, repoFullName string) (*RepoActivity, error) {
	if repoFullName == "" || accessToken == "" {
		return nil, &ConfigError{Provider: ProviderGitHub, Reason: "repo and access token are required"}
	}
	parts := strings.Split(repoFullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, &ConfigError{Provider: ProviderGitHub, Reason: "invalid repo format, expected owner/repo"}
	}
	owner, repo := parts[0], parts[1]

	since := time.Now().UTC().AddDate(0, 0, -30).Format(time.RFC3339)

	commitsURL := fmt.Sprintf("%s/repos/%s/%s/commits?since=%s&per_page=100", c.BaseURL, owner, repo, since)
	var commits []commitItem
	if err := c.getJSON(ctx, commitsURL, accessToken, &commits); err != nil {
		return nil, err
	}

	pullsURL := fmt.Sprintf("%s/repos/%s/%s/pulls?state=all&per_page=100", c.BaseURL, owner, repo)
	var pulls []pullItem
	if err := c.getJSON(ctx, pullsURL, accessToken, &pulls); err != nil {
		return nil, err
	}

	return &RepoActivity{
		Repo:    repoFullName,
		Commits: len(commits),
		PRs:     len(pulls),
	}, nil
}

func (c *GitHubClient) getJSON(ctx context.Context, url, accessToken string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

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
		c.Logger.Warn("github request failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return &ProviderError{Provider: ProviderGitHub, StatusCode: resp.StatusCode}
	}

	if err := sonic.Unmarshal(body, out); err != nil {
		return &ProviderError{Provider: ProviderGitHub, Reason: "malformed response"}
	}
	return nil
}
