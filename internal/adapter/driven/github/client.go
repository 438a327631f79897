// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/projectcatalog/internal/domain/model"
	"github.com/ericfisherdev/projectcatalog/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// Client implements the driven.GitHubClient port using the go-github library.
type Client struct {
	gh *gh.Client
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client, PAT auth when token is non-empty)
//
// An empty token yields an unauthenticated client with GitHub's lower rate limit.
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &Client{gh: client}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// FetchRepository retrieves descriptive metadata for owner/name. It returns
// driven.ErrGitHubRepoNotFound when GitHub answers 404.
func (c *Client) FetchRepository(ctx context.Context, owner, name string) (*model.RepoMetadata, error) {
	if owner == "" || name == "" {
		return nil, fmt.Errorf("invalid repo name %q: expected owner/repo", owner+"/"+name)
	}

	repo, resp, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		var ghErr *gh.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("fetch repository %s/%s: %w", owner, name, driven.ErrGitHubRepoNotFound)
		}
		return nil, fmt.Errorf("fetch repository %s/%s: %w", owner, name, err)
	}

	logRateLimit(resp, owner+"/"+name)

	return mapRepository(repo), nil
}

// mapRepository converts a go-github Repository to domain metadata.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapRepository(repo *gh.Repository) *model.RepoMetadata {
	return &model.RepoMetadata{
		Description:  repo.GetDescription(),
		MainLanguage: repo.GetLanguage(),
		PushedAt:     repo.GetPushedAt().Time,
	}
}

func logRateLimit(resp *gh.Response, repoFullName string) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"repo", repoFullName,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
