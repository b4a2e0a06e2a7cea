package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"profilescope/internal/models"
)

const (
	// repoPageSize caps the repository list to the platform's most recently updated entries
	repoPageSize = 6
)

// Client wraps the GitHub REST API for profile analysis.
// All calls classify failures into ErrRateLimited, ErrNotFound or UpstreamError.
type Client struct {
	gh *gh.Client
}

// NewClient creates a GitHub client. The token is optional; when present the
// client authenticates every request with it. baseURL overrides the API
// endpoint and is used by tests, an empty value targets api.github.com.
func NewClient(token, baseURL string) (*Client, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	} else {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	client := gh.NewClient(httpClient)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API base URL: %w", err)
		}
		client.BaseURL = parsed
	}

	return &Client{gh: client}, nil
}

// GetUser fetches the public profile for a handle
func (c *Client) GetUser(ctx context.Context, handle string) (*models.Profile, error) {
	user, _, err := c.gh.Users.Get(ctx, handle)
	if err != nil {
		return nil, classifyError(err)
	}

	return &models.Profile{
		Login:       user.GetLogin(),
		Name:        user.GetName(),
		Bio:         user.Bio,
		Location:    user.Location,
		Company:     user.Company,
		Blog:        user.Blog,
		AvatarURL:   user.GetAvatarURL(),
		PublicRepos: user.GetPublicRepos(),
		Followers:   user.GetFollowers(),
		Following:   user.GetFollowing(),
		CreatedAt:   user.GetCreatedAt().Time,
	}, nil
}

// ListRepositories fetches the handle's own repositories, most recently
// updated first, capped to a single page of repoPageSize entries
func (c *Client) ListRepositories(ctx context.Context, handle string) ([]*models.Repository, error) {
	opt := &gh.RepositoryListOptions{
		Type:        "owner",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: repoPageSize},
	}

	repos, _, err := c.gh.Repositories.List(ctx, handle, opt)
	if err != nil {
		return nil, classifyError(err)
	}

	result := make([]*models.Repository, 0, len(repos))
	for _, repo := range repos {
		result = append(result, &models.Repository{
			Name:        repo.GetName(),
			FullName:    repo.GetFullName(),
			URL:         repo.GetHTMLURL(),
			Description: repo.Description,
			Language:    repo.Language,
			Homepage:    repo.Homepage,
			Stars:       repo.GetStargazersCount(),
			Forks:       repo.GetForksCount(),
			Watchers:    repo.GetWatchersCount(),
			OpenIssues:  repo.GetOpenIssuesCount(),
			Topics:      repo.Topics,
			CreatedAt:   timestampPtr(repo.CreatedAt),
			UpdatedAt:   timestampPtr(repo.UpdatedAt),
			PushedAt:    timestampPtr(repo.PushedAt),
			Fork:        repo.GetFork(),
			Archived:    repo.GetArchived(),
			Disabled:    repo.GetDisabled(),
		})
	}

	return result, nil
}

// GetReadme fetches and decodes a repository's README content
func (c *Client) GetReadme(ctx context.Context, owner, repo string) (string, error) {
	readme, _, err := c.gh.Repositories.GetReadme(ctx, owner, repo, nil)
	if err != nil {
		return "", classifyError(err)
	}

	content, err := readme.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode readme for %s/%s: %w", owner, repo, err)
	}

	return content, nil
}

func timestampPtr(ts *gh.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.Time
	return &t
}
