package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"profilescope/internal/models"
)

// ContributionData is the raw calendar payload from the public
// contribution statistics API: per-year totals plus the daily series.
type ContributionData struct {
	Totals map[string]int           `json:"total"`
	Days   []models.ContributionDay `json:"contributions"`
}

// ContributionsClient fetches the public contribution calendar for a handle.
// The statistics API requires no authentication.
type ContributionsClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewContributionsClient creates a client for the contribution statistics API
func NewContributionsClient(baseURL string) *ContributionsClient {
	return &ContributionsClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchContributions fetches the full multi-year contribution calendar
func (c *ContributionsClient) FetchContributions(ctx context.Context, handle string) (*ContributionData, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, handle)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build contributions request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contributions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyStatus(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read contributions response: %w", err)
	}

	var data ContributionData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contributions: %w", err)
	}

	return &data, nil
}
