package models

import "time"

// Profile represents the public GitHub profile under analysis
type Profile struct {
	Login       string    `json:"login"`
	Name        string    `json:"name"`
	Bio         *string   `json:"bio"`
	Location    *string   `json:"location"`
	Company     *string   `json:"company"`
	Blog        *string   `json:"blog"`
	AvatarURL   string    `json:"avatar_url"`
	PublicRepos int       `json:"public_repos"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
}

// Repository represents one of the profile's repositories
type Repository struct {
	Name        string     `json:"name"`
	FullName    string     `json:"full_name"`
	URL         string     `json:"url"`
	Description *string    `json:"description"`
	Language    *string    `json:"language"`
	Homepage    *string    `json:"homepage"`
	Stars       int        `json:"stars"`
	Forks       int        `json:"forks"`
	Watchers    int        `json:"watchers"`
	OpenIssues  int        `json:"open_issues"`
	Topics      []string   `json:"topics"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
	PushedAt    *time.Time `json:"pushed_at"`
	Fork        bool       `json:"fork"`
	Archived    bool       `json:"archived"`
	Disabled    bool       `json:"disabled"`

	// Readme holds a truncated README excerpt, nil when none could be fetched
	Readme *string `json:"readme"`
}

// AnalysisResult is the merged output of one analysis request
type AnalysisResult struct {
	Profile      *Profile          `json:"profile"`
	Repositories []*Repository     `json:"repositories"`
	Stats        ContributionStats `json:"contribution_stats"`
}
