package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"profilescope/internal/github"
	"profilescope/internal/models"
	"profilescope/pkg/logger"
)

// ErrEmptyPortfolio indicates the user has no repositories to analyze
var ErrEmptyPortfolio = errors.New("no public repositories to analyze")

const (
	// readmeRepoLimit caps how many repositories get a README excerpt attached
	readmeRepoLimit = 3
	// readmeMaxChars caps the attached README excerpt length
	readmeMaxChars = 2000
)

// ProfileFetcher is the gateway to the source-control platform
type ProfileFetcher interface {
	GetUser(ctx context.Context, handle string) (*models.Profile, error)
	ListRepositories(ctx context.Context, handle string) ([]*models.Repository, error)
	GetReadme(ctx context.Context, owner, repo string) (string, error)
}

// ContributionSource fetches the public contribution calendar for a handle
type ContributionSource interface {
	FetchContributions(ctx context.Context, handle string) (*github.ContributionData, error)
}

// FetcherFactory builds a platform gateway for an optional user-supplied token
type FetcherFactory func(token string) (ProfileFetcher, error)

// ProfileService aggregates everything needed to assess a profile:
// the profile itself, its recent repositories with README excerpts,
// and the derived contribution statistics.
type ProfileService struct {
	newFetcher FetcherFactory
	contribs   ContributionSource
	streaks    *StreakService
}

func NewProfileService(newFetcher FetcherFactory, contribs ContributionSource, streaks *StreakService) *ProfileService {
	return &ProfileService{
		newFetcher: newFetcher,
		contribs:   contribs,
		streaks:    streaks,
	}
}

// Analyze runs the aggregation pipeline for a handle. The profile and
// repository-list fetches are load-bearing; contribution stats and README
// excerpts degrade silently on failure.
func (s *ProfileService) Analyze(ctx context.Context, handle, token string) (*models.AnalysisResult, error) {
	fetcher, err := s.newFetcher(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform client: %w", err)
	}

	// The profile fetch doubles as the "does this user exist" check
	profile, err := fetcher.GetUser(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile for %s: %w", handle, err)
	}

	var repos []*models.Repository
	var stats models.ContributionStats

	// Repository list and contribution stats are independent of each other
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var err error
		repos, err = fetcher.ListRepositories(egCtx, handle)
		if err != nil {
			return fmt.Errorf("failed to fetch repositories for %s: %w", handle, err)
		}
		return nil
	})

	eg.Go(func() error {
		// Best-effort enrichment: any failure degrades to zero stats
		data, err := s.contribs.FetchContributions(egCtx, handle)
		if err != nil {
			logger.WithError(err).WithField("handle", handle).Warn("Contribution fetch failed, using zero stats")
			return nil
		}
		stats = s.streaks.Compute(data.Days, data.Totals)
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if len(repos) == 0 {
		return nil, ErrEmptyPortfolio
	}

	s.attachReadmes(ctx, fetcher, profile.Login, repos)

	return &models.AnalysisResult{
		Profile:      profile,
		Repositories: repos,
		Stats:        stats,
	}, nil
}

// attachReadmes fetches README excerpts for the first few repositories in
// parallel. Failures leave the excerpt nil and never abort aggregation.
func (s *ProfileService) attachReadmes(ctx context.Context, fetcher ProfileFetcher, owner string, repos []*models.Repository) {
	limit := readmeRepoLimit
	if len(repos) < limit {
		limit = len(repos)
	}

	var eg errgroup.Group
	for i := 0; i < limit; i++ {
		repo := repos[i]
		eg.Go(func() error {
			content, err := fetcher.GetReadme(ctx, owner, repo.Name)
			if err != nil {
				logger.WithError(err).WithField("repo", repo.Name).Debug("README fetch failed, attaching nothing")
				return nil
			}
			excerpt := truncateRunes(content, readmeMaxChars)
			repo.Readme = &excerpt
			return nil
		})
	}
	// Goroutines write to disjoint repository slots, so the only join
	// needed is waiting for all of them
	_ = eg.Wait()
}

// truncateRunes cuts a string to at most n characters without splitting runes
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
