package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profilescope/internal/github"
	"profilescope/internal/models"
)

type fakeFetcher struct {
	profile    *models.Profile
	profileErr error
	repos      []*models.Repository
	reposErr   error
	readmes    map[string]string
	readmeErrs map[string]error

	mu          sync.Mutex
	readmeCalls []string
}

func (f *fakeFetcher) GetUser(ctx context.Context, handle string) (*models.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeFetcher) ListRepositories(ctx context.Context, handle string) ([]*models.Repository, error) {
	if f.reposErr != nil {
		return nil, f.reposErr
	}
	return f.repos, nil
}

func (f *fakeFetcher) GetReadme(ctx context.Context, owner, repo string) (string, error) {
	f.mu.Lock()
	f.readmeCalls = append(f.readmeCalls, repo)
	f.mu.Unlock()

	if err, ok := f.readmeErrs[repo]; ok {
		return "", err
	}
	if content, ok := f.readmes[repo]; ok {
		return content, nil
	}
	return "", github.ErrNotFound
}

type fakeContribs struct {
	data *github.ContributionData
	err  error
}

func (f *fakeContribs) FetchContributions(ctx context.Context, handle string) (*github.ContributionData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func testProfile() *models.Profile {
	return &models.Profile{Login: "octocat", Name: "The Octocat"}
}

func testRepos(names ...string) []*models.Repository {
	repos := make([]*models.Repository, 0, len(names))
	for _, name := range names {
		repos = append(repos, &models.Repository{Name: name})
	}
	return repos
}

func newTestProfileService(fetcher ProfileFetcher, contribs ContributionSource) *ProfileService {
	return NewProfileService(
		func(token string) (ProfileFetcher, error) { return fetcher, nil },
		contribs,
		NewStreakService(),
	)
}

func TestAnalyzeMergesAllSources(t *testing.T) {
	fetcher := &fakeFetcher{
		profile: testProfile(),
		repos:   testRepos("alpha", "beta", "gamma", "delta"),
		readmes: map[string]string{
			"alpha": "# Alpha",
			"gamma": "# Gamma",
		},
		readmeErrs: map[string]error{
			"beta": github.ErrNotFound,
		},
	}
	contribs := &fakeContribs{
		data: &github.ContributionData{
			Totals: map[string]int{"2024": 30, "2025": 12},
		},
	}

	service := newTestProfileService(fetcher, contribs)
	result, err := service.Analyze(context.Background(), "octocat", "")

	require.NoError(t, err)
	assert.Equal(t, "octocat", result.Profile.Login)
	assert.Len(t, result.Repositories, 4)
	assert.Equal(t, 42, result.Stats.Total)

	// README excerpts: successes attached, failures nil, rest never fetched
	require.NotNil(t, result.Repositories[0].Readme)
	assert.Equal(t, "# Alpha", *result.Repositories[0].Readme)
	assert.Nil(t, result.Repositories[1].Readme)
	require.NotNil(t, result.Repositories[2].Readme)
	assert.Equal(t, "# Gamma", *result.Repositories[2].Readme)
	assert.Nil(t, result.Repositories[3].Readme)
	assert.Len(t, fetcher.readmeCalls, 3)
}

func TestAnalyzeEmptyPortfolio(t *testing.T) {
	fetcher := &fakeFetcher{
		profile: testProfile(),
		repos:   []*models.Repository{},
	}

	service := newTestProfileService(fetcher, &fakeContribs{data: &github.ContributionData{}})
	result, err := service.Analyze(context.Background(), "octocat", "")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrEmptyPortfolio)
}

func TestAnalyzeProfileFetchFailurePropagates(t *testing.T) {
	fetcher := &fakeFetcher{profileErr: github.ErrNotFound}

	service := newTestProfileService(fetcher, &fakeContribs{data: &github.ContributionData{}})
	result, err := service.Analyze(context.Background(), "ghost", "")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, github.ErrNotFound)
	assert.Empty(t, fetcher.readmeCalls)
}

func TestAnalyzeRepoListFailurePropagates(t *testing.T) {
	fetcher := &fakeFetcher{
		profile:  testProfile(),
		reposErr: github.ErrRateLimited,
	}

	service := newTestProfileService(fetcher, &fakeContribs{data: &github.ContributionData{}})
	result, err := service.Analyze(context.Background(), "octocat", "")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, github.ErrRateLimited)
}

func TestAnalyzeContributionFailureDegradesToZeroStats(t *testing.T) {
	fetcher := &fakeFetcher{
		profile: testProfile(),
		repos:   testRepos("alpha"),
	}
	contribs := &fakeContribs{err: errors.New("calendar API down")}

	service := newTestProfileService(fetcher, contribs)
	result, err := service.Analyze(context.Background(), "octocat", "")

	require.NoError(t, err)
	assert.Equal(t, models.ContributionStats{}, result.Stats)
}

func TestAnalyzeTruncatesLongReadme(t *testing.T) {
	fetcher := &fakeFetcher{
		profile: testProfile(),
		repos:   testRepos("alpha"),
		readmes: map[string]string{
			"alpha": strings.Repeat("x", readmeMaxChars+500),
		},
	}

	service := newTestProfileService(fetcher, &fakeContribs{data: &github.ContributionData{}})
	result, err := service.Analyze(context.Background(), "octocat", "")

	require.NoError(t, err)
	require.NotNil(t, result.Repositories[0].Readme)
	assert.Len(t, *result.Repositories[0].Readme, readmeMaxChars)
}

func TestAnalyzeFactoryFailurePropagates(t *testing.T) {
	factoryErr := errors.New("bad base URL")
	service := NewProfileService(
		func(token string) (ProfileFetcher, error) { return nil, factoryErr },
		&fakeContribs{data: &github.ContributionData{}},
		NewStreakService(),
	)

	result, err := service.Analyze(context.Background(), "octocat", "")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, factoryErr)
}

func TestTruncateRunesKeepsMultibyteIntact(t *testing.T) {
	s := strings.Repeat("é", 10)

	assert.Equal(t, strings.Repeat("é", 4), truncateRunes(s, 4))
	assert.Equal(t, s, truncateRunes(s, 20))
}
