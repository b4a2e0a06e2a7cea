package services

import (
	"sort"
	"time"

	"profilescope/internal/models"
)

const contributionDateLayout = "2006-01-02"

// StreakService derives streak statistics from a daily contribution series
type StreakService struct {
	now func() time.Time
}

func NewStreakService() *StreakService {
	return &StreakService{
		now: time.Now,
	}
}

// Compute calculates total, longest and current streak figures.
// The total comes from the per-year totals map, which the statistics API
// supplies independently of the visible daily series.
func (s *StreakService) Compute(days []models.ContributionDay, totals map[string]int) models.ContributionStats {
	stats := models.ContributionStats{}

	for _, count := range totals {
		stats.Total += count
	}

	if len(days) == 0 {
		return stats
	}

	// Upstream is expected to be sorted ascending, but must not be trusted
	sorted := make([]models.ContributionDay, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	stats.LongestStreak = longestStreak(sorted)
	stats.CurrentStreak = s.currentStreak(sorted)

	return stats
}

// longestStreak is a single forward scan over the series
func longestStreak(days []models.ContributionDay) int {
	longest := 0
	running := 0
	for _, day := range days {
		if day.Count > 0 {
			running++
			continue
		}
		if running > longest {
			longest = running
		}
		running = 0
	}
	// A streak ending on the last entry is only visible after the scan
	if running > longest {
		longest = running
	}
	return longest
}

// currentStreak scans backward from the most recent entry. A zero-count day
// terminates the streak, except when that day is today: no activity yet
// today does not break an active streak. A zero on any earlier day always
// terminates, even if today has no entry at all.
func (s *StreakService) currentStreak(days []models.ContributionDay) int {
	today := s.now().Format(contributionDateLayout)

	streak := 0
	for i := len(days) - 1; i >= 0; i-- {
		day := days[i]
		if day.Count > 0 {
			streak++
			continue
		}
		if day.Date == today {
			continue
		}
		break
	}
	return streak
}
