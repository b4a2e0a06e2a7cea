package models

// ContributionDay is a single day of the public contribution calendar.
// Date uses the calendar API's ISO format, YYYY-MM-DD.
type ContributionDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ContributionStats holds the streak figures derived from the calendar.
// All fields stay zero when the calendar source is unavailable.
type ContributionStats struct {
	Total         int `json:"total"`
	LongestStreak int `json:"longest_streak"`
	CurrentStreak int `json:"current_streak"`
}
