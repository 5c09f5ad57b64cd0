package reading

import (
	"math"
	"time"
)

// Snapshot is one identity's aggregate reading statistics, recomputed from
// the full record set on every call. All fields default to zero for an
// identity with no records; nothing here can fail on valid input.
type Snapshot struct {
	ChaptersRead         int     `json:"chapters_read"`
	VersesRead           int     `json:"verses_read"`
	TotalTimeSeconds     int     `json:"total_time_seconds"`
	AverageSpeedWpm      float64 `json:"average_speed_wpm"`
	CurrentStreakDays    int     `json:"current_streak_days"`
	LongestStreakDays    int     `json:"longest_streak_days"`
	CompletionPercentage int     `json:"completion_percentage"`
	ChaptersRemaining    int     `json:"chapters_remaining"`

	// VersesRemaining may go negative when client-supplied verse totals
	// are overstated; it is reported as-is, not clamped.
	VersesRemaining int `json:"verses_remaining"`

	// EstimatedCompletionMinutes is VersesRemaining divided by the average
	// speed, 0 when no speed data exists.
	EstimatedCompletionMinutes float64 `json:"estimated_completion_minutes"`
}

// Aggregate rolls all of an identity's records into one Snapshot.
// A chapter counts as read as soon as any record exists for it, whether or
// not it is marked completed; the upsert invariant guarantees at most one
// record per chapter, so a plain count is a distinct count.
func Aggregate(records []*Record, now time.Time) Snapshot {
	var s Snapshot

	var speedSum float64
	var speedCount int
	for _, r := range records {
		s.ChaptersRead++
		s.VersesRead += r.VersesRead
		s.TotalTimeSeconds += r.TotalTimeSeconds
		if r.ReadingSpeedWpm > 0 {
			speedSum += r.ReadingSpeedWpm
			speedCount++
		}
	}

	if speedCount > 0 {
		s.AverageSpeedWpm = speedSum / float64(speedCount)
	}

	s.CurrentStreakDays, s.LongestStreakDays = Streaks(records, now)

	s.CompletionPercentage = int(math.Round(float64(s.ChaptersRead) / TotalChapters * 100))
	s.ChaptersRemaining = TotalChapters - s.ChaptersRead
	s.VersesRemaining = TotalVerses - s.VersesRead

	if s.AverageSpeedWpm > 0 {
		s.EstimatedCompletionMinutes = float64(s.VersesRemaining) / s.AverageSpeedWpm
	}

	return s
}
