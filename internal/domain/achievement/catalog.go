// Package achievement implements the badge catalog and the rule engine that
// unlocks badges when an identity's aggregate statistics cross a threshold.
package achievement

import (
	"time"

	"github.com/analist0/tehillim-hub/internal/domain/reading"
)

// Facts is what a predicate sees: the statistics snapshot plus the set of
// already-unlocked achievement IDs, which enables prerequisite-style rules.
type Facts struct {
	Snapshot reading.Snapshot
	Unlocked map[string]bool
}

// Definition is an immutable catalog entry. The catalog is process-wide
// read-only configuration, loaded once and never mutated at runtime.
type Definition struct {
	ID          string
	Title       string
	Description string
	Predicate   func(Facts) bool
}

// Unlock is one ledger row: at most one exists per (identity, achievement),
// append-only, never updated or deleted.
type Unlock struct {
	IdentityKey   string
	AchievementID string
	UnlockedAt    time.Time
}

// Descriptor is the display shape of a catalog entry.
type Descriptor struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Descriptor returns the display shape of the definition.
func (d Definition) Descriptor() Descriptor {
	return Descriptor{ID: d.ID, Title: d.Title, Description: d.Description}
}

// Achievement IDs.
const (
	FirstChapter   = "first_chapter"
	Chapters10     = "chapters_10"
	Chapters50     = "chapters_50"
	Chapters100    = "chapters_100"
	FullBook       = "full_book"
	Streak3        = "streak_3"
	Streak7        = "streak_7"
	Streak30       = "streak_30"
	Verses500      = "verses_500"
	Verses1000     = "verses_1000"
	SwiftReader    = "swift_reader"
	FaithfulReader = "faithful_reader"
)

// DefaultCatalog returns the full achievement catalog.
func DefaultCatalog() []Definition {
	return []Definition{
		{
			ID:          FirstChapter,
			Title:       "First Steps",
			Description: "Read your first chapter of Tehillim",
			Predicate:   func(f Facts) bool { return f.Snapshot.ChaptersRead >= 1 },
		},
		{
			ID:          Chapters10,
			Title:       "Getting Into It",
			Description: "Read 10 chapters",
			Predicate:   func(f Facts) bool { return f.Snapshot.ChaptersRead >= 10 },
		},
		{
			ID:          Chapters50,
			Title:       "First Book Behind You",
			Description: "Read 50 chapters",
			Predicate:   func(f Facts) bool { return f.Snapshot.ChaptersRead >= 50 },
		},
		{
			ID:          Chapters100,
			Title:       "The Long Haul",
			Description: "Read 100 chapters",
			Predicate:   func(f Facts) bool { return f.Snapshot.ChaptersRead >= 100 },
		},
		{
			ID:          FullBook,
			Title:       "Sefer Complete",
			Description: "Read all 150 chapters",
			Predicate:   func(f Facts) bool { return f.Snapshot.ChaptersRead >= reading.TotalChapters },
		},
		{
			ID:          Streak3,
			Title:       "Three in a Row",
			Description: "Read on 3 consecutive days",
			Predicate:   func(f Facts) bool { return f.Snapshot.CurrentStreakDays >= 3 },
		},
		{
			ID:          Streak7,
			Title:       "A Full Week",
			Description: "Read on 7 consecutive days",
			Predicate:   func(f Facts) bool { return f.Snapshot.CurrentStreakDays >= 7 },
		},
		{
			ID:          Streak30,
			Title:       "Iron Habit",
			Description: "Read on 30 consecutive days",
			Predicate:   func(f Facts) bool { return f.Snapshot.CurrentStreakDays >= 30 },
		},
		{
			ID:          Verses500,
			Title:       "Five Hundred Verses",
			Description: "Read 500 verses in total",
			Predicate:   func(f Facts) bool { return f.Snapshot.VersesRead >= 500 },
		},
		{
			ID:          Verses1000,
			Title:       "A Thousand Verses",
			Description: "Read 1000 verses in total",
			Predicate:   func(f Facts) bool { return f.Snapshot.VersesRead >= 1000 },
		},
		{
			ID:          SwiftReader,
			Title:       "Swift Reader",
			Description: "Average above 150 words per minute across 10 chapters",
			Predicate: func(f Facts) bool {
				return f.Snapshot.AverageSpeedWpm > 150 && f.Snapshot.ChaptersRead >= 10
			},
		},
		{
			// Prerequisite-style rule: builds on two earlier badges.
			ID:          FaithfulReader,
			Title:       "Faithful Reader",
			Description: "Hold a week-long streak after finishing 50 chapters",
			Predicate: func(f Facts) bool {
				return f.Unlocked[Streak7] && f.Unlocked[Chapters50]
			},
		},
	}
}
