package reading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/analist0/tehillim-hub/pkg/timeutil"
)

// recordOn builds a minimal record with activity on the given day.
func recordOn(chapter int, day time.Time) *Record {
	return &Record{
		IdentityKey: "david",
		Chapter:     chapter,
		LastReadAt:  day.Add(9 * time.Hour),
	}
}

func TestStreaks_Empty(t *testing.T) {
	current, longest := Streaks(nil, timeutil.Now())
	assert.Equal(t, 0, current)
	assert.Equal(t, 0, longest)
}

func TestStreaks_SingleDayToday(t *testing.T) {
	today := timeutil.StartOfDay(timeutil.Date(2026, 6, 10))
	records := []*Record{recordOn(1, today)}

	current, longest := Streaks(records, today.Add(12*time.Hour))
	assert.Equal(t, 1, current)
	assert.Equal(t, 1, longest)
}

func TestStreaks_RunEndingYesterdayStillCurrent(t *testing.T) {
	now := timeutil.Date(2026, 6, 10).Add(8 * time.Hour)
	records := []*Record{
		recordOn(1, timeutil.Date(2026, 6, 7)),
		recordOn(2, timeutil.Date(2026, 6, 8)),
		recordOn(3, timeutil.Date(2026, 6, 9)), // yesterday
	}

	current, longest := Streaks(records, now)
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)
}

func TestStreaks_BrokenRunNotCurrent(t *testing.T) {
	now := timeutil.Date(2026, 6, 10).Add(8 * time.Hour)
	records := []*Record{
		recordOn(1, timeutil.Date(2026, 6, 5)),
		recordOn(2, timeutil.Date(2026, 6, 6)),
		recordOn(3, timeutil.Date(2026, 6, 7)),
		// nothing on the 8th or 9th
	}

	current, longest := Streaks(records, now)
	assert.Equal(t, 0, current)
	assert.Equal(t, 3, longest)
}

func TestStreaks_ParallelChaptersMergeIntoOneRun(t *testing.T) {
	// Activity on different chapters on consecutive days forms one streak.
	now := timeutil.Date(2026, 6, 4).Add(20 * time.Hour)
	records := []*Record{
		recordOn(10, timeutil.Date(2026, 6, 1)),
		recordOn(55, timeutil.Date(2026, 6, 2)),
		recordOn(10, timeutil.Date(2026, 6, 3)),
		recordOn(90, timeutil.Date(2026, 6, 4)),
	}

	current, longest := Streaks(records, now)
	assert.Equal(t, 4, current)
	assert.Equal(t, 4, longest)
}

func TestStreaks_SameDayActivityCountsOnce(t *testing.T) {
	day := timeutil.Date(2026, 6, 10)
	records := []*Record{
		recordOn(1, day),
		recordOn(2, day),
		recordOn(3, day),
	}

	current, longest := Streaks(records, day.Add(15*time.Hour))
	assert.Equal(t, 1, current)
	assert.Equal(t, 1, longest)
}

func TestStreaks_LongestSurvivesLaterShortRuns(t *testing.T) {
	now := timeutil.Date(2026, 7, 2).Add(10 * time.Hour)
	records := []*Record{
		// five-day run in June
		recordOn(1, timeutil.Date(2026, 6, 1)),
		recordOn(2, timeutil.Date(2026, 6, 2)),
		recordOn(3, timeutil.Date(2026, 6, 3)),
		recordOn(4, timeutil.Date(2026, 6, 4)),
		recordOn(5, timeutil.Date(2026, 6, 5)),
		// fresh two-day run ending today
		recordOn(6, timeutil.Date(2026, 7, 1)),
		recordOn(7, timeutil.Date(2026, 7, 2)),
	}

	current, longest := Streaks(records, now)
	assert.Equal(t, 2, current)
	assert.Equal(t, 5, longest)
}

func TestStreaks_ClientCountersAreIgnored(t *testing.T) {
	// A stale high per-record counter must not leak into the aggregate.
	now := timeutil.Date(2026, 6, 10).Add(10 * time.Hour)
	rec := recordOn(1, timeutil.Date(2026, 6, 1))
	rec.CurrentStreakDays = 99
	rec.LongestStreakDays = 99

	current, longest := Streaks([]*Record{rec}, now)
	assert.Equal(t, 0, current)
	assert.Equal(t, 1, longest)
}
