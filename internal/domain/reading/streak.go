package reading

import (
	"sort"
	"time"

	"github.com/analist0/tehillim-hub/pkg/timeutil"
)

// Streaks derives the current and longest reading streaks from the set of
// distinct activity days across all of an identity's records.
//
// A streak is a run of consecutive calendar days with qualifying activity on
// any chapter. The current streak is the run ending today or yesterday
// (yesterday keeps a streak alive until the reader misses a full day);
// the longest streak is the longest run ever.
//
// This deliberately ignores the client-supplied per-record streak counters:
// a stale high value on one chapter must not overstate the aggregate, and
// activity spread across chapters must merge into one continuous streak.
func Streaks(records []*Record, now time.Time) (current, longest int) {
	days := activityDays(records)
	if len(days) == 0 {
		return 0, 0
	}

	runEnd := days[len(days)-1]
	run := 1
	for i := len(days) - 1; i > 0; i-- {
		if timeutil.DaysBetween(days[i-1], days[i]) == 1 {
			run++
			continue
		}
		if run > longest {
			longest = run
		}
		run = 1
	}
	if run > longest {
		longest = run
	}

	// The trailing run counts as current only if it reaches today or
	// yesterday; runEnd is the last activity day overall.
	gap := timeutil.DaysBetween(runEnd, now)
	if gap <= 1 {
		current = trailingRun(days)
	}

	return current, longest
}

// activityDays reduces record timestamps to a sorted slice of distinct
// calendar days (start-of-day in the community timezone).
func activityDays(records []*Record) []time.Time {
	seen := make(map[string]time.Time, len(records))
	for _, r := range records {
		if r.LastReadAt.IsZero() {
			continue
		}
		key := timeutil.DayKey(r.LastReadAt)
		if _, ok := seen[key]; !ok {
			seen[key] = timeutil.StartOfDay(r.LastReadAt)
		}
	}

	days := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// trailingRun counts the consecutive-day run at the end of the sorted days.
func trailingRun(days []time.Time) int {
	run := 1
	for i := len(days) - 1; i > 0; i-- {
		if timeutil.DaysBetween(days[i-1], days[i]) != 1 {
			break
		}
		run++
	}
	return run
}
