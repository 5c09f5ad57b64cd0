package query

import (
	"context"
	"time"

	"github.com/analist0/tehillim-hub/internal/domain/cycle"
	"github.com/analist0/tehillim-hub/internal/domain/reading"
	"github.com/analist0/tehillim-hub/pkg/timeutil"
)

// DailyCache is the advisory cache for the daily recommendation. Any error
// from it is treated as a miss; the recommendation is cheap to recompute.
type DailyCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// DailyReading is the recommendation for one calendar day: the monthly
// plan portion plus the study-cycle position. It is identical for every
// identity, which is what makes it cacheable.
type DailyReading struct {
	Date          string          `json:"date"`
	Portion       reading.Portion `json:"portion"`
	CyclePosition cycle.Position  `json:"cycle_position"`
}

// GetDailyReadingHandler computes the daily recommendation with a
// read-through cache that expires at local midnight.
type GetDailyReadingHandler struct {
	calc     *cycle.Calculator
	cache    DailyCache
	cacheKey func(day string) string
	now      func() time.Time
}

// NewGetDailyReadingHandler creates a GetDailyReadingHandler. cache may be
// nil, in which case every call recomputes.
func NewGetDailyReadingHandler(calc *cycle.Calculator, cache DailyCache) *GetDailyReadingHandler {
	return &GetDailyReadingHandler{
		calc:     calc,
		cache:    cache,
		cacheKey: func(day string) string { return "daily:" + day },
		now:      timeutil.Now,
	}
}

// WithClock overrides the handler clock. Used by tests.
func (h *GetDailyReadingHandler) WithClock(now func() time.Time) *GetDailyReadingHandler {
	h.now = now
	return h
}

// Handle returns today's recommendation.
func (h *GetDailyReadingHandler) Handle(ctx context.Context) (*DailyReading, error) {
	now := timeutil.ToLocal(h.now())
	day := timeutil.DayKey(now)
	key := h.cacheKey(day)

	if h.cache != nil {
		var cached DailyReading
		if err := h.cache.Get(ctx, key, &cached); err == nil && cached.Date == day {
			return &cached, nil
		}
	}

	result := &DailyReading{
		Date:          day,
		Portion:       reading.PortionFor(now),
		CyclePosition: h.calc.PositionAt(now),
	}

	if h.cache != nil {
		ttl := timeutil.UntilMidnight(now)
		// A failed write only costs the next caller a recompute.
		_ = h.cache.Set(ctx, key, result, ttl)
	}
	return result, nil
}
