package achievement

import (
	"context"
	"fmt"
	"time"

	"github.com/analist0/tehillim-hub/internal/domain/reading"
)

// Engine evaluates unlock rules against an identity's statistics and
// persists new unlocks idempotently.
type Engine struct {
	catalog []Definition
	records reading.Repository
	ledger  Ledger
	now     func() time.Time
}

// NewEngine creates an Engine over the given catalog.
func NewEngine(catalog []Definition, records reading.Repository, ledger Ledger) *Engine {
	return &Engine{
		catalog: catalog,
		records: records,
		ledger:  ledger,
		now:     time.Now,
	}
}

// WithClock overrides the engine's clock. Tests only.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// CheckAndUnlock recomputes the identity's snapshot, evaluates every
// not-yet-unlocked definition against it, persists the qualifying unlocks,
// and returns their descriptors. A definition whose ledger insert lost a
// duplicate race is excluded from the result, so a concurrent retry never
// reports the same badge twice. With no intervening progress changes the
// result is empty.
func (e *Engine) CheckAndUnlock(ctx context.Context, identityKey string) ([]Descriptor, error) {
	records, err := e.records.ListAll(ctx, identityKey)
	if err != nil {
		return nil, fmt.Errorf("achievement: load records: %w", err)
	}
	snapshot := reading.Aggregate(records, e.now())

	unlocks, err := e.ledger.ListUnlocked(ctx, identityKey)
	if err != nil {
		return nil, fmt.Errorf("achievement: load ledger: %w", err)
	}
	unlocked := make(map[string]bool, len(unlocks))
	for _, u := range unlocks {
		unlocked[u.AchievementID] = true
	}

	facts := Facts{Snapshot: snapshot, Unlocked: unlocked}

	newly := make([]Descriptor, 0)
	for _, def := range e.catalog {
		if unlocked[def.ID] {
			continue
		}
		if !def.Predicate(facts) {
			continue
		}

		inserted, err := e.ledger.Insert(ctx, Unlock{
			IdentityKey:   identityKey,
			AchievementID: def.ID,
			UnlockedAt:    e.now(),
		})
		if err != nil {
			return nil, fmt.Errorf("achievement: persist unlock %s: %w", def.ID, err)
		}
		if inserted {
			newly = append(newly, def.Descriptor())
		}
	}

	return newly, nil
}

// Listing partitions the catalog into unlocked and locked entries.
type Listing struct {
	Unlocked []UnlockedEntry `json:"unlocked"`
	Locked   []Descriptor    `json:"locked"`
}

// UnlockedEntry is a descriptor plus its unlock time.
type UnlockedEntry struct {
	Descriptor
	UnlockedAt time.Time `json:"unlocked_at"`
}

// List partitions the full catalog for display. Pure read, no side effects.
func (e *Engine) List(ctx context.Context, identityKey string) (Listing, error) {
	unlocks, err := e.ledger.ListUnlocked(ctx, identityKey)
	if err != nil {
		return Listing{}, fmt.Errorf("achievement: load ledger: %w", err)
	}

	unlockedAt := make(map[string]time.Time, len(unlocks))
	for _, u := range unlocks {
		unlockedAt[u.AchievementID] = u.UnlockedAt
	}

	listing := Listing{
		Unlocked: make([]UnlockedEntry, 0, len(unlocks)),
		Locked:   make([]Descriptor, 0, len(e.catalog)),
	}
	for _, def := range e.catalog {
		if at, ok := unlockedAt[def.ID]; ok {
			listing.Unlocked = append(listing.Unlocked, UnlockedEntry{
				Descriptor: def.Descriptor(),
				UnlockedAt: at,
			})
		} else {
			listing.Locked = append(listing.Locked, def.Descriptor())
		}
	}

	return listing, nil
}
