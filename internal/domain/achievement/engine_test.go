package achievement_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/analist0/tehillim-hub/internal/domain/achievement"
	"github.com/analist0/tehillim-hub/internal/domain/reading"
	"github.com/analist0/tehillim-hub/internal/infrastructure/persistence/memory"
	"github.com/analist0/tehillim-hub/pkg/timeutil"
)

func newEngine(t *testing.T, now time.Time) (*achievement.Engine, *memory.ProgressStore) {
	t.Helper()
	store := memory.NewProgressStore()
	ledger := memory.NewUnlockLedger()
	engine := achievement.NewEngine(achievement.DefaultCatalog(), store, ledger).
		WithClock(func() time.Time { return now })
	return engine, store
}

func writeChapters(t *testing.T, store *memory.ProgressStore, n int, day time.Time) {
	t.Helper()
	id := reading.NewIdentity("david", "")
	for ch := 1; ch <= n; ch++ {
		rec, err := reading.NewRecord(id, ch, reading.Fields{VersesRead: 5}, day)
		require.NoError(t, err)
		require.NoError(t, store.Upsert(context.Background(), rec))
	}
}

func ids(descs []achievement.Descriptor) []string {
	out := make([]string, len(descs))
	for i, d := range descs {
		out[i] = d.ID
	}
	return out
}

func TestCheckAndUnlock_FirstChapter(t *testing.T) {
	now := timeutil.Date(2026, 6, 10).Add(10 * time.Hour)
	engine, store := newEngine(t, now)
	writeChapters(t, store, 1, now)

	newly, err := engine.CheckAndUnlock(context.Background(), "david")
	require.NoError(t, err)
	assert.Contains(t, ids(newly), achievement.FirstChapter)
	assert.NotContains(t, ids(newly), achievement.Chapters10)
}

func TestCheckAndUnlock_SecondCallIsEmpty(t *testing.T) {
	now := timeutil.Date(2026, 6, 10).Add(10 * time.Hour)
	engine, store := newEngine(t, now)
	writeChapters(t, store, 12, now)

	first, err := engine.CheckAndUnlock(context.Background(), "david")
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := engine.CheckAndUnlock(context.Background(), "david")
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestCheckAndUnlock_NeverReturnsAlreadyUnlocked(t *testing.T) {
	now := timeutil.Date(2026, 6, 10).Add(10 * time.Hour)
	engine, store := newEngine(t, now)

	writeChapters(t, store, 1, now)
	first, err := engine.CheckAndUnlock(context.Background(), "david")
	require.NoError(t, err)
	require.Contains(t, ids(first), achievement.FirstChapter)

	writeChapters(t, store, 10, now)
	second, err := engine.CheckAndUnlock(context.Background(), "david")
	require.NoError(t, err)
	assert.Contains(t, ids(second), achievement.Chapters10)
	assert.NotContains(t, ids(second), achievement.FirstChapter)
}

func TestCheckAndUnlock_PrerequisiteRule(t *testing.T) {
	now := timeutil.Date(2026, 6, 10).Add(10 * time.Hour)
	engine, store := newEngine(t, now)

	// 50 chapters, but spread over a single day: no week streak yet.
	writeChapters(t, store, 50, now)
	newly, err := engine.CheckAndUnlock(context.Background(), "david")
	require.NoError(t, err)
	assert.Contains(t, ids(newly), achievement.Chapters50)
	assert.NotContains(t, ids(newly), achievement.FaithfulReader)

	// Seven consecutive reading days ending today.
	id := reading.NewIdentity("david", "")
	for d := 0; d < 7; d++ {
		day := timeutil.Date(2026, 6, 4+d).Add(9 * time.Hour)
		rec, err := reading.NewRecord(id, 60+d, reading.Fields{VersesRead: 3}, day)
		require.NoError(t, err)
		require.NoError(t, store.Upsert(context.Background(), rec))
	}

	newly, err = engine.CheckAndUnlock(context.Background(), "david")
	require.NoError(t, err)
	assert.Contains(t, ids(newly), achievement.Streak7)

	// FaithfulReader needs Streak7 already in the ledger when evaluated,
	// so it lands on the following check.
	newly, err = engine.CheckAndUnlock(context.Background(), "david")
	require.NoError(t, err)
	assert.Equal(t, []string{achievement.FaithfulReader}, ids(newly))
}

func TestCheckAndUnlock_DuplicateInsertAbsorbed(t *testing.T) {
	now := timeutil.Date(2026, 6, 10).Add(10 * time.Hour)
	store := memory.NewProgressStore()
	ledger := memory.NewUnlockLedger()

	// Pre-seed the ledger as if a concurrent request unlocked it first.
	_, err := ledger.Insert(context.Background(), achievement.Unlock{
		IdentityKey:   "david",
		AchievementID: achievement.FirstChapter,
		UnlockedAt:    now,
	})
	require.NoError(t, err)

	engine := achievement.NewEngine(achievement.DefaultCatalog(), store, ledger).
		WithClock(func() time.Time { return now })
	writeChapters(t, store, 1, now)

	newly, err := engine.CheckAndUnlock(context.Background(), "david")
	require.NoError(t, err)
	assert.NotContains(t, ids(newly), achievement.FirstChapter)
}

func TestList_PartitionsCatalog(t *testing.T) {
	now := timeutil.Date(2026, 6, 10).Add(10 * time.Hour)
	engine, store := newEngine(t, now)
	writeChapters(t, store, 1, now)

	_, err := engine.CheckAndUnlock(context.Background(), "david")
	require.NoError(t, err)

	listing, err := engine.List(context.Background(), "david")
	require.NoError(t, err)

	catalogSize := len(achievement.DefaultCatalog())
	assert.Len(t, listing.Unlocked, 1)
	assert.Len(t, listing.Locked, catalogSize-1)
	assert.Equal(t, achievement.FirstChapter, listing.Unlocked[0].ID)
	assert.Equal(t, now, listing.Unlocked[0].UnlockedAt)
}

func TestList_EmptyIdentity(t *testing.T) {
	engine, _ := newEngine(t, time.Now())

	listing, err := engine.List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, listing.Unlocked)
	assert.Len(t, listing.Locked, len(achievement.DefaultCatalog()))
}
