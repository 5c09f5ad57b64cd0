// Package memory implements in-process persistence for development mode and
// tests. It honors the same contracts as the postgres implementations:
// atomic last-write-wins upserts and at-most-once unlock inserts.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/analist0/tehillim-hub/internal/domain/achievement"
	"github.com/analist0/tehillim-hub/internal/domain/reading"
	"github.com/analist0/tehillim-hub/internal/domain/shared"
)

// ProgressStore is an in-memory reading.Repository.
type ProgressStore struct {
	mu      sync.RWMutex
	records map[string]*reading.Record // key: identityKey + "/" + chapter
}

// NewProgressStore creates an empty ProgressStore.
func NewProgressStore() *ProgressStore {
	return &ProgressStore{records: make(map[string]*reading.Record)}
}

func progressKey(identityKey string, chapter int) string {
	return fmt.Sprintf("%s/%d", identityKey, chapter)
}

// Upsert replaces the row for (identity, chapter), preserving CreatedAt.
func (s *ProgressStore) Upsert(ctx context.Context, record *reading.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := progressKey(record.IdentityKey, record.Chapter)
	stored := *record
	if prev, ok := s.records[key]; ok {
		stored.CreatedAt = prev.CreatedAt
	}
	s.records[key] = &stored
	return nil
}

// Get returns the stored record or shared.ErrRecordNotFound.
func (s *ProgressStore) Get(ctx context.Context, identityKey string, chapter int) (*reading.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[progressKey(identityKey, chapter)]
	if !ok {
		return nil, shared.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

// ListAll returns all records for the identity key, unordered.
func (s *ProgressStore) ListAll(ctx context.Context, identityKey string) ([]*reading.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*reading.Record
	for _, rec := range s.records {
		if rec.IdentityKey == identityKey {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Rekey moves records between identity keys; on a chapter conflict the row
// with the later UpdatedAt wins.
func (s *ProgressStore) Rekey(ctx context.Context, fromKey, toKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved := 0
	for key, rec := range s.records {
		if rec.IdentityKey != fromKey {
			continue
		}
		target := progressKey(toKey, rec.Chapter)
		if existing, ok := s.records[target]; ok && !existing.UpdatedAt.Before(rec.UpdatedAt) {
			delete(s.records, key)
			continue
		}
		cp := *rec
		cp.IdentityKey = toKey
		cp.UserHandle = toKey
		s.records[target] = &cp
		delete(s.records, key)
		moved++
	}
	return moved, nil
}

// Count returns the total number of stored rows. Tests only.
func (s *ProgressStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// UnlockLedger is an in-memory achievement.Ledger.
type UnlockLedger struct {
	mu      sync.RWMutex
	unlocks map[string]achievement.Unlock // key: identityKey + "/" + achievementID
}

// NewUnlockLedger creates an empty UnlockLedger.
func NewUnlockLedger() *UnlockLedger {
	return &UnlockLedger{unlocks: make(map[string]achievement.Unlock)}
}

// ListUnlocked returns all unlocks for the identity key.
func (l *UnlockLedger) ListUnlocked(ctx context.Context, identityKey string) ([]achievement.Unlock, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []achievement.Unlock
	for _, u := range l.unlocks {
		if u.IdentityKey == identityKey {
			out = append(out, u)
		}
	}
	return out, nil
}

// Insert appends one unlock row; duplicates are absorbed, not errors.
func (l *UnlockLedger) Insert(ctx context.Context, unlock achievement.Unlock) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := unlock.IdentityKey + "/" + unlock.AchievementID
	if _, ok := l.unlocks[key]; ok {
		return false, nil
	}
	l.unlocks[key] = unlock
	return true, nil
}
