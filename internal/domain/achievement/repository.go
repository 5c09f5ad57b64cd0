package achievement

import (
	"context"
)

// Ledger persists achievement unlocks. Implementations must absorb
// duplicate inserts for the same (identity, achievement) silently: the
// uniqueness constraint is the at-most-once guarantee under concurrent
// unlock attempts.
type Ledger interface {
	// ListUnlocked returns all unlocks for the identity key.
	ListUnlocked(ctx context.Context, identityKey string) ([]Unlock, error)

	// Insert appends one unlock row. Returns (false, nil) when the row
	// already existed, (true, nil) when this call created it.
	Insert(ctx context.Context, unlock Unlock) (bool, error)
}
