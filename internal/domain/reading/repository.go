package reading

import (
	"context"
)

// Repository persists progress records. Implementations must make Upsert a
// single atomic row write: last-write-wins replacement of all scalar fields,
// no partial-field state ever observable.
type Repository interface {
	// Upsert writes or replaces the record for (record.IdentityKey,
	// record.Chapter). CreatedAt is preserved on replacement.
	Upsert(ctx context.Context, record *Record) error

	// Get returns the record for (identity key, chapter), or
	// shared.ErrRecordNotFound when absent.
	Get(ctx context.Context, identityKey string, chapter int) (*Record, error)

	// ListAll returns all records for the identity key, unordered.
	ListAll(ctx context.Context, identityKey string) ([]*Record, error)

	// Rekey moves all records from one identity key to another, used when
	// an anonymous session authenticates. On a (key, chapter) conflict the
	// row with the later UpdatedAt wins. Returns the number of moved rows.
	Rekey(ctx context.Context, fromKey, toKey string) (int, error)
}
