package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/analist0/tehillim-hub/internal/domain/achievement"
	"github.com/analist0/tehillim-hub/internal/domain/shared"
)

// AchievementRepository implements achievement.Ledger for PostgreSQL.
type AchievementRepository struct {
	conn *Connection
}

// NewAchievementRepository creates a new AchievementRepository.
func NewAchievementRepository(conn *Connection) *AchievementRepository {
	return &AchievementRepository{conn: conn}
}

// ListUnlocked returns all unlocks for the identity key.
func (r *AchievementRepository) ListUnlocked(ctx context.Context, identityKey string) ([]achievement.Unlock, error) {
	query := `
		SELECT identity_key, achievement_id, unlocked_at
		FROM achievement_unlocks
		WHERE identity_key = $1
		ORDER BY unlocked_at
	`

	rows, err := r.conn.Query(ctx, query, identityKey)
	if err != nil {
		return nil, shared.WrapError("achievement", "ListUnlocked", shared.ErrStorage, "failed to list unlocks", err)
	}
	defer rows.Close()

	var unlocks []achievement.Unlock
	for rows.Next() {
		var u achievement.Unlock
		if err := rows.Scan(&u.IdentityKey, &u.AchievementID, &u.UnlockedAt); err != nil {
			return nil, shared.WrapError("achievement", "ListUnlocked", shared.ErrStorage, "failed to scan unlock row", err)
		}
		unlocks = append(unlocks, u)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.WrapError("achievement", "ListUnlocked", shared.ErrStorage, "failed to iterate unlock rows", err)
	}

	return unlocks, nil
}

// Insert appends one unlock row. ON CONFLICT DO NOTHING makes a duplicate
// attempt for the same (identity, achievement) a silent no-op: the returned
// bool distinguishes the winning writer from everyone else, so concurrent
// triggers never double-report a badge.
func (r *AchievementRepository) Insert(ctx context.Context, unlock achievement.Unlock) (bool, error) {
	query := `
		INSERT INTO achievement_unlocks (id, identity_key, achievement_id, unlocked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (identity_key, achievement_id) DO NOTHING
	`

	tag, err := r.conn.Exec(ctx, query,
		uuid.NewString(),
		unlock.IdentityKey,
		unlock.AchievementID,
		unlock.UnlockedAt,
	)
	if err != nil {
		// The UUID primary key can still collide; that duplicate is the
		// same "someone else won" outcome as the conflict clause.
		if IsUniqueViolation(err) {
			return false, nil
		}
		return false, shared.WrapError("achievement", "Insert", shared.ErrStorage, "failed to insert unlock", err)
	}

	return tag.RowsAffected() == 1, nil
}
