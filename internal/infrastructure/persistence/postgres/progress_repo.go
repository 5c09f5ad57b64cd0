package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/analist0/tehillim-hub/internal/domain/reading"
	"github.com/analist0/tehillim-hub/internal/domain/shared"
)

// ProgressRepository implements reading.Repository for PostgreSQL.
type ProgressRepository struct {
	conn *Connection
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(conn *Connection) *ProgressRepository {
	return &ProgressRepository{conn: conn}
}

const progressColumns = `
	identity_key, user_handle, session_handle, chapter, verse, letter_index,
	completed, verses_read, total_time_seconds, reading_speed_wpm,
	current_streak_days, longest_streak_days, last_read_at, created_at, updated_at`

// Upsert writes or replaces the row for (identity_key, chapter) in a single
// atomic statement. Every scalar field is overwritten; created_at survives.
func (r *ProgressRepository) Upsert(ctx context.Context, rec *reading.Record) error {
	query := `
		INSERT INTO reading_progress (
			identity_key, user_handle, session_handle, chapter, verse, letter_index,
			completed, verses_read, total_time_seconds, reading_speed_wpm,
			current_streak_days, longest_streak_days, last_read_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (identity_key, chapter) DO UPDATE SET
			user_handle = EXCLUDED.user_handle,
			session_handle = EXCLUDED.session_handle,
			verse = EXCLUDED.verse,
			letter_index = EXCLUDED.letter_index,
			completed = EXCLUDED.completed,
			verses_read = EXCLUDED.verses_read,
			total_time_seconds = EXCLUDED.total_time_seconds,
			reading_speed_wpm = EXCLUDED.reading_speed_wpm,
			current_streak_days = EXCLUDED.current_streak_days,
			longest_streak_days = EXCLUDED.longest_streak_days,
			last_read_at = EXCLUDED.last_read_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.conn.Exec(ctx, query,
		rec.IdentityKey,
		rec.UserHandle,
		rec.SessionHandle,
		rec.Chapter,
		rec.Verse,
		rec.LetterIndex,
		rec.Completed,
		rec.VersesRead,
		rec.TotalTimeSeconds,
		rec.ReadingSpeedWpm,
		rec.CurrentStreakDays,
		rec.LongestStreakDays,
		rec.LastReadAt,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return shared.WrapError("reading", "Upsert", shared.ErrStorage, "failed to upsert progress", err)
	}

	return nil
}

// Get returns the record for (identity_key, chapter).
func (r *ProgressRepository) Get(ctx context.Context, identityKey string, chapter int) (*reading.Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM reading_progress WHERE identity_key = $1 AND chapter = $2`, progressColumns)

	row := r.conn.QueryRow(ctx, query, identityKey, chapter)
	rec, err := scanRecord(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrRecordNotFound
		}
		return nil, shared.WrapError("reading", "Get", shared.ErrStorage, "failed to get progress", err)
	}
	return rec, nil
}

// ListAll returns all records for the identity key, unordered.
func (r *ProgressRepository) ListAll(ctx context.Context, identityKey string) ([]*reading.Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM reading_progress WHERE identity_key = $1`, progressColumns)

	rows, err := r.conn.Query(ctx, query, identityKey)
	if err != nil {
		return nil, shared.WrapError("reading", "ListAll", shared.ErrStorage, "failed to list progress", err)
	}
	defer rows.Close()

	var records []*reading.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, shared.WrapError("reading", "ListAll", shared.ErrStorage, "failed to scan progress row", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.WrapError("reading", "ListAll", shared.ErrStorage, "failed to iterate progress rows", err)
	}

	return records, nil
}

// Rekey moves all rows from one identity key to another inside a single
// transaction. On a (key, chapter) conflict the row with the later
// updated_at wins; the losing session row is dropped either way.
func (r *ProgressRepository) Rekey(ctx context.Context, fromKey, toKey string) (int, error) {
	moved := 0
	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		// Drop target rows that lose to a fresher session row, so the
		// update below never collides on the primary key.
		_, err := tx.Exec(ctx, `
			DELETE FROM reading_progress AS dst
			WHERE dst.identity_key = $2
			  AND EXISTS (
				SELECT 1 FROM reading_progress AS src
				WHERE src.identity_key = $1
				  AND src.chapter = dst.chapter
				  AND src.updated_at > dst.updated_at
			  )
		`, fromKey, toKey)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE reading_progress AS src
			SET identity_key = $2, user_handle = $2
			WHERE src.identity_key = $1
			  AND NOT EXISTS (
				SELECT 1 FROM reading_progress AS dst
				WHERE dst.identity_key = $2
				  AND dst.chapter = src.chapter
			  )
		`, fromKey, toKey)
		if err != nil {
			return err
		}
		moved = int(tag.RowsAffected())

		_, err = tx.Exec(ctx, `DELETE FROM reading_progress WHERE identity_key = $1`, fromKey)
		return err
	})
	if err != nil {
		return 0, shared.WrapError("reading", "Rekey", shared.ErrStorage, "failed to merge identities", err)
	}
	return moved, nil
}

// scanRecord scans one row into a reading.Record.
func scanRecord(row pgx.Row) (*reading.Record, error) {
	var rec reading.Record
	err := row.Scan(
		&rec.IdentityKey,
		&rec.UserHandle,
		&rec.SessionHandle,
		&rec.Chapter,
		&rec.Verse,
		&rec.LetterIndex,
		&rec.Completed,
		&rec.VersesRead,
		&rec.TotalTimeSeconds,
		&rec.ReadingSpeedWpm,
		&rec.CurrentStreakDays,
		&rec.LongestStreakDays,
		&rec.LastReadAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
