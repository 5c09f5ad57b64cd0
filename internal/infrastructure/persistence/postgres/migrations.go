package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: READING PROGRESS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create reading progress table
-- Version: 001

CREATE TABLE IF NOT EXISTS reading_progress (
    identity_key VARCHAR(128) NOT NULL,
    user_handle VARCHAR(128) NOT NULL DEFAULT '',
    session_handle VARCHAR(128) NOT NULL DEFAULT '',
    chapter INTEGER NOT NULL,
    verse INTEGER NOT NULL DEFAULT 0,
    letter_index INTEGER NOT NULL DEFAULT 0,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    verses_read INTEGER NOT NULL DEFAULT 0,
    total_time_seconds INTEGER NOT NULL DEFAULT 0,
    reading_speed_wpm DOUBLE PRECISION NOT NULL DEFAULT 0,
    current_streak_days INTEGER NOT NULL DEFAULT 0,
    longest_streak_days INTEGER NOT NULL DEFAULT 0,
    last_read_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    -- One row per reader per chapter; upserts replace the whole row.
    PRIMARY KEY (identity_key, chapter),

    CONSTRAINT valid_chapter CHECK (chapter >= 1 AND chapter <= 150),
    CONSTRAINT valid_counters CHECK (
        verse >= 0 AND letter_index >= 0 AND verses_read >= 0 AND
        total_time_seconds >= 0 AND reading_speed_wpm >= 0 AND
        current_streak_days >= 0 AND longest_streak_days >= 0
    )
);

CREATE INDEX IF NOT EXISTS idx_reading_progress_identity ON reading_progress(identity_key);
CREATE INDEX IF NOT EXISTS idx_reading_progress_last_read ON reading_progress(identity_key, last_read_at DESC);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: ACHIEVEMENT UNLOCKS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create achievement unlock ledger
-- Version: 002

CREATE TABLE IF NOT EXISTS achievement_unlocks (
    id UUID PRIMARY KEY,
    identity_key VARCHAR(128) NOT NULL,
    achievement_id VARCHAR(64) NOT NULL,
    unlocked_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    -- The at-most-once guarantee for concurrent unlock attempts.
    CONSTRAINT uq_identity_achievement UNIQUE (identity_key, achievement_id)
);

CREATE INDEX IF NOT EXISTS idx_achievement_unlocks_identity ON achievement_unlocks(identity_key);
`

// Migrations returns all embedded migrations in order.
func Migrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_reading_progress", UpSQL: migration001Up},
		{Version: 2, Name: "create_achievement_unlocks", UpSQL: migration002Up},
	}
}
