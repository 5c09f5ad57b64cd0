// Package reading contains the core domain model for tracking a reader's
// progress through the 150 chapters of Tehillim: the progress record and
// its identity semantics, streak derivation, and statistics aggregation.
package reading

import (
	"strings"
	"time"

	"github.com/analist0/tehillim-hub/internal/domain/shared"
)

// Fixed dimensions of the text.
const (
	// TotalChapters is the number of chapters in Tehillim.
	TotalChapters = 150

	// TotalVerses is the total verse count across all chapters.
	TotalVerses = 2461
)

// Identity scopes progress data to one reader. Either an authenticated user
// handle, an anonymous session handle, or both (an authenticated user whose
// browser still carries its pre-login session token).
type Identity struct {
	UserHandle    string
	SessionHandle string
}

// NewIdentity builds an Identity from the raw handles, trimming whitespace.
func NewIdentity(userHandle, sessionHandle string) Identity {
	return Identity{
		UserHandle:    strings.TrimSpace(userHandle),
		SessionHandle: strings.TrimSpace(sessionHandle),
	}
}

// Key returns the uniqueness key for progress rows: the user handle when
// present, otherwise the session handle. Keying on the resolved identity
// keeps one reader's rows together even when a session token is also known.
func (i Identity) Key() string {
	if i.UserHandle != "" {
		return i.UserHandle
	}
	return i.SessionHandle
}

// IsAnonymous reports whether no authenticated user handle is present.
func (i Identity) IsAnonymous() bool {
	return i.UserHandle == ""
}

// IsZero reports whether the identity carries no handle at all.
func (i Identity) IsZero() bool {
	return i.UserHandle == "" && i.SessionHandle == ""
}

// Validate checks that the identity can scope progress data.
func (i Identity) Validate() error {
	if i.IsZero() {
		return shared.ErrMissingIdentity
	}
	return nil
}

// Fields carries the caller-supplied scalars of one progress update.
// Every value is a full replacement, not a delta: a chapter's VersesRead is
// that chapter's running total as the client knows it, and a smaller value
// in a later update legitimately overwrites a larger earlier one.
type Fields struct {
	Verse             int
	LetterIndex       int
	Completed         bool
	VersesRead        int
	TotalTimeSeconds  int
	ReadingSpeedWpm   float64
	CurrentStreakDays int
	LongestStreakDays int
}

// Validate rejects malformed update payloads before any write.
func (f Fields) Validate() error {
	if f.Verse < 0 || f.LetterIndex < 0 || f.VersesRead < 0 ||
		f.TotalTimeSeconds < 0 || f.ReadingSpeedWpm < 0 ||
		f.CurrentStreakDays < 0 || f.LongestStreakDays < 0 {
		return shared.ErrNegativeCounter
	}
	return nil
}

// Record is the stored state of one identity's reading of one chapter.
// At most one Record exists per (identity key, chapter); writes are
// full-row replacements keyed by that pair.
type Record struct {
	IdentityKey   string `json:"identity_key"`
	UserHandle    string `json:"user_handle,omitempty"`
	SessionHandle string `json:"session_handle,omitempty"`
	Chapter       int    `json:"chapter"`

	// Furthest position reached within the chapter. Last value wins;
	// the store does not enforce monotonic progress.
	Verse       int  `json:"verse"`
	LetterIndex int  `json:"letter_index"`
	Completed   bool `json:"completed"`

	// Whole-chapter running totals supplied by the client, overwritten
	// on every update.
	VersesRead       int     `json:"verses_read"`
	TotalTimeSeconds int     `json:"total_time_seconds"`
	ReadingSpeedWpm  float64 `json:"reading_speed_wpm"`

	// Client-side streak bookkeeping, stored as-is. The aggregate streak
	// is recomputed server-side from LastReadAt and never reads these.
	CurrentStreakDays int `json:"current_streak_days"`
	LongestStreakDays int `json:"longest_streak_days"`

	LastReadAt time.Time `json:"last_read_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ValidateChapter checks the chapter invariant.
func ValidateChapter(chapter int) error {
	if chapter < 1 || chapter > TotalChapters {
		return shared.ErrChapterOutOfRange
	}
	return nil
}

// NewRecord builds a Record from an update, stamping server-side times.
func NewRecord(identity Identity, chapter int, fields Fields, now time.Time) (*Record, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateChapter(chapter); err != nil {
		return nil, err
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	return &Record{
		IdentityKey:       identity.Key(),
		UserHandle:        identity.UserHandle,
		SessionHandle:     identity.SessionHandle,
		Chapter:           chapter,
		Verse:             fields.Verse,
		LetterIndex:       fields.LetterIndex,
		Completed:         fields.Completed,
		VersesRead:        fields.VersesRead,
		TotalTimeSeconds:  fields.TotalTimeSeconds,
		ReadingSpeedWpm:   fields.ReadingSpeedWpm,
		CurrentStreakDays: fields.CurrentStreakDays,
		LongestStreakDays: fields.LongestStreakDays,
		LastReadAt:        now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}
