// Package command contains write-side application handlers. Each handler
// validates its request, builds domain objects, and drives the repositories.
package command

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/analist0/tehillim-hub/internal/domain/reading"
	"github.com/analist0/tehillim-hub/internal/domain/shared"
	"github.com/analist0/tehillim-hub/pkg/retry"
)

// RecordProgressRequest carries a single progress report for one chapter.
// Client-supplied streak counters are stored verbatim but never trusted:
// the streak returned to the client is recomputed from server-side
// activity days.
type RecordProgressRequest struct {
	UserHandle        string  `json:"user_handle" validate:"omitempty,max=128"`
	SessionHandle     string  `json:"session_handle" validate:"omitempty,max=128"`
	Chapter           int     `json:"chapter" validate:"required,min=1,max=150"`
	Verse             int     `json:"verse" validate:"min=0"`
	LetterIndex       int     `json:"letter_index" validate:"min=0"`
	Completed         bool    `json:"completed"`
	VersesRead        int     `json:"verses_read" validate:"min=0"`
	TotalTimeSeconds  int     `json:"total_time_seconds" validate:"min=0"`
	ReadingSpeedWpm   float64 `json:"reading_speed_wpm" validate:"min=0"`
	CurrentStreakDays int     `json:"current_streak_days" validate:"min=0"`
	LongestStreakDays int     `json:"longest_streak_days" validate:"min=0"`
}

// RecordProgressResult is the stored state after the upsert, with the
// recomputed streaks.
type RecordProgressResult struct {
	Record            reading.Record `json:"record"`
	CurrentStreakDays int            `json:"current_streak_days"`
	LongestStreakDays int            `json:"longest_streak_days"`
}

// RecordProgressHandler handles progress reports.
type RecordProgressHandler struct {
	records  reading.Repository
	validate *validator.Validate
	retryCfg retry.Config
	now      func() time.Time
}

// NewRecordProgressHandler creates a RecordProgressHandler.
func NewRecordProgressHandler(records reading.Repository) *RecordProgressHandler {
	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = 3
	return &RecordProgressHandler{
		records:  records,
		validate: validator.New(),
		retryCfg: cfg,
		now:      time.Now,
	}
}

// WithClock overrides the handler clock. Used by tests.
func (h *RecordProgressHandler) WithClock(now func() time.Time) *RecordProgressHandler {
	h.now = now
	return h
}

// Handle validates the request and upserts the progress row. The upsert is
// full-row last-write-wins, so retrying it is safe.
func (h *RecordProgressHandler) Handle(ctx context.Context, req RecordProgressRequest) (*RecordProgressResult, error) {
	if err := h.validate.Struct(req); err != nil {
		return nil, shared.WrapError("reading", "record_progress", shared.ErrValidation, "invalid progress payload", err)
	}

	identity := reading.NewIdentity(req.UserHandle, req.SessionHandle)
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	record, err := reading.NewRecord(identity, req.Chapter, reading.Fields{
		Verse:             req.Verse,
		LetterIndex:       req.LetterIndex,
		Completed:         req.Completed,
		VersesRead:        req.VersesRead,
		TotalTimeSeconds:  req.TotalTimeSeconds,
		ReadingSpeedWpm:   req.ReadingSpeedWpm,
		CurrentStreakDays: req.CurrentStreakDays,
		LongestStreakDays: req.LongestStreakDays,
	}, h.now())
	if err != nil {
		return nil, err
	}

	err = retry.Do(ctx, h.retryCfg, func(ctx context.Context) error {
		if err := h.records.Upsert(ctx, record); err != nil {
			// Only storage-level failures are worth another attempt.
			if !shared.IsStorage(err) {
				return retry.Permanent(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Echo the row as stored: an overwrite keeps the original CreatedAt,
	// which the record built above does not carry.
	stored, err := h.records.Get(ctx, identity.Key(), req.Chapter)
	if err != nil {
		return nil, err
	}

	all, err := h.records.ListAll(ctx, identity.Key())
	if err != nil {
		return nil, err
	}
	current, longest := reading.Streaks(all, h.now())

	return &RecordProgressResult{
		Record:            *stored,
		CurrentStreakDays: current,
		LongestStreakDays: longest,
	}, nil
}
