package query

import (
	"context"
	"time"

	"github.com/analist0/tehillim-hub/internal/domain/reading"
	"github.com/analist0/tehillim-hub/internal/domain/shared"
)

// GetStatisticsHandler aggregates an identity's full statistics snapshot.
// Statistics are always computed fresh from the progress rows; they are
// never cached, so a report and the statistics that follow it can never
// disagree.
type GetStatisticsHandler struct {
	records reading.Repository
	now     func() time.Time
}

// NewGetStatisticsHandler creates a GetStatisticsHandler.
func NewGetStatisticsHandler(records reading.Repository) *GetStatisticsHandler {
	return &GetStatisticsHandler{records: records, now: time.Now}
}

// WithClock overrides the handler clock. Used by tests.
func (h *GetStatisticsHandler) WithClock(now func() time.Time) *GetStatisticsHandler {
	h.now = now
	return h
}

// Handle returns the aggregated snapshot. An identity with no progress
// gets the zero snapshot, not an error.
func (h *GetStatisticsHandler) Handle(ctx context.Context, identityKey string) (*reading.Snapshot, error) {
	if identityKey == "" {
		return nil, shared.ErrMissingIdentity
	}
	records, err := h.records.ListAll(ctx, identityKey)
	if err != nil {
		return nil, err
	}
	snapshot := reading.Aggregate(records, h.now())
	return &snapshot, nil
}
