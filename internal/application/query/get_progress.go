// Package query contains read-side application handlers. Handlers never
// mutate state; everything here is safe to call repeatedly.
package query

import (
	"context"

	"github.com/analist0/tehillim-hub/internal/domain/reading"
	"github.com/analist0/tehillim-hub/internal/domain/shared"
)

// GetProgressRequest fetches stored progress for one chapter.
type GetProgressRequest struct {
	IdentityKey string
	Chapter     int
}

// GetProgressHandler reads one chapter's progress row.
type GetProgressHandler struct {
	records reading.Repository
}

// NewGetProgressHandler creates a GetProgressHandler.
func NewGetProgressHandler(records reading.Repository) *GetProgressHandler {
	return &GetProgressHandler{records: records}
}

// Handle returns the record, or ErrRecordNotFound when the identity has
// never reported progress for the chapter.
func (h *GetProgressHandler) Handle(ctx context.Context, req GetProgressRequest) (*reading.Record, error) {
	if req.IdentityKey == "" {
		return nil, shared.ErrMissingIdentity
	}
	if err := reading.ValidateChapter(req.Chapter); err != nil {
		return nil, err
	}
	return h.records.Get(ctx, req.IdentityKey, req.Chapter)
}

// ListProgressHandler reads every progress row for an identity.
type ListProgressHandler struct {
	records reading.Repository
}

// NewListProgressHandler creates a ListProgressHandler.
func NewListProgressHandler(records reading.Repository) *ListProgressHandler {
	return &ListProgressHandler{records: records}
}

// Handle returns all records for the identity, possibly empty.
func (h *ListProgressHandler) Handle(ctx context.Context, identityKey string) ([]*reading.Record, error) {
	if identityKey == "" {
		return nil, shared.ErrMissingIdentity
	}
	records, err := h.records.ListAll(ctx, identityKey)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*reading.Record{}
	}
	return records, nil
}
