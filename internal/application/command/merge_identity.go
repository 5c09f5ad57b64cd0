package command

import (
	"context"
	"strings"

	"github.com/analist0/tehillim-hub/internal/domain/reading"
	"github.com/analist0/tehillim-hub/internal/domain/shared"
)

// MergeIdentityRequest asks to fold an anonymous session's progress into a
// named user. Rows that collide on chapter keep whichever side was updated
// most recently.
type MergeIdentityRequest struct {
	SessionHandle string `json:"session_handle"`
	UserHandle    string `json:"user_handle"`
}

// MergeIdentityResult reports how many rows moved.
type MergeIdentityResult struct {
	MergedChapters int `json:"merged_chapters"`
}

// MergeIdentityHandler rekeys session-scoped progress onto a user handle.
type MergeIdentityHandler struct {
	records reading.Repository
}

// NewMergeIdentityHandler creates a MergeIdentityHandler.
func NewMergeIdentityHandler(records reading.Repository) *MergeIdentityHandler {
	return &MergeIdentityHandler{records: records}
}

// Handle moves all rows keyed by the session handle under the user handle.
// Merging an identity into itself is rejected.
func (h *MergeIdentityHandler) Handle(ctx context.Context, req MergeIdentityRequest) (*MergeIdentityResult, error) {
	session := strings.TrimSpace(req.SessionHandle)
	user := strings.TrimSpace(req.UserHandle)
	if session == "" || user == "" {
		return nil, shared.NewDomainError("reading", "merge_identity", shared.ErrInvalidInput,
			"both session_handle and user_handle are required")
	}
	if session == user {
		return nil, shared.NewDomainError("reading", "merge_identity", shared.ErrInvalidInput,
			"cannot merge an identity into itself")
	}

	moved, err := h.records.Rekey(ctx, session, user)
	if err != nil {
		return nil, err
	}
	return &MergeIdentityResult{MergedChapters: moved}, nil
}
