package query

import (
	"context"

	"github.com/analist0/tehillim-hub/internal/domain/achievement"
	"github.com/analist0/tehillim-hub/internal/domain/shared"
)

// ListAchievementsHandler returns the full catalog partitioned into
// unlocked and still-locked for an identity.
type ListAchievementsHandler struct {
	engine *achievement.Engine
}

// NewListAchievementsHandler creates a ListAchievementsHandler.
func NewListAchievementsHandler(engine *achievement.Engine) *ListAchievementsHandler {
	return &ListAchievementsHandler{engine: engine}
}

// Handle lists achievements without evaluating or unlocking anything.
func (h *ListAchievementsHandler) Handle(ctx context.Context, identityKey string) (*achievement.Listing, error) {
	if identityKey == "" {
		return nil, shared.ErrMissingIdentity
	}
	listing, err := h.engine.List(ctx, identityKey)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}
