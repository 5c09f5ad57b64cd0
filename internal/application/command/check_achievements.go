package command

import (
	"context"

	"github.com/analist0/tehillim-hub/internal/domain/achievement"
	"github.com/analist0/tehillim-hub/internal/domain/shared"
)

// CheckAchievementsRequest identifies whose achievements to evaluate.
type CheckAchievementsRequest struct {
	IdentityKey string `json:"-"`
}

// CheckAchievementsResult lists the achievements unlocked by this check.
// Previously unlocked achievements are never repeated here.
type CheckAchievementsResult struct {
	NewlyUnlocked []achievement.Descriptor `json:"newly_unlocked"`
}

// CheckAchievementsHandler evaluates the achievement catalog and persists
// any new unlocks.
type CheckAchievementsHandler struct {
	engine *achievement.Engine
}

// NewCheckAchievementsHandler creates a CheckAchievementsHandler.
func NewCheckAchievementsHandler(engine *achievement.Engine) *CheckAchievementsHandler {
	return &CheckAchievementsHandler{engine: engine}
}

// Handle runs one catalog evaluation for the identity.
func (h *CheckAchievementsHandler) Handle(ctx context.Context, req CheckAchievementsRequest) (*CheckAchievementsResult, error) {
	if req.IdentityKey == "" {
		return nil, shared.ErrMissingIdentity
	}

	unlocked, err := h.engine.CheckAndUnlock(ctx, req.IdentityKey)
	if err != nil {
		return nil, err
	}
	if unlocked == nil {
		unlocked = []achievement.Descriptor{}
	}
	return &CheckAchievementsResult{NewlyUnlocked: unlocked}, nil
}
