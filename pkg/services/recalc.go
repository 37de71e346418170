package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// triggerRecalc runs a risk recomputation after a committed workflow action
// and reports whether it succeeded. A failed recomputation is logged, never
// propagated: the business change already happened and the next recomputation
// heals the score.
func triggerRecalc(ctx context.Context, recalc RiskRecalculator, logger *zap.Logger, projectID uuid.UUID, userID *uuid.UUID) bool {
	if _, err := recalc.Recalculate(ctx, projectID, userID); err != nil {
		logger.Warn("Risk recalculation failed after workflow action",
			zap.String("project_id", projectID.String()),
			zap.Error(err))
		return false
	}
	return true
}
