package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
)

var ErrInvalidScore = errors.New("score out of range")

// ScoreRecorder persists finished sessions and awards experience.
type ScoreRecorder struct {
	scores ScoreStore
	xp     XPStore
	logger *zap.Logger
}

// NewScoreRecorder creates a new ScoreRecorder.
func NewScoreRecorder(scores ScoreStore, xp XPStore, logger *zap.Logger) *ScoreRecorder {
	return &ScoreRecorder{
		scores: scores,
		xp:     xp,
		logger: logger,
	}
}

// RecordSession appends a score record for the category and adds score*10 XP
// to the user's total, refreshing their display name. It returns the XP
// awarded. Calls without a user identity are logged and ignored.
func (r *ScoreRecorder) RecordSession(
	ctx context.Context,
	userID int64,
	displayName string,
	category entities.Category,
	score int,
) (int, error) {
	if !category.Valid() {
		return 0, fmt.Errorf("%w: %q", entities.ErrUnknownCategory, category)
	}
	if score < 0 || score > entities.QuestionsPerSession {
		return 0, fmt.Errorf("%w: %d", ErrInvalidScore, score)
	}

	if userID == 0 {
		r.logger.Warn("score not recorded: no user", zap.String("category", string(category)))
		return 0, nil
	}

	if displayName == "" {
		displayName = entities.AnonymousName
	}

	if err := r.scores.AppendScoreRecord(ctx, userID, category, entities.NewScoreRecord(score)); err != nil {
		return 0, fmt.Errorf("append score record: %w", err)
	}

	xp := entities.XPForScore(score)
	total, err := r.xp.AddXP(ctx, userID, displayName, xp)
	if err != nil {
		return 0, fmt.Errorf("add xp: %w", err)
	}

	r.logger.Info("session recorded",
		zap.Int64("user_id", userID),
		zap.String("category", string(category)),
		zap.Int("score", score),
		zap.Int("xp", xp),
		zap.Int("total_xp", total),
	)

	return xp, nil
}
