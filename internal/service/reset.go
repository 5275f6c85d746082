package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type ResetService struct {
	scores ScoreStore
	logger *zap.Logger
}

func NewResetService(scores ScoreStore, logger *zap.Logger) *ResetService {
	return &ResetService{
		scores: scores,
		logger: logger,
	}
}

// ResetScores clears the score history of every category. XP is kept.
func (s *ResetService) ResetScores(ctx context.Context, userID int64) error {
	if err := s.scores.ResetScores(ctx, userID); err != nil {
		return fmt.Errorf("reset scores: %w", err)
	}

	s.logger.Info("scores reset", zap.Int64("user_id", userID))

	return nil
}
