package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
)

// Card is one flashcard of a category.
type Card struct {
	Category entities.Category
	Item     entities.Item
	Index    int
	Total    int
}

// IsLast reports whether this is the final card of the category.
func (c Card) IsLast() bool {
	return c.Index == c.Total-1
}

// LearningService serves flashcards and awards a badge per finished category.
type LearningService struct {
	banks    ItemBanks
	progress ProgressRepository
	logger   *zap.Logger
}

func NewLearningService(banks ItemBanks, progress ProgressRepository, logger *zap.Logger) *LearningService {
	return &LearningService{
		banks:    banks,
		progress: progress,
		logger:   logger,
	}
}

// Card returns the card at index, wrapping around in both directions.
func (s *LearningService) Card(category entities.Category, index int) (Card, error) {
	bank, err := s.banks.GetBank(category)
	if err != nil {
		return Card{}, fmt.Errorf("get item bank: %w", err)
	}

	n := bank.Len()
	index = ((index % n) + n) % n

	return Card{
		Category: category,
		Item:     bank.At(index),
		Index:    index,
		Total:    n,
	}, nil
}

// Complete marks the category as learned. It returns true only the first
// time, when the badge is awarded.
func (s *LearningService) Complete(ctx context.Context, userID int64, category entities.Category) (bool, error) {
	if !category.Valid() {
		return false, fmt.Errorf("%w: %q", entities.ErrUnknownCategory, category)
	}

	if userID == 0 {
		s.logger.Warn("learning progress not saved: no user", zap.String("category", string(category)))
		return false, nil
	}

	awarded, err := s.progress.MarkLearned(ctx, userID, category, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("mark learned: %w", err)
	}

	if awarded {
		s.logger.Info("badge awarded",
			zap.Int64("user_id", userID),
			zap.String("category", string(category)),
		)
	}

	return awarded, nil
}
