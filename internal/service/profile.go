package service

import (
	"context"
	"fmt"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
)

// Profile is a user's overview across categories.
type Profile struct {
	UserID int64
	XP     int
	Stats  []entities.CategoryStats
	Badges []string
}

type ProfileService struct {
	scores      ScoreStore
	xp          XPStore
	progress    ProgressRepository
	leaderboard int
}

func NewProfileService(scores ScoreStore, xp XPStore, progress ProgressRepository, leaderboardSize int) *ProfileService {
	if leaderboardSize <= 0 {
		leaderboardSize = 10
	}
	return &ProfileService{
		scores:      scores,
		xp:          xp,
		progress:    progress,
		leaderboard: leaderboardSize,
	}
}

// Summary collects XP, per-category score stats and badges.
func (s *ProfileService) Summary(ctx context.Context, userID int64) (*Profile, error) {
	xp, err := s.xp.GetXP(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get xp: %w", err)
	}

	p := &Profile{UserID: userID, XP: xp}

	for _, c := range entities.Categories() {
		records, err := s.scores.ListScoreRecords(ctx, userID, c)
		if err != nil {
			return nil, fmt.Errorf("list %s scores: %w", c, err)
		}
		p.Stats = append(p.Stats, entities.NewCategoryStats(c, records))
	}

	lp, err := s.progress.GetLearningProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get learning progress: %w", err)
	}
	p.Badges = lp.Badges()

	return p, nil
}

// History returns the score records of one category, oldest first.
func (s *ProfileService) History(ctx context.Context, userID int64, category entities.Category) ([]entities.ScoreRecord, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", entities.ErrUnknownCategory, category)
	}

	records, err := s.scores.ListScoreRecords(ctx, userID, category)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return records, nil
}

// Leaderboard returns the top users by XP. A non-positive limit uses the
// configured size.
func (s *ProfileService) Leaderboard(ctx context.Context, limit int) ([]entities.UserXP, error) {
	if limit <= 0 {
		limit = s.leaderboard
	}

	top, err := s.xp.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("get leaderboard: %w", err)
	}
	return top, nil
}
