package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
	"github.com/aliskhannn/bsl-quest/internal/infra/postgres"
)

// ProgressRepository records which categories' flashcards a user finished.
type ProgressRepository struct {
	db postgres.DBTX
}

func NewProgressRepository(db postgres.DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func (r *ProgressRepository) GetLearningProgress(ctx context.Context, userID int64) (*entities.LearningProgress, error) {
	query := `
		SELECT category, learned_at
		FROM learning_progress
		WHERE user_id = $1
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query learning progress: %w", err)
	}
	defer rows.Close()

	p := entities.NewLearningProgress(userID)
	for rows.Next() {
		var (
			category string
			at       time.Time
		)
		if err := rows.Scan(&category, &at); err != nil {
			return nil, fmt.Errorf("scan learning progress: %w", err)
		}
		p.Learned[entities.Category(category)] = at
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate learning progress: %w", err)
	}

	return p, nil
}

// MarkLearned stores the category once and reports whether the row is new.
func (r *ProgressRepository) MarkLearned(ctx context.Context, userID int64, category entities.Category, at time.Time) (bool, error) {
	query := `
		INSERT INTO learning_progress (user_id, category, learned_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, category) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query, userID, string(category), at)
	if err != nil {
		return false, fmt.Errorf("mark learned: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
