package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
	"github.com/aliskhannn/bsl-quest/internal/infra/postgres"
)

// ScoreRepository keeps the append-only score history.
type ScoreRepository struct {
	db postgres.DBTX
}

func NewScoreRepository(db postgres.DBTX) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// AppendScoreRecord inserts the record with the server's timestamp and
// writes that timestamp back into record.
func (r *ScoreRepository) AppendScoreRecord(ctx context.Context, userID int64, category entities.Category, record *entities.ScoreRecord) error {
	query := `
		INSERT INTO score_records (user_id, category, score, total)
		VALUES ($1, $2, $3, $4)
		RETURNING recorded_at
	`

	err := r.db.QueryRow(ctx, query, userID, string(category), record.Score, record.Total).
		Scan(&record.Timestamp)
	if err != nil {
		return fmt.Errorf("append score record: %w", err)
	}

	return nil
}

// ListScoreRecords returns the category's history, oldest first.
func (r *ScoreRepository) ListScoreRecords(ctx context.Context, userID int64, category entities.Category) ([]entities.ScoreRecord, error) {
	query := `
		SELECT score, total, recorded_at
		FROM score_records
		WHERE user_id = $1 AND category = $2
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, userID, string(category))
	if err != nil {
		return nil, fmt.Errorf("query score records: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entities.ScoreRecord, error) {
		var rec entities.ScoreRecord
		err := row.Scan(&rec.Score, &rec.Total, &rec.Timestamp)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan score records: %w", err)
	}

	return records, nil
}

// ResetScores deletes the user's history in every category.
func (r *ScoreRepository) ResetScores(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM score_records WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("delete score_records: %w", err)
	}
	return nil
}
