package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
	"github.com/aliskhannn/bsl-quest/internal/infra/postgres"
)

// MasteryRepository stores focus sets and mastery counters, one row per item.
type MasteryRepository struct {
	db postgres.DBTX
	tr *postgres.Transactor
}

// NewMasteryRepository creates a new MasteryRepository. Snapshot writes run
// through tr so readers never see a half-replaced set.
func NewMasteryRepository(db postgres.DBTX, tr *postgres.Transactor) *MasteryRepository {
	return &MasteryRepository{db: db, tr: tr}
}

// GetFocusSet returns the stored focus set; an unknown user has an empty one.
func (r *MasteryRepository) GetFocusSet(ctx context.Context, userID int64, category entities.Category) (entities.FocusSet, error) {
	query := `
		SELECT item_id
		FROM quiz_focus
		WHERE user_id = $1 AND category = $2
	`

	rows, err := r.db.Query(ctx, query, userID, string(category))
	if err != nil {
		return nil, fmt.Errorf("query focus set: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan focus set: %w", err)
	}

	return entities.NewFocusSet(ids...), nil
}

// PutFocusSet replaces the stored focus set with focus.
func (r *MasteryRepository) PutFocusSet(ctx context.Context, userID int64, category entities.Category, focus entities.FocusSet) error {
	return r.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			"DELETE FROM quiz_focus WHERE user_id = $1 AND category = $2",
			userID, string(category),
		); err != nil {
			return fmt.Errorf("clear focus set: %w", err)
		}

		batch := &pgx.Batch{}
		for _, id := range focus.IDs() {
			batch.Queue(
				"INSERT INTO quiz_focus (user_id, category, item_id) VALUES ($1, $2, $3)",
				userID, string(category), id,
			)
		}

		return sendBatch(ctx, tx, batch, "insert focus item")
	})
}

// GetMasteryCounters returns the stored counters; missing items count as 0.
func (r *MasteryRepository) GetMasteryCounters(ctx context.Context, userID int64, category entities.Category) (entities.MasteryCounters, error) {
	query := `
		SELECT item_id, correct_count
		FROM mastery_counters
		WHERE user_id = $1 AND category = $2
	`

	rows, err := r.db.Query(ctx, query, userID, string(category))
	if err != nil {
		return nil, fmt.Errorf("query mastery counters: %w", err)
	}
	defer rows.Close()

	counters := entities.MasteryCounters{}
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan mastery counter: %w", err)
		}
		counters[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mastery counters: %w", err)
	}

	return counters, nil
}

// PutMasteryCounters replaces the stored counters with counters.
func (r *MasteryRepository) PutMasteryCounters(ctx context.Context, userID int64, category entities.Category, counters entities.MasteryCounters) error {
	return r.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			"DELETE FROM mastery_counters WHERE user_id = $1 AND category = $2",
			userID, string(category),
		); err != nil {
			return fmt.Errorf("clear mastery counters: %w", err)
		}

		batch := &pgx.Batch{}
		for id := range counters {
			batch.Queue(`
				INSERT INTO mastery_counters (user_id, category, item_id, correct_count)
				VALUES ($1, $2, $3, $4)`,
				userID, string(category), id, counters.Get(id),
			)
		}

		return sendBatch(ctx, tx, batch, "insert mastery counter")
	})
}

func sendBatch(ctx context.Context, db postgres.DBTX, batch *pgx.Batch, what string) error {
	if batch.Len() == 0 {
		return nil
	}

	br := db.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("%s: %w", what, err)
		}
	}

	if err := br.Close(); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}
