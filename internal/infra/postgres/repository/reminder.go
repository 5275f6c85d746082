package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
	"github.com/aliskhannn/bsl-quest/internal/infra/postgres"
)

// ReminderRepository finds users with signs waiting in a focus set.
type ReminderRepository struct {
	db postgres.DBTX
}

// NewReminderRepository creates a new ReminderRepository with the provided database pool.
func NewReminderRepository(db postgres.DBTX) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// ListFocusReminders returns one row per non-empty focus set of a known user.
func (r *ReminderRepository) ListFocusReminders(ctx context.Context) ([]entities.FocusReminder, error) {
	query := `
		SELECT f.user_id, u.chat_id, f.category, COUNT(*) AS focus_count
		FROM quiz_focus f
		JOIN users u ON u.id = f.user_id
		GROUP BY f.user_id, u.chat_id, f.category
		ORDER BY f.user_id, f.category
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query focus reminders: %w", err)
	}

	reminders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entities.FocusReminder, error) {
		var (
			rem      entities.FocusReminder
			category string
		)
		err := row.Scan(&rem.UserID, &rem.ChatID, &category, &rem.FocusCount)
		rem.Category = entities.Category(category)
		return rem, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan focus reminders: %w", err)
	}

	return reminders, nil
}
