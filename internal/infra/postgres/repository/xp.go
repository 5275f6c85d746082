package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
	"github.com/aliskhannn/bsl-quest/internal/infra/postgres"
)

type XPRepository struct {
	db postgres.DBTX
}

func NewXPRepository(db postgres.DBTX) *XPRepository {
	return &XPRepository{db: db}
}

// GetXP returns the user's XP, 0 when they have none yet.
func (r *XPRepository) GetXP(ctx context.Context, userID int64) (int, error) {
	var xp int
	err := r.db.QueryRow(ctx, "SELECT xp FROM user_xp WHERE user_id = $1", userID).Scan(&xp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get xp: %w", err)
	}

	return xp, nil
}

// AddXP increments XP in a single statement and returns the new total.
func (r *XPRepository) AddXP(ctx context.Context, userID int64, displayName string, delta int) (int, error) {
	query := `
		INSERT INTO user_xp (user_id, xp, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			xp = user_xp.xp + EXCLUDED.xp,
			display_name = EXCLUDED.display_name,
			updated_at = now()
		RETURNING xp
	`

	var total int
	if err := r.db.QueryRow(ctx, query, userID, delta, displayName).Scan(&total); err != nil {
		return 0, fmt.Errorf("add xp: %w", err)
	}

	return total, nil
}

// Leaderboard returns users by XP, highest first, ties by display name.
func (r *XPRepository) Leaderboard(ctx context.Context, limit int) ([]entities.UserXP, error) {
	query := `
		SELECT user_id, xp, display_name
		FROM user_xp
		ORDER BY xp DESC, display_name, user_id
		LIMIT $1
	`

	// LIMIT NULL returns every row.
	var n *int
	if limit > 0 {
		n = &limit
	}

	rows, err := r.db.Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}

	top, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entities.UserXP, error) {
		var u entities.UserXP
		err := row.Scan(&u.UserID, &u.XP, &u.DisplayName)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan leaderboard: %w", err)
	}

	return top, nil
}
