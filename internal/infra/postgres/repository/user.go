package repository

import (
	"context"
	"fmt"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
	"github.com/aliskhannn/bsl-quest/internal/infra/postgres"
)

// UserRepository provides access to user data in the database.
type UserRepository struct {
	db postgres.DBTX
}

// NewUserRepository creates a new UserRepository with the provided database pool.
func NewUserRepository(db postgres.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// SaveUser inserts a new user or refreshes chat and display name of an
// existing one. It reports whether the user was created.
func (r *UserRepository) SaveUser(ctx context.Context, user *entities.User) (bool, error) {
	query := `
		INSERT INTO users (id, chat_id, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			chat_id = EXCLUDED.chat_id,
			display_name = EXCLUDED.display_name
		RETURNING (xmax = 0) AS created, created_at
	`

	var created bool
	err := r.db.QueryRow(ctx, query, user.ID, user.ChatID, user.DisplayName).Scan(&created, &user.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("save user: %w", err)
	}

	return created, nil
}
