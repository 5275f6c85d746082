package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
)

type UserService struct {
	repository UserRepository
	logger     *zap.Logger
}

func NewUserService(repository UserRepository, logger *zap.Logger) *UserService {
	return &UserService{repository: repository, logger: logger}
}

// EnsureUser registers the user or refreshes their chat and display name.
func (s *UserService) EnsureUser(ctx context.Context, userID, chatID int64, displayName string) error {
	user := entities.NewUser(userID, chatID, displayName)

	created, err := s.repository.SaveUser(ctx, user)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	if created {
		s.logger.Info("new user registered", zap.Int64("user_id", userID))
	}

	return nil
}
