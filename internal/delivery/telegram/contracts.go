package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
	"github.com/aliskhannn/bsl-quest/internal/service"
)

// Bot is the part of *tgbotapi.BotAPI the handler uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type UserService interface {
	EnsureUser(ctx context.Context, userID, chatID int64, displayName string) error
}

type QuizService interface {
	Start(ctx context.Context, userID int64, displayName string, category entities.Category) (*service.Tracker, error)
	Get(id string) (*service.Tracker, error)
}

type LearningService interface {
	Card(category entities.Category, index int) (service.Card, error)
	Complete(ctx context.Context, userID int64, category entities.Category) (bool, error)
}

type ProfileService interface {
	Summary(ctx context.Context, userID int64) (*service.Profile, error)
	History(ctx context.Context, userID int64, category entities.Category) ([]entities.ScoreRecord, error)
	Leaderboard(ctx context.Context, limit int) ([]entities.UserXP, error)
}

type ResetService interface {
	ResetScores(ctx context.Context, userID int64) error
}
