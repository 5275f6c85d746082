package service

import (
	"context"
	"time"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
)

// MasteryStore persists focus sets and mastery counters per user and category.
type MasteryStore interface {
	GetFocusSet(ctx context.Context, userID int64, category entities.Category) (entities.FocusSet, error)
	PutFocusSet(ctx context.Context, userID int64, category entities.Category, focus entities.FocusSet) error
	GetMasteryCounters(ctx context.Context, userID int64, category entities.Category) (entities.MasteryCounters, error)
	PutMasteryCounters(ctx context.Context, userID int64, category entities.Category, counters entities.MasteryCounters) error
}

// ScoreStore keeps the append-only score history.
type ScoreStore interface {
	AppendScoreRecord(ctx context.Context, userID int64, category entities.Category, record *entities.ScoreRecord) error
	ListScoreRecords(ctx context.Context, userID int64, category entities.Category) ([]entities.ScoreRecord, error)
	ResetScores(ctx context.Context, userID int64) error
}

// XPStore keeps cumulative experience. AddXP must be atomic.
// Leaderboard returns every user when limit <= 0.
type XPStore interface {
	GetXP(ctx context.Context, userID int64) (int, error)
	AddXP(ctx context.Context, userID int64, displayName string, delta int) (int, error)
	Leaderboard(ctx context.Context, limit int) ([]entities.UserXP, error)
}

type UserRepository interface {
	SaveUser(ctx context.Context, user *entities.User) (bool, error)
}

type ProgressRepository interface {
	GetLearningProgress(ctx context.Context, userID int64) (*entities.LearningProgress, error)
	MarkLearned(ctx context.Context, userID int64, category entities.Category, at time.Time) (bool, error)
}

// ReminderRepository lists non-empty focus sets joined with the owner's chat.
type ReminderRepository interface {
	ListFocusReminders(ctx context.Context) ([]entities.FocusReminder, error)
}

// ItemBanks provides the static item bank of each category.
type ItemBanks interface {
	GetBank(category entities.Category) (*entities.ItemBank, error)
	Categories() []entities.Category
}

// ReminderNotifier sends reminder notifications to users.
type ReminderNotifier interface {
	SendFocusReminder(reminder entities.FocusReminder) error
}

// TaskQueue accepts fire-and-forget persistence work.
type TaskQueue interface {
	Enqueue(task Task) error
}

// SessionRegistry holds live quiz trackers, at most one per user.
type SessionRegistry interface {
	Save(userID int64, id string, tracker *Tracker)
	Get(id string) (*Tracker, bool)
	Delete(id string)
	Sweep(maxIdle time.Duration) int
}
