package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
	"github.com/aliskhannn/bsl-quest/internal/storage"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []entities.FocusReminder
	fail map[int64]bool
}

func (n *recordingNotifier) SendFocusReminder(r entities.FocusReminder) error {
	if n.fail[r.UserID] {
		return errors.New("chat unavailable")
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, r)
	return nil
}

func TestPickPerUser(t *testing.T) {
	rows := []entities.FocusReminder{
		{UserID: 1, Category: entities.CategoryAnimals, FocusCount: 2},
		{UserID: 1, Category: entities.CategoryAlphabet, FocusCount: 2},
		{UserID: 1, Category: entities.CategoryColours, FocusCount: 1},
		{UserID: 2, Category: entities.CategoryNumbers, FocusCount: 1},
		{UserID: 2, Category: entities.CategoryGreetings, FocusCount: 4},
		{UserID: 3, Category: entities.CategoryNumbers, FocusCount: 0},
	}

	got := pickPerUser(rows)
	if len(got) != 2 {
		t.Fatalf("expected 2 reminders, got %+v", got)
	}
	if got[0].UserID != 1 || got[0].Category != entities.CategoryAlphabet {
		t.Errorf("user 1: expected alphabet on tie, got %+v", got[0])
	}
	if got[1].UserID != 2 || got[1].Category != entities.CategoryGreetings {
		t.Errorf("user 2: expected greetings, got %+v", got[1])
	}
}

func TestSendFocusReminders(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		_, _ = store.SaveUser(ctx, entities.NewUser(id, id*100, "user"))
	}
	_ = store.PutFocusSet(ctx, 1, entities.CategoryColours, entities.NewFocusSet("Red"))
	_ = store.PutFocusSet(ctx, 2, entities.CategoryAnimals, entities.NewFocusSet("Dog", "Cat"))

	notifier := &recordingNotifier{fail: map[int64]bool{2: true}}
	svc := NewReminderService(store, "0 18 * * *", zap.NewNop())

	if _, err := svc.SendFocusReminders(ctx); !errors.Is(err, ErrNotifierNotSet) {
		t.Fatalf("expected ErrNotifierNotSet, got %v", err)
	}

	svc.SetNotifier(notifier)

	sent, err := svc.SendFocusReminders(ctx)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent != 1 {
		t.Errorf("expected 1 sent reminder, got %d", sent)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].ChatID != 100 {
		t.Errorf("unexpected reminders %+v", notifier.sent)
	}
}

func TestReminderService_StartRejectsBadSchedule(t *testing.T) {
	svc := NewReminderService(storage.NewMemoryStore(), "not a schedule", zap.NewNop())

	if err := svc.Start(context.Background()); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}
