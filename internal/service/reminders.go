package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
)

const maxConcurrentReminders = 10

var ErrNotifierNotSet = errors.New("notifier not initialized")

// ReminderService nudges users who have signs waiting in a focus set.
type ReminderService struct {
	reminderRepo ReminderRepository
	notifier     ReminderNotifier
	schedule     string
	logger       *zap.Logger
}

// NewReminderService creates a new reminder service. schedule is a standard
// five-field cron expression evaluated in UTC.
func NewReminderService(reminderRepo ReminderRepository, schedule string, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		reminderRepo: reminderRepo,
		schedule:     schedule,
		logger:       logger,
	}
}

// SetNotifier sets the notifier (called after handler is created).
func (s *ReminderService) SetNotifier(notifier ReminderNotifier) {
	s.notifier = notifier
}

// Start runs the scheduler until ctx is done.
func (s *ReminderService) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(s.schedule, func() {
		s.logger.Info("cron triggered: sending focus reminders")
		if _, err := s.SendFocusReminders(ctx); err != nil {
			s.logger.Error("failed to send focus reminders", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}

	c.Start()
	s.logger.Info("reminder service started", zap.String("schedule", s.schedule))

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("reminder service stopped")

	return nil
}

// SendFocusReminders sends one reminder per user, naming the category with
// the most focus items. It returns the number of reminders sent.
func (s *ReminderService) SendFocusReminders(ctx context.Context) (int, error) {
	if s.notifier == nil {
		return 0, ErrNotifierNotSet
	}

	rows, err := s.reminderRepo.ListFocusReminders(ctx)
	if err != nil {
		return 0, fmt.Errorf("list focus reminders: %w", err)
	}

	reminders := pickPerUser(rows)

	var sent atomic.Int64
	p := pool.New().WithMaxGoroutines(maxConcurrentReminders)
	for _, r := range reminders {
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			if err := s.notifier.SendFocusReminder(r); err != nil {
				s.logger.Error("failed to send reminder",
					zap.Int64("user_id", r.UserID),
					zap.String("category", string(r.Category)),
					zap.Error(err),
				)
				return
			}
			sent.Add(1)
		})
	}
	p.Wait()

	s.logger.Info("reminders processed",
		zap.Int("candidates", len(reminders)),
		zap.Int64("total_sent", sent.Load()),
	)

	return int(sent.Load()), nil
}

// pickPerUser keeps, for each user, the reminder with the largest focus
// count. Ties go to the earlier category.
func pickPerUser(rows []entities.FocusReminder) []entities.FocusReminder {
	order := make(map[entities.Category]int, len(entities.Categories()))
	for i, c := range entities.Categories() {
		order[c] = i
	}

	best := make(map[int64]int)
	var out []entities.FocusReminder

	for _, r := range rows {
		if r.FocusCount <= 0 {
			continue
		}

		i, ok := best[r.UserID]
		if !ok {
			best[r.UserID] = len(out)
			out = append(out, r)
			continue
		}

		cur := out[i]
		if r.FocusCount > cur.FocusCount ||
			(r.FocusCount == cur.FocusCount && order[r.Category] < order[cur.Category]) {
			out[i] = r
		}
	}

	return out
}
