package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
)

var ErrSessionNotFound = errors.New("quiz session not found")

// Write task names.
const (
	taskPutFocusSet   = "put_focus_set"
	taskPutCounters   = "put_mastery_counters"
	taskRecordSession = "record_session"
)

// SessionService starts quiz sessions and keeps track of live ones.
type SessionService struct {
	banks    ItemBanks
	mastery  MasteryStore
	selector *QuestionSelector
	recorder *ScoreRecorder
	writes   TaskQueue
	sessions SessionRegistry
	logger   *zap.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	banks ItemBanks,
	mastery MasteryStore,
	selector *QuestionSelector,
	recorder *ScoreRecorder,
	writes TaskQueue,
	sessions SessionRegistry,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		banks:    banks,
		mastery:  mastery,
		selector: selector,
		recorder: recorder,
		writes:   writes,
		sessions: sessions,
		logger:   logger,
	}
}

// Start opens a new session in category. Stored focus state is loaded first;
// read failures are logged and the session starts with empty state.
// Any previous live session of the user is discarded.
func (s *SessionService) Start(
	ctx context.Context,
	userID int64,
	displayName string,
	category entities.Category,
) (*Tracker, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", entities.ErrUnknownCategory, category)
	}

	bank, err := s.banks.GetBank(category)
	if err != nil {
		return nil, fmt.Errorf("get item bank: %w", err)
	}

	focus, counters := s.loadMastery(ctx, userID, bank)

	item := bank.At(s.selector.PickFirst(bank))
	options, err := s.selector.GenerateOptions(item, bank)
	if err != nil {
		return nil, fmt.Errorf("generate options: %w", err)
	}

	qs, err := entities.NewQuizSession(userID, category, item, options)
	if err != nil {
		return nil, fmt.Errorf("new quiz session: %w", err)
	}

	t := &Tracker{
		ID:          uuid.NewString(),
		svc:         s,
		bank:        bank,
		session:     qs,
		displayName: displayName,
		focus:       focus,
		counters:    counters,
	}

	if s.sessions != nil {
		s.sessions.Save(userID, t.ID, t)
	}

	s.logger.Debug("quiz session started",
		zap.Int64("user_id", userID),
		zap.String("category", string(category)),
		zap.String("session_id", t.ID),
		zap.Int("focus_size", len(focus)),
	)

	return t, nil
}

// Get returns a live session by id.
func (s *SessionService) Get(id string) (*Tracker, error) {
	if s.sessions == nil {
		return nil, ErrSessionNotFound
	}

	t, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return t, nil
}

// ExpireIdle drops live sessions untouched for longer than maxIdle.
// Answers already given were persisted when they were made.
func (s *SessionService) ExpireIdle(maxIdle time.Duration) int {
	if s.sessions == nil {
		return 0
	}

	n := s.sessions.Sweep(maxIdle)
	if n > 0 {
		s.logger.Info("expired idle quiz sessions",
			zap.Int("count", n),
			zap.Duration("max_idle", maxIdle),
		)
	}
	return n
}

// RunExpiry expires idle sessions on schedule until ctx is done.
func (s *SessionService) RunExpiry(ctx context.Context, schedule string, maxIdle time.Duration) error {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(schedule, func() {
		s.ExpireIdle(maxIdle)
	})
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}

	c.Start()
	s.logger.Info("session expiry started",
		zap.String("schedule", schedule),
		zap.Duration("max_idle", maxIdle),
	)

	<-ctx.Done()

	<-c.Stop().Done()
	return nil
}

func (s *SessionService) loadMastery(
	ctx context.Context,
	userID int64,
	bank *entities.ItemBank,
) (entities.FocusSet, entities.MasteryCounters) {
	focus := entities.NewFocusSet()
	counters := entities.MasteryCounters{}

	if userID == 0 {
		s.logger.Warn("mastery not loaded: no user", zap.String("category", string(bank.Category)))
		return focus, counters
	}

	stored, err := s.mastery.GetFocusSet(ctx, userID, bank.Category)
	if err != nil {
		s.logger.Warn("failed to load focus set",
			zap.Int64("user_id", userID),
			zap.String("category", string(bank.Category)),
			zap.Error(err),
		)
	} else if stored != nil {
		focus = stored.Restrict(bank)
	}

	storedCounters, err := s.mastery.GetMasteryCounters(ctx, userID, bank.Category)
	if err != nil {
		s.logger.Warn("failed to load mastery counters",
			zap.Int64("user_id", userID),
			zap.String("category", string(bank.Category)),
			zap.Error(err),
		)
	} else {
		for id := range storedCounters {
			if !bank.Contains(id) {
				continue
			}
			n := storedCounters.Get(id)
			if n >= entities.MasteryThreshold {
				n = 0
			}
			counters[id] = n
		}
	}

	return focus, counters
}

func (s *SessionService) enqueue(name string, userID int64, run func(ctx context.Context) error) {
	if userID == 0 {
		s.logger.Warn("write skipped: no user", zap.String("task", name))
		return
	}
	if s.writes == nil {
		return
	}

	// Enqueue logs drops itself.
	_ = s.writes.Enqueue(Task{Name: name, UserID: userID, Run: run})
}

func (s *SessionService) release(t *Tracker) {
	if s.sessions != nil {
		s.sessions.Delete(t.ID)
	}
}

// Question is the question currently shown to the learner.
type Question struct {
	Index   int // 0-based
	Total   int
	Item    entities.Item
	Options []string
}

// AnswerResult describes a scored answer.
type AnswerResult struct {
	Correct  bool
	Item     entities.Item
	Selected string
	Score    int
	Streak   int
	Change   entities.MasteryChange
	Last     bool // the answered question was the final one
}

// SessionResult summarises a finished session.
type SessionResult struct {
	Category entities.Category
	Score    int
	Total    int
	XP       int
	Tier     entities.ResultTier
}

// AdvanceResult is either the next question or the session result.
type AdvanceResult struct {
	Completed bool
	Question  Question
	Result    *SessionResult
}

// Tracker drives one quiz session through its states and records mastery
// changes. It is safe for concurrent use.
type Tracker struct {
	ID string

	svc         *SessionService
	bank        *entities.ItemBank
	displayName string

	mu       sync.Mutex
	session  *entities.QuizSession
	focus    entities.FocusSet
	counters entities.MasteryCounters

	// writeMu serialises this session's store writes so the last write
	// always carries the newest state.
	writeMu sync.Mutex
}

// Question returns the current question.
func (t *Tracker) Question() Question {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.questionLocked()
}

// Session returns a copy of the session state.
func (t *Tracker) Session() entities.QuizSession {
	t.mu.Lock()
	defer t.mu.Unlock()

	qs := *t.session
	qs.Options = append([]string(nil), t.session.Options...)
	return qs
}

// Focus returns a copy of the current focus set.
func (t *Tracker) Focus() entities.FocusSet {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.focus.Clone()
}

// Counters returns a copy of the current mastery counters.
func (t *Tracker) Counters() entities.MasteryCounters {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.counters.Clone()
}

// AnswerIndex answers with the option at position i.
func (t *Tracker) AnswerIndex(i int) (AnswerResult, error) {
	t.mu.Lock()
	if i < 0 || i >= len(t.session.Options) {
		t.mu.Unlock()
		return AnswerResult{}, entities.ErrInvalidOption
	}
	option := t.session.Options[i]
	t.mu.Unlock()

	return t.Answer(option)
}

// Answer scores option. Only the first answer to a question counts; later
// ones return entities.ErrAlreadyAnswered and change nothing.
func (t *Tracker) Answer(option string) (AnswerResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	correct, err := t.session.Answer(option)
	if err != nil {
		return AnswerResult{}, err
	}

	item := t.session.CurrentItem
	ch := entities.ApplyAnswer(t.focus, t.counters, item.ID, correct)

	if ch.CountersChanged {
		t.persistCounters()
	}
	if ch.FocusChanged {
		t.persistFocus()
	}

	return AnswerResult{
		Correct:  correct,
		Item:     item,
		Selected: option,
		Score:    t.session.Score,
		Streak:   t.session.Streak,
		Change:   ch,
		Last:     t.session.IsLastQuestion(),
	}, nil
}

// Advance moves to the next question, or completes the session after the
// last one. Advancing an unanswered question returns entities.ErrNotAnswered
// and changes nothing.
func (t *Tracker) Advance() (AdvanceResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case t.session.IsComplete():
		return AdvanceResult{}, entities.ErrSessionComplete
	case !t.session.Answered():
		return AdvanceResult{}, entities.ErrNotAnswered
	case t.session.IsLastQuestion():
		return t.completeLocked()
	}

	item, options, err := t.svc.selector.NextQuestion(t.focus, t.bank)
	if err != nil {
		return AdvanceResult{}, fmt.Errorf("next question: %w", err)
	}

	if err = t.session.Next(item, options); err != nil {
		return AdvanceResult{}, err
	}

	return AdvanceResult{Question: t.questionLocked()}, nil
}

func (t *Tracker) completeLocked() (AdvanceResult, error) {
	if err := t.session.Complete(); err != nil {
		return AdvanceResult{}, err
	}

	score := t.session.Score
	userID := t.session.UserID
	category := t.session.Category
	displayName := t.displayName

	t.svc.enqueue(taskRecordSession, userID, func(ctx context.Context) error {
		_, err := t.svc.recorder.RecordSession(ctx, userID, displayName, category, score)
		return err
	})
	t.persistFocus()
	t.svc.release(t)

	return AdvanceResult{
		Completed: true,
		Result: &SessionResult{
			Category: category,
			Score:    score,
			Total:    entities.QuestionsPerSession,
			XP:       entities.XPForScore(score),
			Tier:     entities.TierForScore(score),
		},
	}, nil
}

func (t *Tracker) questionLocked() Question {
	return Question{
		Index:   t.session.QuestionIndex,
		Total:   entities.QuestionsPerSession,
		Item:    t.session.CurrentItem,
		Options: append([]string(nil), t.session.Options...),
	}
}

// persistFocus enqueues a focus set write. The task stores whatever the
// focus set is when it runs.
func (t *Tracker) persistFocus() {
	userID := t.session.UserID
	category := t.session.Category

	t.svc.enqueue(taskPutFocusSet, userID, func(ctx context.Context) error {
		t.writeMu.Lock()
		defer t.writeMu.Unlock()

		return t.svc.mastery.PutFocusSet(ctx, userID, category, t.Focus())
	})
}

// persistCounters enqueues a mastery counters write.
func (t *Tracker) persistCounters() {
	userID := t.session.UserID
	category := t.session.Category

	t.svc.enqueue(taskPutCounters, userID, func(ctx context.Context) error {
		t.writeMu.Lock()
		defer t.writeMu.Unlock()

		return t.svc.mastery.PutMasteryCounters(ctx, userID, category, t.Counters())
	})
}
