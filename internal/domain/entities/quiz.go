package entities

import (
	"errors"
	"time"
)

const (
	// QuestionsPerSession is the fixed length of a quiz.
	QuestionsPerSession = 10
	// OptionsPerQuestion is the number of multiple-choice options shown.
	OptionsPerQuestion = 4
)

var (
	ErrNotAnswered     = errors.New("question has not been answered yet")
	ErrAlreadyAnswered = errors.New("question has already been answered")
	ErrSessionComplete = errors.New("quiz session is complete")
	ErrInvalidOption   = errors.New("option is not one of the offered choices")
	ErrInvalidQuestion = errors.New("question must have exactly 4 distinct options including the item")
)

// QuizState is the position of a session in its lifecycle.
type QuizState string

const (
	StateAwaitingAnswer  QuizState = "awaiting_answer"
	StateAnswered        QuizState = "answered"
	StateSessionComplete QuizState = "complete"
)

// QuizSession is the in-memory state of one ten-question quiz run.
// It is owned by a single caller and never persisted mid-session.
type QuizSession struct {
	UserID         int64
	Category       Category
	CurrentItem    Item
	Options        []string // ordered option labels, one of them is CurrentItem.ID
	State          QuizState
	SelectedOption string
	LastCorrect    bool
	Score          int
	Streak         int
	QuestionIndex  int // 0..QuestionsPerSession-1
	StartedAt      time.Time
	CompletedAt    *time.Time
}

// NewQuizSession starts a session at question 0 awaiting an answer.
func NewQuizSession(userID int64, category Category, first Item, options []string) (*QuizSession, error) {
	if err := validateQuestion(first, options); err != nil {
		return nil, err
	}

	return &QuizSession{
		UserID:      userID,
		Category:    category,
		CurrentItem: first,
		Options:     options,
		State:       StateAwaitingAnswer,
		StartedAt:   time.Now(),
	}, nil
}

// Answered reports whether the current question has been scored.
func (qs *QuizSession) Answered() bool {
	return qs.State == StateAnswered
}

// IsComplete reports whether the session reached its terminal state.
func (qs *QuizSession) IsComplete() bool {
	return qs.State == StateSessionComplete
}

// IsLastQuestion reports whether the current question is the final one.
func (qs *QuizSession) IsLastQuestion() bool {
	return qs.QuestionIndex >= QuestionsPerSession-1
}

// Answer scores the selected option. It is accepted at most once per question.
func (qs *QuizSession) Answer(option string) (bool, error) {
	switch qs.State {
	case StateSessionComplete:
		return false, ErrSessionComplete
	case StateAnswered:
		return false, ErrAlreadyAnswered
	}

	if !qs.hasOption(option) {
		return false, ErrInvalidOption
	}

	correct := option == qs.CurrentItem.ID
	if correct {
		qs.Score++
		qs.Streak++
	} else {
		qs.Streak = 0
	}

	qs.SelectedOption = option
	qs.LastCorrect = correct
	qs.State = StateAnswered

	return correct, nil
}

// Next moves an answered session to the following question.
func (qs *QuizSession) Next(item Item, options []string) error {
	switch {
	case qs.State == StateSessionComplete:
		return ErrSessionComplete
	case qs.State != StateAnswered:
		return ErrNotAnswered
	case qs.IsLastQuestion():
		return ErrSessionComplete
	}

	if err := validateQuestion(item, options); err != nil {
		return err
	}

	qs.CurrentItem = item
	qs.Options = options
	qs.SelectedOption = ""
	qs.LastCorrect = false
	qs.QuestionIndex++
	qs.State = StateAwaitingAnswer

	return nil
}

// Complete finishes the session after the last question has been answered.
func (qs *QuizSession) Complete() error {
	switch {
	case qs.State == StateSessionComplete:
		return ErrSessionComplete
	case qs.State != StateAnswered:
		return ErrNotAnswered
	case !qs.IsLastQuestion():
		return errors.New("quiz session has questions left")
	}

	now := time.Now()
	qs.CompletedAt = &now
	qs.State = StateSessionComplete

	return nil
}

func (qs *QuizSession) hasOption(option string) bool {
	for _, o := range qs.Options {
		if o == option {
			return true
		}
	}
	return false
}

func validateQuestion(item Item, options []string) error {
	if len(options) != OptionsPerQuestion {
		return ErrInvalidQuestion
	}

	seen := make(map[string]struct{}, len(options))
	found := false
	for _, o := range options {
		if _, dup := seen[o]; dup {
			return ErrInvalidQuestion
		}
		seen[o] = struct{}{}
		if o == item.ID {
			found = true
		}
	}
	if !found {
		return ErrInvalidQuestion
	}

	return nil
}
