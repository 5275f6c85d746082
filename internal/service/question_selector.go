package service

import (
	"math/rand"
	"sync"
	"time"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
)

// focusBias is the chance of drawing the next question from the focus set.
const focusBias = 0.5

// QuestionSelector picks quiz items and builds multiple-choice options.
// It is safe for concurrent use.
type QuestionSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewQuestionSelector creates a selector. A nil rng is replaced by a
// time-seeded source.
func NewQuestionSelector(rng *rand.Rand) *QuestionSelector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &QuestionSelector{rng: rng}
}

// PickFirst returns a uniformly random index into bank.
func (s *QuestionSelector) PickFirst(bank *entities.ItemBank) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rng.Intn(bank.Len())
}

// PickNext returns the index of the next item. When focus has members that
// belong to bank, it draws one of them with probability focusBias; otherwise
// it draws uniformly over the whole bank. Immediate repeats are allowed.
func (s *QuestionSelector) PickNext(focus entities.FocusSet, bank *entities.ItemBank) int {
	candidates := focus.Restrict(bank).IDs()

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(candidates) > 0 && s.rng.Float64() < focusBias {
		id := candidates[s.rng.Intn(len(candidates))]
		return bank.IndexOf(id)
	}

	return s.rng.Intn(bank.Len())
}

// GenerateOptions returns OptionsPerQuestion distinct labels in random order,
// one of which is correct.ID. Banks with fewer distinct items than that are
// rejected with ErrBankTooSmall.
func (s *QuestionSelector) GenerateOptions(correct entities.Item, bank *entities.ItemBank) ([]string, error) {
	if bank == nil || bank.Len() < entities.OptionsPerQuestion {
		return nil, entities.ErrBankTooSmall
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	options := make([]string, 0, entities.OptionsPerQuestion)
	seen := make(map[string]struct{}, entities.OptionsPerQuestion)

	options = append(options, correct.ID)
	seen[correct.ID] = struct{}{}

	for len(options) < entities.OptionsPerQuestion {
		id := bank.At(s.rng.Intn(bank.Len())).ID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		options = append(options, id)
	}

	s.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return options, nil
}

// NextQuestion picks the next item and its options in one step.
func (s *QuestionSelector) NextQuestion(focus entities.FocusSet, bank *entities.ItemBank) (entities.Item, []string, error) {
	item := bank.At(s.PickNext(focus, bank))

	options, err := s.GenerateOptions(item, bank)
	if err != nil {
		return entities.Item{}, nil, err
	}

	return item, options, nil
}
