package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
)

type masteryKey struct {
	userID   int64
	category entities.Category
}

// MemoryStore keeps all learner state in process memory. It serves the
// memory storage driver and stands in for a database in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[int64]entities.User
	focus    map[masteryKey]entities.FocusSet
	counters map[masteryKey]entities.MasteryCounters
	scores   map[masteryKey][]entities.ScoreRecord
	xp       map[int64]entities.UserXP
	learned  map[int64]map[entities.Category]time.Time

	now func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[int64]entities.User),
		focus:    make(map[masteryKey]entities.FocusSet),
		counters: make(map[masteryKey]entities.MasteryCounters),
		scores:   make(map[masteryKey][]entities.ScoreRecord),
		xp:       make(map[int64]entities.UserXP),
		learned:  make(map[int64]map[entities.Category]time.Time),
		now:      time.Now,
	}
}

func (s *MemoryStore) GetFocusSet(_ context.Context, userID int64, category entities.Category) (entities.FocusSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.focus[masteryKey{userID, category}].Clone(), nil
}

func (s *MemoryStore) PutFocusSet(_ context.Context, userID int64, category entities.Category, focus entities.FocusSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.focus[masteryKey{userID, category}] = focus.Clone()
	return nil
}

func (s *MemoryStore) GetMasteryCounters(_ context.Context, userID int64, category entities.Category) (entities.MasteryCounters, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.counters[masteryKey{userID, category}].Clone(), nil
}

func (s *MemoryStore) PutMasteryCounters(_ context.Context, userID int64, category entities.Category, counters entities.MasteryCounters) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[masteryKey{userID, category}] = counters.Clone()
	return nil
}

// AppendScoreRecord stamps record with the store's clock and appends it.
func (s *MemoryStore) AppendScoreRecord(_ context.Context, userID int64, category entities.Category, record *entities.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := *record
	rec.Timestamp = s.now().UTC()
	record.Timestamp = rec.Timestamp

	key := masteryKey{userID, category}
	s.scores[key] = append(s.scores[key], rec)
	return nil
}

func (s *MemoryStore) ListScoreRecords(_ context.Context, userID int64, category entities.Category) ([]entities.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]entities.ScoreRecord(nil), s.scores[masteryKey{userID, category}]...), nil
}

func (s *MemoryStore) ResetScores(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.scores {
		if key.userID == userID {
			delete(s.scores, key)
		}
	}
	return nil
}

func (s *MemoryStore) GetXP(_ context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.xp[userID].XP, nil
}

// AddXP increments the user's XP under the store lock and returns the new total.
func (s *MemoryStore) AddXP(_ context.Context, userID int64, displayName string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.xp[userID]
	cur.UserID = userID
	cur.XP += delta
	cur.DisplayName = displayName
	s.xp[userID] = cur

	return cur.XP, nil
}

func (s *MemoryStore) Leaderboard(_ context.Context, limit int) ([]entities.UserXP, error) {
	s.mu.RLock()
	out := make([]entities.UserXP, 0, len(s.xp))
	for _, x := range s.xp {
		out = append(out, x)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].XP != out[j].XP {
			return out[i].XP > out[j].XP
		}
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].UserID < out[j].UserID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SaveUser inserts or refreshes a user and reports whether it was created.
func (s *MemoryStore) SaveUser(_ context.Context, user *entities.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.users[user.ID]
	u := *user
	if exists {
		u.CreatedAt = prev.CreatedAt
	} else if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}
	s.users[user.ID] = u

	return !exists, nil
}

func (s *MemoryStore) GetLearningProgress(_ context.Context, userID int64) (*entities.LearningProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := entities.NewLearningProgress(userID)
	for c, at := range s.learned[userID] {
		p.Learned[c] = at
	}
	return p, nil
}

// MarkLearned records the category once and reports whether it was new.
func (s *MemoryStore) MarkLearned(_ context.Context, userID int64, category entities.Category, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.learned[userID]
	if !ok {
		m = make(map[entities.Category]time.Time)
		s.learned[userID] = m
	}
	if _, done := m[category]; done {
		return false, nil
	}
	m[category] = at
	return true, nil
}

// ListFocusReminders returns a row per non-empty focus set of a known user.
func (s *MemoryStore) ListFocusReminders(_ context.Context) ([]entities.FocusReminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entities.FocusReminder
	for key, fs := range s.focus {
		if len(fs) == 0 {
			continue
		}
		u, ok := s.users[key.userID]
		if !ok {
			continue
		}
		out = append(out, entities.FocusReminder{
			UserID:     key.userID,
			ChatID:     u.ChatID,
			Category:   key.category,
			FocusCount: len(fs),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Category < out[j].Category
	})

	return out, nil
}
