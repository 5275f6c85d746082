package entities

import "time"

// LearningProgress records which categories' flashcards a user finished.
type LearningProgress struct {
	UserID  int64
	Learned map[Category]time.Time // category -> when the badge was earned
}

// NewLearningProgress returns empty progress for a user.
func NewLearningProgress(userID int64) *LearningProgress {
	return &LearningProgress{
		UserID:  userID,
		Learned: make(map[Category]time.Time),
	}
}

// HasLearned reports whether the category's flashcards were completed.
func (p *LearningProgress) HasLearned(c Category) bool {
	_, ok := p.Learned[c]
	return ok
}

// Badges lists earned badges in category order.
func (p *LearningProgress) Badges() []string {
	var out []string
	for _, c := range Categories() {
		if p.HasLearned(c) {
			out = append(out, c.Badge())
		}
	}
	return out
}

// CategoryStats summarises a user's score history in one category.
type CategoryStats struct {
	Category  Category
	Attempts  int
	BestScore int
	LastScore int
	LastAt    *time.Time
}

// NewCategoryStats folds score records into stats.
func NewCategoryStats(c Category, records []ScoreRecord) CategoryStats {
	st := CategoryStats{Category: c, Attempts: len(records)}
	for i, r := range records {
		if r.Score > st.BestScore {
			st.BestScore = r.Score
		}
		if i == len(records)-1 {
			st.LastScore = r.Score
			ts := r.Timestamp
			st.LastAt = &ts
		}
	}
	return st
}
