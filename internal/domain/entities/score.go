package entities

import "time"

// XPPerCorrect is the experience awarded for each correct answer.
const XPPerCorrect = 10

// ScoreRecord is one finished session in a category's append-only history.
type ScoreRecord struct {
	Score     int       // correct answers, 0..Total
	Total     int       // always QuestionsPerSession
	Timestamp time.Time // set by the store when appended
}

// NewScoreRecord creates a record for a finished session.
func NewScoreRecord(score int) *ScoreRecord {
	return &ScoreRecord{
		Score: score,
		Total: QuestionsPerSession,
	}
}

// XPForScore returns the experience earned by a session score.
func XPForScore(score int) int {
	return score * XPPerCorrect
}

// ResultTier classifies a finished session for the closing message.
type ResultTier string

const (
	TierPerfect    ResultTier = "perfect"
	TierGreat      ResultTier = "great"
	TierGoodEffort ResultTier = "good_effort"
)

// TierForScore returns the closing-message tier for score.
func TierForScore(score int) ResultTier {
	switch {
	case score >= QuestionsPerSession:
		return TierPerfect
	case score >= 5:
		return TierGreat
	default:
		return TierGoodEffort
	}
}

// UserXP is a user's cumulative experience.
type UserXP struct {
	UserID      int64
	XP          int
	DisplayName string
}
