package entities

// FocusReminder is a nudge for a user with signs waiting to be practised.
type FocusReminder struct {
	UserID     int64
	ChatID     int64
	Category   Category
	FocusCount int
}
