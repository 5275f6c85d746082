package entities

import "time"

// AnonymousName is used when a learner has no display name.
const AnonymousName = "Anonymous"

// User represents bot user.
type User struct {
	ID          int64 // Telegram user ID
	ChatID      int64
	DisplayName string
	CreatedAt   time.Time
}

func NewUser(id, chatID int64, displayName string) *User {
	if displayName == "" {
		displayName = AnonymousName
	}
	return &User{
		ID:          id,
		ChatID:      chatID,
		DisplayName: displayName,
	}
}
