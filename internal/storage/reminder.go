package storage

import (
	"sync"
	"time"
)

// ReminderMessage is the last focus reminder shown in a chat.
type ReminderMessage struct {
	ChatID    int64
	MessageID int
	SentAt    time.Time
}

// ReminderStorage remembers each user's latest reminder so a new one can
// replace it instead of piling up.
type ReminderStorage struct {
	mu       sync.Mutex
	messages map[int64]ReminderMessage
}

func NewReminderStorage() *ReminderStorage {
	return &ReminderStorage{
		messages: make(map[int64]ReminderMessage),
	}
}

// Swap records the new reminder message and returns the previous one.
func (s *ReminderStorage) Swap(userID, chatID int64, messageID int) (prev ReminderMessage, hadPrev bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hadPrev = s.messages[userID]
	s.messages[userID] = ReminderMessage{
		ChatID:    chatID,
		MessageID: messageID,
		SentAt:    time.Now(),
	}

	return prev, hadPrev
}

// Forget drops the stored reminder, e.g. once the user acted on it.
func (s *ReminderStorage) Forget(userID int64) (ReminderMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[userID]
	delete(s.messages, userID)
	return msg, ok
}
