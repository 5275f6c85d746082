package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
	"github.com/aliskhannn/bsl-quest/internal/storage"
)

// Notifier delivers focus reminders. Each user keeps at most one reminder
// in the chat: a new one replaces the previous.
type Notifier struct {
	bot       Bot
	reminders *storage.ReminderStorage
	logger    *zap.Logger
}

func NewNotifier(bot Bot, reminders *storage.ReminderStorage, logger *zap.Logger) *Notifier {
	return &Notifier{
		bot:       bot,
		reminders: reminders,
		logger:    logger,
	}
}

// SendFocusReminder implements service.ReminderNotifier.
func (n *Notifier) SendFocusReminder(r entities.FocusReminder) error {
	msg := newHTMLMessage(r.ChatID, formatFocusReminder(r))
	msg.ReplyMarkup = buildReminderKeyboard(r.Category)

	sent, err := n.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}

	prev, hadPrev := n.reminders.Swap(r.UserID, r.ChatID, sent.MessageID)
	if !hadPrev {
		return nil
	}

	if _, err := n.bot.Request(tgbotapi.NewDeleteMessage(prev.ChatID, prev.MessageID)); err != nil {
		n.logger.Debug("failed to delete previous reminder",
			zap.Int64("user_id", r.UserID),
			zap.Int("message_id", prev.MessageID),
			zap.Error(err),
		)
	}

	return nil
}
