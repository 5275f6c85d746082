package telegram

import (
	"context"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
	"github.com/aliskhannn/bsl-quest/internal/storage"
)

type Handler struct {
	bot       Bot
	logger    *zap.Logger
	mediaDir  string
	reminders *storage.ReminderStorage

	userService     UserService
	quizService     QuizService
	learningService LearningService
	profileService  ProfileService
	resetService    ResetService
}

func NewHandler(
	bot Bot,
	logger *zap.Logger,
	mediaDir string,
	reminders *storage.ReminderStorage,
	userService UserService,
	quizService QuizService,
	learningService LearningService,
	profileService ProfileService,
	resetService ResetService,
) *Handler {
	return &Handler{
		bot:             bot,
		logger:          logger,
		mediaDir:        mediaDir,
		reminders:       reminders,
		userService:     userService,
		quizService:     quizService,
		learningService: learningService,
		profileService:  profileService,
		resetService:    resetService,
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer h.recoverUpdate(update)

	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	from := update.Message.From
	chatID := update.Message.Chat.ID

	if err := h.userService.EnsureUser(ctx, from.ID, chatID, displayName(from)); err != nil {
		h.logger.Error("failed to ensure user",
			zap.Int64("user_id", from.ID),
			zap.Error(err),
		)
	}

	if !update.Message.IsCommand() {
		_ = h.send(newHTMLMessage(chatID, msgUnknownCommand))
		return
	}

	switch update.Message.Command() {
	case "start":
		_ = h.send(newHTMLMessage(chatID, msgWelcome))

	case "help":
		_ = h.send(newHTMLMessage(chatID, msgHelp))

	case "learn":
		_ = h.withErrorHandling(h.handleLearn(update.Message.CommandArguments()))(ctx, chatID)

	case "quiz":
		_ = h.withErrorHandling(h.handleQuiz(from, update.Message.CommandArguments()))(ctx, chatID)

	case "profile":
		_ = h.withErrorHandling(h.handleProfile(from.ID))(ctx, chatID)

	case "leaderboard":
		_ = h.withErrorHandling(h.handleLeaderboard(from.ID))(ctx, chatID)

	case "reset":
		_ = h.send(h.resetPrompt(chatID))

	default:
		_ = h.send(newHTMLMessage(chatID, msgUnknownCommand))
	}
}

func (h *Handler) send(c tgbotapi.Chattable) error {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (h *Handler) sendError(chatID int64, text string) {
	_ = h.send(newHTMLMessage(chatID, text))
}

// deleteMessage removes a message, ignoring failures such as messages
// older than Telegram allows deleting.
func (h *Handler) deleteMessage(chatID int64, messageID int) {
	if _, err := h.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		h.logger.Debug("failed to delete message",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err),
		)
	}
}

// sendVideo sends the clip of item with an HTML caption. When the clip
// cannot be delivered the caption and keyboard go out as a text message,
// so a missing media file never blocks a quiz or a learning run.
func (h *Handler) sendVideo(chatID int64, item entities.Item, caption string, kb tgbotapi.InlineKeyboardMarkup) error {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(filepath.Join(h.mediaDir, item.MediaRef)))
	video.Caption = caption
	video.ParseMode = tgbotapi.ModeHTML
	video.ReplyMarkup = kb

	if _, err := h.bot.Send(video); err != nil {
		h.logger.Warn("failed to send video, falling back to text",
			zap.Int64("chat_id", chatID),
			zap.String("item_id", item.ID),
			zap.String("media_ref", item.MediaRef),
			zap.Error(err),
		)

		msg := newHTMLMessage(chatID, caption)
		msg.ReplyMarkup = kb
		return h.send(msg)
	}
	return nil
}

// dismissReminder deletes the user's pending focus reminder once they act on it.
func (h *Handler) dismissReminder(userID int64) {
	if h.reminders == nil {
		return
	}
	if prev, ok := h.reminders.Forget(userID); ok {
		h.deleteMessage(prev.ChatID, prev.MessageID)
	}
}

// displayName is the name shown on the leaderboard.
func displayName(u *tgbotapi.User) string {
	if u == nil {
		return entities.AnonymousName
	}

	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	if name == "" {
		name = entities.AnonymousName
	}
	return name
}
