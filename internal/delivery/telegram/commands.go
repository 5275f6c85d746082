package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
)

// handleLearn opens a category's first card, or the category menu when
// no category was given.
func (h *Handler) handleLearn(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		c, err := entities.ParseCategory(args)
		if err != nil {
			msg := newHTMLMessage(chatID, msgChooseLearnCategory)
			msg.ReplyMarkup = buildCategoryKeyboard(buildLearnStartCallback)
			return h.send(msg)
		}

		return h.showCard(chatID, c, 0)
	}
}

// handleQuiz starts a quiz in the named category, or shows the category menu.
func (h *Handler) handleQuiz(from *tgbotapi.User, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		c, err := entities.ParseCategory(args)
		if err != nil {
			msg := newHTMLMessage(chatID, msgChooseQuizCategory)
			msg.ReplyMarkup = buildCategoryKeyboard(buildQuizStartCallback)
			return h.send(msg)
		}

		return h.startQuiz(ctx, from, chatID, c)
	}
}

// handleProfile displays XP, per-category stats and badges.
func (h *Handler) handleProfile(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		h.logger.Debug("rendering profile", zap.Int64("user_id", userID))

		p, err := h.profileService.Summary(ctx, userID)
		if err != nil {
			h.logger.Error("failed to load profile",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			return h.send(newHTMLMessage(chatID, msgProfileUnavailable))
		}

		msg := newHTMLMessage(chatID, formatProfile(p))
		msg.ReplyMarkup = buildHistoryKeyboard()
		return h.send(msg)
	}
}

func (h *Handler) handleLeaderboard(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		top, err := h.profileService.Leaderboard(ctx, 0)
		if err != nil {
			h.logger.Error("failed to load leaderboard", zap.Error(err))
			return h.send(newHTMLMessage(chatID, msgLeaderboardUnavailable))
		}

		return h.send(newHTMLMessage(chatID, formatLeaderboard(top, userID)))
	}
}

func (h *Handler) resetPrompt(chatID int64) tgbotapi.MessageConfig {
	msg := newHTMLMessage(chatID, msgResetPrompt)
	msg.ReplyMarkup = buildResetKeyboard()
	return msg
}

// startQuiz opens a new session and sends its first question.
func (h *Handler) startQuiz(ctx context.Context, from *tgbotapi.User, chatID int64, c entities.Category) error {
	t, err := h.quizService.Start(ctx, from.ID, displayName(from), c)
	if err != nil {
		return fmt.Errorf("start quiz: %w", err)
	}

	h.dismissReminder(from.ID)

	q := t.Question()
	return h.sendVideo(chatID, q.Item, formatQuestionCaption(c, q), buildOptionsKeyboard(t.ID, q))
}

func (h *Handler) showCard(chatID int64, c entities.Category, index int) error {
	card, err := h.learningService.Card(c, index)
	if err != nil {
		return fmt.Errorf("get card: %w", err)
	}

	return h.sendVideo(chatID, card.Item, formatCardCaption(card), buildCardKeyboard(card))
}
