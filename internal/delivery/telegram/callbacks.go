package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
	"github.com/aliskhannn/bsl-quest/internal/service"
)

// callbackFunc handles one action and returns the notice shown in the
// callback answer, if any.
type callbackFunc func(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		h.answerCallback(cb.ID, "")
		return
	}

	data := decodeCallback(cb.Data)

	var fn callbackFunc
	switch data.Action {
	case actionQuiz:
		fn = h.handleQuizCallback
	case actionAnswer:
		fn = h.handleAnswerCallback
	case actionNext:
		fn = h.handleNextCallback
	case actionCard:
		fn = h.handleCardCallback
	case actionDone:
		fn = h.handleDoneCallback
	case actionHist:
		fn = h.handleHistoryCallback
	case actionReset:
		fn = h.handleResetCallback
	default:
		h.logger.Debug("unknown callback action", zap.String("data", cb.Data))
		h.answerCallback(cb.ID, "")
		return
	}

	notice, err := fn(ctx, cb, data)
	switch {
	case errors.Is(err, errBadCallback), errors.Is(err, entities.ErrUnknownCategory):
		h.logger.Debug("invalid callback data", zap.String("data", cb.Data), zap.Error(err))
	case err != nil:
		h.logger.Error("callback failed",
			zap.Int64("user_id", cb.From.ID),
			zap.String("data", cb.Data),
			zap.Error(err),
		)
		h.sendError(cb.Message.Chat.ID, msgInternalError)
	}

	// Remove the user's "clock".
	h.answerCallback(cb.ID, notice)
}

func (h *Handler) answerCallback(id, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		h.logger.Debug("callback answer error", zap.Error(err))
	}
}

func (h *Handler) handleQuizCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	c, err := data.categoryParam(0)
	if err != nil {
		return "", err
	}

	return "", h.startQuiz(ctx, cb.From, cb.Message.Chat.ID, c)
}

func (h *Handler) handleAnswerCallback(_ context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	id, err := data.stringParam(0)
	if err != nil {
		return "", err
	}
	questionIndex, err := data.intParam(1)
	if err != nil {
		return "", err
	}
	option, err := data.intParam(2)
	if err != nil {
		return "", err
	}

	t, err := h.quizService.Get(id)
	if errors.Is(err, service.ErrSessionNotFound) {
		return msgSessionExpired, nil
	}
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}

	session := t.Session()
	if session.UserID != cb.From.ID {
		return "", nil
	}
	if session.QuestionIndex != questionIndex {
		return msgStaleQuestion, nil
	}

	q := t.Question()
	res, err := t.AnswerIndex(option)
	switch {
	case errors.Is(err, entities.ErrAlreadyAnswered):
		return msgAlreadyAnswered, nil
	case errors.Is(err, entities.ErrSessionComplete):
		return msgSessionExpired, nil
	case errors.Is(err, entities.ErrInvalidOption):
		return "", errBadCallback
	case err != nil:
		return "", fmt.Errorf("answer question: %w", err)
	}

	h.editAnswer(cb.Message, formatAnswerCaption(session.Category, q, res), buildNextKeyboard(t.ID, res.Last))

	if res.Correct {
		return "✅ Correct!", nil
	}
	return "❌ Not quite", nil
}

// editAnswer rewrites a question message in place. Questions sent as text
// after a failed upload carry no caption, so they are edited as text.
func (h *Handler) editAnswer(msg *tgbotapi.Message, text string, kb tgbotapi.InlineKeyboardMarkup) {
	if msg.Video == nil {
		edit := tgbotapi.NewEditMessageText(msg.Chat.ID, msg.MessageID, text)
		edit.ParseMode = tgbotapi.ModeHTML
		edit.ReplyMarkup = &kb
		_ = h.send(edit)
		return
	}

	edit := tgbotapi.NewEditMessageCaption(msg.Chat.ID, msg.MessageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.ReplyMarkup = &kb
	_ = h.send(edit)
}

func (h *Handler) handleNextCallback(_ context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	id, err := data.stringParam(0)
	if err != nil {
		return "", err
	}

	t, err := h.quizService.Get(id)
	if errors.Is(err, service.ErrSessionNotFound) {
		return msgSessionExpired, nil
	}
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	if t.Session().UserID != cb.From.ID {
		return "", nil
	}

	res, err := t.Advance()
	switch {
	case errors.Is(err, entities.ErrNotAnswered):
		return msgAnswerFirst, nil
	case errors.Is(err, entities.ErrSessionComplete):
		return msgSessionExpired, nil
	case err != nil:
		return "", fmt.Errorf("advance session: %w", err)
	}

	chatID := cb.Message.Chat.ID
	_ = h.send(tgbotapi.NewEditMessageReplyMarkup(chatID, cb.Message.MessageID, emptyKeyboard()))

	if res.Completed {
		msg := newHTMLMessage(chatID, formatResult(res.Result))
		msg.ReplyMarkup = buildResultKeyboard(res.Result.Category)
		return "", h.send(msg)
	}

	q := res.Question
	category := t.Session().Category
	return "", h.sendVideo(chatID, q.Item, formatQuestionCaption(category, q), buildOptionsKeyboard(t.ID, q))
}

func (h *Handler) handleCardCallback(_ context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	c, err := data.categoryParam(0)
	if err != nil {
		return "", err
	}
	index, err := data.intParam(1)
	if err != nil {
		return "", err
	}

	// Flip cards in place rather than stacking clips in the chat.
	if cb.Message.Video != nil {
		h.deleteMessage(cb.Message.Chat.ID, cb.Message.MessageID)
	}

	return "", h.showCard(cb.Message.Chat.ID, c, index)
}

func (h *Handler) handleDoneCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	c, err := data.categoryParam(0)
	if err != nil {
		return "", err
	}

	awarded, err := h.learningService.Complete(ctx, cb.From.ID, c)
	if err != nil {
		return "", fmt.Errorf("complete category: %w", err)
	}
	if !awarded {
		return msgBadgeKept, nil
	}

	msg := newHTMLMessage(cb.Message.Chat.ID, formatBadgeAwarded(c))
	msg.ReplyMarkup = buildBadgeKeyboard(c)
	return "🏅", h.send(msg)
}

func (h *Handler) handleHistoryCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	c, err := data.categoryParam(0)
	if err != nil {
		return "", err
	}

	records, err := h.profileService.History(ctx, cb.From.ID, c)
	if err != nil {
		return "", fmt.Errorf("get history: %w", err)
	}

	return "", h.send(newHTMLMessage(cb.Message.Chat.ID, formatHistory(c, records)))
}

func (h *Handler) handleResetCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	choice, err := data.stringParam(0)
	if err != nil {
		return "", err
	}

	text := msgResetCancelled
	switch choice {
	case resetConfirm:
		if err := h.resetService.ResetScores(ctx, cb.From.ID); err != nil {
			return "", fmt.Errorf("reset scores: %w", err)
		}
		text = msgResetDone
	case resetCancel:
	default:
		return "", errBadCallback
	}

	edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	return "", h.send(edit)
}
