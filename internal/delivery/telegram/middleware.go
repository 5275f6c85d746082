package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type HandlerFunc func(ctx context.Context, chatID int64) error

func (h *Handler) withErrorHandling(fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if err := fn(ctx, chatID); err != nil {
			h.logger.Error("handle error",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
			h.sendError(chatID, msgInternalError)
			return nil
		}
		return nil
	}
}

// recoverUpdate keeps one bad update from stopping the polling loop.
func (h *Handler) recoverUpdate(update tgbotapi.Update) {
	if r := recover(); r != nil {
		h.logger.Error("panic while handling update",
			zap.Int("update_id", update.UpdateID),
			zap.Error(fmt.Errorf("%v", r)),
		)
	}
}
