package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
	"github.com/aliskhannn/bsl-quest/internal/service"
)

// buildCategoryKeyboard lists every category; data builds each button's callback.
func buildCategoryKeyboard(data func(entities.Category) string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range entities.Categories() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(categoryTitle(c), data(c)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func buildLearnStartCallback(c entities.Category) string {
	return buildCardCallback(c, 0)
}

// buildOptionsKeyboard builds keyboard for quiz question.
func buildOptionsKeyboard(sessionID string, q service.Question) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, option := range q.Options {
		button := tgbotapi.NewInlineKeyboardButtonData(option, buildAnswerCallback(sessionID, q.Index, i))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func buildNextKeyboard(sessionID string, last bool) tgbotapi.InlineKeyboardMarkup {
	label := "Next ▶️"
	if last {
		label = "See results 🏁"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, buildNextCallback(sessionID)),
		),
	)
}

// emptyKeyboard removes inline buttons from an edited message.
func emptyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
}

// buildResultKeyboard builds keyboard for quiz results screen.
func buildResultKeyboard(c entities.Category) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Play again", buildQuizStartCallback(c)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📚 Review the cards", buildLearnStartCallback(c)),
		),
	)
}

// buildCardKeyboard builds the flashcard navigation; the last card offers Finish.
func buildCardKeyboard(card service.Card) tgbotapi.InlineKeyboardMarkup {
	nav := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Previous", buildCardCallback(card.Category, card.Index-1)),
		tgbotapi.NewInlineKeyboardButtonData("Next ▶️", buildCardCallback(card.Category, card.Index+1)),
	)

	if !card.IsLast() {
		return tgbotapi.NewInlineKeyboardMarkup(nav)
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		nav,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Finish", buildDoneCallback(card.Category)),
		),
	)
}

func buildBadgeKeyboard(c entities.Category) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 Take the quiz", buildQuizStartCallback(c)),
		),
	)
}

func buildHistoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range entities.Categories() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(categoryEmoji[c]+" History", buildHistoryCallback(c)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func buildResetKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Yes, clear it", buildResetConfirmCallback()),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", buildResetCancelCallback()),
		),
	)
}

func buildReminderKeyboard(c entities.Category) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 Practise "+c.DisplayName(), buildQuizStartCallback(c)),
		),
	)
}
