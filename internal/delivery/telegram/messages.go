// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
	"github.com/aliskhannn/bsl-quest/internal/service"
)

const msgCommands = "/learn - flashcards by category\n" +
	"/quiz - a ten-question quiz\n" +
	"/profile - your XP, scores and badges\n" +
	"/leaderboard - top learners\n" +
	"/reset - clear your score history\n" +
	"/help - show this list"

const (
	msgWelcome = "👋 <b>Welcome to BSL Quest!</b>\n\n" +
		"Learn British Sign Language one sign at a time. Watch the clip, pick the sign, earn XP.\n\n" +
		msgCommands
	msgHelp           = "<b>What can I do?</b>\n\n" + msgCommands
	msgUnknownCommand = "Unknown command. Here is what I understand:\n\n" + msgCommands
	msgInternalError  = "Something went wrong. Please try again later."

	msgChooseQuizCategory  = "🎯 <b>Pick a category for your quiz:</b>"
	msgChooseLearnCategory = "📚 <b>Pick a category to learn:</b>"

	msgAnswerFirst     = "Oops! Let's pick an answer before we jump to the next question."
	msgSessionExpired  = "This quiz has ended. Start a new one with /quiz."
	msgStaleQuestion   = "That question is already behind you."
	msgAlreadyAnswered = "You have already answered this one."
	msgBadgeKept       = "You already have this badge."

	msgProfileUnavailable     = "Could not load your profile. Please try again later."
	msgLeaderboardUnavailable = "Could not load the leaderboard. Please try again later."
	msgLeaderboardEmpty       = "🏆 Nobody is on the leaderboard yet. Finish a /quiz to be the first!"

	msgResetPrompt    = "⚠️ This clears your score history in every category. Your XP and badges stay.\n\nAre you sure?"
	msgResetDone      = "🧹 Your score history has been cleared."
	msgResetCancelled = "Nothing was changed."
)

var categoryEmoji = map[entities.Category]string{
	entities.CategoryAlphabet:  "🔤",
	entities.CategoryNumbers:   "🔢",
	entities.CategoryColours:   "🎨",
	entities.CategoryAnimals:   "🐾",
	entities.CategoryGreetings: "👋",
}

func categoryTitle(c entities.Category) string {
	return categoryEmoji[c] + " " + c.DisplayName()
}

func newHTMLMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return msg
}

func bold(s string) string {
	return "<b>" + html.EscapeString(s) + "</b>"
}

func formatQuestionCaption(c entities.Category, q service.Question) string {
	return fmt.Sprintf("%s · Question %d/%d\n\nWhich sign is this?",
		bold(categoryTitle(c)), q.Index+1, q.Total)
}

func formatAnswerCaption(c entities.Category, q service.Question, res service.AnswerResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s · Question %d/%d\n\n", bold(categoryTitle(c)), q.Index+1, q.Total))

	if res.Correct {
		sb.WriteString(fmt.Sprintf("✅ Correct! That is %s.", bold(res.Item.ID)))
		if res.Streak >= 2 {
			sb.WriteString(fmt.Sprintf("\n🔥 Streak: %d", res.Streak))
		}
	} else {
		sb.WriteString(fmt.Sprintf("❌ Not quite. You picked %s, the sign was %s.",
			bold(res.Selected), bold(res.Item.ID)))
	}

	if res.Change.Mastered {
		sb.WriteString("\n⭐ Mastered! It leaves your practice list.")
	}

	sb.WriteString(fmt.Sprintf("\n\nScore: %d/%d", res.Score, q.Total))
	return sb.String()
}

func formatResult(r *service.SessionResult) string {
	var line string
	switch r.Tier {
	case entities.TierPerfect:
		line = fmt.Sprintf("🏆 Congratulations! You got a perfect score and earned %d XP!", r.XP)
	case entities.TierGreat:
		line = fmt.Sprintf("🎉 Great job! You got %d/%d and earned %d XP!", r.Score, r.Total, r.XP)
	default:
		line = fmt.Sprintf("💪 Good effort! Keep practising to improve your score. You earned %d XP.", r.XP)
	}

	return fmt.Sprintf("%s\n\n%s", bold(categoryTitle(r.Category)+" quiz complete"), line)
}

func formatCardCaption(card service.Card) string {
	return fmt.Sprintf("%s · Card %d/%d\n\n%s",
		bold(categoryTitle(card.Category)), card.Index+1, card.Total, bold(card.Item.ID))
}

func formatBadgeAwarded(c entities.Category) string {
	return fmt.Sprintf("🏅 You finished every %s card and earned the %s!\n\nReady to test yourself?",
		c.DisplayName(), bold(c.Badge()))
}

func formatProfile(p *service.Profile) string {
	var sb strings.Builder
	sb.WriteString("<b>📊 Your profile</b>\n\n")
	sb.WriteString(fmt.Sprintf("⭐ <b>XP:</b> %d\n\n", p.XP))

	for _, st := range p.Stats {
		if st.Attempts == 0 {
			sb.WriteString(fmt.Sprintf("%s: not played yet\n", categoryTitle(st.Category)))
			continue
		}
		sb.WriteString(fmt.Sprintf("%s: best %d/10, last %d/10, %d played\n",
			categoryTitle(st.Category), st.BestScore, st.LastScore, st.Attempts))
	}

	sb.WriteString("\n<b>🏅 Badges</b>\n")
	if len(p.Badges) == 0 {
		sb.WriteString("None yet. Finish a category in /learn to earn one.")
	} else {
		for _, b := range p.Badges {
			sb.WriteString("• " + html.EscapeString(b) + "\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// historyLimit caps the records listed in one message.
const historyLimit = 15

func formatHistory(c entities.Category, records []entities.ScoreRecord) string {
	if len(records) == 0 {
		return fmt.Sprintf("%s\n\nNo quizzes played yet.", bold(categoryTitle(c)+" history"))
	}

	var sb strings.Builder
	sb.WriteString(bold(categoryTitle(c)+" history") + "\n\n")

	start := 0
	if len(records) > historyLimit {
		start = len(records) - historyLimit
	}
	for i := len(records) - 1; i >= start; i-- {
		r := records[i]
		sb.WriteString(fmt.Sprintf("%s  %d/%d\n", r.Timestamp.UTC().Format("02 Jan 2006 15:04"), r.Score, r.Total))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func formatLeaderboard(top []entities.UserXP, userID int64) string {
	if len(top) == 0 {
		return msgLeaderboardEmpty
	}

	var sb strings.Builder
	sb.WriteString("<b>🏆 Leaderboard</b>\n\n")

	for i, u := range top {
		place := fmt.Sprintf("%d.", i+1)
		switch i {
		case 0:
			place = "🥇"
		case 1:
			place = "🥈"
		case 2:
			place = "🥉"
		}

		name := html.EscapeString(u.DisplayName)
		if u.UserID == userID {
			name = "<b>" + name + " (you)</b>"
		}
		sb.WriteString(fmt.Sprintf("%s %s: %d XP\n", place, name, u.XP))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func formatFocusReminder(r entities.FocusReminder) string {
	noun := "signs"
	if r.FocusCount == 1 {
		noun = "sign"
	}
	return fmt.Sprintf("👋 You have %d %s to practise in %s. Ready for a quick quiz?",
		r.FocusCount, noun, bold(r.Category.DisplayName()))
}
