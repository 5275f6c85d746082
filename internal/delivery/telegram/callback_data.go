package telegram

import (
	"errors"
	"strconv"
	"strings"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
)

var errBadCallback = errors.New("malformed callback data")

// Callback action constants.
const (
	actionQuiz   = "quiz"
	actionAnswer = "ans"
	actionNext   = "next"
	actionCard   = "card"
	actionDone   = "done"
	actionHist   = "hist"
	actionReset  = "reset"
)

const (
	resetConfirm = "confirm"
	resetCancel  = "cancel"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

func (cd callbackData) categoryParam(i int) (entities.Category, error) {
	if i >= len(cd.Params) {
		return "", errBadCallback
	}
	return entities.ParseCategory(cd.Params[i])
}

func (cd callbackData) intParam(i int) (int, error) {
	if i >= len(cd.Params) {
		return 0, errBadCallback
	}
	n, err := strconv.Atoi(cd.Params[i])
	if err != nil {
		return 0, errBadCallback
	}
	return n, nil
}

func (cd callbackData) stringParam(i int) (string, error) {
	if i >= len(cd.Params) || cd.Params[i] == "" {
		return "", errBadCallback
	}
	return cd.Params[i], nil
}

func buildQuizStartCallback(c entities.Category) string {
	return callbackData{Action: actionQuiz, Params: []string{string(c)}}.encode()
}

// buildAnswerCallback carries the question index so taps on an old
// question can be told apart from the current one.
func buildAnswerCallback(sessionID string, questionIndex, option int) string {
	return callbackData{
		Action: actionAnswer,
		Params: []string{sessionID, strconv.Itoa(questionIndex), strconv.Itoa(option)},
	}.encode()
}

func buildNextCallback(sessionID string) string {
	return callbackData{Action: actionNext, Params: []string{sessionID}}.encode()
}

func buildCardCallback(c entities.Category, index int) string {
	return callbackData{Action: actionCard, Params: []string{string(c), strconv.Itoa(index)}}.encode()
}

func buildDoneCallback(c entities.Category) string {
	return callbackData{Action: actionDone, Params: []string{string(c)}}.encode()
}

func buildHistoryCallback(c entities.Category) string {
	return callbackData{Action: actionHist, Params: []string{string(c)}}.encode()
}

func buildResetConfirmCallback() string {
	return callbackData{Action: actionReset, Params: []string{resetConfirm}}.encode()
}

func buildResetCancelCallback() string {
	return callbackData{Action: actionReset, Params: []string{resetCancel}}.encode()
}
