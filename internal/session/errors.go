package session

import (
	"errors"

	"github.com/getsentry/sentry-go"

	"github.com/hamdel-app/hamdel/internal/assessment"
	"github.com/hamdel-app/hamdel/internal/collab"
	"github.com/hamdel-app/hamdel/internal/tracker"
)

// ErrBusy rejects an action while an identical one is still in flight.
var ErrBusy = errors.New("action already in flight")

// ErrNoQuestionnaire rejects questionnaire operations outside the
// taking-questionnaire screen.
var ErrNoQuestionnaire = errors.New("no questionnaire in progress")

// User-facing messages shown inside the current screen.
const (
	msgNetwork        = "خطا در ارتباط با سرور. لطفاً دوباره تلاش کنید."
	msgSessionExpired = "نشست شما منقضی شده است. لطفاً دوباره وارد شوید."
	msgInvalidInput   = "اطلاعات واردشده معتبر نیست."
	msgIncomplete     = "لطفاً به تمام سوالات پاسخ دهید."
)

// messageFor maps an error to the message shown to the user. Server-supplied
// messages (wrong password, duplicate email) pass through untouched; anything
// transport-shaped collapses to a single retry hint.
func messageFor(err error) string {
	switch {
	case errors.Is(err, assessment.ErrIncomplete):
		return msgIncomplete
	case errors.Is(err, assessment.ErrInvalidItem), errors.Is(err, tracker.ErrValidation):
		return msgInvalidInput
	case errors.Is(err, collab.ErrUnauthorized):
		return msgSessionExpired
	}
	var apiErr *collab.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgNetwork
}

// capture forwards unexpected failures to Sentry when a client is configured.
// Validation errors and 4xx responses are expected traffic and stay local.
func capture(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, assessment.ErrIncomplete) ||
		errors.Is(err, assessment.ErrInvalidItem) ||
		errors.Is(err, tracker.ErrValidation) {
		return
	}
	var apiErr *collab.APIError
	if errors.As(err, &apiErr) && apiErr.Status < 500 {
		return
	}
	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.CaptureException(err)
	}
}
