package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResponder struct {
	reply  string
	err    error
	calls  int
	last   string
	onChat func()
}

func (s *stubResponder) Chat(_ context.Context, message string) (string, error) {
	s.calls++
	s.last = message
	if s.onChat != nil {
		s.onChat()
	}
	return s.reply, s.err
}

func TestNewLogStartsWithGreeting(t *testing.T) {
	log := NewLog(&stubResponder{})

	turns := log.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, SenderAssistant, turns[0].Sender)
	assert.Equal(t, Greeting, turns[0].Text)
}

func TestAppendGrowsByTwoOnSuccess(t *testing.T) {
	responder := &stubResponder{reply: "چه خبر خوبی!"}
	log := NewLog(responder)

	require.NoError(t, log.Append(context.Background(), "حالم خوبه"))

	turns := log.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, SenderUser, turns[1].Sender)
	assert.Equal(t, "حالم خوبه", turns[1].Text)
	assert.Equal(t, SenderAssistant, turns[2].Sender)
	assert.Equal(t, "چه خبر خوبی!", turns[2].Text)
	assert.Equal(t, "حالم خوبه", responder.last)
}

func TestAppendGrowsByTwoOnFailure(t *testing.T) {
	responder := &stubResponder{err: errors.New("collaborator unreachable")}
	log := NewLog(responder)

	err := log.Append(context.Background(), "سلام")
	require.Error(t, err)

	// The user's turn is kept and the fixed fallback stands in for the reply.
	turns := log.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, "سلام", turns[1].Text)
	assert.Equal(t, SenderAssistant, turns[2].Sender)
	assert.Equal(t, fallbackReply, turns[2].Text)

	// Nothing is retried.
	assert.Equal(t, 1, responder.calls)
}

func TestTurnsAreCopies(t *testing.T) {
	log := NewLog(&stubResponder{reply: "باشه"})
	require.NoError(t, log.Append(context.Background(), "اول"))

	turns := log.Turns()
	turns[0].Text = "دستکاری"
	assert.Equal(t, Greeting, log.Turns()[0].Text)
}

func TestReset(t *testing.T) {
	log := NewLog(&stubResponder{reply: "باشه"})
	require.NoError(t, log.Append(context.Background(), "اول"))
	require.Equal(t, 3, log.Len())

	log.Reset()
	turns := log.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, Greeting, turns[0].Text)
}

func TestResetDuringDispatchDropsFollowUp(t *testing.T) {
	responder := &stubResponder{reply: "چه خوب"}
	log := NewLog(responder)
	responder.onChat = log.Reset

	require.NoError(t, log.Append(context.Background(), "سلام"))

	turns := log.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, Greeting, turns[0].Text)
}
