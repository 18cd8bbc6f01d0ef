package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sender tags a turn's author.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Greeting is the single turn every conversation starts with.
const Greeting = "سلام! من همدل هستم. هر وقت خواستید درباره احساساتتان صحبت کنید، اینجا هستم."

// fallbackReply is appended instead of an assistant reply when the
// collaborator cannot be reached. It is fixed so a failed attempt is
// indistinguishable from any other failed attempt.
const fallbackReply = "متأسفم، در حال حاضر نمی‌توانم پاسخ دهم. لطفاً کمی بعد دوباره تلاش کنید."

// Turn is one message of the conversation. Turns are never edited or removed.
type Turn struct {
	ID     string
	Sender Sender
	Text   string
	At     time.Time
}

// Responder sends a user message to the collaborator and returns its reply.
type Responder interface {
	Chat(ctx context.Context, message string) (string, error)
}

// Log is the append-only conversation. Every Append grows the log by exactly
// two turns: the user's message and either the assistant's reply or the fixed
// fallback. The user's turn is never lost and nothing is ever retried.
type Log struct {
	responder Responder

	mu    sync.Mutex
	epoch int
	turns []Turn
	now   func() time.Time
}

func NewLog(responder Responder) *Log {
	l := &Log{responder: responder, now: time.Now}
	l.Reset()
	return l
}

// Append records the user's turn, dispatches it, and records exactly one
// follow-up turn. The returned error reports a failed dispatch; the fallback
// turn has already been appended in that case. A Reset while the dispatch is
// in flight swallows the follow-up, so a fresh conversation never receives a
// reply addressed to the old one.
func (l *Log) Append(ctx context.Context, userText string) error {
	l.mu.Lock()
	epoch := l.epoch
	l.pushLocked(SenderUser, userText)
	l.mu.Unlock()

	reply, err := l.responder.Chat(ctx, userText)

	l.mu.Lock()
	if l.epoch == epoch {
		if err != nil {
			l.pushLocked(SenderAssistant, fallbackReply)
		} else {
			l.pushLocked(SenderAssistant, reply)
		}
	}
	l.mu.Unlock()
	return err
}

// Turns returns a copy of the conversation, oldest first.
func (l *Log) Turns() []Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len returns the number of turns.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.turns)
}

// Reset restores the conversation to its single greeting turn and discards
// the follow-up of any dispatch still in flight.
func (l *Log) Reset() {
	l.mu.Lock()
	l.epoch++
	l.turns = l.turns[:0]
	l.pushLocked(SenderAssistant, Greeting)
	l.mu.Unlock()
}

// pushLocked appends a turn. Callers must hold l.mu.
func (l *Log) pushLocked(sender Sender, text string) {
	l.turns = append(l.turns, Turn{
		ID:     uuid.NewString(),
		Sender: sender,
		Text:   text,
		At:     l.now(),
	})
}
