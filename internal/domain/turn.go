package domain

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Sender identifies who contributed a turn to the conversation.
type Sender string

const (
	SenderUser    Sender = "user"
	SenderClaude  Sender = "claude"
	SenderChatGPT Sender = "chatgpt"
)

// Label is the display name used in transcripts and in the bracketed
// history prefix sent back to providers.
func (s Sender) Label() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderClaude:
		return "Claude"
	case SenderChatGPT:
		return "ChatGPT"
	default:
		return string(s)
	}
}

// IsProvider reports whether the sender is one of the model providers.
func (s Sender) IsProvider() bool {
	return s == SenderClaude || s == SenderChatGPT
}

// Valid reports whether s is a known sender.
func (s Sender) Valid() bool {
	return s == SenderUser || s.IsProvider()
}

// Turn is one immutable contribution to the transcript.
type Turn struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn creates a turn with a time-ordered ID.
func NewTurn(sender Sender, text string, at time.Time) Turn {
	return Turn{
		ID:        ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String(),
		Sender:    sender,
		Text:      text,
		Timestamp: at,
	}
}

// Role is the provider-side message role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the history sent to a provider.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Transcript is the ordered list of turns in a conversation. Methods never
// modify the receiver; they return new values.
type Transcript []Turn

// Append returns a new transcript with turns added at the end.
func (t Transcript) Append(turns ...Turn) Transcript {
	out := make(Transcript, 0, len(t)+len(turns))
	out = append(out, t...)
	return append(out, turns...)
}

// Window returns the last n turns. n <= 0 means the whole transcript.
func (t Transcript) Window(n int) Transcript {
	if n <= 0 || n >= len(t) {
		return t
	}
	return t[len(t)-n:]
}

// History collapses the transcript into the two-role schema both providers
// accept. Every turn keeps its original sender as a "[Label]: " prefix so a
// provider can tell which assistant said what.
func (t Transcript) History() []Message {
	msgs := make([]Message, 0, len(t))
	for _, turn := range t {
		role := RoleAssistant
		if turn.Sender == SenderUser {
			role = RoleUser
		}
		msgs = append(msgs, Message{
			Role:    role,
			Content: fmt.Sprintf("[%s]: %s", turn.Sender.Label(), turn.Text),
		})
	}
	return msgs
}
