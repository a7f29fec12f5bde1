// Package llm talks to the chat-completion providers. A single Gateway
// implementation is parameterized by a Config record and instantiated once
// per provider.
package llm

import (
	"context"
	"errors"
	"fmt"

	"boardroom-backend/internal/domain"
)

// Provider produces one reply for a conversation.
type Provider interface {
	// Name is the provider's short name, used in logs and metrics.
	Name() string
	// Sender is the transcript sender a reply from this provider carries.
	Sender() domain.Sender
	// Persona is the name the provider answers to in its system prompt.
	Persona() string
	// Complete sends the request and returns the extracted reply text.
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is what a provider receives for one call. It is built fresh per
// call and not retained.
type Request struct {
	SystemPrompt string
	History      []domain.Message
	NewMessage   string
}

// Messages returns History followed by the new user message.
func (r Request) Messages() []domain.Message {
	msgs := make([]domain.Message, 0, len(r.History)+1)
	msgs = append(msgs, r.History...)
	return append(msgs, domain.Message{Role: domain.RoleUser, Content: r.NewMessage})
}

// ProviderError reports a non-success answer from a provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// StatusOf returns the upstream status carried by err, if any.
func StatusOf(err error) (int, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.StatusCode, true
	}
	return 0, false
}
