package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"boardroom-backend/internal/domain"
)

// FakeProvider is an in-process Provider for tests and offline development.
// By default it echoes the new message.
type FakeProvider struct {
	name    string
	sender  domain.Sender
	persona string

	mu        sync.Mutex
	replyFunc func(Request) (string, error)
	delay     time.Duration
	requests  []Request
}

var _ Provider = (*FakeProvider)(nil)

// NewFakeProvider creates a fake with the same identity as cfg.
func NewFakeProvider(cfg Config) *FakeProvider {
	f := &FakeProvider{name: cfg.Name, sender: cfg.Sender, persona: cfg.Persona}
	f.replyFunc = func(req Request) (string, error) {
		return fmt.Sprintf("%s heard: %s", f.persona, req.NewMessage), nil
	}
	return f
}

// SetReply makes every call return text.
func (f *FakeProvider) SetReply(text string) {
	f.SetReplyFunc(func(Request) (string, error) { return text, nil })
}

// SetError makes every call fail with err.
func (f *FakeProvider) SetError(err error) {
	f.SetReplyFunc(func(Request) (string, error) { return "", err })
}

// SetReplyFunc installs a custom responder.
func (f *FakeProvider) SetReplyFunc(fn func(Request) (string, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replyFunc = fn
}

// SetDelay makes every call wait d before answering.
func (f *FakeProvider) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

// Requests returns every request received so far.
func (f *FakeProvider) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *FakeProvider) Name() string          { return f.name }
func (f *FakeProvider) Sender() domain.Sender { return f.sender }
func (f *FakeProvider) Persona() string       { return f.persona }

// Complete records req, waits the configured delay and answers.
func (f *FakeProvider) Complete(ctx context.Context, req Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	delay, fn := f.delay, f.replyFunc
	f.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return fn(req)
}
