// Package boardroom runs conversations against the providers: a Responder
// for one provider call, and an Orchestrator that routes a user message to
// one or both providers and merges the replies into the transcript.
package boardroom

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"boardroom-backend/internal/domain"
	"boardroom-backend/internal/infrastructure/observability"
	"boardroom-backend/internal/repository"
	"boardroom-backend/internal/service/llm"
	"boardroom-backend/internal/service/memory"
	"boardroom-backend/internal/service/mention"
	appErrors "boardroom-backend/pkg/errors"
)

// Responder performs single provider calls: it renders the memory prompt,
// calls the provider and records the outcome.
type Responder struct {
	providers map[domain.Sender]llm.Provider
	memory    memory.Service
	store     repository.TurnWriter
	collector *observability.Collector
	tracer    trace.Tracer
	logger    *zap.Logger
	now       func() time.Time
	handles   *mention.Parser
}

// ResponderOption configures a Responder.
type ResponderOption func(*Responder)

// WithHandles makes Lookup accept the parser's configured handles.
func WithHandles(p *mention.Parser) ResponderOption {
	return func(r *Responder) {
		if p != nil {
			r.handles = p
		}
	}
}

// NewResponder creates a responder. collector may be nil. Without
// WithHandles, Lookup accepts the default handles.
func NewResponder(
	providers []llm.Provider,
	memorySvc memory.Service,
	store repository.TurnWriter,
	collector *observability.Collector,
	logger *zap.Logger,
	opts ...ResponderOption,
) (*Responder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	byS := make(map[domain.Sender]llm.Provider, len(providers))
	for _, p := range providers {
		if !p.Sender().IsProvider() {
			return nil, fmt.Errorf("provider %s has non-provider sender %q", p.Name(), p.Sender())
		}
		if _, dup := byS[p.Sender()]; dup {
			return nil, fmt.Errorf("duplicate provider for sender %q", p.Sender())
		}
		byS[p.Sender()] = p
	}
	r := &Responder{
		providers: byS,
		memory:    memorySvc,
		store:     store,
		collector: collector,
		tracer:    observability.Tracer(),
		logger:    logger,
		now:       time.Now,
		handles:   mention.NewParser(nil, nil),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Provider returns the provider answering as sender.
func (r *Responder) Provider(sender domain.Sender) (llm.Provider, bool) {
	p, ok := r.providers[sender]
	return p, ok
}

// Lookup resolves a provider id such as "claude" or a configured handle such
// as "gpt".
func (r *Responder) Lookup(id string) (llm.Provider, bool) {
	sender, ok := r.handles.Resolve(id)
	if !ok {
		return nil, false
	}
	return r.Provider(sender)
}

// Ask sends message with history to p and returns the reply text. Nothing is
// persisted.
func (r *Responder) Ask(ctx context.Context, p llm.Provider, history []domain.Message, message string) (string, error) {
	ctx, span := r.tracer.Start(ctx, "Provider.Complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("provider.name", p.Name()),
			attribute.Int("history.length", len(history)),
		),
	)
	defer span.End()

	req := llm.Request{
		SystemPrompt: r.memory.SystemPrompt(ctx, p.Persona()),
		History:      history,
		NewMessage:   message,
	}

	start := time.Now()
	reply, err := p.Complete(ctx, req)
	r.collector.RecordProviderCall(p.Name(), outcomeOf(err), time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Error("provider call failed",
			zap.String("provider", p.Name()),
			zap.String("error_type", string(appErrors.TypeOf(err))),
			zap.Error(err))
		return "", err
	}
	span.SetAttributes(attribute.Int("reply.length", len(reply)))
	return reply, nil
}

// Chat is the single-provider exchange: ask, then on success persist the
// user message and the reply as a pair. A persistence failure is logged and
// does not affect the returned reply.
func (r *Responder) Chat(ctx context.Context, id string, history []domain.Message, message string) (string, error) {
	p, ok := r.Lookup(id)
	if !ok {
		return "", appErrors.NewValidation(fmt.Sprintf("unknown provider %q", id))
	}

	reply, err := r.Ask(ctx, p, history, message)
	if err != nil {
		return "", err
	}

	at := r.now()
	r.persist(ctx,
		domain.NewTurn(domain.SenderUser, message, at),
		domain.NewTurn(p.Sender(), reply, at),
	)
	return reply, nil
}

func (r *Responder) persist(ctx context.Context, turns ...domain.Turn) {
	if err := r.store.AppendTurns(ctx, turns...); err != nil {
		r.logger.Error("failed to persist turns",
			zap.Int("turns", len(turns)),
			zap.Error(err))
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeOK
	case appErrors.IsUpstreamRejected(err):
		return observability.OutcomeRejected
	default:
		return observability.OutcomeUnavailable
	}
}
