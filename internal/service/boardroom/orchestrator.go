package boardroom

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"boardroom-backend/internal/domain"
	"boardroom-backend/internal/infrastructure/observability"
	"boardroom-backend/internal/repository"
	"boardroom-backend/internal/service/mention"
	appErrors "boardroom-backend/pkg/errors"
)

// FallbackText replaces the reply of a provider whose call failed.
const FallbackText = "Sorry, I'm having trouble connecting right now."

// Settings are the orchestrator knobs that can change at runtime.
type Settings struct {
	// MaxHistoryTurns caps how many prior turns are sent as history.
	// Zero sends the whole transcript.
	MaxHistoryTurns int
	FallbackText    string
}

// Reply is the outcome of one provider call within a dispatch.
type Reply struct {
	Sender domain.Sender `json:"sender"`
	Text   string        `json:"text"`
	OK     bool          `json:"ok"`
	Err    error         `json:"-"`
}

// Result is what a dispatch produces. Transcript is a new value; the input
// transcript is never modified.
type Result struct {
	Transcript domain.Transcript `json:"transcript"`
	Turns      []domain.Turn     `json:"turns"`
	Replies    []Reply           `json:"replies"`
	Decision   mention.Decision  `json:"routing"`
}

// Orchestrator routes one user message to the addressed providers.
type Orchestrator struct {
	responder *Responder
	parser    *mention.Parser
	store     repository.TurnWriter
	guard     *SessionGuard
	settings  atomic.Pointer[Settings]
	collector *observability.Collector
	tracer    trace.Tracer
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrchestrator wires an orchestrator. Both providers must be registered
// with responder.
func NewOrchestrator(
	responder *Responder,
	parser *mention.Parser,
	store repository.TurnWriter,
	settings Settings,
	collector *observability.Collector,
	logger *zap.Logger,
) (*Orchestrator, error) {
	for _, s := range []domain.Sender{domain.SenderClaude, domain.SenderChatGPT} {
		if _, ok := responder.Provider(s); !ok {
			return nil, fmt.Errorf("no provider registered for %s", s)
		}
	}
	if parser == nil {
		parser = mention.NewParser(nil, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{
		responder: responder,
		parser:    parser,
		store:     store,
		guard:     NewSessionGuard(),
		collector: collector,
		tracer:    observability.Tracer(),
		logger:    logger,
		now:       time.Now,
	}
	o.UpdateSettings(settings)
	return o, nil
}

// UpdateSettings swaps the runtime settings. Dispatches already running keep
// the settings they started with.
func (o *Orchestrator) UpdateSettings(s Settings) {
	if s.FallbackText == "" {
		s.FallbackText = FallbackText
	}
	if s.MaxHistoryTurns < 0 {
		s.MaxHistoryTurns = 0
	}
	o.settings.Store(&s)
}

// Settings returns the current settings.
func (o *Orchestrator) Settings() Settings {
	return *o.settings.Load()
}

// Busy reports whether session has a dispatch in flight.
func (o *Orchestrator) Busy(session string) bool {
	return o.guard.Busy(session)
}

// Submit is Dispatch behind the per-session guard. A second submission for a
// session that is still dispatching fails with a BUSY error. An empty
// session id is not guarded.
func (o *Orchestrator) Submit(ctx context.Context, session string, transcript domain.Transcript, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, appErrors.NewValidation("message is required")
	}
	if session != "" {
		if !o.guard.TryAcquire(session) {
			return Result{}, appErrors.NewBusy(fmt.Sprintf("session %s is waiting for a reply", session))
		}
		defer o.guard.Release(session)
	}
	return o.Dispatch(ctx, transcript, text)
}

// Dispatch routes text, calls the targeted providers concurrently and returns
// the transcript extended with the user turn followed by one turn per target
// in Claude, ChatGPT order. A failed call contributes a fallback turn and is
// not persisted. If any call succeeded, the user turn and the successful
// replies are persisted in one append.
func (o *Orchestrator) Dispatch(ctx context.Context, transcript domain.Transcript, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, appErrors.NewValidation("message is required")
	}
	settings := o.Settings()
	decision := o.parser.Parse(text)
	targets := decision.Targets()

	ctx, span := o.tracer.Start(ctx, "Orchestrator.Dispatch",
		trace.WithAttributes(
			attribute.String("boardroom.route", decision.Route()),
			attribute.Int("transcript.length", len(transcript)),
		),
	)
	defer span.End()

	userTurn := domain.NewTurn(domain.SenderUser, text, o.now())
	history := transcript.Window(settings.MaxHistoryTurns).History()

	// Each branch writes only its own slot, so the join order is fixed by
	// targets regardless of which call settles first.
	replies := make([]Reply, len(targets))
	var g errgroup.Group
	for i, sender := range targets {
		i, sender := i, sender
		p, _ := o.responder.Provider(sender)
		g.Go(func() error {
			reply, err := o.responder.Ask(ctx, p, history, userTurn.Text)
			replies[i] = Reply{Sender: sender, Text: reply, OK: err == nil, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	at := o.now()
	turns := make([]domain.Turn, 0, len(replies)+1)
	turns = append(turns, userTurn)
	persisted := []domain.Turn{userTurn}
	for i := range replies {
		if !replies[i].OK {
			replies[i].Text = settings.FallbackText
		}
		turn := domain.NewTurn(replies[i].Sender, replies[i].Text, at)
		turns = append(turns, turn)
		if replies[i].OK {
			persisted = append(persisted, turn)
		}
	}

	if len(persisted) > 1 {
		if err := o.store.AppendTurns(ctx, persisted...); err != nil {
			o.logger.Error("failed to persist dispatch",
				zap.String("route", decision.Route()),
				zap.Int("turns", len(persisted)),
				zap.Error(err))
		}
	}

	o.collector.RecordDispatch(decision.Route())
	o.logger.Info("dispatch settled",
		zap.String("route", decision.Route()),
		zap.Int("succeeded", len(persisted)-1),
		zap.Int("failed", len(replies)-(len(persisted)-1)))

	return Result{
		Transcript: transcript.Append(turns...),
		Turns:      turns,
		Replies:    replies,
		Decision:   decision,
	}, nil
}
