package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"boardroom-backend/internal/domain"
	"boardroom-backend/internal/repository"
)

// TraceStore wraps a store with a span per call.
func TraceStore(store repository.Store, tracer trace.Tracer) repository.Store {
	return &tracedStore{store: store, tracer: tracer}
}

type tracedStore struct {
	store  repository.Store
	tracer trace.Tracer
}

func (s *tracedStore) ListMemories(ctx context.Context) ([]domain.MemoryRecord, error) {
	ctx, span := s.tracer.Start(ctx, "Store.ListMemories", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	records, err := s.store.ListMemories(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("memory.records", len(records)))
	return records, nil
}

func (s *tracedStore) AppendTurns(ctx context.Context, turns ...domain.Turn) error {
	ctx, span := s.tracer.Start(ctx, "Store.AppendTurns",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.Int("turns.count", len(turns))),
	)
	defer span.End()

	if err := s.store.AppendTurns(ctx, turns...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s *tracedStore) Close() error { return s.store.Close() }

// InstrumentStore wraps a store with operation counters.
func InstrumentStore(store repository.Store, collector *Collector) repository.Store {
	return &instrumentedStore{store: store, collector: collector}
}

type instrumentedStore struct {
	store     repository.Store
	collector *Collector
}

func (s *instrumentedStore) ListMemories(ctx context.Context) ([]domain.MemoryRecord, error) {
	start := time.Now()
	records, err := s.store.ListMemories(ctx)
	s.collector.RecordStoreOperation("list_memories", err, time.Since(start))
	return records, err
}

func (s *instrumentedStore) AppendTurns(ctx context.Context, turns ...domain.Turn) error {
	start := time.Now()
	err := s.store.AppendTurns(ctx, turns...)
	s.collector.RecordStoreOperation("append_turns", err, time.Since(start))
	return err
}

func (s *instrumentedStore) Close() error { return s.store.Close() }
