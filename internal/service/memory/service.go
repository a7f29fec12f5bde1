// Package memory serves the user memory profile: the flat category/key/value
// table that is folded into every system prompt.
package memory

import (
	"context"

	"go.uber.org/zap"

	"boardroom-backend/internal/domain"
	"boardroom-backend/internal/repository"
	"boardroom-backend/internal/service/prompt"
	appErrors "boardroom-backend/pkg/errors"
)

// Service defines the memory operations used by the API and the orchestrator.
type Service interface {
	// Records returns every memory row in store order.
	Records(ctx context.Context) ([]domain.MemoryRecord, error)

	// Profile returns the rows grouped by category.
	Profile(ctx context.Context) ([]domain.MemoryCategory, error)

	// SystemPrompt renders the prompt for persona. A failed read is logged
	// and the prompt is rendered without memory context.
	SystemPrompt(ctx context.Context, persona string) string
}

type service struct {
	reader repository.MemoryReader
	logger *zap.Logger
}

// NewService creates a memory service over reader.
func NewService(reader repository.MemoryReader, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{reader: reader, logger: logger}
}

func (s *service) Records(ctx context.Context) ([]domain.MemoryRecord, error) {
	records, err := s.reader.ListMemories(ctx)
	if err != nil {
		if appErrors.IsStoreRead(err) {
			return nil, err
		}
		return nil, appErrors.NewStoreRead("failed to list memories", err)
	}
	return records, nil
}

func (s *service) Profile(ctx context.Context) ([]domain.MemoryCategory, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	return domain.GroupMemories(records), nil
}

func (s *service) SystemPrompt(ctx context.Context, persona string) string {
	records, err := s.Records(ctx)
	if err != nil {
		s.logger.Warn("error fetching memories, continuing without context",
			zap.String("persona", persona),
			zap.Error(err))
		records = nil
	}
	return prompt.Build(persona, records)
}
