// Package supabase implements the repository contracts on a Supabase
// (PostgREST) project with the hosted tables user_memory(category, key,
// value) and messages(sender, content).
package supabase

import (
	"context"
	"fmt"

	"boardroom-backend/internal/domain"
	"boardroom-backend/internal/repository"
	appErrors "boardroom-backend/pkg/errors"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

// Store talks to Supabase through its PostgREST endpoint.
type Store struct {
	client        *supa.Client
	memoryTable   string
	messagesTable string
}

var (
	_ repository.Store        = (*Store)(nil)
	_ repository.MemoryWriter = (*Store)(nil)
)

// NewStore creates a Supabase-backed store. Empty table names fall back to
// the defaults.
func NewStore(url, key, memoryTable, messagesTable string) (*Store, error) {
	if url == "" || key == "" {
		return nil, fmt.Errorf("supabase url and key must be set")
	}
	client, err := supa.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create Supabase client: %w", err)
	}
	if memoryTable == "" {
		memoryTable = repository.DefaultMemoryTable
	}
	if messagesTable == "" {
		messagesTable = repository.DefaultMessagesTable
	}
	return &Store{
		client:        client,
		memoryTable:   memoryTable,
		messagesTable: messagesTable,
	}, nil
}

// ListMemories reads the full memory table ordered by category.
// The PostgREST client does not take a context; ctx is accepted for the
// interface and ignored.
func (s *Store) ListMemories(ctx context.Context) ([]domain.MemoryRecord, error) {
	var rows []domain.MemoryRecord
	_, err := s.client.From(s.memoryTable).
		Select("category,key,value", "", false).
		Order("category", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, appErrors.NewStoreRead(fmt.Sprintf("select %s", s.memoryTable), err)
	}
	return rows, nil
}

// AppendTurns inserts one row per turn in a single request.
func (s *Store) AppendTurns(ctx context.Context, turns ...domain.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	_, _, err := s.client.From(s.messagesTable).
		Insert(repository.ToMessageRows(turns), false, "", "minimal", "").
		Execute()
	if err != nil {
		return appErrors.NewStoreWrite(fmt.Sprintf("insert %s", s.messagesTable), err)
	}
	return nil
}

// AddMemory inserts one memory row.
func (s *Store) AddMemory(ctx context.Context, r domain.MemoryRecord) error {
	_, _, err := s.client.From(s.memoryTable).
		Insert(r, false, "", "minimal", "").
		Execute()
	if err != nil {
		return appErrors.NewStoreWrite(fmt.Sprintf("insert %s", s.memoryTable), err)
	}
	return nil
}

// Close is a no-op; the client holds no connections.
func (s *Store) Close() error { return nil }
