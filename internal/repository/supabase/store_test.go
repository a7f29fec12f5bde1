package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardroom-backend/internal/domain"
	"boardroom-backend/internal/repository"
	appErrors "boardroom-backend/pkg/errors"
)

type fakePostgREST struct {
	mu       sync.Mutex
	query    string
	apiKey   string
	inserted []repository.MessageRow
	memories []domain.MemoryRecord
	failRead bool
}

func (f *fakePostgREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.apiKey = r.Header.Get("apikey")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/rest/v1/user_memory":
		f.query = r.URL.RawQuery
		if f.failRead {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"code":"XX000","message":"boom"}`))
			return
		}
		_, _ = w.Write([]byte(`[
			{"category":"diet","key":"style","value":"vegan"},
			{"category":"work","key":"role","value":"engineer"}
		]`))
	case r.Method == http.MethodPost && r.URL.Path == "/rest/v1/user_memory":
		body, _ := io.ReadAll(r.Body)
		var rec domain.MemoryRecord
		_ = json.Unmarshal(body, &rec)
		f.memories = append(f.memories, rec)
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodPost && r.URL.Path == "/rest/v1/messages":
		body, _ := io.ReadAll(r.Body)
		var rows []repository.MessageRow
		_ = json.Unmarshal(body, &rows)
		f.inserted = append(f.inserted, rows...)
		w.WriteHeader(http.StatusCreated)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestStore(t *testing.T, fake *fakePostgREST) *Store {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewStore(srv.URL, "anon-key", "", "")
	require.NoError(t, err)
	return s
}

func TestListMemories(t *testing.T) {
	fake := &fakePostgREST{}
	s := newTestStore(t, fake)

	records, err := s.ListMemories(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.MemoryRecord{
		{Category: "diet", Key: "style", Value: "vegan"},
		{Category: "work", Key: "role", Value: "engineer"},
	}, records)
	assert.Contains(t, fake.query, "category.asc")
	assert.Equal(t, "anon-key", fake.apiKey)
}

func TestListMemoriesFailure(t *testing.T) {
	fake := &fakePostgREST{failRead: true}
	s := newTestStore(t, fake)

	_, err := s.ListMemories(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.IsStoreRead(err))
}

func TestAppendTurns(t *testing.T) {
	fake := &fakePostgREST{}
	s := newTestStore(t, fake)
	at := time.Now()

	err := s.AppendTurns(context.Background(),
		domain.NewTurn(domain.SenderUser, "hi", at),
		domain.NewTurn(domain.SenderClaude, "hello", at),
	)
	require.NoError(t, err)

	assert.Equal(t, []repository.MessageRow{
		{Sender: "user", Content: "hi"},
		{Sender: "claude", Content: "hello"},
	}, fake.inserted)
}

func TestAppendNothing(t *testing.T) {
	fake := &fakePostgREST{}
	s := newTestStore(t, fake)

	require.NoError(t, s.AppendTurns(context.Background()))
	assert.Empty(t, fake.inserted)
}

func TestNewStoreRequiresCredentials(t *testing.T) {
	_, err := NewStore("", "", "", "")
	assert.Error(t, err)
}

func TestAddMemory(t *testing.T) {
	fake := &fakePostgREST{}
	s := newTestStore(t, fake)

	rec := domain.MemoryRecord{Category: "diet", Key: "style", Value: "vegan"}
	require.NoError(t, s.AddMemory(context.Background(), rec))
	assert.Equal(t, []domain.MemoryRecord{rec}, fake.memories)
}
