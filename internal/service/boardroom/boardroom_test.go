package boardroom

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"boardroom-backend/internal/domain"
	"boardroom-backend/internal/infrastructure/observability"
	"boardroom-backend/internal/repository/mocks"
	"boardroom-backend/internal/service/llm"
	"boardroom-backend/internal/service/memory"
	"boardroom-backend/internal/service/mention"
	appErrors "boardroom-backend/pkg/errors"
)

type rig struct {
	claude    *llm.FakeProvider
	chatgpt   *llm.FakeProvider
	store     *mocks.MockStore
	collector *observability.Collector
	responder *Responder
	orch      *Orchestrator
}

func newRig(t *testing.T, settings Settings) *rig {
	t.Helper()
	r := &rig{
		claude:    llm.NewFakeProvider(llm.ClaudeConfig("")),
		chatgpt:   llm.NewFakeProvider(llm.ChatGPTConfig("")),
		store:     mocks.NewMockStore(domain.MemoryRecord{Category: "diet", Key: "style", Value: "vegan"}),
		collector: observability.NewCollector("boardroom_test"),
	}
	r.claude.SetReply("claude says hi")
	r.chatgpt.SetReply("chatgpt says hi")

	logger := zap.NewNop()
	var err error
	r.responder, err = NewResponder(
		[]llm.Provider{r.claude, r.chatgpt},
		memory.NewService(r.store, logger),
		r.store,
		r.collector,
		logger,
	)
	require.NoError(t, err)

	r.orch, err = NewOrchestrator(r.responder, mention.NewParser(nil, nil), r.store, settings, r.collector, logger)
	require.NoError(t, err)
	return r
}

func senders(turns []domain.Turn) []domain.Sender {
	out := make([]domain.Sender, len(turns))
	for i, t := range turns {
		out[i] = t.Sender
	}
	return out
}

func texts(turns []domain.Turn) []string {
	out := make([]string, len(turns))
	for i, t := range turns {
		out[i] = t.Text
	}
	return out
}

func TestDispatchOrderIndependentOfLatency(t *testing.T) {
	defer goleak.VerifyNone(t)
	r := newRig(t, Settings{})
	r.claude.SetDelay(100 * time.Millisecond)

	res, err := r.orch.Dispatch(context.Background(), nil, "what do you both think?")
	require.NoError(t, err)

	assert.True(t, res.Decision.BothOrNeither())
	assert.Equal(t, []domain.Sender{domain.SenderUser, domain.SenderClaude, domain.SenderChatGPT}, senders(res.Transcript))
	assert.Equal(t, []string{"what do you both think?", "claude says hi", "chatgpt says hi"}, texts(res.Transcript))

	assert.Equal(t, 1, r.store.AppendCalls())
	assert.Equal(t, []domain.Sender{domain.SenderUser, domain.SenderClaude, domain.SenderChatGPT}, senders(r.store.Turns()))
}

func TestDispatchBothMentioned(t *testing.T) {
	r := newRig(t, Settings{})

	res, err := r.orch.Dispatch(context.Background(), nil, "@Claude and @ChatGPT please")
	require.NoError(t, err)
	assert.Len(t, res.Replies, 2)
	assert.Len(t, r.claude.Requests(), 1)
	assert.Len(t, r.chatgpt.Requests(), 1)
}

func TestDispatchSingleProvider(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.Sender
	}{
		{name: "claude only", text: "@claude summarize", want: domain.SenderClaude},
		{name: "gpt only", text: "hey @GPT", want: domain.SenderChatGPT},
		{name: "chatgpt alias", text: "@chatgpt go", want: domain.SenderChatGPT},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t, Settings{})

			res, err := r.orch.Dispatch(context.Background(), nil, tt.text)
			require.NoError(t, err)

			require.Len(t, res.Replies, 1)
			assert.Equal(t, tt.want, res.Replies[0].Sender)
			assert.Equal(t, []domain.Sender{domain.SenderUser, tt.want}, senders(res.Transcript))

			called, skipped := r.claude, r.chatgpt
			if tt.want == domain.SenderChatGPT {
				called, skipped = r.chatgpt, r.claude
			}
			assert.Len(t, called.Requests(), 1)
			assert.Empty(t, skipped.Requests())
		})
	}
}

func TestDispatchFallback(t *testing.T) {
	defer goleak.VerifyNone(t)
	r := newRig(t, Settings{})
	r.claude.SetError(appErrors.NewUpstreamRejected("Failed to get response from Claude",
		&llm.ProviderError{Provider: "claude", StatusCode: http.StatusTooManyRequests}))
	r.chatgpt.SetDelay(20 * time.Millisecond)

	res, err := r.orch.Dispatch(context.Background(), nil, "hello board")
	require.NoError(t, err)

	newTurns := res.Transcript[1:]
	require.Len(t, newTurns, 2)
	assert.Equal(t, domain.SenderClaude, newTurns[0].Sender)
	assert.Equal(t, FallbackText, newTurns[0].Text)
	assert.Equal(t, domain.SenderChatGPT, newTurns[1].Sender)
	assert.Equal(t, "chatgpt says hi", newTurns[1].Text)

	assert.False(t, res.Replies[0].OK)
	assert.True(t, appErrors.IsUpstreamRejected(res.Replies[0].Err))
	assert.True(t, res.Replies[1].OK)

	// The failed side is not persisted.
	assert.Equal(t, []domain.Sender{domain.SenderUser, domain.SenderChatGPT}, senders(r.store.Turns()))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.collector.ProviderCalls.WithLabelValues("claude", observability.OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.collector.ProviderCalls.WithLabelValues("chatgpt", observability.OutcomeOK)))
}

func TestDispatchAllFail(t *testing.T) {
	r := newRig(t, Settings{})
	r.claude.SetError(appErrors.NewUpstreamUnavailable("down", errors.New("dial tcp")))
	r.chatgpt.SetError(appErrors.NewUpstreamUnavailable("down", errors.New("dial tcp")))

	res, err := r.orch.Dispatch(context.Background(), nil, "anyone?")
	require.NoError(t, err)

	assert.Equal(t, []string{"anyone?", FallbackText, FallbackText}, texts(res.Transcript))
	assert.Zero(t, r.store.AppendCalls())
}

func TestDispatchRejectsBlankMessage(t *testing.T) {
	r := newRig(t, Settings{})

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := r.orch.Dispatch(context.Background(), nil, text)
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	}
	assert.Empty(t, r.claude.Requests())
	assert.Empty(t, r.chatgpt.Requests())
}

func TestDispatchHistory(t *testing.T) {
	r := newRig(t, Settings{})
	at := time.Now()
	prior := domain.Transcript{
		domain.NewTurn(domain.SenderUser, "first", at),
		domain.NewTurn(domain.SenderClaude, "one", at),
		domain.NewTurn(domain.SenderChatGPT, "two", at),
	}

	res, err := r.orch.Dispatch(context.Background(), prior, "@claude next")
	require.NoError(t, err)

	reqs := r.claude.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, prior.History(), reqs[0].History)
	assert.Equal(t, "@claude next", reqs[0].NewMessage)
	assert.Contains(t, reqs[0].SystemPrompt, "You are Claude in an AI Boardroom conversation. ")
	assert.Contains(t, reqs[0].SystemPrompt, "DIET:\n- vegan\n")

	// The input transcript is left untouched.
	assert.Len(t, prior, 3)
	assert.Len(t, res.Transcript, 5)
	assert.Equal(t, prior, res.Transcript[:3])
}

func TestDispatchHistoryWindow(t *testing.T) {
	r := newRig(t, Settings{MaxHistoryTurns: 2})
	at := time.Now()
	prior := domain.Transcript{
		domain.NewTurn(domain.SenderUser, "a", at),
		domain.NewTurn(domain.SenderClaude, "b", at),
		domain.NewTurn(domain.SenderUser, "c", at),
		domain.NewTurn(domain.SenderChatGPT, "d", at),
	}

	_, err := r.orch.Dispatch(context.Background(), prior, "@gpt e")
	require.NoError(t, err)

	reqs := r.chatgpt.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, []domain.Message{
		{Role: domain.RoleUser, Content: "[You]: c"},
		{Role: domain.RoleAssistant, Content: "[ChatGPT]: d"},
	}, reqs[0].History)
}

func TestDispatchPromptPerPersona(t *testing.T) {
	r := newRig(t, Settings{})

	_, err := r.orch.Dispatch(context.Background(), nil, "hi all")
	require.NoError(t, err)

	assert.Contains(t, r.claude.Requests()[0].SystemPrompt, "You are Claude in")
	assert.Contains(t, r.chatgpt.Requests()[0].SystemPrompt, "You are ChatGPT in")
}

func TestDispatchMemoryReadFailureDegrades(t *testing.T) {
	r := newRig(t, Settings{})
	r.store.SetError("ListMemories", errors.New("store offline"))

	res, err := r.orch.Dispatch(context.Background(), nil, "@claude hi")
	require.NoError(t, err)
	assert.True(t, res.Replies[0].OK)
	assert.NotContains(t, r.claude.Requests()[0].SystemPrompt, "Here's what you know")
}

func TestDispatchStoreWriteFailureNotSurfaced(t *testing.T) {
	r := newRig(t, Settings{})
	r.store.SetError("AppendTurns", errors.New("insert failed"))

	res, err := r.orch.Dispatch(context.Background(), nil, "@claude hi")
	require.NoError(t, err)
	assert.Equal(t, "claude says hi", res.Transcript[1].Text)
}

func TestUpdateSettings(t *testing.T) {
	r := newRig(t, Settings{})
	assert.Equal(t, FallbackText, r.orch.Settings().FallbackText)

	r.orch.UpdateSettings(Settings{FallbackText: "Out to lunch.", MaxHistoryTurns: -3})
	assert.Equal(t, Settings{FallbackText: "Out to lunch."}, r.orch.Settings())

	r.claude.SetError(errors.New("boom"))
	res, err := r.orch.Dispatch(context.Background(), nil, "@claude hi")
	require.NoError(t, err)
	assert.Equal(t, "Out to lunch.", res.Transcript[1].Text)
}

func TestSubmitBusy(t *testing.T) {
	defer goleak.VerifyNone(t)
	r := newRig(t, Settings{})

	release := make(chan struct{})
	r.claude.SetReplyFunc(func(llm.Request) (string, error) {
		<-release
		return "done", nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := r.orch.Submit(context.Background(), "session-1", nil, "@claude slow one")
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool { return r.orch.Busy("session-1") }, time.Second, 5*time.Millisecond)

	_, err := r.orch.Submit(context.Background(), "session-1", nil, "@claude again")
	require.Error(t, err)
	assert.True(t, appErrors.IsBusy(err))

	// Other sessions are unaffected.
	_, err = r.orch.Submit(context.Background(), "session-2", nil, "@gpt hi")
	require.NoError(t, err)

	close(release)
	wg.Wait()
	assert.False(t, r.orch.Busy("session-1"))

	_, err = r.orch.Submit(context.Background(), "session-1", nil, "@claude back")
	assert.NoError(t, err)
}

func TestSubmitBlankDoesNotLock(t *testing.T) {
	r := newRig(t, Settings{})

	_, err := r.orch.Submit(context.Background(), "s", nil, " ")
	assert.True(t, appErrors.IsValidation(err))
	assert.False(t, r.orch.Busy("s"))
}

func TestDispatchMetrics(t *testing.T) {
	r := newRig(t, Settings{})
	ctx := context.Background()

	_, _ = r.orch.Dispatch(ctx, nil, "hi")
	_, _ = r.orch.Dispatch(ctx, nil, "@claude hi")
	_, _ = r.orch.Dispatch(ctx, nil, "@gpt hi")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.collector.Dispatches.WithLabelValues("both")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.collector.Dispatches.WithLabelValues("claude")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.collector.Dispatches.WithLabelValues("chatgpt")))
}

func TestResponderChat(t *testing.T) {
	ctx := context.Background()

	t.Run("PersistsPair", func(t *testing.T) {
		r := newRig(t, Settings{})
		reply, err := r.responder.Chat(ctx, "claude", nil, "hello")
		require.NoError(t, err)
		assert.Equal(t, "claude says hi", reply)
		assert.Equal(t, []string{"hello", "claude says hi"}, texts(r.store.Turns()))
		assert.Equal(t, []domain.Sender{domain.SenderUser, domain.SenderClaude}, senders(r.store.Turns()))
	})

	t.Run("GptAlias", func(t *testing.T) {
		r := newRig(t, Settings{})
		_, err := r.responder.Chat(ctx, "gpt", nil, "hello")
		require.NoError(t, err)
		assert.Len(t, r.chatgpt.Requests(), 1)
	})

	t.Run("FailureNotPersisted", func(t *testing.T) {
		r := newRig(t, Settings{})
		r.chatgpt.SetError(appErrors.NewUpstreamUnavailable("down", errors.New("eof")))
		_, err := r.responder.Chat(ctx, "chatgpt", nil, "hello")
		require.Error(t, err)
		assert.Zero(t, r.store.AppendCalls())
	})

	t.Run("UnknownProvider", func(t *testing.T) {
		r := newRig(t, Settings{})
		_, err := r.responder.Chat(ctx, "gemini", nil, "hello")
		assert.True(t, appErrors.IsValidation(err))
	})
}

func TestNewOrchestratorRequiresBothProviders(t *testing.T) {
	claude := llm.NewFakeProvider(llm.ClaudeConfig(""))
	store := mocks.NewMockStore()
	responder, err := NewResponder([]llm.Provider{claude}, memory.NewService(store, nil), store, nil, nil)
	require.NoError(t, err)

	_, err = NewOrchestrator(responder, nil, store, Settings{}, nil, nil)
	assert.Error(t, err)
}

func TestNewResponderRejectsDuplicates(t *testing.T) {
	store := mocks.NewMockStore()
	_, err := NewResponder([]llm.Provider{
		llm.NewFakeProvider(llm.ClaudeConfig("")),
		llm.NewFakeProvider(llm.ClaudeConfig("")),
	}, memory.NewService(store, nil), store, nil, nil)
	assert.Error(t, err)
}

func TestLookupUsesConfiguredHandles(t *testing.T) {
	store := mocks.NewMockStore()
	providers := []llm.Provider{
		llm.NewFakeProvider(llm.ClaudeConfig("")),
		llm.NewFakeProvider(llm.ChatGPTConfig("")),
	}
	parser := mention.NewParser([]string{"@sonnet"}, []string{"@openai"})
	responder, err := NewResponder(providers, memory.NewService(store, nil), store, nil, nil, WithHandles(parser))
	require.NoError(t, err)

	p, ok := responder.Lookup("sonnet")
	require.True(t, ok)
	assert.Equal(t, domain.SenderClaude, p.Sender())

	p, ok = responder.Lookup("chatgpt")
	require.True(t, ok)
	assert.Equal(t, domain.SenderChatGPT, p.Sender())

	_, ok = responder.Lookup("gpt")
	assert.False(t, ok)

	defaults, err := NewResponder(providers, memory.NewService(store, nil), store, nil, nil)
	require.NoError(t, err)
	_, ok = defaults.Lookup("gpt")
	assert.True(t, ok)
}
