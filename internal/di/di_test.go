package di

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardroom-backend/internal/config"
	"boardroom-backend/internal/domain"
	"boardroom-backend/internal/service/llm"
	"boardroom-backend/pkg/api"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.NewLoader(t.TempDir(), config.Development).Load()
	require.NoError(t, err)

	cfg.Logging.Level = "error"
	cfg.Store.Driver = config.StoreMemory
	cfg.Providers.Fake = true
	cfg.Metrics.Enabled = true
	cfg.Tracing.Enabled = false
	return cfg
}

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestInitializeContainerIntegration(t *testing.T) {
	container, err := New(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Shutdown(context.Background()) })

	require.NotNil(t, container.GetRouter())
	require.Len(t, container.Providers, 2)
	assert.NotNil(t, container.MetricsCollector)
	assert.Nil(t, container.TracerProvider)

	t.Run("health", func(t *testing.T) {
		rec := serve(t, container.Router, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","store":"memory"}`, rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("boardroom message", func(t *testing.T) {
		rec := serve(t, container.Router, http.MethodPost, "/api/boardroom/messages",
			`{"message":"@claude what do you think?","transcript":[]}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp api.BoardroomResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Routing.AddressesClaude)
		assert.False(t, resp.Routing.AddressesChatGPT)
		require.Len(t, resp.Replies, 1)
		assert.Equal(t, string(domain.SenderClaude), resp.Replies[0].Sender)
		assert.Contains(t, resp.Replies[0].Text, "Claude heard")
		assert.Len(t, resp.Transcript, 2)
	})

	t.Run("metrics", func(t *testing.T) {
		rec := serve(t, container.Router, http.MethodGet, "/metrics", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "boardroom_dispatches_total")
		assert.Contains(t, rec.Body.String(), "boardroom_http_requests_total")
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := serve(t, container.Router, http.MethodGet, "/nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
	})
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false

	container, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Shutdown(context.Background()) })

	assert.Nil(t, container.MetricsCollector)
	rec := serve(t, container.Router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSQLiteStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Driver = config.StoreSQLite
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "boardroom.db")

	container, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)

	rec := serve(t, container.Router, http.MethodPost, "/api/chat/chatgpt",
		`{"message":"hello","conversationHistory":[]}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.NoError(t, container.Shutdown(context.Background()))
	_, err = os.Stat(cfg.Store.SQLitePath)
	assert.NoError(t, err)
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Driver = "cassandra"

	_, err := OpenStore(context.Background(), cfg)
	assert.ErrorContains(t, err, "unsupported store driver")
}

func TestShutdownIsIdempotent(t *testing.T) {
	container, err := New(context.Background(), testConfig(t), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, container.Shutdown(ctx))
	require.NoError(t, container.Shutdown(ctx))
}

func TestConfigReloadUpdatesComponents(t *testing.T) {
	dir := t.TempDir()
	write := func(level string, turns int) {
		body := "logging:\n  level: " + level + "\nstore:\n  driver: memory\nproviders:\n  fake: true\n" +
			"boardroom:\n  max_history_turns: " + strconv.Itoa(turns) + "\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(body), 0o644))
	}
	write("error", 0)

	loader := config.NewLoader(dir, config.Development)
	cfg, err := loader.Load()
	require.NoError(t, err)

	container, err := New(context.Background(), cfg, loader)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Shutdown(context.Background()) })
	assert.Equal(t, "error", container.LogLevel.String())

	write("debug", 4)
	require.NoError(t, container.ConfigManager.Watcher().Reload())

	assert.Eventually(t, func() bool {
		return container.LogLevel.String() == "debug" &&
			container.Orchestrator.Settings().MaxHistoryTurns == 4
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandles(t *testing.T) {
	assert.Equal(t, []string{"@claude", "@gpt"}, handles([]string{"claude", " @gpt ", ""}))
	assert.Empty(t, handles(nil))
}

func TestGatewayConfig(t *testing.T) {
	base := llm.ClaudeConfig("key")

	got := gatewayConfig(base, config.Provider{
		Model:   "claude-test",
		Timeout: 5 * time.Second,
		Breaker: config.Breaker{Enabled: true, FailureThreshold: 0.5, MinRequests: 3},
	})
	assert.Equal(t, "claude-test", got.Model)
	assert.Equal(t, base.Endpoint, got.Endpoint)
	assert.Equal(t, base.MaxTokens, got.MaxTokens)
	assert.Equal(t, 5*time.Second, got.Timeout)
	assert.True(t, got.Breaker.Enabled)
	assert.Equal(t, 0.5, got.Breaker.FailureThreshold)
	assert.Equal(t, uint32(3), got.Breaker.MinRequests)
}
