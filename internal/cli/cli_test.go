package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardroom-backend/internal/domain"
	"boardroom-backend/internal/service/boardroom"
)

type cliEnv struct {
	configDir string
	dir       string
}

func setup(t *testing.T) *cliEnv {
	t.Helper()
	for _, k := range []string{
		"CONFIG_DIR", "SERVER_HOST", "SERVER_PORT", "PORT", "LOG_FORMAT",
		"SUPABASE_URL", "SUPABASE_KEY", "NEXT_PUBLIC_SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_ANON_KEY",
		"DATABASE_URL", "TABLE_NAME", "DYNAMODB_ENDPOINT", "ANTHROPIC_API_KEY", "OPENAI_API_KEY",
		"ANTHROPIC_MODEL", "OPENAI_MODEL", "MAX_HISTORY_TURNS", "CORS_ALLOWED_ORIGINS",
		"ENABLE_METRICS", "ENABLE_TRACING", "OTEL_EXPORTER_OTLP_ENDPOINT",
	} {
		t.Setenv(k, "")
	}

	dir := t.TempDir()
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "boardroom.db"))
	t.Setenv("FAKE_PROVIDERS", "true")
	t.Setenv("LOG_LEVEL", "error")

	return &cliEnv{configDir: filepath.Join(dir, "config"), dir: dir}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config-dir", e.configDir, "--env-file", filepath.Join(e.dir, "missing.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedAndPrintMemory(t *testing.T) {
	env := setup(t)

	out, err := env.run(t, "memory")
	require.NoError(t, err)
	assert.Equal(t, "No memories stored.\n", out)

	out, err = env.run(t, "seed-memory", "--category", "diet", "--key", "style", "--value", "vegan")
	require.NoError(t, err)
	assert.Equal(t, "Added 1 memory rows.\n", out)

	file := filepath.Join(env.dir, "memories.yaml")
	require.NoError(t, os.WriteFile(file, []byte("- category: work\n  key: role\n  value: engineer\n- category: work\n  key: team\n  value: platform\n"), 0o644))
	out, err = env.run(t, "seed-memory", "--file", file)
	require.NoError(t, err)
	assert.Equal(t, "Added 2 memory rows.\n", out)

	out, err = env.run(t, "memory")
	require.NoError(t, err)
	assert.Equal(t, "DIET: vegan\nWORK: engineer, platform\n", out)

	out, err = env.run(t, "memory", "--format", "json")
	require.NoError(t, err)
	var categories []domain.MemoryCategory
	require.NoError(t, json.Unmarshal([]byte(out), &categories))
	assert.Len(t, categories, 2)

	out, err = env.run(t, "prompt", "--provider", "gpt")
	require.NoError(t, err)
	assert.Contains(t, out, "You are ChatGPT")
	assert.Contains(t, out, "vegan")
}

func TestSeedMemoryRequiresValue(t *testing.T) {
	env := setup(t)

	_, err := env.run(t, "seed-memory", "--category", "diet")
	assert.ErrorContains(t, err, "--category and --value are required")
}

func TestPromptUnknownProvider(t *testing.T) {
	env := setup(t)

	_, err := env.run(t, "prompt", "--provider", "gemini")
	assert.ErrorContains(t, err, `unknown provider "gemini"`)
}

func TestAskWithTranscript(t *testing.T) {
	env := setup(t)
	path := filepath.Join(env.dir, "transcript.json")

	out, err := env.run(t, "ask", "--transcript", path, "@claude", "hello")
	require.NoError(t, err)
	assert.Equal(t, "You: @claude hello\nClaude: Claude heard: @claude hello\n", out)

	out, err = env.run(t, "ask", "--transcript", path, "what", "do", "you", "both", "think?")
	require.NoError(t, err)
	assert.Equal(t,
		"You: what do you both think?\n"+
			"Claude: Claude heard: what do you both think?\n"+
			"ChatGPT: ChatGPT heard: what do you both think?\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var transcript domain.Transcript
	require.NoError(t, json.Unmarshal(data, &transcript))
	require.Len(t, transcript, 5)
	assert.Equal(t, domain.SenderUser, transcript[0].Sender)
	assert.Equal(t, domain.SenderChatGPT, transcript[4].Sender)
}

func TestAskJSON(t *testing.T) {
	env := setup(t)

	out, err := env.run(t, "ask", "--format", "json", "@gpt", "hi")
	require.NoError(t, err)

	var result boardroom.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Replies, 1)
	assert.Equal(t, domain.SenderChatGPT, result.Replies[0].Sender)
	assert.True(t, result.Replies[0].OK)
	assert.Len(t, result.Transcript, 2)
}

func TestAskRejectsBadInput(t *testing.T) {
	env := setup(t)

	_, err := env.run(t, "ask", "   ")
	assert.ErrorContains(t, err, "message is required")

	path := filepath.Join(env.dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"sender":"bard","text":"hi"}]`), 0o644))
	_, err = env.run(t, "ask", "--transcript", path, "hello")
	assert.ErrorContains(t, err, `unknown sender "bard"`)

	_, err = env.run(t, "ask", "--format", "xml", "hello")
	assert.ErrorContains(t, err, `unknown format "xml"`)
}

func TestUnknownEnvironment(t *testing.T) {
	env := setup(t)

	_, err := env.run(t, "--env", "qa", "memory")
	assert.ErrorContains(t, err, `unknown environment "qa"`)
}
