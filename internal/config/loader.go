package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"boardroom-backend/internal/service/llm"
)

// ============================================================================
// CONFIGURATION LOADER
// ============================================================================

// Loader builds a Config from layered sources.
type Loader struct {
	// basePath is the root directory for configuration files
	basePath string

	environment Environment

	// sources tracks where configuration was loaded from
	sources []string

	// fileLoaders are tried in registration order
	fileLoaders []FileLoader
}

// FileLoader decodes one configuration file format.
type FileLoader interface {
	Load(reader io.Reader, target interface{}) error
	Extension() string
}

// ============================================================================
// LOADER IMPLEMENTATION
// ============================================================================

// NewLoader creates a loader reading files from basePath.
func NewLoader(basePath string, env Environment) *Loader {
	if basePath == "" {
		basePath = "config"
	}

	loader := &Loader{
		basePath:    basePath,
		environment: env,
	}

	loader.RegisterLoader(&YAMLLoader{})
	loader.RegisterLoader(&JSONLoader{})

	return loader
}

// RegisterLoader registers a file loader. A later registration for the same
// extension replaces the earlier one.
func (l *Loader) RegisterLoader(loader FileLoader) {
	for i, existing := range l.fileLoaders {
		if existing.Extension() == loader.Extension() {
			l.fileLoaders[i] = loader
			return
		}
	}
	l.fileLoaders = append(l.fileLoaders, loader)
}

// BasePath returns the directory files are read from.
func (l *Loader) BasePath() string {
	return l.basePath
}

// Load loads configuration using a hierarchy of sources.
// The loading order (from lowest to highest priority):
//  1. Default values (in code)
//  2. Base configuration file (base.yaml)
//  3. Environment-specific file (e.g., production.yaml)
//  4. Local overrides file (local.yaml, development only)
//  5. Environment variables
func (l *Loader) Load() (*Config, error) {
	l.sources = []string{"defaults"}
	cfg := l.defaultConfig()

	if err := l.loadFile("base", cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load base config: %w", err)
	}

	envFile := strings.ToLower(string(l.environment))
	if err := l.loadFile(envFile, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s config: %w", envFile, err)
	}

	if l.environment == Development {
		if err := l.loadFile("local", cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load local config: %w", err)
		}
	}

	// Files cannot move the config to another environment.
	cfg.Environment = l.environment

	l.loadEnvironmentVariables(cfg)
	l.sources = append(l.sources, "environment")

	cfg.LoadedFrom = l.sources

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile loads name.<ext> for the first registered extension present.
func (l *Loader) loadFile(name string, cfg *Config) error {
	for _, loader := range l.fileLoaders {
		path := filepath.Join(l.basePath, fmt.Sprintf("%s.%s", name, loader.Extension()))

		file, err := os.Open(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}

		err = loader.Load(file, cfg)
		file.Close()
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		l.sources = append(l.sources, path)
		return nil
	}

	return fs.ErrNotExist
}

// loadEnvironmentVariables overlays environment variables on the configuration.
func (l *Loader) loadEnvironmentVariables(cfg *Config) {
	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := firstEnv("SERVER_PORT", "PORT"); val != "" {
		if port := parseInt(val); port > 0 {
			cfg.Server.Port = port
		}
	}

	// Logging
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.Logging.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		cfg.Logging.Format = strings.ToLower(val)
	}

	// Store
	if val := os.Getenv("STORE_DRIVER"); val != "" {
		cfg.Store.Driver = strings.ToLower(val)
	}
	if val := firstEnv("SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL"); val != "" {
		cfg.Store.Supabase.URL = val
	}
	if val := firstEnv("SUPABASE_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY"); val != "" {
		cfg.Store.Supabase.Key = val
	}
	if val := os.Getenv("DATABASE_URL"); val != "" {
		cfg.Store.DatabaseURL = val
	}
	if val := os.Getenv("SQLITE_PATH"); val != "" {
		cfg.Store.SQLitePath = val
	}
	if val := os.Getenv("TABLE_NAME"); val != "" {
		cfg.Store.DynamoDB.TableName = val
	}
	if val := os.Getenv("AWS_REGION"); val != "" {
		cfg.Store.DynamoDB.Region = val
	}
	if val := os.Getenv("DYNAMODB_ENDPOINT"); val != "" {
		cfg.Store.DynamoDB.Endpoint = val
	}

	// Providers
	if val := os.Getenv("ANTHROPIC_API_KEY"); val != "" {
		cfg.Providers.Claude.APIKey = val
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		cfg.Providers.ChatGPT.APIKey = val
	}
	if val := os.Getenv("ANTHROPIC_MODEL"); val != "" {
		cfg.Providers.Claude.Model = val
	}
	if val := os.Getenv("OPENAI_MODEL"); val != "" {
		cfg.Providers.ChatGPT.Model = val
	}
	if val := os.Getenv("FAKE_PROVIDERS"); val != "" {
		cfg.Providers.Fake = parseBool(val)
	}

	// Boardroom
	if val := os.Getenv("MAX_HISTORY_TURNS"); val != "" {
		cfg.Boardroom.MaxHistoryTurns = parseInt(val)
	}

	// CORS
	if val := os.Getenv("CORS_ALLOWED_ORIGINS"); val != "" {
		cfg.CORS.AllowedOrigins = splitList(val)
	}

	// Observability
	if val := os.Getenv("ENABLE_METRICS"); val != "" {
		cfg.Metrics.Enabled = parseBool(val)
	}
	if val := os.Getenv("ENABLE_TRACING"); val != "" {
		cfg.Tracing.Enabled = parseBool(val)
	}
	if val := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); val != "" {
		cfg.Tracing.Endpoint = val
	}
}

// defaultConfig returns a configuration that runs locally without files.
func (l *Loader) defaultConfig() *Config {
	return &Config{
		Environment: l.environment,
		Server: Server{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxRequestSize:  1 << 20,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
		Store: Store{
			Driver:        StoreSQLite,
			MemoryTable:   "user_memory",
			MessagesTable: "messages",
			SQLitePath:    filepath.Join("data", "boardroom.db"),
			DynamoDB: DynamoDB{
				Region: "us-east-1",
			},
		},
		Providers: Providers{
			Claude: Provider{
				Endpoint:  llm.AnthropicEndpoint,
				Model:     llm.AnthropicModel,
				MaxTokens: llm.DefaultMaxTokens,
				Breaker:   defaultBreaker(),
			},
			ChatGPT: Provider{
				Endpoint:  llm.OpenAIEndpoint,
				Model:     llm.OpenAIModel,
				MaxTokens: llm.DefaultMaxTokens,
				Breaker:   defaultBreaker(),
			},
		},
		// An empty Boardroom.FallbackText selects the built-in apology.
		Mentions: Mentions{
			Claude:  []string{"claude"},
			ChatGPT: []string{"gpt", "chatgpt"},
		},
		CORS: CORS{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "X-Session-ID"},
			MaxAge:         300,
		},
		Metrics: Metrics{
			Namespace: "boardroom",
			Path:      "/metrics",
		},
		Tracing: Tracing{
			ServiceName: "boardroom-backend",
			Endpoint:    "localhost:4317",
			SampleRate:  1.0,
			Insecure:    true,
		},
	}
}

func defaultBreaker() Breaker {
	return Breaker{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// ============================================================================
// FILE LOADERS
// ============================================================================

// YAMLLoader loads configuration from YAML files.
type YAMLLoader struct{}

func (y *YAMLLoader) Load(reader io.Reader, target interface{}) error {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	return decoder.Decode(target)
}

func (y *YAMLLoader) Extension() string {
	return "yaml"
}

// JSONLoader loads configuration from JSON files.
type JSONLoader struct{}

func (j *JSONLoader) Load(reader io.Reader, target interface{}) error {
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func (j *JSONLoader) Extension() string {
	return "json"
}

// ============================================================================
// HELPER FUNCTIONS
// ============================================================================

func parseInt(s string) int {
	val, _ := strconv.Atoi(strings.TrimSpace(s))
	return val
}

func parseBool(s string) bool {
	val, _ := strconv.ParseBool(strings.TrimSpace(s))
	return val
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if val := os.Getenv(k); val != "" {
			return val
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadDotEnv loads .env files into the process environment. Variables that
// are already set win, and missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ConfigDir returns CONFIG_DIR, defaulting to ./config.
func ConfigDir() string {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	return "config"
}

// LoadWithLoader loads configuration from CONFIG_DIR for the environment
// named by ENVIRONMENT.
func LoadWithLoader() (*Config, error) {
	return NewLoader(ConfigDir(), CurrentEnvironment()).Load()
}

// MustLoadWithLoader loads configuration and panics on error.
// Use this only in main() or init() functions.
func MustLoadWithLoader() *Config {
	cfg, err := LoadWithLoader()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
