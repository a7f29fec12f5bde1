package di

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"boardroom-backend/internal/config"
	"boardroom-backend/internal/infrastructure/observability"
	"boardroom-backend/internal/repository"
	"boardroom-backend/internal/service/boardroom"
	"boardroom-backend/internal/service/llm"
	"boardroom-backend/internal/service/memory"
	"boardroom-backend/internal/service/mention"
)

// ============================================================================
// CONFIGURATION PROVIDERS
// ============================================================================

// provideLogging builds the process logger from the logging section.
func provideLogging(cfg *config.Config) (*Logging, func(), error) {
	logger, level, err := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Production: cfg.Environment == config.Production,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = logger.Sync() }
	return &Logging{Logger: logger, Level: level}, cleanup, nil
}

func provideLogger(l *Logging) *zap.Logger {
	return l.Logger
}

// ============================================================================
// OBSERVABILITY PROVIDERS
// ============================================================================

// provideMetricsCollector returns nil when metrics are disabled; every
// Collector method accepts a nil receiver.
func provideMetricsCollector(cfg *config.Config) *observability.Collector {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return observability.NewCollector(cfg.Metrics.Namespace)
}

// provideTracerProvider installs the OTLP exporter when tracing is enabled.
func provideTracerProvider(cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	if !cfg.Tracing.Enabled {
		return nil, func() {}, nil
	}
	tp, err := observability.InitTracing(observability.TracingConfig{
		ServiceName: cfg.Tracing.ServiceName,
		Environment: string(cfg.Environment),
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRate:  cfg.Tracing.SampleRate,
		Insecure:    cfg.Tracing.Insecure,
		EnableDebug: cfg.Environment == config.Development,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	logger.Info("Tracing enabled", zap.String("endpoint", cfg.Tracing.Endpoint))

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ============================================================================
// PROVIDER GATEWAYS
// ============================================================================

// provideProviders builds the Claude and ChatGPT providers, or fakes when
// providers.fake is set.
func provideProviders(cfg *config.Config, logger *zap.Logger) ([]llm.Provider, error) {
	claude := gatewayConfig(llm.ClaudeConfig(cfg.Providers.Claude.APIKey), cfg.Providers.Claude)
	chatgpt := gatewayConfig(llm.ChatGPTConfig(cfg.Providers.ChatGPT.APIKey), cfg.Providers.ChatGPT)

	if cfg.Providers.Fake {
		logger.Warn("Using fake providers")
		return []llm.Provider{llm.NewFakeProvider(claude), llm.NewFakeProvider(chatgpt)}, nil
	}

	for _, c := range []llm.Config{claude, chatgpt} {
		if c.APIKey == "" {
			logger.Warn("Provider has no API key; calls will be rejected upstream",
				zap.String("provider", c.Name))
		}
	}

	providers := make([]llm.Provider, 0, 2)
	for _, c := range []llm.Config{claude, chatgpt} {
		g, err := llm.NewGateway(c, &http.Client{Timeout: c.Timeout}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s gateway: %w", c.Name, err)
		}
		providers = append(providers, g)
	}
	return providers, nil
}

// gatewayConfig overlays configured values on a provider's defaults.
func gatewayConfig(base llm.Config, pc config.Provider) llm.Config {
	if pc.Endpoint != "" {
		base.Endpoint = pc.Endpoint
	}
	if pc.Model != "" {
		base.Model = pc.Model
	}
	if pc.MaxTokens > 0 {
		base.MaxTokens = pc.MaxTokens
	}
	base.Timeout = pc.Timeout
	base.Breaker = llm.BreakerConfig{
		Enabled:          pc.Breaker.Enabled,
		MaxRequests:      pc.Breaker.MaxRequests,
		Interval:         pc.Breaker.Interval,
		Timeout:          pc.Breaker.Timeout,
		FailureThreshold: pc.Breaker.FailureThreshold,
		MinRequests:      pc.Breaker.MinRequests,
	}
	return base
}

// ============================================================================
// SERVICE PROVIDERS
// ============================================================================

func provideMemoryService(store repository.Store, logger *zap.Logger) memory.Service {
	return memory.NewService(store, logger)
}

// provideMentionParser builds the parser from the configured handles. A
// handle given without "@" gets one.
func provideMentionParser(cfg *config.Config) *mention.Parser {
	return mention.NewParser(handles(cfg.Mentions.Claude), handles(cfg.Mentions.ChatGPT))
}

func handles(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if !strings.HasPrefix(n, "@") {
			n = "@" + n
		}
		out = append(out, n)
	}
	return out
}

func provideResponder(
	providers []llm.Provider,
	memorySvc memory.Service,
	parser *mention.Parser,
	store repository.Store,
	collector *observability.Collector,
	logger *zap.Logger,
) (*boardroom.Responder, error) {
	return boardroom.NewResponder(providers, memorySvc, store, collector, logger, boardroom.WithHandles(parser))
}

func provideOrchestrator(
	cfg *config.Config,
	responder *boardroom.Responder,
	parser *mention.Parser,
	store repository.Store,
	collector *observability.Collector,
	logger *zap.Logger,
) (*boardroom.Orchestrator, error) {
	return boardroom.NewOrchestrator(responder, parser, store, settingsFrom(cfg), collector, logger)
}

func settingsFrom(cfg *config.Config) boardroom.Settings {
	return boardroom.Settings{
		MaxHistoryTurns: cfg.Boardroom.MaxHistoryTurns,
		FallbackText:    cfg.Boardroom.FallbackText,
	}
}

// provideConfigManager registers the components that follow config reloads:
// the orchestrator's settings and the log level.
func provideConfigManager(
	cfg *config.Config,
	loader *config.Loader,
	logging *Logging,
	orchestrator *boardroom.Orchestrator,
) (*config.ConfigManager, func(), error) {
	manager, err := config.NewConfigManager(cfg, loader, logging.Logger)
	if err != nil {
		return nil, nil, err
	}

	manager.RegisterComponent("orchestrator", func(c *config.Config) error {
		orchestrator.UpdateSettings(settingsFrom(c))
		return nil
	})
	manager.RegisterComponent("log-level", func(c *config.Config) error {
		return logging.Level.UnmarshalText([]byte(c.Logging.Level))
	})

	return manager, manager.Stop, nil
}

// ============================================================================
// CONTAINER
// ============================================================================

func provideContainer(
	cfg *config.Config,
	logging *Logging,
	collector *observability.Collector,
	tp *observability.TracerProvider,
	manager *config.ConfigManager,
	coldStart *ColdStartTracker,
	store repository.Store,
	providers []llm.Provider,
	memorySvc memory.Service,
	responder *boardroom.Responder,
	orchestrator *boardroom.Orchestrator,
	router *chi.Mux,
) *Container {
	return &Container{
		Config:           cfg,
		Logger:           logging.Logger,
		LogLevel:         logging.Level,
		MetricsCollector: collector,
		TracerProvider:   tp,
		ConfigManager:    manager,
		ColdStart:        coldStart,
		Store:            store,
		Providers:        providers,
		MemoryService:    memorySvc,
		Responder:        responder,
		Orchestrator:     orchestrator,
		Router:           router,
	}
}
