// Package di wires the boardroom's dependencies.
package di

import (
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"boardroom-backend/internal/config"
	"boardroom-backend/internal/infrastructure/observability"
	"boardroom-backend/internal/repository"
	"boardroom-backend/internal/service/boardroom"
	"boardroom-backend/internal/service/llm"
	"boardroom-backend/internal/service/memory"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config

	// Cross-cutting concerns
	Logger           *zap.Logger
	LogLevel         zap.AtomicLevel
	MetricsCollector *observability.Collector
	TracerProvider   *observability.TracerProvider
	ConfigManager    *config.ConfigManager
	ColdStart        *ColdStartTracker

	// Storage
	Store repository.Store

	// Services
	Providers     []llm.Provider
	MemoryService memory.Service
	Responder     *boardroom.Responder
	Orchestrator  *boardroom.Orchestrator

	// HTTP
	Router *chi.Mux

	cleanup      func()
	shutdownOnce sync.Once
}

// Logging is the process logger with its adjustable level.
type Logging struct {
	Logger *zap.Logger
	Level  zap.AtomicLevel
}
