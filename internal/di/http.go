package di

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"boardroom-backend/internal/config"
	"boardroom-backend/internal/handlers"
	"boardroom-backend/internal/infrastructure/observability"
	"boardroom-backend/internal/middleware"
	"boardroom-backend/internal/service/boardroom"
	"boardroom-backend/internal/service/memory"
	"boardroom-backend/internal/service/mention"
	"boardroom-backend/pkg/api"
)

// provideRouter creates the HTTP router with all routes and middleware.
func provideRouter(
	cfg *config.Config,
	responder *boardroom.Responder,
	orchestrator *boardroom.Orchestrator,
	memorySvc memory.Service,
	parser *mention.Parser,
	collector *observability.Collector,
	coldStart *ColdStartTracker,
	logger *zap.Logger,
) *chi.Mux {
	chat := handlers.NewChatHandler(responder, logger)
	board := handlers.NewBoardroomHandler(orchestrator, logger)
	mem := handlers.NewMemoryHandler(memorySvc, responder, logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.SessionID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(coldStart.Middleware(logger))
	if cfg.Tracing.Enabled {
		r.Use(observability.TracingMiddleware(cfg.Tracing.ServiceName))
	}
	if collector != nil {
		r.Use(observability.MetricsMiddleware(collector))
	}
	if cfg.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   cfg.CORS.AllowedMethods,
			AllowedHeaders:   cfg.CORS.AllowedHeaders,
			ExposedHeaders:   []string{middleware.RequestIDHeader},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		}))
	}

	// Public routes
	r.Get("/health", handlers.Health(cfg.Store.Driver))
	if collector != nil {
		r.Handle(cfg.Metrics.Path, promhttp.HandlerFor(collector.GetRegistry(), promhttp.HandlerOpts{
			Timeout: 10 * time.Second,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat/{provider}", chat.Chat)
		r.Post("/boardroom/messages", board.PostMessage)

		r.Get("/memory", mem.GetMemory)
		r.Get("/memory/prompt", mem.GetPrompt)

		r.Get("/mentions", handlers.Mentions(parser))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.Error(w, http.StatusNotFound, "Not found")
	})

	return r
}
