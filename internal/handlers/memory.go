package handlers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"boardroom-backend/internal/service/boardroom"
	"boardroom-backend/internal/service/memory"
	"boardroom-backend/pkg/api"
)

// MemoryHandler exposes the memory profile read-only.
type MemoryHandler struct {
	memory    memory.Service
	responder *boardroom.Responder
	logger    *zap.Logger
}

// NewMemoryHandler creates a new memory handler.
func NewMemoryHandler(memorySvc memory.Service, responder *boardroom.Responder, logger *zap.Logger) *MemoryHandler {
	return &MemoryHandler{memory: memorySvc, responder: responder, logger: logger}
}

// GetMemory handles GET /api/memory
func (h *MemoryHandler) GetMemory(w http.ResponseWriter, r *http.Request) {
	profile, err := h.memory.Profile(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	resp := api.MemoryResponse{Categories: make([]api.MemoryCategory, len(profile))}
	for i, c := range profile {
		resp.Categories[i] = api.MemoryCategory{Name: c.Name, Values: c.Values}
	}
	api.Success(w, http.StatusOK, resp)
}

// GetPrompt handles GET /api/memory/prompt?provider=claude
func (h *MemoryHandler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("provider")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "provider is required")
		return
	}
	p, ok := h.responder.Lookup(id)
	if !ok {
		api.Error(w, http.StatusNotFound, fmt.Sprintf("Unknown provider %q", id))
		return
	}

	api.Success(w, http.StatusOK, api.PromptResponse{
		Provider: p.Name(),
		Prompt:   h.memory.SystemPrompt(r.Context(), p.Persona()),
	})
}
