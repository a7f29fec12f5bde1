package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"boardroom-backend/internal/domain"
	"boardroom-backend/internal/service/boardroom"
	"boardroom-backend/internal/service/llm"
	"boardroom-backend/pkg/api"
	appErrors "boardroom-backend/pkg/errors"
)

// ChatHandler serves the symmetric single-provider endpoint.
type ChatHandler struct {
	responder *boardroom.Responder
	logger    *zap.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(responder *boardroom.Responder, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{responder: responder, logger: logger}
}

// Chat handles POST /api/chat/{provider}
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "provider")
	p, ok := h.responder.Lookup(id)
	if !ok {
		api.Error(w, http.StatusNotFound, fmt.Sprintf("Unknown provider %q", id))
		return
	}

	var req api.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	history := make([]domain.Message, len(req.ConversationHistory))
	for i, m := range req.ConversationHistory {
		history[i] = domain.Message{Role: domain.Role(m.Role), Content: m.Content}
	}

	reply, err := h.responder.Chat(r.Context(), p.Name(), history, req.Message)
	if err != nil {
		if appErrors.IsUpstreamRejected(err) {
			status, ok := llm.StatusOf(err)
			if !ok {
				status = http.StatusBadGateway
			}
			api.Error(w, status, fmt.Sprintf("Failed to get response from %s", p.Persona()))
			return
		}
		handleServiceError(w, r, h.logger, err)
		return
	}

	api.Message(w, reply)
}
