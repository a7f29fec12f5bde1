package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"boardroom-backend/internal/domain"
	"boardroom-backend/internal/middleware"
	"boardroom-backend/internal/service/boardroom"
	"boardroom-backend/pkg/api"
)

// BoardroomHandler runs orchestrated dispatches.
type BoardroomHandler struct {
	orchestrator *boardroom.Orchestrator
	logger       *zap.Logger
}

// NewBoardroomHandler creates a new boardroom handler.
func NewBoardroomHandler(orchestrator *boardroom.Orchestrator, logger *zap.Logger) *BoardroomHandler {
	return &BoardroomHandler{orchestrator: orchestrator, logger: logger}
}

// PostMessage handles POST /api/boardroom/messages
func (h *BoardroomHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req api.BoardroomRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	transcript := make(domain.Transcript, len(req.Transcript))
	for i, t := range req.Transcript {
		transcript[i] = domain.Turn{
			ID:        t.ID,
			Sender:    domain.Sender(t.Sender),
			Text:      t.Text,
			Timestamp: t.Timestamp,
		}
	}

	session := middleware.GetSessionID(r.Context())
	result, err := h.orchestrator.Submit(r.Context(), session, transcript, req.Message)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	api.Success(w, http.StatusOK, toBoardroomResponse(result))
}

func toBoardroomResponse(result boardroom.Result) api.BoardroomResponse {
	resp := api.BoardroomResponse{
		Transcript: make([]api.Turn, len(result.Transcript)),
		Replies:    make([]api.Reply, len(result.Replies)),
		Routing: api.Routing{
			AddressesClaude:  result.Decision.AddressesClaude,
			AddressesChatGPT: result.Decision.AddressesChatGPT,
		},
	}
	for i, t := range result.Transcript {
		resp.Transcript[i] = toAPITurn(t)
	}
	for i, rep := range result.Replies {
		resp.Replies[i] = api.Reply{Sender: string(rep.Sender), Text: rep.Text, OK: rep.OK}
	}
	return resp
}

func toAPITurn(t domain.Turn) api.Turn {
	return api.Turn{
		ID:        t.ID,
		Sender:    string(t.Sender),
		Text:      t.Text,
		Timestamp: t.Timestamp,
	}
}
