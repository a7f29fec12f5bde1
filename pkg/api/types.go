package api

import "time"

// ChatMessage is one prior message in the single-provider request, already
// in the provider's two-role schema.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat/{provider}.
type ChatRequest struct {
	Message             string        `json:"message" validate:"required,notblank"`
	ConversationHistory []ChatMessage `json:"conversationHistory" validate:"dive"`
}

// ChatResponse carries the provider's reply.
type ChatResponse struct {
	Message string `json:"message"`
}

// Turn is a transcript entry as exchanged with clients.
type Turn struct {
	ID        string    `json:"id,omitempty"`
	Sender    string    `json:"sender" validate:"required,oneof=user claude chatgpt"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// BoardroomRequest is the body of POST /api/boardroom/messages.
type BoardroomRequest struct {
	Message    string `json:"message" validate:"required,notblank"`
	Transcript []Turn `json:"transcript" validate:"dive"`
}

// Reply is one provider outcome within a dispatch.
type Reply struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
	OK     bool   `json:"ok"`
}

// Routing is the mention decision for the submitted message.
type Routing struct {
	AddressesClaude  bool `json:"addressesClaude"`
	AddressesChatGPT bool `json:"addressesChatGPT"`
}

// BoardroomResponse is the merged result of a dispatch.
type BoardroomResponse struct {
	Transcript []Turn  `json:"transcript"`
	Replies    []Reply `json:"replies"`
	Routing    Routing `json:"routing"`
}

// MemoryCategory is one category of the memory profile.
type MemoryCategory struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// MemoryResponse is the grouped memory profile.
type MemoryResponse struct {
	Categories []MemoryCategory `json:"categories"`
}

// PromptResponse is a rendered system prompt.
type PromptResponse struct {
	Provider string `json:"provider"`
	Prompt   string `json:"prompt"`
}

// Mention is an autocomplete entry.
type Mention struct {
	ID      string `json:"id"`
	Display string `json:"display"`
	Name    string `json:"name"`
}

// MentionsResponse lists autocomplete suggestions.
type MentionsResponse struct {
	Mentions []Mention `json:"mentions"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}
