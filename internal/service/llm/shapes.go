package llm

import (
	"encoding/json"
	"fmt"

	"boardroom-backend/internal/domain"
)

// codec turns a Request into a provider envelope and pulls the reply text
// back out of the response body.
type codec struct {
	encode  func(cfg Config, req Request) any
	extract func(body []byte) (string, error)
}

var codecs = map[Shape]codec{
	ShapeAnthropic: {encode: encodeAnthropic, extract: extractAnthropic},
	ShapeOpenAI:    {encode: encodeOpenAI, extract: extractOpenAI},
}

type anthropicRequest struct {
	Model     string           `json:"model"`
	MaxTokens int              `json:"max_tokens"`
	System    string           `json:"system"`
	Messages  []domain.Message `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func encodeAnthropic(cfg Config, req Request) any {
	return anthropicRequest{
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		System:    req.SystemPrompt,
		Messages:  req.Messages(),
	}
}

func extractAnthropic(body []byte) (string, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode anthropic response: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("anthropic response has no content blocks")
	}
	return resp.Content[0].Text, nil
}

type openAIRequest struct {
	Model     string           `json:"model"`
	MaxTokens int              `json:"max_tokens"`
	Messages  []domain.Message `json:"messages"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// OpenAI takes the system prompt as the first message.
func encodeOpenAI(cfg Config, req Request) any {
	msgs := make([]domain.Message, 0, len(req.History)+2)
	msgs = append(msgs, domain.Message{Role: domain.RoleSystem, Content: req.SystemPrompt})
	msgs = append(msgs, req.Messages()...)
	return openAIRequest{
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Messages:  msgs,
	}
}

func extractOpenAI(body []byte) (string, error) {
	var resp openAIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
