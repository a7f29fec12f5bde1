package llm

import (
	"time"

	"boardroom-backend/internal/domain"
)

// Shape selects the request envelope and response extractor.
type Shape string

const (
	ShapeAnthropic Shape = "anthropic"
	ShapeOpenAI    Shape = "openai"
)

// Provider defaults.
const (
	AnthropicEndpoint = "https://api.anthropic.com/v1/messages"
	AnthropicVersion  = "2023-06-01"
	AnthropicModel    = "claude-sonnet-4-20250514"

	OpenAIEndpoint = "https://api.openai.com/v1/chat/completions"
	OpenAIModel    = "gpt-4"

	DefaultMaxTokens = 2000
)

// Config is everything that differs between two providers.
type Config struct {
	Name       string
	Sender     domain.Sender
	Persona    string
	Endpoint   string
	APIKey     string
	AuthHeader string
	AuthScheme string // prefix for the key, e.g. "Bearer"; empty sends the bare key
	Headers    map[string]string
	Model      string
	MaxTokens  int
	Shape      Shape

	// Timeout bounds one call. Zero means no timeout.
	Timeout time.Duration
	Breaker BreakerConfig
}

// BreakerConfig configures the optional circuit breaker around a gateway.
type BreakerConfig struct {
	Enabled          bool
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns a disabled breaker with usable thresholds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// ClaudeConfig returns the Anthropic Messages API configuration.
func ClaudeConfig(apiKey string) Config {
	return Config{
		Name:       "claude",
		Sender:     domain.SenderClaude,
		Persona:    "Claude",
		Endpoint:   AnthropicEndpoint,
		APIKey:     apiKey,
		AuthHeader: "x-api-key",
		Headers:    map[string]string{"anthropic-version": AnthropicVersion},
		Model:      AnthropicModel,
		MaxTokens:  DefaultMaxTokens,
		Shape:      ShapeAnthropic,
		Breaker:    DefaultBreakerConfig(),
	}
}

// ChatGPTConfig returns the OpenAI Chat Completions configuration.
func ChatGPTConfig(apiKey string) Config {
	return Config{
		Name:       "chatgpt",
		Sender:     domain.SenderChatGPT,
		Persona:    "ChatGPT",
		Endpoint:   OpenAIEndpoint,
		APIKey:     apiKey,
		AuthHeader: "Authorization",
		AuthScheme: "Bearer",
		Model:      OpenAIModel,
		MaxTokens:  DefaultMaxTokens,
		Shape:      ShapeOpenAI,
		Breaker:    DefaultBreakerConfig(),
	}
}
