// Package mention decides which providers a message addresses.
//
// Matching is a case-insensitive substring test, not a word-boundary test:
// "@claudeXYZ" addresses Claude and "@chatgpt" contains "@gpt". Both
// behaviors are relied on by clients and must not change.
package mention

import (
	"strings"

	"boardroom-backend/internal/domain"
)

// Default handles for each provider.
var (
	DefaultClaudeHandles  = []string{"@claude"}
	DefaultChatGPTHandles = []string{"@gpt", "@chatgpt"}
)

// Decision is the routing intent derived from one message.
type Decision struct {
	AddressesClaude  bool `json:"addressesClaude"`
	AddressesChatGPT bool `json:"addressesChatGPT"`
}

// BothOrNeither is true when both providers, or neither, are addressed.
// Neither is treated as a broadcast.
func (d Decision) BothOrNeither() bool {
	return d.AddressesClaude == d.AddressesChatGPT
}

// Targets returns the providers to invoke, always Claude before ChatGPT.
func (d Decision) Targets() []domain.Sender {
	if d.BothOrNeither() {
		return []domain.Sender{domain.SenderClaude, domain.SenderChatGPT}
	}
	if d.AddressesClaude {
		return []domain.Sender{domain.SenderClaude}
	}
	return []domain.Sender{domain.SenderChatGPT}
}

// Route names the routing for metrics and logs: "both", "claude" or "chatgpt".
func (d Decision) Route() string {
	if d.BothOrNeither() {
		return "both"
	}
	return string(d.Targets()[0])
}

// Parser holds the handle aliases for each provider.
type Parser struct {
	claude  []string
	chatgpt []string
}

// NewParser creates a parser. Empty alias lists fall back to the defaults.
func NewParser(claudeHandles, chatgptHandles []string) *Parser {
	if len(claudeHandles) == 0 {
		claudeHandles = DefaultClaudeHandles
	}
	if len(chatgptHandles) == 0 {
		chatgptHandles = DefaultChatGPTHandles
	}
	return &Parser{
		claude:  lowerAll(claudeHandles),
		chatgpt: lowerAll(chatgptHandles),
	}
}

// Parse classifies text. It has no error conditions.
func (p *Parser) Parse(text string) Decision {
	lower := strings.ToLower(text)
	return Decision{
		AddressesClaude:  containsAny(lower, p.claude),
		AddressesChatGPT: containsAny(lower, p.chatgpt),
	}
}

var defaultParser = NewParser(nil, nil)

// Parse classifies text with the default handles.
func Parse(text string) Decision {
	return defaultParser.Parse(text)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
