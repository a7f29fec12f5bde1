package mention

import (
	"strings"

	"boardroom-backend/internal/domain"
)

// Mention is an entry of the autocomplete list.
type Mention struct {
	ID      string `json:"id"`
	Display string `json:"display"`
	Name    string `json:"name"`
}

// Mentions is the autocomplete list for the default handles.
var Mentions = defaultParser.Mentions()

// Mentions lists one entry per provider, Claude first, built from the first
// handle configured for it.
func (p *Parser) Mentions() []Mention {
	return []Mention{
		entry(p.claude[0], domain.SenderClaude),
		entry(p.chatgpt[0], domain.SenderChatGPT),
	}
}

func entry(handle string, s domain.Sender) Mention {
	return Mention{ID: strings.TrimPrefix(handle, "@"), Display: handle, Name: s.Label()}
}

// Suggest returns the mentions matching the fragment typed after the last
// "@" in input. Once a space follows that "@" the mention is considered
// complete and nothing is suggested.
func (p *Parser) Suggest(input string) []Mention {
	at := strings.LastIndex(input, "@")
	if at == -1 {
		return nil
	}
	fragment := input[at+1:]
	if strings.Contains(fragment, " ") {
		return nil
	}
	fragment = strings.ToLower(fragment)

	var out []Mention
	for _, m := range p.Mentions() {
		if strings.Contains(m.ID, fragment) || strings.Contains(strings.ToLower(m.Name), fragment) {
			out = append(out, m)
		}
	}
	return out
}

// Suggest matches input against the default handles.
func Suggest(input string) []Mention {
	return defaultParser.Suggest(input)
}

// Insert replaces everything from the last "@" with the mention's handle and
// a trailing space.
func Insert(input string, m Mention) string {
	at := strings.LastIndex(input, "@")
	if at == -1 {
		at = len(input)
	}
	return input[:at] + m.Display + " "
}

// Resolve maps a provider id or handle to its sender. The sender ids
// "claude" and "chatgpt" always resolve; so does every configured handle,
// with or without its "@".
func (p *Parser) Resolve(id string) (domain.Sender, bool) {
	handle := "@" + strings.TrimPrefix(strings.ToLower(strings.TrimSpace(id)), "@")
	switch {
	case handle == "@"+string(domain.SenderClaude) || containsHandle(p.claude, handle):
		return domain.SenderClaude, true
	case handle == "@"+string(domain.SenderChatGPT) || containsHandle(p.chatgpt, handle):
		return domain.SenderChatGPT, true
	}
	return "", false
}

// Resolve maps an id with the default handles ("claude", "@gpt", "chatgpt").
func Resolve(id string) (domain.Sender, bool) {
	return defaultParser.Resolve(id)
}

func containsHandle(handles []string, h string) bool {
	for _, x := range handles {
		if x == h {
			return true
		}
	}
	return false
}
