// Package prompt renders the system prompt that carries the user's memory
// profile to a provider.
package prompt

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"boardroom-backend/internal/domain"
)

const (
	memoryIntro = "Here's what you know about the user:\n\n"

	// Closing is appended to every prompt.
	Closing = "Respond naturally and conversationally, using this context when relevant. Keep responses concise unless asked for detail."
)

// Heading upper-cases a category name with full Unicode case mapping, so
// "straße" becomes "STRASSE". A Caser holds state, so each call makes its own.
func Heading(category string) string {
	return cases.Upper(language.Und).String(category)
}

// Preamble is the persona sentence that opens every prompt.
func Preamble(persona string) string {
	return fmt.Sprintf("You are %s in an AI Boardroom conversation. ", persona)
}

// Build renders the system prompt for persona from the full memory record
// set. With no records the result is the preamble followed by Closing.
func Build(persona string, records []domain.MemoryRecord) string {
	var b strings.Builder
	b.WriteString(Preamble(persona))

	if len(records) > 0 {
		b.WriteString(memoryIntro)
		for _, group := range domain.GroupMemories(records) {
			b.WriteString(Heading(group.Name))
			b.WriteString(":\n")
			for _, v := range group.Values {
				b.WriteString("- ")
				b.WriteString(v)
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(Closing)
	return b.String()
}
