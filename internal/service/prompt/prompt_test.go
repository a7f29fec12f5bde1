package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"boardroom-backend/internal/domain"
)

func TestBuildWithMemories(t *testing.T) {
	records := []domain.MemoryRecord{
		{Category: "diet", Key: "style", Value: "vegan"},
		{Category: "diet", Key: "allergy", Value: "no nuts"},
		{Category: "work", Key: "role", Value: "engineer"},
	}

	got := Build("Claude", records)

	want := "You are Claude in an AI Boardroom conversation. " +
		"Here's what you know about the user:\n\n" +
		"DIET:\n- vegan\n- no nuts\n\n" +
		"WORK:\n- engineer\n\n" +
		Closing
	assert.Equal(t, want, got)

	assert.Less(t, strings.Index(got, "DIET:"), strings.Index(got, "WORK:"))
	assert.True(t, strings.HasSuffix(got, Closing))
}

func TestBuildWithoutMemories(t *testing.T) {
	got := Build("ChatGPT", nil)

	assert.Equal(t, "You are ChatGPT in an AI Boardroom conversation. "+Closing, got)
	assert.NotContains(t, got, "Here's what you know")
	assert.NotContains(t, got, ":\n-")
}

func TestBuildVariantsDifferOnlyInPersona(t *testing.T) {
	records := []domain.MemoryRecord{{Category: "hobby", Key: "k", Value: "chess"}}

	claude := Build("Claude", records)
	gpt := Build("ChatGPT", records)

	assert.Equal(t, strings.Replace(claude, "Claude", "ChatGPT", 1), gpt)
}

func TestBuildRepeatsDuplicates(t *testing.T) {
	records := []domain.MemoryRecord{
		{Category: "pets", Key: "a", Value: "cat"},
		{Category: "pets", Key: "a", Value: "cat"},
	}

	got := Build("Claude", records)
	assert.Equal(t, 2, strings.Count(got, "- cat\n"))
}

func TestHeadingUsesFullCaseMapping(t *testing.T) {
	assert.Equal(t, "DIET", Heading("diet"))
	assert.Equal(t, "STRASSE", Heading("straße"))
	assert.Equal(t, "FOOD PREFS", Heading("Food prefs"))

	got := Build("Claude", []domain.MemoryRecord{{Category: "straße", Key: "k", Value: "Hauptstraße 1"}})
	assert.Contains(t, got, "STRASSE:\n- Hauptstraße 1\n")
}
