package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupMemories(t *testing.T) {
	records := []MemoryRecord{
		{Category: "diet", Key: "style", Value: "vegan"},
		{Category: "work", Key: "role", Value: "engineer"},
		{Category: "diet", Key: "allergy", Value: "no nuts"},
		{Category: "Diet", Key: "x", Value: "case matters"},
		{Category: "diet", Key: "style", Value: "vegan"},
	}

	got := GroupMemories(records)

	assert.Equal(t, []MemoryCategory{
		{Name: "diet", Values: []string{"vegan", "no nuts", "vegan"}},
		{Name: "work", Values: []string{"engineer"}},
		{Name: "Diet", Values: []string{"case matters"}},
	}, got)
}

func TestGroupMemoriesEmpty(t *testing.T) {
	assert.Empty(t, GroupMemories(nil))
}
