package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdata-inc/askdata-engine/pkg/models"
)

func TestLooksStructural(t *testing.T) {
	columns, rows := movieRows()
	schema := BuildSchema(columns, rows)

	tests := []struct {
		question string
		want     bool
	}{
		{"top 5 by rating", true},
		{"average rating", true},
		{"how many crime movies are there", true},
		{"what was the box office for Jaws", true},
		{"rating of Fargo", true}, // names a column
		{"hello there", false},
		{"thanks, that was helpful!", false},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, looksStructural(tt.question, schema))
		})
	}
}

func TestIsFollowUp(t *testing.T) {
	columns, rows := movieRows()
	schema := BuildSchema(columns, rows)
	history := []models.ChatMessage{
		{Role: "user", Content: "top 3 by rating"},
		{Role: "assistant", Content: "Top 3 by rating: ..."},
	}

	tests := []struct {
		name     string
		question string
		history  []models.ChatMessage
		want     bool
	}{
		{"why with history", "why?", history, true},
		{"what about with history", "what about the worst?", history, true},
		{"and-prefix", "and the lowest?", history, true},
		{"no history never follow-up", "why?", nil, false},
		{"structural question is not follow-up", "top 5 by rating", history, false},
		{"short but names a field", "rating?", history, false},
		{"short vague", "ok then", history, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isFollowUp(tt.question, tt.history, schema))
		})
	}
}

func TestFindCategoricalFilter(t *testing.T) {
	columns, rows := movieRows()
	schema := BuildSchema(columns, rows)

	field, value, ok := findCategoricalFilter("top 3 crime movies", schema)
	require.True(t, ok)
	assert.Equal(t, "genre", field)
	assert.Equal(t, "Crime", value)

	// Plural tolerance: "thrillers" matches the stored "Thriller".
	field, value, ok = findCategoricalFilter("list all thrillers", schema)
	require.True(t, ok)
	assert.Equal(t, "genre", field)
	assert.Equal(t, "Thriller", value)

	_, _, ok = findCategoricalFilter("top 3 by rating", schema)
	assert.False(t, ok)
}

func TestFirstNumericFieldMention(t *testing.T) {
	columns, rows := movieRows()
	schema := BuildSchema(columns, rows)

	f, ok := firstNumericFieldMention("top movies by box office", schema)
	require.True(t, ok)
	assert.Equal(t, "box_office", f)

	f, ok = firstNumericFieldMention("highest rating", schema)
	require.True(t, ok)
	assert.Equal(t, "rating", f)

	// Excluded fields are skipped.
	f, ok = firstNumericFieldMention("revenue by year", schema, "year")
	require.True(t, ok)
	assert.Equal(t, "box_office", f)

	_, ok = firstNumericFieldMention("list every genre", schema)
	assert.False(t, ok)
}

func TestDefaultRankField(t *testing.T) {
	columns, rows := movieRows()
	schema := BuildSchema(columns, rows)

	f, ok := defaultRankField(schema)
	require.True(t, ok)
	assert.Equal(t, "rating", f)

	// Without preferred names, first numeric field wins.
	other := BuildSchema([]string{"name", "weight"}, []models.Row{
		{"name": "a", "weight": "10"},
		{"name": "b", "weight": "20"},
	})
	f, ok = defaultRankField(other)
	require.True(t, ok)
	assert.Equal(t, "weight", f)

	empty := BuildSchema(nil, nil)
	_, ok = defaultRankField(empty)
	assert.False(t, ok)
}

func TestFindTimeField(t *testing.T) {
	columns, rows := movieRows()
	schema := BuildSchema(columns, rows)

	f, ok := findTimeField(schema)
	require.True(t, ok)
	assert.Equal(t, "year", f)

	// Numeric field whose range looks like calendar years.
	implicit := BuildSchema([]string{"name", "released_in"}, []models.Row{
		{"name": "a", "released_in": "1987"},
		{"name": "b", "released_in": "2003"},
	})
	f, ok = findTimeField(implicit)
	require.True(t, ok)
	assert.Equal(t, "released_in", f)
}
