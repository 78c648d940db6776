package models

import "github.com/google/uuid"

// ChatMessage is one turn of conversation history supplied by the caller.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AskRequest carries one question about one dataset.
type AskRequest struct {
	Question  string        `json:"question"`
	DatasetID uuid.UUID     `json:"datasetId"`
	History   []ChatMessage `json:"history,omitempty"`
}

// ChartData is an optional chart payload attached to an answer.
type ChartData struct {
	Type  string           `json:"type"` // bar, line, pie, scatter
	Title string           `json:"title"`
	XKey  string           `json:"xKey"`
	YKey  string           `json:"yKey"`
	Data  []map[string]any `json:"data"`
}

// QueryResult is the engine's answer to one question. Answer leads directly
// with the finding (no conversational preamble); downstream synthesis and
// tests depend on that prefix-free contract. Sources is empty for structural
// operations and carries cited snippets on the retrieval path.
type QueryResult struct {
	Answer    string     `json:"answer"`
	Context   string     `json:"context,omitempty"`
	Sources   []string   `json:"sources"`
	ChartData *ChartData `json:"chartData,omitempty"`
}
