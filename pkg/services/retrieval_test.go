package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/askdata-inc/askdata-engine/pkg/llm"
	"github.com/askdata-inc/askdata-engine/pkg/models"
)

type stubSnippetSearcher struct {
	snippets []models.Snippet
	err      error
}

func (s *stubSnippetSearcher) Search(ctx context.Context, datasetID uuid.UUID, query []float32, threshold float64, limit int) ([]models.Snippet, error) {
	return s.snippets, s.err
}

func newRetrievalForTest(client llm.LLMClient, searcher SnippetSearcher) *RetrievalService {
	return NewRetrievalService(client, searcher, "embed-model", 0.3, 5, zap.NewNop())
}

func TestRetrievalAnswersFromSnippets(t *testing.T) {
	client := llm.NewMockLLMClient()
	client.CreateEmbeddingFunc = func(ctx context.Context, input, model string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	client.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		assert.Contains(t, prompt, "Jaws was released in 1975")
		return "Jaws came out in 1975.", nil
	}
	searcher := &stubSnippetSearcher{snippets: []models.Snippet{
		{Content: "Jaws was released in 1975", Score: 0.9},
	}}

	svc := newRetrievalForTest(client, searcher)
	result, err := svc.AnswerFromSnippets(context.Background(), uuid.New(), "when was Jaws released?")
	require.NoError(t, err)
	assert.Equal(t, "Jaws came out in 1975.", result.Answer)
	assert.Equal(t, []string{"Jaws was released in 1975"}, result.Sources)
}

func TestRetrievalNoSnippetsFound(t *testing.T) {
	client := llm.NewMockLLMClient()
	client.CreateEmbeddingFunc = func(ctx context.Context, input, model string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	svc := newRetrievalForTest(client, &stubSnippetSearcher{})

	result, err := svc.AnswerFromSnippets(context.Background(), uuid.New(), "anything?")
	require.NoError(t, err)
	assert.Equal(t, noRelevantSnippetsAnswer, result.Answer)
	assert.Empty(t, result.Sources)
	// No generation call without context snippets.
	assert.Zero(t, client.GenerateResponseCalls)
}

func TestRetrievalEmbeddingFailure(t *testing.T) {
	client := llm.NewMockLLMClient()
	client.CreateEmbeddingFunc = func(ctx context.Context, input, model string) ([]float32, error) {
		return nil, errors.New("upstream down")
	}
	svc := newRetrievalForTest(client, &stubSnippetSearcher{})

	_, err := svc.AnswerFromSnippets(context.Background(), uuid.New(), "anything?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding question")
}

func TestFollowUpUsesHistoryOnly(t *testing.T) {
	client := llm.NewMockLLMClient()
	var capturedPrompt, capturedSystem string
	client.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		capturedPrompt = prompt
		capturedSystem = systemMessage
		return "Because Se7en has the highest rating.", nil
	}

	svc := NewFollowUpService(client, zap.NewNop())
	result, err := svc.AnswerFollowUp(context.Background(), "why?", []models.ChatMessage{
		{Role: "user", Content: "which movie is best?"},
		{Role: "assistant", Content: "Se7en has the highest rating (8.6)."},
	})
	require.NoError(t, err)
	assert.Equal(t, "Because Se7en has the highest rating.", result.Answer)
	assert.Contains(t, capturedPrompt, "Se7en has the highest rating (8.6).")
	assert.Contains(t, capturedPrompt, "Follow-up question: why?")
	assert.Contains(t, capturedSystem, "ONLY the conversation history")
}

func TestFollowUpTruncatesLongHistory(t *testing.T) {
	client := llm.NewMockLLMClient()
	var capturedPrompt string
	client.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		capturedPrompt = prompt
		return "ok", nil
	}

	history := make([]models.ChatMessage, 0, maxHistoryTurns+5)
	for i := 0; i < maxHistoryTurns+5; i++ {
		history = append(history, models.ChatMessage{Role: "user", Content: "turn"})
	}
	history[0].Content = "very first turn"

	svc := NewFollowUpService(client, zap.NewNop())
	_, err := svc.AnswerFollowUp(context.Background(), "why?", history)
	require.NoError(t, err)
	assert.False(t, strings.Contains(capturedPrompt, "very first turn"))
}
