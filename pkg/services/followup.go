package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/askdata-inc/askdata-engine/pkg/llm"
	"github.com/askdata-inc/askdata-engine/pkg/models"
)

const followUpSystemMessage = `You answer follow-up questions using ONLY the conversation history provided.
Do not compute new statistics, introduce new facts, or speculate about data not already present in prior turns.
If the history does not contain enough information to answer, say so plainly.
Lead directly with the answer, without any conversational preamble.`

// maxHistoryTurns bounds the prompt; older turns rarely help a follow-up.
const maxHistoryTurns = 10

// FollowUpService answers back-reference questions ("why?", "and the
// worst?") from conversation history alone, never from the dataset.
type FollowUpService struct {
	client llm.LLMClient
	logger *zap.Logger
}

func NewFollowUpService(client llm.LLMClient, logger *zap.Logger) *FollowUpService {
	return &FollowUpService{client: client, logger: logger}
}

var _ FollowUpAnswerer = (*FollowUpService)(nil)

func (s *FollowUpService) AnswerFollowUp(ctx context.Context, question string, history []models.ChatMessage) (*models.QueryResult, error) {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	for _, msg := range history {
		b.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
	}
	b.WriteString("\nFollow-up question: " + question)

	answer, err := s.client.GenerateResponse(ctx, b.String(), followUpSystemMessage, 0.2)
	if err != nil {
		return nil, fmt.Errorf("follow-up generation: %w", err)
	}
	return &models.QueryResult{
		Answer:  strings.TrimSpace(answer),
		Context: fmt.Sprintf("follow_up history_turns=%d", len(history)),
		Sources: []string{},
	}, nil
}
