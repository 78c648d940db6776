package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/askdata-inc/askdata-engine/pkg/llm"
	"github.com/askdata-inc/askdata-engine/pkg/logging"
	"github.com/askdata-inc/askdata-engine/pkg/models"
	"github.com/askdata-inc/askdata-engine/pkg/retry"
)

const retrievalSystemMessage = `You answer questions using ONLY the provided context snippets.
If the snippets do not contain the answer, say that the information is not available.
Lead directly with the answer, without any conversational preamble.`

const noRelevantSnippetsAnswer = "No relevant information found in this dataset for that question."

// SnippetSearcher finds stored snippets similar to a query embedding.
type SnippetSearcher interface {
	Search(ctx context.Context, datasetID uuid.UUID, query []float32, threshold float64, limit int) ([]models.Snippet, error)
}

// RetrievalService is the fallback path for questions the structural engine
// declines: embed the question, find similar snippets, generate an answer
// grounded in them.
type RetrievalService struct {
	client         llm.LLMClient
	snippets       SnippetSearcher
	breaker        *llm.CircuitBreaker
	retryCfg       *retry.Config
	embeddingModel string
	threshold      float64
	limit          int
	logger         *zap.Logger
}

func NewRetrievalService(client llm.LLMClient, snippets SnippetSearcher, embeddingModel string, threshold float64, limit int, logger *zap.Logger) *RetrievalService {
	return &RetrievalService{
		client:         client,
		snippets:       snippets,
		breaker:        llm.NewCircuitBreaker(llm.DefaultCircuitBreakerConfig()),
		retryCfg:       retry.DefaultConfig(),
		embeddingModel: embeddingModel,
		threshold:      threshold,
		limit:          limit,
		logger:         logger,
	}
}

var _ FallbackAnswerer = (*RetrievalService)(nil)

func (s *RetrievalService) AnswerFromSnippets(ctx context.Context, datasetID uuid.UUID, question string) (*models.QueryResult, error) {
	if ok, err := s.breaker.Allow(); !ok {
		return nil, fmt.Errorf("retrieval unavailable: %w", err)
	}

	embedding, err := retry.DoWithResult(ctx, s.retryCfg, func() ([]float32, error) {
		return s.client.CreateEmbedding(ctx, question, s.embeddingModel)
	})
	if err != nil {
		s.breaker.RecordFailure()
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	found, err := s.snippets.Search(ctx, datasetID, embedding, s.threshold, s.limit)
	if err != nil {
		return nil, fmt.Errorf("searching snippets: %w", err)
	}
	if len(found) == 0 {
		s.breaker.RecordSuccess()
		return &models.QueryResult{
			Answer:  noRelevantSnippetsAnswer,
			Context: "retrieval snippets=0",
			Sources: []string{},
		}, nil
	}

	sources := make([]string, 0, len(found))
	var b strings.Builder
	b.WriteString("Context snippets:\n")
	for i, sn := range found {
		b.WriteString(fmt.Sprintf("[%d] %s\n", i+1, sn.Content))
		sources = append(sources, sn.Content)
	}
	b.WriteString("\nQuestion: " + question)

	answer, err := retry.DoWithResult(ctx, s.retryCfg, func() (string, error) {
		return s.client.GenerateResponse(ctx, b.String(), retrievalSystemMessage, 0.2)
	})
	if err != nil {
		s.breaker.RecordFailure()
		return nil, fmt.Errorf("generating answer: %w", err)
	}
	s.breaker.RecordSuccess()

	s.logger.Debug("retrieval answered",
		zap.String("dataset_id", datasetID.String()),
		zap.Int("snippets", len(found)),
		zap.String("question", logging.TruncateQuestion(question)))

	return &models.QueryResult{
		Answer:  strings.TrimSpace(answer),
		Context: fmt.Sprintf("retrieval snippets=%d", len(found)),
		Sources: sources,
	}, nil
}
