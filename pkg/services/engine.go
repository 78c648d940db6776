package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/askdata-inc/askdata-engine/pkg/logging"
	"github.com/askdata-inc/askdata-engine/pkg/models"
)

// RowStore is the dataset collaborator the engine reads from. Row order must
// match insertion order; field ordering and tie-breaking depend on it.
type RowStore interface {
	GetByID(ctx context.Context, datasetID uuid.UUID) (*models.Dataset, error)
	GetKind(ctx context.Context, datasetID uuid.UUID) (models.DatasetKind, error)
	GetRows(ctx context.Context, datasetID uuid.UUID) ([]models.Row, error)
}

// FollowUpAnswerer answers back-reference questions from conversation
// history alone.
type FollowUpAnswerer interface {
	AnswerFollowUp(ctx context.Context, question string, history []models.ChatMessage) (*models.QueryResult, error)
}

// FallbackAnswerer answers questions the structural engine cannot, via
// snippet retrieval and text generation.
type FallbackAnswerer interface {
	AnswerFromSnippets(ctx context.Context, datasetID uuid.UUID, question string) (*models.QueryResult, error)
}

// AnalysisEngine routes a question to the structural query path, the
// follow-up path, or the retrieval fallback.
type AnalysisEngine struct {
	store      RowStore
	dispatcher *Dispatcher
	followUp   FollowUpAnswerer
	fallback   FallbackAnswerer
	logger     *zap.Logger
}

func NewAnalysisEngine(store RowStore, followUp FollowUpAnswerer, fallback FallbackAnswerer, logger *zap.Logger) *AnalysisEngine {
	return &AnalysisEngine{
		store:      store,
		dispatcher: NewDispatcher(logger),
		followUp:   followUp,
		fallback:   fallback,
		logger:     logger,
	}
}

// Answer resolves one question against one dataset. Structural answers are
// deterministic for an unchanged dataset; only the retrieval path delegates
// prose to a model.
func (e *AnalysisEngine) Answer(ctx context.Context, req *models.AskRequest) (*models.QueryResult, error) {
	// Document datasets have no rows to query; only the kind is needed to
	// route them.
	kind, err := e.store.GetKind(ctx, req.DatasetID)
	if err != nil {
		return nil, fmt.Errorf("loading dataset kind: %w", err)
	}
	if kind == models.KindDocument {
		return e.retrieve(ctx, req, "document dataset")
	}

	dataset, err := e.store.GetByID(ctx, req.DatasetID)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}

	rows, err := e.store.GetRows(ctx, req.DatasetID)
	if err != nil {
		return nil, fmt.Errorf("loading rows: %w", err)
	}
	schema := BuildSchema(dataset.Columns, rows)

	if isFollowUp(req.Question, req.History, schema) {
		e.logger.Debug("routing to follow-up",
			zap.String("dataset_id", req.DatasetID.String()),
			zap.String("question", logging.TruncateQuestion(req.Question)))
		return e.followUp.AnswerFollowUp(ctx, req.Question, req.History)
	}

	// Non-structural text skips the detector chain entirely.
	if !looksStructural(req.Question, schema) {
		return e.retrieve(ctx, req, "not structural")
	}

	intent := e.dispatcher.Dispatch(req.Question, schema)
	if intent == nil {
		return e.retrieve(ctx, req, "no detector claimed")
	}

	result, err := Execute(intent, rows, schema)
	if err != nil {
		e.logger.Warn("executor failed, falling back to retrieval", zap.Error(err))
		return e.retrieve(ctx, req, "executor failed")
	}
	if result.Sources == nil {
		result.Sources = []string{}
	}
	return result, nil
}

func (e *AnalysisEngine) retrieve(ctx context.Context, req *models.AskRequest, reason string) (*models.QueryResult, error) {
	e.logger.Debug("routing to retrieval",
		zap.String("dataset_id", req.DatasetID.String()),
		zap.String("reason", reason),
		zap.String("question", logging.TruncateQuestion(req.Question)))
	return e.fallback.AnswerFromSnippets(ctx, req.DatasetID, req.Question)
}
