package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/askdata-inc/askdata-engine/pkg/models"
)

type stubRowStore struct {
	dataset      *models.Dataset
	rows         []models.Row
	err          error
	getByIDCalls int
}

func (s *stubRowStore) GetByID(ctx context.Context, datasetID uuid.UUID) (*models.Dataset, error) {
	s.getByIDCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.dataset, nil
}

func (s *stubRowStore) GetKind(ctx context.Context, datasetID uuid.UUID) (models.DatasetKind, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.dataset.Kind, nil
}

func (s *stubRowStore) GetRows(ctx context.Context, datasetID uuid.UUID) ([]models.Row, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

type stubFollowUp struct {
	calls int
}

func (s *stubFollowUp) AnswerFollowUp(ctx context.Context, question string, history []models.ChatMessage) (*models.QueryResult, error) {
	s.calls++
	return &models.QueryResult{Answer: "follow-up answer", Sources: []string{}}, nil
}

type stubFallback struct {
	calls int
}

func (s *stubFallback) AnswerFromSnippets(ctx context.Context, datasetID uuid.UUID, question string) (*models.QueryResult, error) {
	s.calls++
	return &models.QueryResult{Answer: "retrieval answer", Sources: []string{"snippet"}}, nil
}

func newTestEngine(store *stubRowStore) (*AnalysisEngine, *stubFollowUp, *stubFallback) {
	followUp := &stubFollowUp{}
	fallback := &stubFallback{}
	return NewAnalysisEngine(store, followUp, fallback, zap.NewNop()), followUp, fallback
}

func movieStore() *stubRowStore {
	columns, rows := movieRows()
	return &stubRowStore{
		dataset: &models.Dataset{
			ID:      uuid.New(),
			Name:    "movies",
			Kind:    models.KindTabular,
			Columns: columns,
		},
		rows: rows,
	}
}

func TestEngineAnswersStructuralQuestion(t *testing.T) {
	store := movieStore()
	engine, followUp, fallback := newTestEngine(store)

	result, err := engine.Answer(context.Background(), &models.AskRequest{
		Question:  "top 3 by rating",
		DatasetID: store.dataset.ID,
	})
	require.NoError(t, err)
	assert.Contains(t, result.Answer, "Se7en")
	assert.NotNil(t, result.Sources)
	assert.Empty(t, result.Sources)
	assert.Zero(t, followUp.calls)
	assert.Zero(t, fallback.calls)
}

func TestEngineRoundTripDeterminism(t *testing.T) {
	store := movieStore()
	engine, _, _ := newTestEngine(store)
	req := &models.AskRequest{Question: "average rating per genre", DatasetID: store.dataset.ID}

	first, err := engine.Answer(context.Background(), req)
	require.NoError(t, err)
	second, err := engine.Answer(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Answer, second.Answer)
	assert.Equal(t, first.ChartData, second.ChartData)
}

func TestEngineRoutesFollowUp(t *testing.T) {
	store := movieStore()
	engine, followUp, fallback := newTestEngine(store)

	result, err := engine.Answer(context.Background(), &models.AskRequest{
		Question:  "why?",
		DatasetID: store.dataset.ID,
		History: []models.ChatMessage{
			{Role: "user", Content: "top 3 by rating"},
			{Role: "assistant", Content: "Top 3 by rating: ..."},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "follow-up answer", result.Answer)
	assert.Equal(t, 1, followUp.calls)
	assert.Zero(t, fallback.calls)
}

func TestEngineNonStructuralSkipsToRetrieval(t *testing.T) {
	store := movieStore()
	engine, _, fallback := newTestEngine(store)

	result, err := engine.Answer(context.Background(), &models.AskRequest{
		Question:  "hello there",
		DatasetID: store.dataset.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "retrieval answer", result.Answer)
	assert.Equal(t, 1, fallback.calls)
}

func TestEngineEmptyDatasetFallsThroughToRetrieval(t *testing.T) {
	store := &stubRowStore{
		dataset: &models.Dataset{
			ID:      uuid.New(),
			Name:    "empty",
			Kind:    models.KindTabular,
			Columns: nil,
		},
		rows: nil,
	}
	engine, _, fallback := newTestEngine(store)

	result, err := engine.Answer(context.Background(), &models.AskRequest{
		Question:  "top 3 by rating",
		DatasetID: store.dataset.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "retrieval answer", result.Answer)
	assert.Equal(t, 1, fallback.calls)
}

func TestEngineDocumentDatasetGoesToRetrieval(t *testing.T) {
	store := &stubRowStore{
		dataset: &models.Dataset{
			ID:   uuid.New(),
			Name: "handbook",
			Kind: models.KindDocument,
		},
	}
	engine, _, fallback := newTestEngine(store)

	result, err := engine.Answer(context.Background(), &models.AskRequest{
		Question:  "top 3 by rating",
		DatasetID: store.dataset.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "retrieval answer", result.Answer)
	assert.Equal(t, 1, fallback.calls)
	// The kind check alone routes documents; the full record is never loaded.
	assert.Zero(t, store.getByIDCalls)
}

func TestEnginePropagatesStoreError(t *testing.T) {
	store := &stubRowStore{err: assert.AnError}
	engine, _, fallback := newTestEngine(store)

	_, err := engine.Answer(context.Background(), &models.AskRequest{
		Question:  "top 3 by rating",
		DatasetID: uuid.New(),
	})
	require.Error(t, err)
	assert.Zero(t, fallback.calls)
}
