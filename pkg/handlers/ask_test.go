package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/askdata-inc/askdata-engine/pkg/apperrors"
	"github.com/askdata-inc/askdata-engine/pkg/models"
)

type stubEngine struct {
	result  *models.QueryResult
	err     error
	lastReq *models.AskRequest
}

func (s *stubEngine) Answer(ctx context.Context, req *models.AskRequest) (*models.QueryResult, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newAskMux(engine *stubEngine) *http.ServeMux {
	mux := http.NewServeMux()
	NewAskHandler(engine, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestAskReturnsResult(t *testing.T) {
	engine := &stubEngine{result: &models.QueryResult{
		Answer:  "8.00",
		Sources: []string{},
	}}
	mux := newAskMux(engine)

	datasetID := uuid.New()
	body := `{"question":"average rating"}`
	req := httptest.NewRequest(http.MethodPost, "/api/datasets/"+datasetID.String()+"/ask", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result models.QueryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "8.00", result.Answer)
	assert.NotNil(t, result.Sources)

	require.NotNil(t, engine.lastReq)
	assert.Equal(t, datasetID, engine.lastReq.DatasetID)
	assert.Equal(t, "average rating", engine.lastReq.Question)
}

func TestAskValidation(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
	}{
		{"invalid dataset id", "/api/datasets/not-a-uuid/ask", `{"question":"x"}`, http.StatusBadRequest},
		{"invalid json", "/api/datasets/" + uuid.NewString() + "/ask", `{`, http.StatusBadRequest},
		{"empty question", "/api/datasets/" + uuid.NewString() + "/ask", `{"question":"  "}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newAskMux(&stubEngine{result: &models.QueryResult{}})
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestAskDatasetNotFound(t *testing.T) {
	mux := newAskMux(&stubEngine{err: apperrors.ErrNotFound})

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/"+uuid.NewString()+"/ask", strings.NewReader(`{"question":"x"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAskEngineFailure(t *testing.T) {
	mux := newAskMux(&stubEngine{err: assert.AnError})

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/"+uuid.NewString()+"/ask", strings.NewReader(`{"question":"x"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "answer_failed", body["error"])
}
