package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/askdata-inc/askdata-engine/pkg/apperrors"
	"github.com/askdata-inc/askdata-engine/pkg/logging"
	"github.com/askdata-inc/askdata-engine/pkg/models"
)

// QuestionAnswerer answers one question about one dataset.
type QuestionAnswerer interface {
	Answer(ctx context.Context, req *models.AskRequest) (*models.QueryResult, error)
}

// AskHandler handles natural-language questions against a dataset.
type AskHandler struct {
	engine QuestionAnswerer
	logger *zap.Logger
}

func NewAskHandler(engine QuestionAnswerer, logger *zap.Logger) *AskHandler {
	return &AskHandler{engine: engine, logger: logger}
}

// RegisterRoutes registers the ask handler's routes on the given mux.
func (h *AskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/datasets/{dsid}/ask", h.Ask)
}

type askBody struct {
	Question string               `json:"question"`
	History  []models.ChatMessage `json:"history,omitempty"`
}

// Ask handles POST /api/datasets/{dsid}/ask requests.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	datasetID, ok := ParseDatasetID(w, r, h.logger)
	if !ok {
		return
	}

	var body askBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if strings.TrimSpace(body.Question) == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_question", "Question must not be empty"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.engine.Answer(r.Context(), &models.AskRequest{
		Question:  body.Question,
		DatasetID: datasetID,
		History:   body.History,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "dataset_not_found", "Dataset not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to answer question",
			zap.String("dataset_id", datasetID.String()),
			zap.String("question", logging.TruncateQuestion(body.Question)),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "answer_failed", "Failed to answer question"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write ask response", zap.Error(err))
	}
}
