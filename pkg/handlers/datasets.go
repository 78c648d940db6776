package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/askdata-inc/askdata-engine/pkg/apperrors"
	"github.com/askdata-inc/askdata-engine/pkg/models"
	"github.com/askdata-inc/askdata-engine/pkg/services"
)

// maxUploadBytes caps dataset uploads at 32 MiB.
const maxUploadBytes = 32 << 20

// DatasetIngester turns uploaded files into stored datasets.
type DatasetIngester interface {
	IngestCSV(ctx context.Context, name string, r io.Reader) (*models.Dataset, *models.DatasetSchema, error)
	IngestDocument(ctx context.Context, name, text string) (*models.Dataset, error)
}

// DatasetReader is the read/list/delete surface for dataset management.
type DatasetReader interface {
	GetByID(ctx context.Context, datasetID uuid.UUID) (*models.Dataset, error)
	GetRows(ctx context.Context, datasetID uuid.UUID) ([]models.Row, error)
	List(ctx context.Context) ([]*models.Dataset, error)
	Delete(ctx context.Context, datasetID uuid.UUID) error
}

// DatasetHandler handles dataset upload and management endpoints.
type DatasetHandler struct {
	ingester DatasetIngester
	datasets DatasetReader
	logger   *zap.Logger
}

func NewDatasetHandler(ingester DatasetIngester, datasets DatasetReader, logger *zap.Logger) *DatasetHandler {
	return &DatasetHandler{ingester: ingester, datasets: datasets, logger: logger}
}

// RegisterRoutes registers the dataset handler's routes on the given mux.
func (h *DatasetHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/datasets", h.Upload)
	mux.HandleFunc("GET /api/datasets", h.List)
	mux.HandleFunc("GET /api/datasets/{dsid}", h.Get)
	mux.HandleFunc("DELETE /api/datasets/{dsid}", h.Delete)
}

type uploadResponse struct {
	Dataset *models.Dataset       `json:"dataset"`
	Schema  *models.DatasetSchema `json:"schema,omitempty"`
}

// Upload handles POST /api/datasets requests: a multipart form with a "file"
// part. CSV files become tabular datasets; anything else is stored as an
// unstructured document.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_upload", "Expected a multipart form with a file part"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_file", "Missing file part"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	defer func() { _ = file.Close() }()

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	if strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		dataset, schema, err := h.ingester.IngestCSV(r.Context(), name, file)
		if err != nil {
			h.logger.Error("CSV ingest failed", zap.String("name", name), zap.Error(err))
			if err := ErrorResponse(w, http.StatusBadRequest, "ingest_failed", "Failed to parse CSV file"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		if err := WriteJSON(w, http.StatusCreated, uploadResponse{Dataset: dataset, Schema: schema}); err != nil {
			h.logger.Error("Failed to write upload response", zap.Error(err))
		}
		return
	}

	text, err := io.ReadAll(file)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "ingest_failed", "Failed to read file"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	dataset, err := h.ingester.IngestDocument(r.Context(), name, string(text))
	if err != nil {
		h.logger.Error("Document ingest failed", zap.String("name", name), zap.Error(err))
		if err := ErrorResponse(w, http.StatusBadRequest, "ingest_failed", "Failed to ingest document"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if err := WriteJSON(w, http.StatusCreated, uploadResponse{Dataset: dataset}); err != nil {
		h.logger.Error("Failed to write upload response", zap.Error(err))
	}
}

// List handles GET /api/datasets requests.
func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	datasets, err := h.datasets.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list datasets", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_failed", "Failed to list datasets"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if err := WriteJSON(w, http.StatusOK, map[string]any{"datasets": datasets}); err != nil {
		h.logger.Error("Failed to write list response", zap.Error(err))
	}
}

type datasetDetailResponse struct {
	Dataset *models.Dataset       `json:"dataset"`
	Schema  *models.DatasetSchema `json:"schema"`
}

// Get handles GET /api/datasets/{dsid} requests, returning metadata plus a
// sampled schema summary.
func (h *DatasetHandler) Get(w http.ResponseWriter, r *http.Request) {
	datasetID, ok := ParseDatasetID(w, r, h.logger)
	if !ok {
		return
	}
	dataset, err := h.datasets.GetByID(r.Context(), datasetID)
	if err != nil {
		h.writeNotFoundOrError(w, err, "Failed to load dataset")
		return
	}

	var schema *models.DatasetSchema
	if dataset.Kind == models.KindTabular {
		rows, err := h.datasets.GetRows(r.Context(), datasetID)
		if err != nil {
			h.writeNotFoundOrError(w, err, "Failed to load rows")
			return
		}
		schema = services.SummarizeSchema(dataset.Columns, rows)
	}
	if err := WriteJSON(w, http.StatusOK, datasetDetailResponse{Dataset: dataset, Schema: schema}); err != nil {
		h.logger.Error("Failed to write dataset response", zap.Error(err))
	}
}

// Delete handles DELETE /api/datasets/{dsid} requests.
func (h *DatasetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	datasetID, ok := ParseDatasetID(w, r, h.logger)
	if !ok {
		return
	}
	if err := h.datasets.Delete(r.Context(), datasetID); err != nil {
		h.writeNotFoundOrError(w, err, "Failed to delete dataset")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DatasetHandler) writeNotFoundOrError(w http.ResponseWriter, err error, logMsg string) {
	if errors.Is(err, apperrors.ErrNotFound) {
		if err := ErrorResponse(w, http.StatusNotFound, "dataset_not_found", "Dataset not found"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	h.logger.Error(logMsg, zap.Error(err))
	if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", logMsg); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
