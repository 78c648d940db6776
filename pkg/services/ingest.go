package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/askdata-inc/askdata-engine/pkg/apperrors"
	"github.com/askdata-inc/askdata-engine/pkg/llm"
	"github.com/askdata-inc/askdata-engine/pkg/models"
)

// embeddingBatchSize bounds one embeddings request during ingest.
const embeddingBatchSize = 64

// maxDocumentChunkLen caps a document snippet's length in runes.
const maxDocumentChunkLen = 1000

// DatasetWriter is the persistence surface the ingest path writes datasets
// through.
type DatasetWriter interface {
	Create(ctx context.Context, dataset *models.Dataset) error
	InsertRows(ctx context.Context, datasetID uuid.UUID, rows []models.Row) error
}

// SnippetWriter persists embedded snippets for the retrieval fallback.
type SnippetWriter interface {
	CreateBatch(ctx context.Context, snippets []*models.Snippet) error
}

// IngestService turns uploaded files into stored datasets. Tabular uploads
// also get per-row snippets so the retrieval fallback has something to cite;
// snippet embedding is best-effort and never fails the upload.
type IngestService struct {
	datasets       DatasetWriter
	snippets       SnippetWriter
	client         llm.LLMClient
	embeddingModel string
	logger         *zap.Logger
}

func NewIngestService(datasets DatasetWriter, snippets SnippetWriter, client llm.LLMClient, embeddingModel string, logger *zap.Logger) *IngestService {
	return &IngestService{
		datasets:       datasets,
		snippets:       snippets,
		client:         client,
		embeddingModel: embeddingModel,
		logger:         logger,
	}
}

// IngestCSV parses a CSV stream into a tabular dataset. The header row
// becomes the column list; its order is preserved for stable schema output.
func (s *IngestService) IngestCSV(ctx context.Context, name string, r io.Reader) (*models.Dataset, *models.DatasetSchema, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading CSV header: %w", err)
	}
	// Column names are lower-cased once here; schema inference and field
	// resolution assume it.
	columns := make([]string, 0, len(header))
	for _, h := range header {
		columns = append(columns, strings.ToLower(strings.TrimSpace(h)))
	}

	var rows []models.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading CSV row %d: %w", len(rows)+2, err)
		}
		row := models.Row{}
		for i, cell := range record {
			if i >= len(columns) {
				break
			}
			row[columns[i]] = cell
		}
		rows = append(rows, row)
	}
	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("CSV has no columns: %w", apperrors.ErrUnsupportedKind)
	}

	dataset := &models.Dataset{
		ID:        uuid.New(),
		Name:      name,
		Kind:      models.KindTabular,
		Columns:   columns,
		RowCount:  len(rows),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.datasets.Create(ctx, dataset); err != nil {
		return nil, nil, fmt.Errorf("creating dataset: %w", err)
	}
	if len(rows) > 0 {
		if err := s.datasets.InsertRows(ctx, dataset.ID, rows); err != nil {
			return nil, nil, fmt.Errorf("inserting rows: %w", err)
		}
	}

	s.embedSnippets(ctx, dataset.ID, renderRowSnippets(columns, rows))

	return dataset, SummarizeSchema(columns, rows), nil
}

// IngestDocument stores unstructured text as a document dataset whose
// questions always answer through retrieval.
func (s *IngestService) IngestDocument(ctx context.Context, name, text string) (*models.Dataset, error) {
	chunks := chunkDocument(text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document is empty: %w", apperrors.ErrUnsupportedKind)
	}

	dataset := &models.Dataset{
		ID:        uuid.New(),
		Name:      name,
		Kind:      models.KindDocument,
		Columns:   []string{},
		RowCount:  0,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.datasets.Create(ctx, dataset); err != nil {
		return nil, fmt.Errorf("creating dataset: %w", err)
	}

	s.embedSnippets(ctx, dataset.ID, chunks)
	return dataset, nil
}

// embedSnippets embeds and stores snippet texts, logging and moving on when
// the embedding collaborator is unavailable.
func (s *IngestService) embedSnippets(ctx context.Context, datasetID uuid.UUID, texts []string) {
	for start := 0; start < len(texts); start += embeddingBatchSize {
		end := start + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		embeddings, err := s.client.CreateEmbeddings(ctx, batch, s.embeddingModel)
		if err != nil {
			s.logger.Warn("snippet embedding failed, skipping remaining batches",
				zap.String("dataset_id", datasetID.String()),
				zap.Error(err))
			return
		}
		snippets := make([]*models.Snippet, 0, len(batch))
		for i, text := range batch {
			if i >= len(embeddings) {
				break
			}
			snippets = append(snippets, &models.Snippet{
				ID:        uuid.New(),
				DatasetID: datasetID,
				Content:   text,
				Embedding: embeddings[i],
			})
		}
		if err := s.snippets.CreateBatch(ctx, snippets); err != nil {
			s.logger.Warn("storing snippets failed",
				zap.String("dataset_id", datasetID.String()),
				zap.Error(err))
			return
		}
	}
}

// renderRowSnippets flattens rows into "col: value" lines for embedding.
func renderRowSnippets(columns []string, rows []models.Row) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		parts := make([]string, 0, len(columns))
		for _, col := range columns {
			if v := strings.TrimSpace(row[col]); v != "" {
				parts = append(parts, fmt.Sprintf("%s: %s", col, v))
			}
		}
		if len(parts) > 0 {
			out = append(out, strings.Join(parts, ", "))
		}
	}
	return out
}

// chunkDocument splits text on blank lines, re-joining short paragraphs and
// splitting oversized ones at the rune cap.
func chunkDocument(text string) []string {
	var chunks []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		runes := []rune(para)
		for len(runes) > maxDocumentChunkLen {
			chunks = append(chunks, string(runes[:maxDocumentChunkLen]))
			runes = runes[maxDocumentChunkLen:]
		}
		if len(runes) > 0 {
			chunks = append(chunks, string(runes))
		}
	}
	return chunks
}
