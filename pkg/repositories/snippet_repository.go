package repositories

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/askdata-inc/askdata-engine/pkg/database"
	"github.com/askdata-inc/askdata-engine/pkg/models"
)

// SnippetRepository stores embedded document chunks and serves the
// similarity-search half of the retrieval collaborator.
type SnippetRepository interface {
	Create(ctx context.Context, snippet *models.Snippet) error
	CreateBatch(ctx context.Context, snippets []*models.Snippet) error
	// Search returns snippets ranked by cosine similarity to the query
	// vector, keeping only scores at or above threshold, up to limit.
	Search(ctx context.Context, datasetID uuid.UUID, query []float32, threshold float64, limit int) ([]models.Snippet, error)
}

type snippetRepository struct {
	db *database.DB
}

// NewSnippetRepository creates a new SnippetRepository.
func NewSnippetRepository(db *database.DB) SnippetRepository {
	return &snippetRepository{db: db}
}

var _ SnippetRepository = (*snippetRepository)(nil)

func (r *snippetRepository) Create(ctx context.Context, snippet *models.Snippet) error {
	return r.CreateBatch(ctx, []*models.Snippet{snippet})
}

func (r *snippetRepository) CreateBatch(ctx context.Context, snippets []*models.Snippet) error {
	batch := &pgx.Batch{}
	for _, s := range snippets {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		batch.Queue(`
			INSERT INTO snippets (id, dataset_id, content, embedding)
			VALUES ($1, $2, $3, $4)`, s.ID, s.DatasetID, s.Content, s.Embedding)
	}

	br := r.db.SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert snippets: %w", err)
		}
	}
	return nil
}

func (r *snippetRepository) Search(ctx context.Context, datasetID uuid.UUID, query []float32, threshold float64, limit int) ([]models.Snippet, error) {
	dbRows, err := r.db.Query(ctx, `
		SELECT id, dataset_id, content, embedding
		FROM snippets WHERE dataset_id = $1`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("query snippets: %w", err)
	}
	defer dbRows.Close()

	var matches []models.Snippet
	for dbRows.Next() {
		var s models.Snippet
		if err := dbRows.Scan(&s.ID, &s.DatasetID, &s.Content, &s.Embedding); err != nil {
			return nil, fmt.Errorf("scan snippet: %w", err)
		}
		s.Score = cosineSimilarity(query, s.Embedding)
		if s.Score >= threshold {
			matches = append(matches, s)
		}
	}
	if err := dbRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snippets: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// cosineSimilarity returns the cosine of the angle between two vectors, or 0
// when either vector is empty, zero, or the dimensions differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
