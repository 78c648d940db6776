package models

import (
	"time"

	"github.com/google/uuid"
)

// DatasetKind selects the answer path: tabular datasets flow through the
// structural query engine, document datasets go straight to retrieval.
type DatasetKind string

const (
	KindTabular  DatasetKind = "tabular"
	KindDocument DatasetKind = "document"
)

// Dataset is the stored metadata for one uploaded dataset. Columns preserves
// the header order of the original file so schema field order stays stable.
type Dataset struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Kind      DatasetKind `json:"kind"`
	Columns   []string    `json:"columns"`
	RowCount  int         `json:"rowCount"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Row is one record keyed by column name. All cell values are kept as the
// raw text from the source file; numeric interpretation happens per query.
type Row map[string]string

// Snippet is a stored text fragment with its embedding, used by the
// retrieval fallback. Score is populated on search results only.
type Snippet struct {
	ID        uuid.UUID `json:"id"`
	DatasetID uuid.UUID `json:"datasetId"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"`
	Score     float64   `json:"score,omitempty"`
}
