// Package repositories provides PostgreSQL data access for datasets, rows,
// and retrieval snippets.
package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/askdata-inc/askdata-engine/pkg/apperrors"
	"github.com/askdata-inc/askdata-engine/pkg/database"
	"github.com/askdata-inc/askdata-engine/pkg/models"
)

// DatasetRepository is the row store collaborator: it owns persistence of
// datasets and their raw rows. GetRows preserves insertion order so schema
// inference sees stable first-seen column ordering.
type DatasetRepository interface {
	Create(ctx context.Context, dataset *models.Dataset) error
	GetByID(ctx context.Context, datasetID uuid.UUID) (*models.Dataset, error)
	GetKind(ctx context.Context, datasetID uuid.UUID) (models.DatasetKind, error)
	GetRows(ctx context.Context, datasetID uuid.UUID) ([]models.Row, error)
	InsertRows(ctx context.Context, datasetID uuid.UUID, rows []models.Row) error
	List(ctx context.Context) ([]*models.Dataset, error)
	Delete(ctx context.Context, datasetID uuid.UUID) error
}

type datasetRepository struct {
	db *database.DB
}

// NewDatasetRepository creates a new DatasetRepository.
func NewDatasetRepository(db *database.DB) DatasetRepository {
	return &datasetRepository{db: db}
}

var _ DatasetRepository = (*datasetRepository)(nil)

func (r *datasetRepository) Create(ctx context.Context, dataset *models.Dataset) error {
	if dataset.ID == uuid.Nil {
		dataset.ID = uuid.New()
	}
	dataset.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx, `
		INSERT INTO datasets (id, name, kind, columns, row_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		dataset.ID, dataset.Name, dataset.Kind, dataset.Columns, dataset.RowCount, dataset.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	return nil
}

func (r *datasetRepository) GetByID(ctx context.Context, datasetID uuid.UUID) (*models.Dataset, error) {
	var ds models.Dataset
	err := r.db.QueryRow(ctx, `
		SELECT id, name, kind, columns, row_count, created_at
		FROM datasets WHERE id = $1`, datasetID,
	).Scan(&ds.ID, &ds.Name, &ds.Kind, &ds.Columns, &ds.RowCount, &ds.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dataset: %w", err)
	}
	return &ds, nil
}

func (r *datasetRepository) GetKind(ctx context.Context, datasetID uuid.UUID) (models.DatasetKind, error) {
	var kind models.DatasetKind
	err := r.db.QueryRow(ctx, `SELECT kind FROM datasets WHERE id = $1`, datasetID).Scan(&kind)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperrors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get dataset kind: %w", err)
	}
	return kind, nil
}

func (r *datasetRepository) GetRows(ctx context.Context, datasetID uuid.UUID) ([]models.Row, error) {
	dbRows, err := r.db.Query(ctx, `
		SELECT payload FROM dataset_rows
		WHERE dataset_id = $1
		ORDER BY row_index`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer dbRows.Close()

	var rows []models.Row
	for dbRows.Next() {
		var payload []byte
		if err := dbRows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		var row models.Row
		if err := json.Unmarshal(payload, &row); err != nil {
			return nil, fmt.Errorf("decode row payload: %w", err)
		}
		rows = append(rows, row)
	}
	if err := dbRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return rows, nil
}

func (r *datasetRepository) InsertRows(ctx context.Context, datasetID uuid.UUID, rows []models.Row) error {
	batch := &pgx.Batch{}
	for i, row := range rows {
		payload, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
		batch.Queue(`
			INSERT INTO dataset_rows (dataset_id, row_index, payload)
			VALUES ($1, $2, $3)`, datasetID, i, payload)
	}
	batch.Queue(`UPDATE datasets SET row_count = $2 WHERE id = $1`, datasetID, len(rows))

	br := r.db.SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert rows: %w", err)
		}
	}
	return nil
}

func (r *datasetRepository) List(ctx context.Context) ([]*models.Dataset, error) {
	dbRows, err := r.db.Query(ctx, `
		SELECT id, name, kind, columns, row_count, created_at
		FROM datasets ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer dbRows.Close()

	var datasets []*models.Dataset
	for dbRows.Next() {
		var ds models.Dataset
		if err := dbRows.Scan(&ds.ID, &ds.Name, &ds.Kind, &ds.Columns, &ds.RowCount, &ds.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		datasets = append(datasets, &ds)
	}
	return datasets, dbRows.Err()
}

func (r *datasetRepository) Delete(ctx context.Context, datasetID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM datasets WHERE id = $1`, datasetID)
	if err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
