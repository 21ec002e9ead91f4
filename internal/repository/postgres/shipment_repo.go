package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shipstream/internal/domain"
	"shipstream/internal/port"
)

type shipmentRepo struct {
	db *sqlx.DB
}

// NewShipmentRepo creates a new PostgreSQL-backed ShipmentRepository.
func NewShipmentRepo(db *sqlx.DB) port.ShipmentRepository {
	return &shipmentRepo{db: db}
}

// shipmentRow is the persisted shape: indexed columns for querying, the full
// bundle as a JSONB payload.
type shipmentRow struct {
	ID          uuid.UUID `db:"id"`
	DocumentID  uuid.UUID `db:"document_id"`
	LoadNumber  string    `db:"load_number"`
	NeedsReview bool      `db:"needs_review"`
	Payload     []byte    `db:"payload"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func toRow(bundle *domain.ShipmentBundle, now time.Time) (*shipmentRow, error) {
	payload, err := json.Marshal(bundle)
	if err != nil {
		return nil, fmt.Errorf("marshaling bundle %s: %w", bundle.ID, err)
	}
	return &shipmentRow{
		ID:          bundle.ID,
		DocumentID:  bundle.Metadata.SourceDocumentID,
		LoadNumber:  bundle.LoadNumber,
		NeedsReview: bundle.Metadata.NeedsReview,
		Payload:     payload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (row *shipmentRow) toBundle() (*domain.ShipmentBundle, error) {
	var bundle domain.ShipmentBundle
	if err := json.Unmarshal(row.Payload, &bundle); err != nil {
		return nil, fmt.Errorf("unmarshaling bundle %s: %w", row.ID, err)
	}
	return &bundle, nil
}

func (r *shipmentRepo) CreateBatch(ctx context.Context, bundles []domain.ShipmentBundle) error {
	if len(bundles) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("shipmentRepo.CreateBatch begin: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO shipments (
		id, document_id, load_number, needs_review, payload, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now().UTC()
	for i := range bundles {
		row, err := toRow(&bundles[i], now)
		if err != nil {
			return fmt.Errorf("shipmentRepo.CreateBatch: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query,
			row.ID, row.DocumentID, row.LoadNumber, row.NeedsReview,
			row.Payload, row.CreatedAt, row.UpdatedAt); err != nil {
			return fmt.Errorf("shipmentRepo.CreateBatch insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("shipmentRepo.CreateBatch commit: %w", err)
	}
	return nil
}

func (r *shipmentRepo) GetByID(ctx context.Context, shipmentID uuid.UUID) (*domain.ShipmentBundle, error) {
	var row shipmentRow
	err := r.db.GetContext(ctx, &row,
		"SELECT * FROM shipments WHERE id = $1", shipmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, fmt.Errorf("shipmentRepo.GetByID: %w", err)
	}
	return row.toBundle()
}

func (r *shipmentRepo) ListByDocument(ctx context.Context, docID uuid.UUID, needsReview *bool, offset, limit int) ([]domain.ShipmentBundle, int, error) {
	where := "WHERE document_id = $1"
	args := []interface{}{docID}
	if needsReview != nil {
		where += " AND needs_review = $2"
		args = append(args, *needsReview)
	}

	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM shipments "+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("shipmentRepo.ListByDocument count: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT * FROM shipments %s ORDER BY (payload->'source'->>'row_index')::int LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var rows []shipmentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("shipmentRepo.ListByDocument: %w", err)
	}

	bundles := make([]domain.ShipmentBundle, 0, len(rows))
	for i := range rows {
		bundle, err := rows[i].toBundle()
		if err != nil {
			return nil, 0, fmt.Errorf("shipmentRepo.ListByDocument: %w", err)
		}
		bundles = append(bundles, *bundle)
	}
	return bundles, total, nil
}

func (r *shipmentRepo) Update(ctx context.Context, bundle *domain.ShipmentBundle) error {
	row, err := toRow(bundle, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("shipmentRepo.Update: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE shipments SET
			load_number = $1, needs_review = $2, payload = $3, updated_at = $4
		 WHERE id = $5`,
		row.LoadNumber, row.NeedsReview, row.Payload, row.UpdatedAt, row.ID)
	if err != nil {
		return fmt.Errorf("shipmentRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrShipmentNotFound
	}
	return nil
}

func (r *shipmentRepo) DeleteByDocument(ctx context.Context, docID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM shipments WHERE document_id = $1", docID)
	if err != nil {
		return fmt.Errorf("shipmentRepo.DeleteByDocument: %w", err)
	}
	return nil
}
