package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"medrx_backend/internal/model"
)

type scanRepository struct {
	db *sqlx.DB
}

func NewScanRepository(db *sqlx.DB) ScanRepository {
	return &scanRepository{db: db}
}

func (r *scanRepository) Create(ctx context.Context, s *model.PrescriptionScan) error {
	query := `
		INSERT INTO prescription_scans (prescription_id, object_key, url, uploaded_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, s.PrescriptionID, s.ObjectKey, s.URL, s.UploadedBy).
		Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return model.ErrPrescriptionNotFound
		}
		return fmt.Errorf("insert prescription scan: %w", err)
	}
	return nil
}

func (r *scanRepository) ListByPrescription(ctx context.Context, prescriptionID int64) ([]model.PrescriptionScan, error) {
	query := `
		SELECT id, prescription_id, object_key, url, uploaded_by, created_at
		FROM prescription_scans
		WHERE prescription_id = $1
		ORDER BY created_at ASC
	`
	scans := []model.PrescriptionScan{}
	if err := r.db.SelectContext(ctx, &scans, query, prescriptionID); err != nil {
		return nil, fmt.Errorf("list prescription scans: %w", err)
	}
	return scans, nil
}
