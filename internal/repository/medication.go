package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"medrx_backend/internal/model"
)

type medicationRepository struct {
	db *sqlx.DB
}

func NewMedicationRepository(db *sqlx.DB) MedicationRepository {
	return &medicationRepository{db: db}
}

func (r *medicationRepository) Create(ctx context.Context, m *model.Medication) error {
	query := `
		INSERT INTO medications (prescription_id, name, dosage, frequency, days, administration_route, instructions)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		m.PrescriptionID,
		m.Name,
		m.Dosage,
		m.Frequency,
		m.Days,
		m.AdministrationRoute,
		m.Instructions,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return model.ErrPrescriptionNotFound
		}
		return fmt.Errorf("insert medication: %w", err)
	}
	return nil
}

func (r *medicationRepository) ListByPrescription(ctx context.Context, prescriptionID int64) ([]model.Medication, error) {
	query := `
		SELECT id, prescription_id, name, dosage, frequency, days, administration_route, instructions, created_at
		FROM medications
		WHERE prescription_id = $1
		ORDER BY created_at ASC
	`
	medications := []model.Medication{}
	if err := r.db.SelectContext(ctx, &medications, query, prescriptionID); err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	return medications, nil
}
