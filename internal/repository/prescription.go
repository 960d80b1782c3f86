package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"medrx_backend/internal/model"
)

type prescriptionRepository struct {
	db *sqlx.DB
}

func NewPrescriptionRepository(db *sqlx.DB) PrescriptionRepository {
	return &prescriptionRepository{db: db}
}

// Create inserts the prescription and scans back the assigned id and timestamp.
// A patient id with no matching row is reported as model.ErrPatientNotFound.
func (r *prescriptionRepository) Create(ctx context.Context, p *model.Prescription) error {
	query := `
		INSERT INTO prescriptions (patient_id, diagnosis, notes)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, p.PatientID, p.Diagnosis, p.Notes).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return model.ErrPatientNotFound
		}
		return fmt.Errorf("insert prescription: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) List(ctx context.Context) ([]model.Prescription, error) {
	query := `
		SELECT id, patient_id, diagnosis, notes, created_at
		FROM prescriptions
		ORDER BY created_at DESC
	`
	prescriptions := []model.Prescription{}
	if err := r.db.SelectContext(ctx, &prescriptions, query); err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	return prescriptions, nil
}

func (r *prescriptionRepository) ListByPatient(ctx context.Context, patientID int64) ([]model.Prescription, error) {
	query := `
		SELECT id, patient_id, diagnosis, notes, created_at
		FROM prescriptions
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	prescriptions := []model.Prescription{}
	if err := r.db.SelectContext(ctx, &prescriptions, query, patientID); err != nil {
		return nil, fmt.Errorf("list prescriptions by patient: %w", err)
	}
	return prescriptions, nil
}

func (r *prescriptionRepository) GetByID(ctx context.Context, id int64) (*model.Prescription, error) {
	query := `
		SELECT id, patient_id, diagnosis, notes, created_at
		FROM prescriptions
		WHERE id = $1
	`
	var p model.Prescription
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPrescriptionNotFound
		}
		return nil, fmt.Errorf("get prescription: %w", err)
	}
	return &p, nil
}
