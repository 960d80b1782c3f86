package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"medrx_backend/internal/model"
)

// patientRepository implements PatientRepository using sqlx
type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) PatientRepository {
	return &patientRepository{db: db}
}

const patientColumns = `id, email, password_hashed, name, last_name, age, height, weight, created_at`

func (r *patientRepository) Create(ctx context.Context, p *model.Patient) error {
	query := `
		INSERT INTO patients (email, password_hashed, name, last_name, age, height, weight)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		p.Email,
		p.PasswordHashed,
		p.Name,
		p.LastName,
		p.Age,
		p.Height,
		p.Weight,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return model.ErrEmailExists
		}
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context) ([]model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY last_name, name`
	patients := []model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query); err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) GetByID(ctx context.Context, id int64) (*model.Patient, error) {
	return r.getOne(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id)
}

func (r *patientRepository) GetByEmail(ctx context.Context, email string) (*model.Patient, error) {
	return r.getOne(ctx, `SELECT `+patientColumns+` FROM patients WHERE email = $1`, email)
}

func (r *patientRepository) getOne(ctx context.Context, query string, arg interface{}) (*model.Patient, error) {
	var p model.Patient
	if err := r.db.GetContext(ctx, &p, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPatientNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return &p, nil
}

func (r *patientRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM patients WHERE email = $1)`, email)
	if err != nil {
		return false, fmt.Errorf("check patient email: %w", err)
	}
	return exists, nil
}
