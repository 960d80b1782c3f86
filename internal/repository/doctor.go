package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"medrx_backend/internal/model"
)

type doctorRepository struct {
	db *sqlx.DB
}

func NewDoctorRepository(db *sqlx.DB) DoctorRepository {
	return &doctorRepository{db: db}
}

func (r *doctorRepository) Create(ctx context.Context, d *model.Doctor) error {
	query := `
		INSERT INTO doctors (name, last_name, email, password_hashed)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, d.Name, d.LastName, d.Email, d.PasswordHashed).
		Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return model.ErrEmailExists
		}
		return fmt.Errorf("insert doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) GetByID(ctx context.Context, id int64) (*model.Doctor, error) {
	query := `
		SELECT id, name, last_name, email, password_hashed, created_at
		FROM doctors
		WHERE id = $1
	`
	var d model.Doctor
	if err := r.db.GetContext(ctx, &d, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrDoctorNotFound
		}
		return nil, fmt.Errorf("get doctor by id: %w", err)
	}
	return &d, nil
}

// GetByEmail includes the password hash so the caller can verify a login.
func (r *doctorRepository) GetByEmail(ctx context.Context, email string) (*model.Doctor, error) {
	query := `
		SELECT id, name, last_name, email, password_hashed, created_at
		FROM doctors
		WHERE email = $1
	`
	var d model.Doctor
	if err := r.db.GetContext(ctx, &d, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrDoctorNotFound
		}
		return nil, fmt.Errorf("get doctor by email: %w", err)
	}
	return &d, nil
}

func (r *doctorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM doctors WHERE email = $1)`, email)
	if err != nil {
		return false, fmt.Errorf("check doctor email: %w", err)
	}
	return exists, nil
}
