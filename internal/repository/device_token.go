package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"medrx_backend/internal/model"
)

type deviceTokenRepository struct {
	db *sqlx.DB
}

func NewDeviceTokenRepository(db *sqlx.DB) DeviceTokenRepository {
	return &deviceTokenRepository{db: db}
}

// upsertRow carries the stored row plus whether the statement inserted it.
// xmax is 0 only for freshly inserted tuples.
type upsertRow struct {
	model.DeviceToken
	Inserted bool `db:"inserted"`
}

// Upsert creates the token or reassigns it. Last write wins when two patients race on one token.
func (r *deviceTokenRepository) Upsert(ctx context.Context, patientID int64, token string, deviceType *model.DeviceType) (*model.DeviceToken, bool, error) {
	query := `
		INSERT INTO device_tokens (patient_id, token, device_type, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (token) DO UPDATE SET
			patient_id = EXCLUDED.patient_id,
			device_type = EXCLUDED.device_type,
			updated_at = NOW()
		RETURNING id, patient_id, token, device_type, created_at, updated_at, (xmax = 0) AS inserted
	`
	var row upsertRow
	if err := r.db.GetContext(ctx, &row, query, patientID, token, deviceType); err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return nil, false, model.ErrPatientNotFound
		}
		return nil, false, fmt.Errorf("upsert device token: %w", err)
	}
	return &row.DeviceToken, row.Inserted, nil
}

func (r *deviceTokenRepository) ListByPatient(ctx context.Context, patientID int64) ([]model.DeviceToken, error) {
	query := `
		SELECT id, patient_id, token, device_type, created_at, updated_at
		FROM device_tokens
		WHERE patient_id = $1
		ORDER BY updated_at DESC
	`
	tokens := []model.DeviceToken{}
	if err := r.db.SelectContext(ctx, &tokens, query, patientID); err != nil {
		return nil, fmt.Errorf("list device tokens: %w", err)
	}
	return tokens, nil
}

func (r *deviceTokenRepository) Delete(ctx context.Context, token string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM device_tokens WHERE token = $1`, token)
	if err != nil {
		return false, fmt.Errorf("delete device token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete device token: %w", err)
	}
	return n > 0, nil
}
