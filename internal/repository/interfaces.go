package repository

import (
	"context"

	"medrx_backend/internal/model"
)

type DoctorRepository interface {
	Create(ctx context.Context, doctor *model.Doctor) error
	GetByID(ctx context.Context, id int64) (*model.Doctor, error)
	GetByEmail(ctx context.Context, email string) (*model.Doctor, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	List(ctx context.Context) ([]model.Patient, error)
	GetByID(ctx context.Context, id int64) (*model.Patient, error)
	GetByEmail(ctx context.Context, email string) (*model.Patient, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type PrescriptionRepository interface {
	// Create fills in the storage-assigned ID and CreatedAt.
	Create(ctx context.Context, p *model.Prescription) error
	List(ctx context.Context) ([]model.Prescription, error)
	ListByPatient(ctx context.Context, patientID int64) ([]model.Prescription, error)
	GetByID(ctx context.Context, id int64) (*model.Prescription, error)
}

type MedicationRepository interface {
	Create(ctx context.Context, m *model.Medication) error
	ListByPrescription(ctx context.Context, prescriptionID int64) ([]model.Medication, error)
}

// DeviceTokenRepository is the store of push endpoints, keyed by token.
type DeviceTokenRepository interface {
	// Upsert inserts the token or moves it to patientID. created is false when the token already existed.
	Upsert(ctx context.Context, patientID int64, token string, deviceType *model.DeviceType) (t *model.DeviceToken, created bool, err error)
	// ListByPatient returns an empty slice, never nil, when the patient has no endpoints.
	ListByPatient(ctx context.Context, patientID int64) ([]model.DeviceToken, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, token string) (bool, error)
}

type ScanRepository interface {
	Create(ctx context.Context, scan *model.PrescriptionScan) error
	ListByPrescription(ctx context.Context, prescriptionID int64) ([]model.PrescriptionScan, error)
}
