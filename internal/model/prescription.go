package model

import (
	"errors"
	"time"
)

// Prescription is immutable once stored.
type Prescription struct {
	ID        int64     `db:"id" json:"id"`
	PatientID int64     `db:"patient_id" json:"patientId"`
	Diagnosis *string   `db:"diagnosis" json:"diagnosis"`
	Notes     *string   `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// CreatePrescriptionRequest is the body of POST /prescriptions.
type CreatePrescriptionRequest struct {
	PatientID ID      `json:"patientId"`
	Diagnosis *string `json:"diagnosis"`
	Notes     *string `json:"notes"`
}

var (
	// ErrPrescriptionNotFound is returned when a prescription cannot be found
	ErrPrescriptionNotFound = errors.New("prescription not found")

	// ErrPatientIDRequired is returned when a prescription has no owner
	ErrPatientIDRequired = errors.New("patientId is required")
)
