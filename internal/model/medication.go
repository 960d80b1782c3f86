package model

import (
	"errors"
	"time"
)

// Medication belongs to exactly one prescription.
type Medication struct {
	ID                  int64     `db:"id" json:"id"`
	PrescriptionID      int64     `db:"prescription_id" json:"prescriptionId"`
	Name                string    `db:"name" json:"name"`
	Dosage              *string   `db:"dosage" json:"dosage"`
	Frequency           int       `db:"frequency" json:"frequency"`
	Days                int       `db:"days" json:"days"`
	AdministrationRoute *string   `db:"administration_route" json:"administrationRoute"`
	Instructions        *string   `db:"instructions" json:"instructions"`
	CreatedAt           time.Time `db:"created_at" json:"createdAt"`
}

// CreateMedicationRequest is the body of POST /medications.
// Frequency and days may arrive as numbers or numeric strings.
type CreateMedicationRequest struct {
	PrescriptionID      ID      `json:"prescriptionId"`
	Name                string  `json:"name"`
	Dosage              *string `json:"dosage"`
	Frequency           FlexInt `json:"frequency"`
	Days                FlexInt `json:"days"`
	AdministrationRoute *string `json:"administrationRoute"`
	Instructions        *string `json:"instructions"`
}

// PrescriptionMedications is the response of GET /medications/prescription/{id}.
type PrescriptionMedications struct {
	PrescriptionCreatedAt *time.Time   `json:"prescription_created_at"`
	Medications           []Medication `json:"medications"`
}

// ErrMedicationNameRequired is returned when a medication has no name
var ErrMedicationNameRequired = errors.New("medication name is required")
