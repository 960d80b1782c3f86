package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medrx_backend/internal/model"
	"medrx_backend/internal/repository"
)

type MedicationService struct {
	medications   repository.MedicationRepository
	prescriptions repository.PrescriptionRepository
}

func NewMedicationService(medications repository.MedicationRepository, prescriptions repository.PrescriptionRepository) *MedicationService {
	return &MedicationService{
		medications:   medications,
		prescriptions: prescriptions,
	}
}

// Create adds a medication to an existing prescription.
func (s *MedicationService) Create(ctx context.Context, req model.CreateMedicationRequest) (*model.Medication, error) {
	if req.PrescriptionID <= 0 {
		return nil, fmt.Errorf("%w: prescriptionId is required", model.ErrValidation)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.ErrMedicationNameRequired
	}
	if req.Frequency < 0 || req.Days < 0 {
		return nil, fmt.Errorf("%w: frequency and days must not be negative", model.ErrValidation)
	}

	if _, err := s.prescriptions.GetByID(ctx, req.PrescriptionID.Int64()); err != nil {
		return nil, err
	}

	m := &model.Medication{
		PrescriptionID:      req.PrescriptionID.Int64(),
		Name:                name,
		Dosage:              trimmedOrNil(req.Dosage),
		Frequency:           int(req.Frequency),
		Days:                int(req.Days),
		AdministrationRoute: trimmedOrNil(req.AdministrationRoute),
		Instructions:        trimmedOrNil(req.Instructions),
	}
	if err := s.medications.Create(ctx, m); err != nil {
		if errors.Is(err, model.ErrPrescriptionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("create medication: %w", err)
	}
	return m, nil
}

// ListByPrescription returns the medications in insertion order together with the prescription date.
func (s *MedicationService) ListByPrescription(ctx context.Context, prescriptionID int64) (*model.PrescriptionMedications, error) {
	p, err := s.prescriptions.GetByID(ctx, prescriptionID)
	if err != nil {
		return nil, err
	}
	meds, err := s.medications.ListByPrescription(ctx, prescriptionID)
	if err != nil {
		return nil, err
	}
	return &model.PrescriptionMedications{
		PrescriptionCreatedAt: &p.CreatedAt,
		Medications:           meds,
	}, nil
}
