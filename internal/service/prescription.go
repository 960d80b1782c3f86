package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"medrx_backend/internal/model"
	"medrx_backend/internal/repository"
)

// PrescriptionService stores prescriptions and triggers the patient notification.
type PrescriptionService struct {
	repo     repository.PrescriptionRepository
	notifier PrescriptionNotifier
	logger   zerolog.Logger
}

func NewPrescriptionService(repo repository.PrescriptionRepository, notifier PrescriptionNotifier, logger zerolog.Logger) *PrescriptionService {
	return &PrescriptionService{
		repo:     repo,
		notifier: notifier,
		logger:   logger.With().Str("component", "prescriptions").Logger(),
	}
}

// Create persists the prescription, then notifies the patient.
// Storage errors are returned. Whatever the notifier does, including panicking,
// the stored prescription is returned unchanged.
func (s *PrescriptionService) Create(ctx context.Context, req model.CreatePrescriptionRequest) (*model.Prescription, error) {
	if req.PatientID <= 0 {
		return nil, model.ErrPatientIDRequired
	}

	p := &model.Prescription{
		PatientID: req.PatientID.Int64(),
		Diagnosis: trimmedOrNil(req.Diagnosis),
		Notes:     trimmedOrNil(req.Notes),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, model.ErrPatientNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("patient_id", p.PatientID).Msg("failed to store prescription")
		return nil, fmt.Errorf("create prescription: %w", err)
	}

	s.notify(ctx, *p)
	return p, nil
}

// notify receives a copy so nothing the notifier does can alter the returned record.
func (s *PrescriptionService) notify(ctx context.Context, p model.Prescription) {
	if s.notifier == nil {
		return
	}
	log := s.logger.With().Int64("prescription_id", p.ID).Int64("patient_id", p.PatientID).Logger()
	// The record is already stored; a disconnected client must not lose its notification.
	ctx = context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("notification dispatch panicked")
		}
	}()

	if !s.notifier.Dispatch(ctx, &p) {
		log.Warn().Msg("prescription stored but notification was not fully delivered")
	}
}

func (s *PrescriptionService) List(ctx context.Context) ([]model.Prescription, error) {
	return s.repo.List(ctx)
}

func (s *PrescriptionService) ListByPatient(ctx context.Context, patientID int64) ([]model.Prescription, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *PrescriptionService) GetByID(ctx context.Context, id int64) (*model.Prescription, error) {
	return s.repo.GetByID(ctx, id)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
