package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medrx_backend/internal/model"
	"medrx_backend/internal/repository"
)

// PatientService handles patient accounts.
type PatientService struct {
	repo      repository.PatientRepository
	passwords *PasswordService
	tokens    *TokenService
}

func NewPatientService(repo repository.PatientRepository, passwords *PasswordService, tokens *TokenService) *PatientService {
	return &PatientService{
		repo:      repo,
		passwords: passwords,
		tokens:    tokens,
	}
}

func (s *PatientService) Register(ctx context.Context, req *model.RegisterPatientRequest) (*model.Patient, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	lastName := strings.TrimSpace(req.LastName)
	switch {
	case email == "":
		return nil, fmt.Errorf("%w: email is required", model.ErrValidation)
	case req.Password == "":
		return nil, fmt.Errorf("%w: password is required", model.ErrValidation)
	case name == "":
		return nil, fmt.Errorf("%w: name is required", model.ErrValidation)
	case lastName == "":
		return nil, fmt.Errorf("%w: last_name is required", model.ErrValidation)
	case req.Age != nil && *req.Age < 0:
		return nil, fmt.Errorf("%w: age must not be negative", model.ErrValidation)
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	hashed, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	patient := &model.Patient{
		Email:          email,
		PasswordHashed: hashed,
		Name:           name,
		LastName:       lastName,
		Age:            req.Age,
		Height:         req.Height,
		Weight:         req.Weight,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		if errors.Is(err, model.ErrEmailExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return patient, nil
}

// Login verifies the password and issues a patient session token.
func (s *PatientService) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	patient, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, model.ErrPatientNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.passwords.Verify(req.Password, patient.PasswordHashed) {
		return nil, model.ErrInvalidCredentials
	}
	return s.tokens.tokenResponse(patient.ID, model.RolePatient)
}

func (s *PatientService) List(ctx context.Context) ([]model.Patient, error) {
	return s.repo.List(ctx)
}

func (s *PatientService) GetByID(ctx context.Context, id int64) (*model.Patient, error) {
	return s.repo.GetByID(ctx, id)
}
