package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medrx_backend/internal/model"
	"medrx_backend/internal/repository"
)

// DoctorService handles doctor accounts.
type DoctorService struct {
	repo      repository.DoctorRepository
	passwords *PasswordService
	tokens    *TokenService
}

func NewDoctorService(repo repository.DoctorRepository, passwords *PasswordService, tokens *TokenService) *DoctorService {
	return &DoctorService{
		repo:      repo,
		passwords: passwords,
		tokens:    tokens,
	}
}

// Register creates a doctor. Email is optional but must be unique when given.
func (s *DoctorService) Register(ctx context.Context, req *model.RegisterDoctorRequest) (*model.Doctor, error) {
	name := strings.TrimSpace(req.Name)
	lastName := strings.TrimSpace(req.LastName)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", model.ErrValidation)
	case lastName == "":
		return nil, fmt.Errorf("%w: last_name is required", model.ErrValidation)
	case req.Password == "":
		return nil, fmt.Errorf("%w: password is required", model.ErrValidation)
	}

	var email *string
	if req.Email != nil {
		if e := normalizeEmail(*req.Email); e != "" {
			email = &e
		}
	}
	if email != nil {
		exists, err := s.repo.ExistsByEmail(ctx, *email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if exists {
			return nil, model.ErrEmailExists
		}
	}

	hashed, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	doctor := &model.Doctor{
		Name:           name,
		LastName:       lastName,
		Email:          email,
		PasswordHashed: hashed,
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		if errors.Is(err, model.ErrEmailExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create doctor: %w", err)
	}
	return doctor, nil
}

// Login verifies the password and issues a doctor session token.
func (s *DoctorService) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	doctor, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, model.ErrDoctorNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.passwords.Verify(req.Password, doctor.PasswordHashed) {
		return nil, model.ErrInvalidCredentials
	}
	return s.tokens.tokenResponse(doctor.ID, model.RoleDoctor)
}

func (s *DoctorService) GetByEmail(ctx context.Context, email string) (*model.Doctor, error) {
	return s.repo.GetByEmail(ctx, normalizeEmail(email))
}

func (s *DoctorService) GetByID(ctx context.Context, id int64) (*model.Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
