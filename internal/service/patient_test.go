package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"medrx_backend/internal/model"
)

// =============================================================================
// MOCK REPOSITORY
// =============================================================================

type mockPatientRepository struct {
	createFn        func(ctx context.Context, patient *model.Patient) error
	getByIDFn       func(ctx context.Context, id int64) (*model.Patient, error)
	getByEmailFn    func(ctx context.Context, email string) (*model.Patient, error)
	existsByEmailFn func(ctx context.Context, email string) (bool, error)

	createCalls []*model.Patient
}

func (m *mockPatientRepository) Create(ctx context.Context, patient *model.Patient) error {
	m.createCalls = append(m.createCalls, patient)
	if m.createFn != nil {
		return m.createFn(ctx, patient)
	}
	return nil
}

func (m *mockPatientRepository) List(ctx context.Context) ([]model.Patient, error) {
	return []model.Patient{}, nil
}

func (m *mockPatientRepository) GetByID(ctx context.Context, id int64) (*model.Patient, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrPatientNotFound
}

func (m *mockPatientRepository) GetByEmail(ctx context.Context, email string) (*model.Patient, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrPatientNotFound
}

func (m *mockPatientRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func newTestAuth() (*PasswordService, *TokenService) {
	return NewPasswordService(bcrypt.MinCost), NewTokenService("test-secret", 3600)
}

// =============================================================================
// REGISTER TESTS
// =============================================================================

func TestPatientService_Register_Success(t *testing.T) {
	mockRepo := &mockPatientRepository{
		createFn: func(ctx context.Context, patient *model.Patient) error {
			patient.ID = 1
			patient.CreatedAt = time.Now()
			return nil
		},
	}
	passwords, tokens := newTestAuth()
	svc := NewPatientService(mockRepo, passwords, tokens)

	age := 30
	req := &model.RegisterPatientRequest{
		Email:    "  Ana@Example.com ",
		Password: "securepassword123",
		Name:     "Ana",
		LastName: "Pérez",
		Age:      &age,
	}

	patient, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if patient.Email != "ana@example.com" {
		t.Errorf("email = %q, want normalized address", patient.Email)
	}
	if patient.PasswordHashed == req.Password {
		t.Error("password should be hashed, not stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(patient.PasswordHashed), []byte(req.Password)); err != nil {
		t.Error("password hash should be valid bcrypt hash")
	}
	if len(mockRepo.createCalls) != 1 {
		t.Errorf("Create called %d times, want 1", len(mockRepo.createCalls))
	}
}

func TestPatientService_Register_Validation(t *testing.T) {
	negative := -1
	tests := []struct {
		name string
		req  model.RegisterPatientRequest
	}{
		{"missing email", model.RegisterPatientRequest{Password: "x", Name: "A", LastName: "B"}},
		{"missing password", model.RegisterPatientRequest{Email: "a@b.c", Name: "A", LastName: "B"}},
		{"missing name", model.RegisterPatientRequest{Email: "a@b.c", Password: "x", LastName: "B"}},
		{"missing last name", model.RegisterPatientRequest{Email: "a@b.c", Password: "x", Name: "A"}},
		{"negative age", model.RegisterPatientRequest{Email: "a@b.c", Password: "x", Name: "A", LastName: "B", Age: &negative}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockPatientRepository{}
			passwords, tokens := newTestAuth()
			svc := NewPatientService(mockRepo, passwords, tokens)

			_, err := svc.Register(context.Background(), &tt.req)

			if !errors.Is(err, model.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
			if len(mockRepo.createCalls) != 0 {
				t.Error("Create should not be called for invalid input")
			}
		})
	}
}

func TestPatientService_Register_EmailExists(t *testing.T) {
	mockRepo := &mockPatientRepository{
		existsByEmailFn: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}
	passwords, tokens := newTestAuth()
	svc := NewPatientService(mockRepo, passwords, tokens)

	_, err := svc.Register(context.Background(), &model.RegisterPatientRequest{
		Email: "ana@example.com", Password: "pw", Name: "Ana", LastName: "Pérez",
	})

	if !errors.Is(err, model.ErrEmailExists) {
		t.Errorf("error = %v, want %v", err, model.ErrEmailExists)
	}
	if len(mockRepo.createCalls) != 0 {
		t.Error("Create should not be called when email exists")
	}
}

func TestPatientService_Register_CreateError(t *testing.T) {
	dbError := errors.New("insert failed")
	mockRepo := &mockPatientRepository{
		createFn: func(ctx context.Context, patient *model.Patient) error {
			return dbError
		},
	}
	passwords, tokens := newTestAuth()
	svc := NewPatientService(mockRepo, passwords, tokens)

	_, err := svc.Register(context.Background(), &model.RegisterPatientRequest{
		Email: "ana@example.com", Password: "pw", Name: "Ana", LastName: "Pérez",
	})

	if !errors.Is(err, dbError) {
		t.Errorf("error should wrap create error")
	}
}

// =============================================================================
// LOGIN TESTS
// =============================================================================

func TestPatientService_Login(t *testing.T) {
	validPassword := "correctpassword"
	validHash, _ := bcrypt.GenerateFromPassword([]byte(validPassword), bcrypt.MinCost)
	testPatient := &model.Patient{ID: 7, Email: "ana@example.com", PasswordHashed: string(validHash)}

	tests := []struct {
		name       string
		password   string
		getByEmail func(ctx context.Context, email string) (*model.Patient, error)
		wantErr    error
	}{
		{
			name:     "successful login",
			password: validPassword,
			getByEmail: func(ctx context.Context, email string) (*model.Patient, error) {
				return testPatient, nil
			},
		},
		{
			name:     "unknown email",
			password: validPassword,
			getByEmail: func(ctx context.Context, email string) (*model.Patient, error) {
				return nil, model.ErrPatientNotFound
			},
			wantErr: model.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			password: "wrongpassword",
			getByEmail: func(ctx context.Context, email string) (*model.Patient, error) {
				return testPatient, nil
			},
			wantErr: model.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			passwords, tokens := newTestAuth()
			svc := NewPatientService(&mockPatientRepository{getByEmailFn: tt.getByEmail}, passwords, tokens)

			resp, err := svc.Login(context.Background(), &model.LoginRequest{Email: "ana@example.com", Password: tt.password})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			principal, err := tokens.Parse(resp.Token)
			if err != nil {
				t.Fatalf("issued token does not parse: %v", err)
			}
			if principal.ID != 7 || principal.Role != model.RolePatient {
				t.Errorf("principal = %+v, want patient 7", principal)
			}
			if resp.SubjectID != 7 || resp.ExpiresIn != 3600 {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}
