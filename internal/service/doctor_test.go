package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"medrx_backend/internal/model"
)

type mockDoctorRepository struct {
	getByEmailFn    func(ctx context.Context, email string) (*model.Doctor, error)
	existsByEmailFn func(ctx context.Context, email string) (bool, error)

	created []*model.Doctor
}

func (m *mockDoctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	doctor.ID = int64(len(m.created) + 1)
	m.created = append(m.created, doctor)
	return nil
}

func (m *mockDoctorRepository) GetByID(ctx context.Context, id int64) (*model.Doctor, error) {
	return nil, model.ErrDoctorNotFound
}

func (m *mockDoctorRepository) GetByEmail(ctx context.Context, email string) (*model.Doctor, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrDoctorNotFound
}

func (m *mockDoctorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func TestDoctorService_Register_WithoutEmail(t *testing.T) {
	checked := false
	repo := &mockDoctorRepository{
		existsByEmailFn: func(ctx context.Context, email string) (bool, error) {
			checked = true
			return false, nil
		},
	}
	passwords, tokens := newTestAuth()
	svc := NewDoctorService(repo, passwords, tokens)

	doctor, err := svc.Register(context.Background(), &model.RegisterDoctorRequest{
		Name: "Luis", LastName: "Gómez", Password: "pw", Email: strPtr("   "),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doctor.Email != nil {
		t.Errorf("blank email should be stored as NULL, got %q", *doctor.Email)
	}
	if checked {
		t.Error("uniqueness check should be skipped without an email")
	}
}

func TestDoctorService_Register_EmailExists(t *testing.T) {
	repo := &mockDoctorRepository{
		existsByEmailFn: func(ctx context.Context, email string) (bool, error) {
			return email == "luis@clinic.test", nil
		},
	}
	passwords, tokens := newTestAuth()
	svc := NewDoctorService(repo, passwords, tokens)

	_, err := svc.Register(context.Background(), &model.RegisterDoctorRequest{
		Name: "Luis", LastName: "Gómez", Password: "pw", Email: strPtr("LUIS@clinic.test"),
	})
	if !errors.Is(err, model.ErrEmailExists) {
		t.Errorf("error = %v, want %v", err, model.ErrEmailExists)
	}
	if len(repo.created) != 0 {
		t.Error("Create should not be called when email exists")
	}
}

func TestDoctorService_Register_MissingName(t *testing.T) {
	passwords, tokens := newTestAuth()
	svc := NewDoctorService(&mockDoctorRepository{}, passwords, tokens)

	_, err := svc.Register(context.Background(), &model.RegisterDoctorRequest{LastName: "Gómez", Password: "pw"})
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestDoctorService_Login(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	email := "luis@clinic.test"
	repo := &mockDoctorRepository{
		getByEmailFn: func(ctx context.Context, e string) (*model.Doctor, error) {
			if e != email {
				return nil, model.ErrDoctorNotFound
			}
			return &model.Doctor{ID: 3, Email: &email, PasswordHashed: string(hash)}, nil
		},
	}
	passwords, tokens := newTestAuth()
	svc := NewDoctorService(repo, passwords, tokens)

	resp, err := svc.Login(context.Background(), &model.LoginRequest{Email: " Luis@Clinic.test", Password: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Role != model.RoleDoctor || resp.SubjectID != 3 || resp.TokenType != "Bearer" {
		t.Errorf("response = %+v", resp)
	}

	_, err = svc.Login(context.Background(), &model.LoginRequest{Email: email, Password: "nope"})
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v", err)
	}

	_, err = svc.Login(context.Background(), &model.LoginRequest{Email: "ghost@clinic.test", Password: "secret"})
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v", err)
	}
}
