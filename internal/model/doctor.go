package model

import (
	"errors"
	"time"
)

// Doctor is an account that issues prescriptions.
type Doctor struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Email          *string   `db:"email" json:"email"`
	PasswordHashed string    `db:"password_hashed" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// RegisterDoctorRequest is the body of POST /doctors/register.
// Email is optional for doctors, but without it the account cannot log in.
type RegisterDoctorRequest struct {
	Name     string  `json:"name"`
	LastName string  `json:"last_name"`
	Email    *string `json:"email"`
	Password string  `json:"password"`
}

// ErrDoctorNotFound is returned when a doctor cannot be found
var ErrDoctorNotFound = errors.New("doctor not found")
