package model

import (
	"errors"
	"time"
)

// Patient is an account that receives prescriptions and push notifications.
type Patient struct {
	ID             int64     `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	PasswordHashed string    `db:"password_hashed" json:"-"`
	Name           string    `db:"name" json:"name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Age            *int      `db:"age" json:"age"`
	Height         *float64  `db:"height" json:"height"`
	Weight         *float64  `db:"weight" json:"weight"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// RegisterPatientRequest is the body of POST /patients/register.
type RegisterPatientRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Name     string   `json:"name"`
	LastName string   `json:"last_name"`
	Age      *int     `json:"age"`
	Height   *float64 `json:"height"`
	Weight   *float64 `json:"weight"`
}

// ErrPatientNotFound is returned when a patient cannot be found
var ErrPatientNotFound = errors.New("patient not found")
