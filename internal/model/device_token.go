package model

import (
	"errors"
	"time"
)

// DeviceType is the optional device class attached to a push token.
type DeviceType string

const (
	DeviceTypeAndroid DeviceType = "android"
	DeviceTypeIOS     DeviceType = "ios"
	DeviceTypeWeb     DeviceType = "web"
)

// Valid reports whether d is one of the known device classes.
func (d DeviceType) Valid() bool {
	switch d {
	case DeviceTypeAndroid, DeviceTypeIOS, DeviceTypeWeb:
		return true
	}
	return false
}

// DeviceToken is a patient's registered push endpoint.
// Token is unique across all patients; registering it again moves it to the new owner.
type DeviceToken struct {
	ID         int64       `db:"id" json:"id"`
	PatientID  int64       `db:"patient_id" json:"patientId"`
	Token      string      `db:"token" json:"-"`
	DeviceType *DeviceType `db:"device_type" json:"deviceType"`
	CreatedAt  time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updatedAt"`
}

// MaskedToken returns a prefix of the token that is safe to log.
func (t DeviceToken) MaskedToken() string {
	return MaskToken(t.Token)
}

// MaskToken keeps the first 10 characters of a push token.
func MaskToken(token string) string {
	if len(token) <= 10 {
		return token
	}
	return token[:10] + "..."
}

// RegisterTokenRequest is the request body for registering a device token.
type RegisterTokenRequest struct {
	Token      string      `json:"token"`
	DeviceType *DeviceType `json:"deviceType"`
}

var (
	// ErrTokenRequired is returned when a registration has no token
	ErrTokenRequired = errors.New("token is required")

	// ErrInvalidDeviceType is returned for a device class outside android, ios and web
	ErrInvalidDeviceType = errors.New("invalid device type")
)
