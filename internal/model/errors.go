package model

import "errors"

// ErrInvalidID is returned when a path or body id is not a positive integer
var ErrInvalidID = errors.New("invalid id")

// Error codes for HTTP responses
const (
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeInvalidDeviceType  = "INVALID_DEVICE_TYPE"
	CodeFileTooLarge       = "FILE_TOO_LARGE"
	CodeInvalidImageType   = "INVALID_IMAGE_TYPE"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
)

// ErrValidation marks request errors that map to 400. Wrap it with the field at fault.
var ErrValidation = errors.New("validation failed")
