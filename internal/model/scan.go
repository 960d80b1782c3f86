package model

import (
	"errors"
	"time"
)

const (
	MaxScanSizeBytes = 10 * 1024 * 1024
	ScanMaxDimension = 1600
	ScanFolder       = "prescription-scans"
	ScanExt          = ".jpg"
	ScanCacheControl = "private, max-age=86400"
)

// Supported image content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeWebP = "image/webp"
)

var allowedImageTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeWebP: {},
}

// IsAllowedImageType reports if the provided content type is supported
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// PrescriptionScan is a photo or scan of a paper prescription stored in object storage.
type PrescriptionScan struct {
	ID             int64     `db:"id" json:"id"`
	PrescriptionID int64     `db:"prescription_id" json:"prescriptionId"`
	ObjectKey      string    `db:"object_key" json:"-"`
	URL            string    `db:"url" json:"url"`
	UploadedBy     int64     `db:"uploaded_by" json:"uploadedBy"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// Domain errors for scan uploads
var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
	ErrStorageDisabled  = errors.New("object storage not configured")
)
