package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"medrx_backend/internal/httputil"
	"medrx_backend/internal/model"
	"medrx_backend/internal/service"
	"medrx_backend/internal/transport/http/middleware"
)

type ScanHandler struct {
	scanService *service.ScanService
	logger      zerolog.Logger
}

func NewScanHandler(scanService *service.ScanService, logger zerolog.Logger) *ScanHandler {
	return &ScanHandler{
		scanService: scanService,
		logger:      logger.With().Str("handler", "scans").Logger(),
	}
}

// Upload handles POST /prescriptions/{id}/scans (multipart field "file")
func (h *ScanHandler) Upload(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	prescriptionID, err := pathID(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid prescription ID")
		return
	}

	// Leave headroom for the multipart envelope around the file.
	r.Body = http.MaxBytesReader(w, r.Body, model.MaxScanSizeBytes+1<<20)
	if err := r.ParseMultipartForm(model.MaxScanSizeBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "File exceeds 10MB")
			return
		}
		httputil.WriteBadRequest(w, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteBadRequest(w, "file is required")
		return
	}
	defer file.Close()

	scan, err := h.scanService.Upload(r.Context(), prescriptionID, principal.ID, file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "File exceeds 10MB")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Only JPEG, PNG and WebP images are accepted")
		case errors.Is(err, model.ErrPrescriptionNotFound):
			httputil.WriteNotFound(w, "Prescription not found")
		case errors.Is(err, model.ErrStorageDisabled):
			httputil.WriteError(w, http.StatusServiceUnavailable, httputil.ErrCodeUnavailable, "Scan uploads are not configured")
		default:
			h.logger.Error().Err(err).Int64("prescription_id", prescriptionID).Msg("upload scan")
			httputil.WriteInternalError(w, "Failed to upload scan")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, scan)
}

// List handles GET /prescriptions/{id}/scans
func (h *ScanHandler) List(w http.ResponseWriter, r *http.Request) {
	prescriptionID, err := pathID(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid prescription ID")
		return
	}

	scans, err := h.scanService.List(r.Context(), prescriptionID)
	if err != nil {
		if errors.Is(err, model.ErrPrescriptionNotFound) {
			httputil.WriteNotFound(w, "Prescription not found")
			return
		}
		h.logger.Error().Err(err).Int64("prescription_id", prescriptionID).Msg("list scans")
		httputil.WriteInternalError(w, "Failed to list scans")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, scans)
}
