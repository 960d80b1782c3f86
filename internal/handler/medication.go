package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"medrx_backend/internal/httputil"
	"medrx_backend/internal/model"
	"medrx_backend/internal/service"
)

type MedicationHandler struct {
	medicationService *service.MedicationService
	logger            zerolog.Logger
}

func NewMedicationHandler(medicationService *service.MedicationService, logger zerolog.Logger) *MedicationHandler {
	return &MedicationHandler{
		medicationService: medicationService,
		logger:            logger.With().Str("handler", "medications").Logger(),
	}
}

// Create handles POST /medications
func (h *MedicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateMedicationRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	m, err := h.medicationService.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrValidation):
			httputil.WriteValidationError(w, err)
		case errors.Is(err, model.ErrMedicationNameRequired):
			httputil.WriteBadRequest(w, "name is required")
		case errors.Is(err, model.ErrPrescriptionNotFound):
			httputil.WriteNotFound(w, "Prescription not found")
		default:
			h.logger.Error().Err(err).Msg("create medication")
			httputil.WriteInternalError(w, "Failed to create medication")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, m)
}

// ListByPrescription handles GET /medications/prescription/{prescriptionId}
func (h *MedicationHandler) ListByPrescription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "prescriptionId")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid prescription ID")
		return
	}

	out, err := h.medicationService.ListByPrescription(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrPrescriptionNotFound) {
			httputil.WriteNotFound(w, "Prescription not found")
			return
		}
		h.logger.Error().Err(err).Int64("prescription_id", id).Msg("list medications")
		httputil.WriteInternalError(w, "Failed to list medications")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
