package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"medrx_backend/internal/httputil"
	"medrx_backend/internal/model"
	"medrx_backend/internal/service"
)

type PrescriptionHandler struct {
	prescriptionService *service.PrescriptionService
	logger              zerolog.Logger
}

func NewPrescriptionHandler(prescriptionService *service.PrescriptionService, logger zerolog.Logger) *PrescriptionHandler {
	return &PrescriptionHandler{
		prescriptionService: prescriptionService,
		logger:              logger.With().Str("handler", "prescriptions").Logger(),
	}
}

// Create handles POST /prescriptions
// The response never depends on whether the patient notification went out.
func (h *PrescriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePrescriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	p, err := h.prescriptionService.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPatientIDRequired):
			httputil.WriteBadRequest(w, "patientId is required")
		case errors.Is(err, model.ErrPatientNotFound):
			httputil.WriteNotFound(w, "Patient not found")
		default:
			h.logger.Error().Err(err).Msg("create prescription")
			httputil.WriteInternalError(w, "Failed to create prescription")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, p)
}

// List handles GET /prescriptions
func (h *PrescriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	ps, err := h.prescriptionService.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list prescriptions")
		httputil.WriteInternalError(w, "Failed to list prescriptions")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ps)
}

// ListByPatient handles GET /prescriptions/patient/{patientId}
func (h *PrescriptionHandler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := pathID(r, "patientId")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid patient ID")
		return
	}

	ps, err := h.prescriptionService.ListByPatient(r.Context(), patientID)
	if err != nil {
		h.logger.Error().Err(err).Int64("patient_id", patientID).Msg("list prescriptions by patient")
		httputil.WriteInternalError(w, "Failed to list prescriptions")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ps)
}

// GetByID handles GET /prescriptions/{id}
func (h *PrescriptionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid prescription ID")
		return
	}

	p, err := h.prescriptionService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrPrescriptionNotFound) {
			httputil.WriteNotFound(w, "Prescription not found")
			return
		}
		h.logger.Error().Err(err).Int64("prescription_id", id).Msg("get prescription")
		httputil.WriteInternalError(w, "Failed to get prescription")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}
