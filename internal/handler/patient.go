package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"medrx_backend/internal/httputil"
	"medrx_backend/internal/model"
	"medrx_backend/internal/service"
)

type PatientHandler struct {
	patientService *service.PatientService
	logger         zerolog.Logger
}

func NewPatientHandler(patientService *service.PatientService, logger zerolog.Logger) *PatientHandler {
	return &PatientHandler{
		patientService: patientService,
		logger:         logger.With().Str("handler", "patients").Logger(),
	}
}

// Register handles POST /patients/register
func (h *PatientHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterPatientRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	patient, err := h.patientService.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrValidation):
			httputil.WriteValidationError(w, err)
		case errors.Is(err, model.ErrEmailExists):
			httputil.WriteConflict(w, "Email already registered")
		default:
			h.logger.Error().Err(err).Msg("register patient")
			httputil.WriteInternalError(w, "Failed to register patient")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, patient)
}

// Login handles POST /patients/auth/login
func (h *PatientHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httputil.WriteBadRequest(w, "email and password are required")
		return
	}

	resp, err := h.patientService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorizedWithCode(w, model.CodeInvalidCredentials, "Invalid email or password")
			return
		}
		h.logger.Error().Err(err).Msg("patient login")
		httputil.WriteInternalError(w, "Failed to log in")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// List handles GET /patients
func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	patients, err := h.patientService.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list patients")
		httputil.WriteInternalError(w, "Failed to list patients")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, patients)
}

// GetByID handles GET /patients/{id}
func (h *PatientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid patient ID")
		return
	}

	patient, err := h.patientService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrPatientNotFound) {
			httputil.WriteNotFound(w, "Patient not found")
			return
		}
		h.logger.Error().Err(err).Int64("patient_id", id).Msg("get patient")
		httputil.WriteInternalError(w, "Failed to get patient")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, patient)
}
