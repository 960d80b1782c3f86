package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"medrx_backend/internal/httputil"
	"medrx_backend/internal/model"
	"medrx_backend/internal/service"
)

type DoctorHandler struct {
	doctorService *service.DoctorService
	logger        zerolog.Logger
}

func NewDoctorHandler(doctorService *service.DoctorService, logger zerolog.Logger) *DoctorHandler {
	return &DoctorHandler{
		doctorService: doctorService,
		logger:        logger.With().Str("handler", "doctors").Logger(),
	}
}

// Register handles POST /doctors/register
func (h *DoctorHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterDoctorRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	doctor, err := h.doctorService.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrValidation):
			httputil.WriteValidationError(w, err)
		case errors.Is(err, model.ErrEmailExists):
			httputil.WriteConflict(w, "Email already registered")
		default:
			h.logger.Error().Err(err).Msg("register doctor")
			httputil.WriteInternalError(w, "Failed to register doctor")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, doctor)
}

// Login handles POST /doctors/auth/login
func (h *DoctorHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httputil.WriteBadRequest(w, "email and password are required")
		return
	}

	resp, err := h.doctorService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorizedWithCode(w, model.CodeInvalidCredentials, "Invalid email or password")
			return
		}
		h.logger.Error().Err(err).Msg("doctor login")
		httputil.WriteInternalError(w, "Failed to log in")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// GetByEmail handles GET /doctors/by-email/{email}
func (h *DoctorHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil || email == "" {
		httputil.WriteBadRequest(w, "Invalid email")
		return
	}

	doctor, err := h.doctorService.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, model.ErrDoctorNotFound) {
			httputil.WriteNotFound(w, "Doctor not found")
			return
		}
		h.logger.Error().Err(err).Msg("get doctor by email")
		httputil.WriteInternalError(w, "Failed to get doctor")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, doctor)
}

// GetByID handles GET /doctors/{id}
func (h *DoctorHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid doctor ID")
		return
	}

	doctor, err := h.doctorService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrDoctorNotFound) {
			httputil.WriteNotFound(w, "Doctor not found")
			return
		}
		h.logger.Error().Err(err).Int64("doctor_id", id).Msg("get doctor")
		httputil.WriteInternalError(w, "Failed to get doctor")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, doctor)
}
