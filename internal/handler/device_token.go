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
	"medrx_backend/internal/transport/http/middleware"
)

type DeviceTokenHandler struct {
	tokenService *service.DeviceTokenService
	logger       zerolog.Logger
}

func NewDeviceTokenHandler(tokenService *service.DeviceTokenService, logger zerolog.Logger) *DeviceTokenHandler {
	return &DeviceTokenHandler{
		tokenService: tokenService,
		logger:       logger.With().Str("handler", "device_tokens").Logger(),
	}
}

// Register handles POST /device-tokens
// The owner is always the authenticated patient, never a body field.
func (h *DeviceTokenHandler) Register(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.RegisterTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	tok, created, err := h.tokenService.Register(r.Context(), principal.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTokenRequired):
			httputil.WriteBadRequest(w, "token is required")
		case errors.Is(err, model.ErrInvalidDeviceType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidDeviceType, "deviceType must be android, ios or web")
		default:
			h.logger.Error().Err(err).Int64("patient_id", principal.ID).Msg("register device token")
			httputil.WriteInternalError(w, "Failed to register device token")
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, tok)
}

// Delete handles DELETE /device-tokens/{token}
// Deleting a token that does not exist still returns 204.
func (h *DeviceTokenHandler) Delete(w http.ResponseWriter, r *http.Request) {
	token, err := url.PathUnescape(chi.URLParam(r, "token"))
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid token")
		return
	}

	if err := h.tokenService.Remove(r.Context(), token); err != nil {
		if errors.Is(err, model.ErrTokenRequired) {
			httputil.WriteBadRequest(w, "token is required")
			return
		}
		h.logger.Error().Err(err).Str("token", model.MaskToken(token)).Msg("delete device token")
		httputil.WriteInternalError(w, "Failed to delete device token")
		return
	}

	httputil.WriteNoContent(w)
}
