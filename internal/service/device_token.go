package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"medrx_backend/internal/model"
	"medrx_backend/internal/repository"
)

// DeviceTokenService registers and removes push endpoints.
type DeviceTokenService struct {
	repo   repository.DeviceTokenRepository
	logger zerolog.Logger
}

func NewDeviceTokenService(repo repository.DeviceTokenRepository, logger zerolog.Logger) *DeviceTokenService {
	return &DeviceTokenService{
		repo:   repo,
		logger: logger.With().Str("component", "device_tokens").Logger(),
	}
}

// Register stores the token for patientID, moving it from any previous owner.
// created is false when an existing row was updated.
func (s *DeviceTokenService) Register(ctx context.Context, patientID int64, req model.RegisterTokenRequest) (*model.DeviceToken, bool, error) {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return nil, false, model.ErrTokenRequired
	}

	deviceType := req.DeviceType
	if deviceType != nil && *deviceType == "" {
		deviceType = nil
	}
	if deviceType != nil && !deviceType.Valid() {
		return nil, false, model.ErrInvalidDeviceType
	}

	stored, created, err := s.repo.Upsert(ctx, patientID, token, deviceType)
	if err != nil {
		s.logger.Error().Err(err).Int64("patient_id", patientID).Str("token", model.MaskToken(token)).Msg("register device token failed")
		return nil, false, err
	}

	s.logger.Info().
		Int64("patient_id", patientID).
		Str("token", model.MaskToken(token)).
		Bool("created", created).
		Msg("device token registered")
	return stored, created, nil
}

// Remove deletes a token. Removing an unknown token is not an error.
func (s *DeviceTokenService) Remove(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.ErrTokenRequired
	}

	deleted, err := s.repo.Delete(ctx, token)
	if err != nil {
		s.logger.Error().Err(err).Str("token", model.MaskToken(token)).Msg("delete device token failed")
		return err
	}
	if !deleted {
		s.logger.Warn().Str("token", model.MaskToken(token)).Msg("device token not found, nothing to delete")
		return nil
	}
	s.logger.Info().Str("token", model.MaskToken(token)).Msg("device token deleted")
	return nil
}
