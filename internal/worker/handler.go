package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"medrx_backend/internal/model"
	"medrx_backend/internal/queue"
)

// PrescriptionLoader fetches the stored prescription an event refers to.
type PrescriptionLoader interface {
	GetByID(ctx context.Context, id int64) (*model.Prescription, error)
}

// Dispatcher delivers the new-prescription notification.
type Dispatcher interface {
	Dispatch(ctx context.Context, p *model.Prescription) bool
}

// Handler processes prescription events from the queue.
type Handler struct {
	prescriptions PrescriptionLoader
	dispatcher    Dispatcher
	logger        zerolog.Logger
}

func NewHandler(prescriptions PrescriptionLoader, dispatcher Dispatcher, logger zerolog.Logger) *Handler {
	return &Handler{
		prescriptions: prescriptions,
		dispatcher:    dispatcher,
		logger:        logger.With().Str("component", "worker_handler").Logger(),
	}
}

// HandleEvent routes an event by type. A false dispatch result is not an error:
// partial delivery has already been logged and nothing is retried.
func (h *Handler) HandleEvent(ctx context.Context, event queue.PrescriptionEvent) error {
	start := time.Now()

	switch event.Type {
	case queue.EventPrescriptionCreated:
		if err := h.handlePrescriptionCreated(ctx, event); err != nil {
			h.logger.Error().Err(err).Str("type", event.Type).Dur("duration", time.Since(start)).Msg("handle event failed")
			return err
		}
	default:
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	h.logger.Debug().Str("type", event.Type).Dur("duration", time.Since(start)).Msg("event handled")
	return nil
}

func (h *Handler) handlePrescriptionCreated(ctx context.Context, event queue.PrescriptionEvent) error {
	p, err := h.prescriptions.GetByID(ctx, event.PrescriptionID)
	if err != nil {
		if errors.Is(err, model.ErrPrescriptionNotFound) {
			h.logger.Warn().Int64("prescription_id", event.PrescriptionID).Msg("prescription vanished before dispatch")
			return nil
		}
		return fmt.Errorf("load prescription %d: %w", event.PrescriptionID, err)
	}

	delivered := h.dispatcher.Dispatch(ctx, p)
	h.logger.Info().
		Int64("prescription_id", p.ID).
		Int64("patient_id", p.PatientID).
		Bool("delivered", delivered).
		Msg("prescription_created processed")
	return nil
}
