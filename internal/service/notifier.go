package service

import (
	"context"

	"github.com/rs/zerolog"

	"medrx_backend/internal/model"
	"medrx_backend/internal/queue"
)

// PrescriptionNotifier is what the creation workflow calls after a prescription is stored.
// The result is informational only.
type PrescriptionNotifier interface {
	Dispatch(ctx context.Context, p *model.Prescription) bool
}

// DetachedNotifier runs the dispatch in its own goroutine so the request does not wait for providers.
type DetachedNotifier struct {
	inner  PrescriptionNotifier
	logger zerolog.Logger
}

func NewDetachedNotifier(inner PrescriptionNotifier, logger zerolog.Logger) *DetachedNotifier {
	return &DetachedNotifier{
		inner:  inner,
		logger: logger.With().Str("component", "detached_notifier").Logger(),
	}
}

// Dispatch reports true once the background dispatch has been started.
func (n *DetachedNotifier) Dispatch(ctx context.Context, p *model.Prescription) bool {
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				n.logger.Error().Interface("panic", r).Int64("prescription_id", p.ID).Msg("background dispatch panicked")
			}
		}()
		n.inner.Dispatch(ctx, p)
	}()
	return true
}

// QueuedNotifier hands the dispatch to the worker pool through the prescription stream.
type QueuedNotifier struct {
	publisher queue.Publisher
	logger    zerolog.Logger
}

func NewQueuedNotifier(publisher queue.Publisher, logger zerolog.Logger) *QueuedNotifier {
	return &QueuedNotifier{
		publisher: publisher,
		logger:    logger.With().Str("component", "queued_notifier").Logger(),
	}
}

// Dispatch reports whether the event was accepted by the stream.
func (n *QueuedNotifier) Dispatch(ctx context.Context, p *model.Prescription) bool {
	event := queue.NewPrescriptionCreatedEvent(p.ID, p.PatientID)
	msgID, err := n.publisher.Publish(ctx, queue.StreamPrescriptions, event)
	if err != nil {
		n.logger.Error().Err(err).Int64("prescription_id", p.ID).Msg("failed to publish prescription_created")
		return false
	}
	n.logger.Debug().Str("msg_id", msgID).Int64("prescription_id", p.ID).Msg("prescription_created published")
	return true
}
