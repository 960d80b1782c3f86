package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"

	"medrx_backend/internal/metrics"
	"medrx_backend/internal/model"
	"medrx_backend/internal/push"
	"medrx_backend/internal/repository"
)

const (
	DefaultDispatchConcurrency = 8
	DefaultSendTimeout         = 10 * time.Second
)

// DispatcherConfig bounds the per-prescription fan-out.
type DispatcherConfig struct {
	MaxConcurrency int
	// SendTimeout applies to each endpoint separately. Zero disables it.
	SendTimeout time.Duration
}

// Dispatcher fans a new-prescription notification out to every device of the patient.
type Dispatcher struct {
	tokens         repository.DeviceTokenRepository
	provider       push.Provider
	maxConcurrency int
	sendTimeout    time.Duration
	logger         zerolog.Logger
}

func NewDispatcher(tokens repository.DeviceTokenRepository, provider push.Provider, cfg DispatcherConfig, logger zerolog.Logger) *Dispatcher {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultDispatchConcurrency
	}
	if cfg.SendTimeout < 0 {
		cfg.SendTimeout = 0
	}
	return &Dispatcher{
		tokens:         tokens,
		provider:       provider,
		maxConcurrency: cfg.MaxConcurrency,
		sendTimeout:    cfg.SendTimeout,
		logger:         logger.With().Str("component", "dispatcher").Logger(),
	}
}

// PrescriptionMessage builds the notification for p without a target token.
func PrescriptionMessage(p *model.Prescription) push.Message {
	return push.Message{
		Title: model.NewPrescriptionTitle,
		Body:  model.NewPrescriptionBody(p.Diagnosis),
		Data: map[string]string{
			"prescriptionId": strconv.FormatInt(p.ID, 10),
			"patientId":      strconv.FormatInt(p.PatientID, 10),
			"type":           model.NotificationTypeNewPrescription,
		},
	}
}

type deliveryResult struct {
	token  string
	err    error
	pruned bool
}

// Dispatch returns true only when every endpoint accepted the message.
// It never returns an error: lookup failures and empty endpoint sets yield false,
// and each endpoint failure is logged and, when permanent, pruned.
// Cancellation of ctx is ignored so a caller hanging up cannot abort sends or prunes.
func (d *Dispatcher) Dispatch(ctx context.Context, p *model.Prescription) bool {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	log := d.logger.With().Int64("prescription_id", p.ID).Int64("patient_id", p.PatientID).Logger()

	endpoints, err := d.tokens.ListByPatient(ctx, p.PatientID)
	if err != nil {
		log.Error().Err(err).Msg("device token lookup failed")
		metrics.RecordDispatch(metrics.OutcomeLookupFailed, time.Since(start).Seconds())
		return false
	}
	if len(endpoints) == 0 {
		log.Info().Msg("no device tokens registered for patient")
		metrics.RecordDispatch(metrics.OutcomeNoEndpoints, time.Since(start).Seconds())
		return false
	}

	base := PrescriptionMessage(p)
	pl := pool.NewWithResults[deliveryResult]().WithMaxGoroutines(d.maxConcurrency)
	for _, ep := range endpoints {
		ep := ep
		pl.Go(func() deliveryResult {
			return d.deliver(ctx, log, ep, base)
		})
	}
	results := pl.Wait()

	var failures error
	var pruned int
	for _, r := range results {
		if r.err != nil {
			failures = multierr.Append(failures, r.err)
		}
		if r.pruned {
			pruned++
		}
	}

	failed := len(multierr.Errors(failures))
	if failed == 0 {
		log.Info().Int("endpoints", len(endpoints)).Dur("duration", time.Since(start)).Msg("prescription notification delivered")
		metrics.RecordDispatch(metrics.OutcomeDelivered, time.Since(start).Seconds())
		return true
	}

	log.Warn().
		Err(failures).
		Int("endpoints", len(endpoints)).
		Int("failed", failed).
		Int("pruned", pruned).
		Dur("duration", time.Since(start)).
		Msg("prescription notification partially failed")
	metrics.RecordDispatch(metrics.OutcomePartial, time.Since(start).Seconds())
	return false
}

// deliver sends to one endpoint. A panic in the provider is reported as an unknown failure
// so it cannot take the sibling sends down with it.
func (d *Dispatcher) deliver(ctx context.Context, log zerolog.Logger, ep model.DeviceToken, base push.Message) (res deliveryResult) {
	masked := model.MaskToken(ep.Token)
	res.token = ep.Token

	defer func() {
		if r := recover(); r != nil {
			res.err = fmt.Errorf("token %s: %w", masked, &push.DeliveryError{
				Kind:     push.KindUnknown,
				Provider: "dispatcher",
				Err:      fmt.Errorf("provider panic: %v", r),
			})
			metrics.RecordDelivery(false, push.KindUnknown.String())
			log.Error().Str("token", masked).Interface("panic", r).Msg("push provider panicked")
		}
	}()

	msg := base
	msg.Token = ep.Token

	sendCtx := ctx
	if d.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.sendTimeout)
		defer cancel()
	}

	err := d.provider.Send(sendCtx, msg)
	if err == nil {
		metrics.RecordDelivery(true, "")
		return res
	}

	kind := push.KindOf(err)
	metrics.RecordDelivery(false, kind.String())
	res.err = fmt.Errorf("token %s: %w", masked, err)

	if kind != push.KindPermanentInvalidToken {
		log.Warn().Err(err).Str("token", masked).Str("kind", kind.String()).Msg("push delivery failed, token kept")
		return res
	}

	log.Warn().Err(err).Str("token", masked).Msg("token rejected as invalid, removing")
	deleted, derr := d.tokens.Delete(ctx, ep.Token)
	if derr != nil {
		log.Error().Err(derr).Str("token", masked).Msg("failed to remove invalid token")
		return res
	}
	if deleted {
		metrics.RecordPrune()
		res.pruned = true
	}
	return res
}
