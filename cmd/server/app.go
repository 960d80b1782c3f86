package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"medrx_backend/internal/config"
	"medrx_backend/internal/database"
	"medrx_backend/internal/handler"
	"medrx_backend/internal/push"
	"medrx_backend/internal/queue"
	"medrx_backend/internal/redis"
	"medrx_backend/internal/repository"
	"medrx_backend/internal/service"
	transport "medrx_backend/internal/transport/http"
	"medrx_backend/internal/worker"
)

// streamMaxLen caps the prescription stream; processed entries are only kept for inspection.
const streamMaxLen = 100000

// app holds everything serve and worker share.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	db     *sqlx.DB
	redis  *redis.Client

	tokens        *service.TokenService
	prescriptions repository.PrescriptionRepository
	notifier      service.PrescriptionNotifier
	workers       *worker.Manager

	router chi.Router
}

func newLogger(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	}
	return zerolog.New(os.Stdout).With().Timestamp().Str("service", "rx-server").Logger().Level(zerolog.InfoLevel)
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	db, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.db = db

	deviceTokens := repository.NewDeviceTokenRepository(db)
	a.prescriptions = repository.NewPrescriptionRepository(db)

	provider, err := newPushProvider(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	dispatcher := service.NewDispatcher(deviceTokens, provider, service.DispatcherConfig{
		MaxConcurrency: cfg.DispatchConcurrency,
		SendTimeout:    time.Duration(cfg.PushSendTimeoutSec) * time.Second,
	}, logger)

	switch cfg.NotifyMode {
	case config.NotifyQueue:
		rc, err := redis.NewClient(cfg.RedisURL, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redis = rc
		if err := rc.Ping(ctx); err != nil {
			a.Close()
			return nil, err
		}
		a.notifier = service.NewQueuedNotifier(queue.NewPublisher(rc.Client, streamMaxLen, logger), logger)

		mcfg := worker.DefaultManagerConfig()
		mcfg.WorkerCount = cfg.WorkerCount
		a.workers = worker.NewManager(
			queue.NewConsumer(rc.Client, logger),
			worker.NewHandler(a.prescriptions, dispatcher, logger),
			mcfg,
			logger,
		)
	case config.NotifyDetached:
		a.notifier = service.NewDetachedNotifier(dispatcher, logger)
	default:
		a.notifier = dispatcher
	}
	logger.Info().Str("notify_mode", cfg.NotifyMode).Msg("prescription notifications configured")

	a.tokens = service.NewTokenService(cfg.JWTSecret, cfg.AccessTokenMaxAge)
	return a, nil
}

// newPushProvider routes Expo tokens to Expo and the rest to FCM. Without Firebase
// credentials, development logs messages instead and other environments leave FCM unset.
func newPushProvider(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (push.Provider, error) {
	creds := push.FCMCredentials{
		CredentialsFile: cfg.FirebaseCredentialsFile,
		ProjectID:       cfg.FirebaseProjectID,
		ClientEmail:     cfg.FirebaseClientEmail,
		PrivateKey:      cfg.FirebasePrivateKey,
	}

	var fcm push.Provider
	switch {
	case creds.Configured():
		p, err := push.NewFCMProvider(ctx, creds, logger)
		if err != nil {
			return nil, fmt.Errorf("init fcm: %w", err)
		}
		fcm = p
	case cfg.IsDev():
		logger.Warn().Msg("firebase not configured, push messages will only be logged")
		fcm = push.NewLogProvider(logger)
	default:
		logger.Warn().Msg("firebase not configured, FCM tokens will not receive notifications")
	}

	var expo push.Provider
	if cfg.ExpoPushEnabled {
		expo = push.NewExpoProvider(logger)
	}
	return push.NewRouter(fcm, expo), nil
}

// Router builds the HTTP handler tree. Only serve needs it.
func (a *app) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	passwords := service.NewPasswordService(a.cfg.BcryptCost)
	scans := repository.NewScanRepository(a.db)
	scanSvc, err := service.NewScanService(context.Background(), a.cfg, scans, a.prescriptions, a.logger)
	if err != nil {
		// R2 misconfiguration only disables uploads.
		a.logger.Error().Err(err).Msg("scan storage unavailable")
		scanSvc = service.NewDisabledScanService(scans, a.prescriptions, a.logger)
	}

	a.router = transport.NewRouter(transport.RouterConfig{
		DoctorHandler: handler.NewDoctorHandler(
			service.NewDoctorService(repository.NewDoctorRepository(a.db), passwords, a.tokens), a.logger),
		PatientHandler: handler.NewPatientHandler(
			service.NewPatientService(repository.NewPatientRepository(a.db), passwords, a.tokens), a.logger),
		PrescriptionHandler: handler.NewPrescriptionHandler(
			service.NewPrescriptionService(a.prescriptions, a.notifier, a.logger), a.logger),
		MedicationHandler: handler.NewMedicationHandler(
			service.NewMedicationService(repository.NewMedicationRepository(a.db), a.prescriptions), a.logger),
		DeviceTokenHandler: handler.NewDeviceTokenHandler(
			service.NewDeviceTokenService(repository.NewDeviceTokenRepository(a.db), a.logger), a.logger),
		ScanHandler: handler.NewScanHandler(scanSvc, a.logger),
		Tokens:      a.tokens,
		Logger:      a.logger,
	})
	return a.router
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("close redis")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("close database")
		}
	}
}
