package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"medrx_backend/internal/handler"
	"medrx_backend/internal/httputil"
	"medrx_backend/internal/metrics"
	"medrx_backend/internal/model"
	authmw "medrx_backend/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	DoctorHandler       *handler.DoctorHandler
	PatientHandler      *handler.PatientHandler
	PrescriptionHandler *handler.PrescriptionHandler
	MedicationHandler   *handler.MedicationHandler
	DeviceTokenHandler  *handler.DeviceTokenHandler
	ScanHandler         *handler.ScanHandler
	Tokens              authmw.TokenVerifier
	Logger              zerolog.Logger
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(authmw.RequestLogger(cfg.Logger))
	r.Use(authmw.Recoverer(cfg.Logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	auth := authmw.AuthMiddleware(cfg.Tokens)
	doctorOnly := authmw.RequireRole(model.RoleDoctor)
	patientOnly := authmw.RequireRole(model.RolePatient)

	r.Route("/doctors", func(r chi.Router) {
		r.Post("/register", cfg.DoctorHandler.Register)
		r.Post("/auth/login", cfg.DoctorHandler.Login)
		r.With(auth).Get("/by-email/{email}", cfg.DoctorHandler.GetByEmail)
		r.With(auth).Get("/{id}", cfg.DoctorHandler.GetByID)
	})

	r.Route("/patients", func(r chi.Router) {
		r.Post("/register", cfg.PatientHandler.Register)
		r.Post("/auth/login", cfg.PatientHandler.Login)
		r.With(auth).Get("/", cfg.PatientHandler.List)
		r.With(auth).Get("/{id}", cfg.PatientHandler.GetByID)
	})

	// Everything below requires a session
	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Route("/prescriptions", func(r chi.Router) {
			r.Get("/", cfg.PrescriptionHandler.List)
			r.With(doctorOnly).Post("/", cfg.PrescriptionHandler.Create)
			r.Get("/patient/{patientId}", cfg.PrescriptionHandler.ListByPatient)
			r.Get("/{id}", cfg.PrescriptionHandler.GetByID)
			r.Get("/{id}/scans", cfg.ScanHandler.List)
			r.With(doctorOnly).Post("/{id}/scans", cfg.ScanHandler.Upload)
		})

		r.Route("/medications", func(r chi.Router) {
			r.With(doctorOnly).Post("/", cfg.MedicationHandler.Create)
			r.Get("/prescription/{prescriptionId}", cfg.MedicationHandler.ListByPrescription)
		})

		r.Route("/device-tokens", func(r chi.Router) {
			r.With(patientOnly).Post("/", cfg.DeviceTokenHandler.Register)
			r.Delete("/{token}", cfg.DeviceTokenHandler.Delete)
		})
	})

	return r
}
