package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/eleave-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// UploadsDir is served under /uploads when set.
	UploadsDir string
}

type Handlers struct {
	Auth    AuthHandler
	Leave   LeaveHandler
	Balance BalanceHandler
	Holiday HolidayHandler
	Admin   AdminHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if cfg.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Get("/holidays", h.Holiday.List)
			r.Get("/employees/{id}/leave-balance", h.Balance.GetRemaining)

			// Requires a linked employee record
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireEmployee)

				r.Get("/me/leave-balance", h.Balance.GetMyBalance)

				r.Route("/leave-requests", func(r chi.Router) {
					r.Get("/working-days", h.Leave.PreviewWorkingDays)
					r.Post("/", h.Leave.CreateRequest)
					r.Get("/my", h.Leave.GetMyRequests)
					r.Get("/approvals", h.Leave.GetApprovalQueue)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", h.Leave.GetRequest)
						r.Get("/letter", h.Leave.GetLetter)
						r.Post("/supervisor-decision", h.Leave.SupervisorDecision)
						r.Post("/officer-decision", h.Leave.OfficerDecision)
					})
				})
			})

			// Admin only
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Get("/leave-requests", h.Leave.ListRequests)
				r.Get("/leave-requests/{id}", h.Leave.GetRequest)
				r.Get("/leave-requests/{id}/letter", h.Leave.GetLetter)
				r.Post("/leave-requests/{id}/supervisor-decision", h.Leave.SupervisorDecision)
				r.Post("/leave-requests/{id}/officer-decision", h.Leave.OfficerDecision)
				r.Put("/employees/{id}/leave-balance", h.Admin.OverwriteBalance)
				r.Post("/leave-balance/corrective-update", h.Admin.RunCorrectiveUpdate)
				r.Post("/leave-balance/year-start-rollover", h.Admin.RunYearStartRollover)
			})
		})
	})
	return r
}
