package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Capstone-E1/aquasmart_calculators/internal/metrics"
	"github.com/Capstone-E1/aquasmart_calculators/internal/services"
	"github.com/Capstone-E1/aquasmart_calculators/internal/store"
	"github.com/Capstone-E1/aquasmart_calculators/internal/ws"
)

// Dependencies are the services the HTTP API is built on
type Dependencies struct {
	Store     store.DataStore
	Session   *services.SDISession
	Stopwatch *services.Stopwatch
	Scaling   *services.ScalingCalculator
	Hub       *ws.Hub
	Metrics   *metrics.Registry
	Publisher ResultPublisher // nil when the rig bridge is disabled
	Limiter   *IPRateLimiter  // nil disables rate limiting

	AllowedOrigins []string
}

// SetupRoutes configures all HTTP routes for the calculators API
func SetupRoutes(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	handlers := NewHandlers(deps)

	r.Route("/api/v1", func(r chi.Router) {
		if deps.Limiter != nil {
			r.Use(deps.Limiter.LimitMiddleware)
		}

		r.Get("/health", handlers.GetHealth)

		// SDI calculator
		r.Route("/sdi", func(r chi.Router) {
			r.Post("/calculate", handlers.CalculateSDI)
			r.Get("/reports", handlers.GetSDIReports)

			r.Route("/session", func(r chi.Router) {
				r.Get("/", handlers.GetSDISession)
				r.Put("/timing", handlers.UpdateSDITiming)
				r.Put("/info", handlers.UpdateSDITestInfo)
				r.Post("/calculate", handlers.CalculateSDISession)
				r.Post("/reset", handlers.ResetSDISession)
			})
		})

		// Stopwatch for Ti/Tf measurement
		r.Route("/stopwatch", func(r chi.Router) {
			r.Get("/", handlers.GetStopwatch)
			r.Post("/{command}", handlers.StopwatchCommand) // start, stop, reset, record-ti, record-tf
		})

		// Scaling indices calculator
		r.Route("/scaling", func(r chi.Router) {
			r.Post("/calculate", handlers.CalculateScaling)
			r.Get("/history", handlers.GetScalingHistory)
			r.Delete("/history", handlers.ClearScalingHistory)
		})

		r.Route("/export", func(r chi.Router) {
			r.Get("/history.xlsx", handlers.ExportHistoryExcel)
			r.Get("/history.csv", handlers.ExportHistoryCSV)
			r.Get("/sdi-report.pdf", handlers.ExportSDIReportPDF)
		})
	})

	r.Method("GET", "/metrics", handlers.metrics.Handler())

	// WebSocket route for the live stopwatch display
	if deps.Hub != nil {
		r.HandleFunc("/ws", deps.Hub.HandleWebSocket)
	}

	return r
}
