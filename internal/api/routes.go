package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// CORS for the dashboard frontend
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000", "http://localhost:8051"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/tiers", h.GetTiers)

		r.Route("/datasets", func(r chi.Router) {
			r.Post("/", h.UploadDataset)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetDataset)
				r.Delete("/", h.DeleteDataset)

				r.Get("/report", h.GetReport)
				r.Post("/report", h.RescoreDataset)
				r.Get("/records/{recordID}/breakdown", h.GetRecordBreakdown)
				r.Get("/export", h.ExportDataset)

				r.Route("/chart", func(r chi.Router) {
					r.Get("/scatter", h.GetScatterChart)
					r.Get("/heatmap", h.GetHeatmapChart)
				})
			})
		})
	})

	return r
}
