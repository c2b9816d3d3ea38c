package server

import (
	"net/http"

	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/handler"
	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Dependencies are the stores the HTTP API reads and writes.
type Dependencies struct {
	Pairs       *repository.PairRepository
	Positions   *repository.PositionRepository
	StrictClose bool
}

// NewRouter builds the /api routes with permissive CORS.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// === Global Middleware ===
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handler.HealthHandler())

		r.Get("/pairs", handler.ListPairsHandler(deps.Pairs))
		r.Post("/pairs", handler.CreatePairHandler(deps.Pairs))

		r.Get("/positions", handler.ListPositionsHandler(deps.Positions))
		r.Post("/positions", handler.CreatePositionHandler(deps.Positions))
		r.Post("/positions/{id}/close", handler.ClosePositionHandler(deps.Positions, deps.StrictClose))
	})

	return r
}
