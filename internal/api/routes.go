// Route registration and go-chi router setup.
// Public routes (/health, /auth/*, catalog) are split from routes that read the caller's identity.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matiasleandrokruk/arcana/internal/api/handlers"
	apmiddleware "github.com/matiasleandrokruk/arcana/internal/api/middleware"
	"github.com/matiasleandrokruk/arcana/internal/domain/tarot"
)

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Readings handlers.ReadingService
	Journal  handlers.JournalStore
	Auth     handlers.AuthService
	Tokens   apmiddleware.TokenParser
	Catalog  *tarot.Catalog
	// Logger receives audit records for reading routes. Nil disables auditing.
	Logger *slog.Logger
}

// NewRouter creates and configures a new chi router with all routes.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// ===== PUBLIC ROUTES (no auth required) =====

	// Health check, used by load balancers and health probes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	authHandler := handlers.NewAuthHandler(deps.Auth)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register) // POST /auth/register
		r.Post("/login", authHandler.Login)       // POST /auth/login
	})

	optional := apmiddleware.OptionalAuth(deps.Tokens)
	required := apmiddleware.RequireAuth(deps.Tokens)
	audit := apmiddleware.Audit(deps.Logger)

	readingHandler := handlers.NewReadingHandler(deps.Readings, deps.Catalog)
	journalHandler := handlers.NewJournalHandler(deps.Journal)
	catalogHandler := handlers.NewCatalogHandler(deps.Catalog)

	// Legacy path kept for existing web clients.
	r.With(optional, audit).Post("/api/generate-reading", readingHandler.Generate) // POST /api/generate-reading

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/spreads", catalogHandler.ListSpreads) // GET /api/v1/catalog/spreads
			r.Get("/styles", catalogHandler.ListStyles)   // GET /api/v1/catalog/styles
			r.Get("/cards", catalogHandler.ListCards)     // GET /api/v1/catalog/cards
		})

		// Reading endpoints: anonymous callers may generate and fetch by id,
		// a valid token attributes the reading to its owner.
		r.Route("/readings", func(r chi.Router) {
			r.With(optional, audit).Post("/", readingHandler.Generate)      // POST /api/v1/readings
			r.With(required, audit).Get("/", journalHandler.ListReadings)   // GET /api/v1/readings
			r.With(optional, audit).Get("/{id}", journalHandler.GetReading) // GET /api/v1/readings/{id}
		})
	})

	return r
}
