// Package api exposes the calendar, filters, astronomy lookups and optimal
// timing generation over HTTP and websocket.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"electional-engine/internal/aspects"
	"electional-engine/internal/astrocontext"
	"electional-engine/internal/calendar"
	"electional-engine/internal/domain"
	"electional-engine/internal/generator"
	"electional-engine/internal/observability"
	"electional-engine/internal/storage"
)

// Options for creating a Server.
type Options struct {
	// Required
	Book      *calendar.Book
	Generator *generator.Generator
	Detector  *aspects.Detector

	// Defaults to the built-in Mercury table.
	Context *astrocontext.Evaluator

	// Optional stores backing the day score and run endpoints.
	DayScores storage.DayScoreStore
	Runs      storage.GenerationRunStore

	// DefaultLocation is used when a generation request carries no coordinates.
	DefaultLocation domain.Location

	CorsOrigins    []string
	RequestTimeout time.Duration // defaults to 60s; the websocket route is exempt
	Verbose        bool
}

// Server routes HTTP requests to the engine.
type Server struct {
	router    *chi.Mux
	book      *calendar.Book
	generator *generator.Generator
	detector  *aspects.Detector
	context   *astrocontext.Evaluator
	dayScores storage.DayScoreStore
	runs      storage.GenerationRunStore
	location  domain.Location
	upgrader  websocket.Upgrader
	wsClients atomic.Int64
	verbose   bool
}

// New creates a Server with all routes mounted.
func New(opts Options) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		book:      opts.Book,
		generator: opts.Generator,
		detector:  opts.Detector,
		context:   opts.Context,
		dayScores: opts.DayScores,
		runs:      opts.Runs,
		location:  opts.DefaultLocation,
		verbose:   opts.Verbose,
	}
	if s.context == nil {
		s.context = astrocontext.NewEvaluator(nil)
	}
	origins := opts.CorsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(origins),
	}

	r := s.router

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Prometheus metrics
	r.Handle("/metrics", observability.Handler())

	// Generation stream, exempt from the request timeout
	r.Get("/ws/generate", s.handleGenerateStream)

	// Routes
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))

		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			r.Get("/aspects", s.handleAspects)
			r.Get("/context", s.handleContext)

			r.Route("/users/{userID}", func(r chi.Router) {
				r.Route("/events", func(r chi.Router) {
					r.Get("/", s.handleListEvents)
					r.Post("/", s.handleCreateEvents)
					r.Get("/counts", s.handleCounts)
					r.Delete("/generated", s.handleClearGenerated)
					r.Patch("/{id}", s.handleUpdateEvent)
					r.Delete("/{id}", s.handleDeleteEvent)
				})
				r.Post("/sync", s.handleSync)
				r.Post("/generate", s.handleGenerate)
				r.Get("/day-scores", s.handleDayScores)
				r.Get("/runs/latest", s.handleLatestRun)
			})
		})
	})

	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func originChecker(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range origins {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// statusOf maps engine errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, generator.ErrNoPriorities),
		errors.Is(err, generator.ErrNoLocation),
		errors.Is(err, generator.ErrInvalidRange),
		errors.Is(err, generator.ErrNoUser),
		errors.Is(err, calendar.ErrInvalidEvents),
		errors.Is(err, storage.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, calendar.ErrNoChart):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, err error) {
	response := map[string]string{"error": message}
	if err != nil && code < 500 {
		response["error"] = err.Error()
	}
	if err != nil && code >= 500 {
		log.Printf("[api] %s: %v", message, err)
	}
	respondWithJSON(w, code, response)
}

func (s *Server) log(format string, args ...interface{}) {
	if s.verbose {
		log.Printf("[api] "+format, args...)
	}
}
