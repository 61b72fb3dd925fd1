package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"subsync/internal/language"
	"subsync/internal/logging"
	"subsync/internal/providers"
)

// LanguageLister reports provider languages, typically the OpenSubtitles
// provider.
type LanguageLister interface {
	Languages(ctx context.Context) ([]language.Option, error)
}

// Translator is the document translation surface the API needs.
type Translator interface {
	TranslateDocument(ctx context.Context, text, source, target string) (string, error)
	Languages(ctx context.Context) ([]language.Option, error)
}

// Options wires the handler dependencies. Translator, Languages and Catalog
// may be nil; the affected routes then degrade or answer 503.
type Options struct {
	Registry    *providers.Registry
	Translator  Translator
	Languages   LanguageLister
	Catalog     *language.Catalog
	Token       string
	CORSOrigins []string
	// RequestTimeout bounds each /api request; zero disables the limit.
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// Handler serves the HTTP API.
type Handler struct {
	registry   *providers.Registry
	translator Translator
	languages  LanguageLister
	catalog    *language.Catalog
	logger     *slog.Logger
	router     chi.Router
}

// NewHandler builds the router with its middleware stack.
func NewHandler(opts Options) *Handler {
	logger := logging.NewComponentLogger(opts.Logger, "api")
	h := &Handler{
		registry:   opts.Registry,
		translator: opts.Translator,
		languages:  opts.Languages,
		catalog:    opts.Catalog,
		logger:     logger,
	}
	if h.registry == nil {
		h.registry = providers.NewRegistry(logger)
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(requestID)
	r.Use(accessLog(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", requestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(chimw.Timeout(opts.RequestTimeout))
		}
		r.Get("/health", h.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(bearerAuth(opts.Token))

			r.Get("/languages", h.handleLanguages)
			r.Get("/translation-languages", h.handleTranslationLanguages)
			r.Get("/search", h.handleSearch)
			r.Post("/download", h.handleDownload)
			r.Post("/sync", h.handleSync)
			r.Post("/translate", h.handleTranslate)
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	h.router = r
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}
