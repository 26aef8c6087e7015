package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/discordtext/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Logger         *slog.Logger
	Metadata       MetadataProvider
	KeyOptional    bool
	Saver          ThumbnailSaver
	History        ThumbnailHistory
	RateLimiter    middleware.RateLimiter
	AllowedOrigins []string
}

// NewRouter wires HTTP handlers into a chi router.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	health := HealthHandler{}
	process := ProcessHandler{Metadata: deps.Metadata, KeyOptional: deps.KeyOptional}
	thumbs := ThumbnailHandler{Saver: deps.Saver, History: deps.History}
	preview := PreviewHandler{}

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", health.Handle)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(deps.RateLimiter, "api"))

		r.Post("/process", process.Process)
		r.Post("/save_thumbnail", thumbs.Save)
		r.Get("/thumbnails", thumbs.List)
		r.Post("/preview", preview.Preview)
	})

	return r
}
