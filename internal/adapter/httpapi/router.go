package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bazarly/listing-service/internal/platform/logger"
	"go.uber.org/zap"
)

// NewRouter wires the service routes onto a chi mux.
func NewRouter(h *Handler, log *logger.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/", h.GetCatalogTree)
		r.Get("/schemas", h.GetAllFieldSchemas)
		r.Get("/{id}/schema", h.GetFieldSchema)
		r.Post("/{id}/validate", h.ValidateFields)
	})

	r.Route("/listings", func(r chi.Router) {
		r.Post("/search", h.SearchListings)
		r.Post("/", h.PublishListing)
		r.Get("/{id}", h.GetListing)
		r.Patch("/{id}", h.EditListing)
		r.Patch("/{id}/status", h.ChangeListingStatus)
		r.Put("/{id}/favorite", h.AddFavorite)
		r.Delete("/{id}/favorite", h.RemoveFavorite)
	})

	return r
}

func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	accessLog := log.Named("HTTP")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			accessLog.Info("Request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(started)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
