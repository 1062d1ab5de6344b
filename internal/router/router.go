// Package router sets up the HTTP routes and the middleware chain of the
// catalog API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"mediacatalog/internal/handlers"
	"mediacatalog/internal/middleware"
	"mediacatalog/internal/models"
)

// Options configures the cross-cutting parts of the router.
type Options struct {
	// AllowedOrigins lists the origins allowed by CORS. Empty allows any.
	AllowedOrigins []string

	// Limiter throttles writes per client. Nil disables limiting.
	Limiter *middleware.WriteLimiter
}

func newCORS(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         600,
	})
}

// New creates the chi router with every catalog route wired up.
func New(h *handlers.Catalog, opts Options) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(newCORS(opts.AllowedOrigins).Handler)
	if opts.Limiter != nil {
		r.Use(opts.Limiter.Middleware)
	}

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Get("/api/health", healthHandler)
	r.Get("/api/debug", h.Debug)

	// Films and series accept the index as a path segment or as ?index=.
	for path, ref := range map[string]models.CollectionRef{
		"/api/films":  models.FilmsRef,
		"/api/series": models.SeriesRef,
	} {
		fixed := handlers.Fixed(ref)
		r.Get(path, h.List(fixed))
		r.Post(path, h.Add(fixed))
		r.Put(path, h.Update(fixed))
		r.Delete(path, h.Remove(fixed))
		r.Put(path+"/{index}", h.Update(fixed))
		r.Delete(path+"/{index}", h.Remove(fixed))
	}

	r.Get("/api/categories", h.ListCategories)
	r.Post("/api/categories", h.AddCategory)
	r.Delete("/api/categories", h.DeleteCategory)
	r.Delete("/api/categories/{id}", h.DeleteCategory)

	items := h.CategoryItems
	r.Get("/api/categories/{id}/items", h.List(items))
	r.Post("/api/categories/{id}/items", h.Add(items))
	r.Put("/api/categories/{id}/items/{index}", h.Update(items))
	r.Delete("/api/categories/{id}/items/{index}", h.Remove(items))

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
