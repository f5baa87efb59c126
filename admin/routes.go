package admin

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/vizfeed/beacon/cfg"
)

// RegisterRoutes registers all admin API routes using chi router
func RegisterRoutes(mux *http.ServeMux, handlers *AdminHandlers) {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/stats", handlers.handleStats)
	r.Post("/apply", handlers.handleApply)

	// Marker names may contain slashes ("robot/arm"), so the per-marker
	// routes use a catch-all wildcard instead of a single path segment.
	r.Route("/markers", func(r chi.Router) {
		r.Get("/", handlers.handleListMarkers)
		r.Delete("/", handlers.handleStageDeleteAll)
		r.Get("/*", handlers.handleGetMarker)
		r.Put("/*", handlers.handleStageUpsert)
		r.Delete("/*", handlers.handleStageDelete)
	})

	mux.Handle("/admin", http.RedirectHandler("/admin/", http.StatusMovedPermanently))
	mux.Handle("/admin/", http.StripPrefix("/admin", r))

	log.Info().Msg("Admin endpoints enabled at /admin/*")
}

// authMiddleware enforces the configured bearer token. With no token
// configured the API is open (intended for localhost-only debugging).
func authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := cfg.Config.Admin.AuthToken
		if token != "" {
			got := r.Header.Get("Authorization")
			want := "Bearer " + token
			if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
				writeErrorResponse(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
