package router

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/flipper-app/flipper/internal/middleware"
	"github.com/flipper-app/flipper/internal/middleware/metrics"
	rl "github.com/flipper-app/flipper/internal/middleware/ratelimiter"
	"github.com/flipper-app/flipper/internal/setup"
)

// New creates and configures a new mux router with all the routes.
func New(deps *setup.Dependencies) *mux.Router {
	r := mux.NewRouter()

	// Enable gzip compression for all responses
	r.Use(handlers.CompressHandler)

	// setup CORS for the web client
	r.Use(handlers.CORS(
		handlers.AllowedOrigins([]string{"http://localhost:8081"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	))

	r.Use(metrics.Middleware)

	// Add a wildcard OPTIONS handler to avoid 404s for preflight requests
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	h := deps.Handler
	jwt := deps.Jwt

	r.HandleFunc("/healthz", h.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Serve locally stored page images
	if deps.MediaRoot != "" {
		r.PathPrefix("/media/").Handler(
			http.StripPrefix("/media/", http.FileServer(http.Dir(deps.MediaRoot))))
	}

	v1 := r.PathPrefix("/v1").Subrouter()

	// Admin login (strict per-IP limit against brute force)
	v1.HandleFunc("/admin/login",
		mw.RateLimit(rl.OnceInSecond(), mw.GetIP)(h.AdminLogin)).Methods("POST")

	// Public gallery
	v1.HandleFunc("/flipbooks", h.ListPublished).Methods("GET")
	v1.HandleFunc("/flipbooks/{id}", mw.OptionalAuth(jwt)(h.GetFlipbook)).Methods("GET")

	// Engagement counters; views and shares count anonymous callers too
	v1.HandleFunc("/flipbooks/{id}/view",
		mw.RateLimit(rl.Rps10(), mw.GetIP)(h.View)).Methods("POST")
	v1.HandleFunc("/flipbooks/{id}/share",
		mw.RateLimit(rl.Rps10(), mw.GetIP)(h.Share)).Methods("POST")
	v1.HandleFunc("/flipbooks/{id}/like",
		mw.NeedAuth(jwt)(mw.RateLimit(rl.Rps10(), mw.GetUserIDFromContext)(h.Like))).Methods("POST")

	// Publication pipeline: 1 batch per minute per user
	v1.HandleFunc("/flipbooks",
		mw.NeedAuth(jwt)(mw.RateLimit(rl.OnceInMinute(), mw.GetUserIDFromContext)(h.CreateFlipbook))).Methods("POST")

	// Owner operations
	v1.HandleFunc("/flipbooks/{id}/published", mw.NeedAuth(jwt)(h.SetPublished)).Methods("PUT")
	v1.HandleFunc("/flipbooks/{id}", mw.NeedAuth(jwt)(h.DeleteFlipbook)).Methods("DELETE")
	v1.HandleFunc("/my/flipbooks", mw.NeedAuth(jwt)(h.MyFlipbooks)).Methods("GET")
	v1.HandleFunc("/me", mw.NeedAuth(jwt)(h.UpdateMe)).Methods("PUT")

	// Admin moderation routes
	v1.HandleFunc("/admin/flipbooks", mw.AdminOnly(jwt)(h.ListAllFlipbooks)).Methods("GET")
	v1.HandleFunc("/admin/users", mw.AdminOnly(jwt)(h.ListUsers)).Methods("GET")
	v1.HandleFunc("/admin/users/{uid}", mw.AdminOnly(jwt)(h.GetUser)).Methods("GET")
	v1.HandleFunc("/admin/users/{uid}", mw.AdminOnly(jwt)(h.UpdateUser)).Methods("PUT")
	v1.HandleFunc("/admin/users/{uid}", mw.AdminOnly(jwt)(h.DeleteUser)).Methods("DELETE")

	return r
}
