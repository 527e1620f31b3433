// package server contains middleware & handlers for the playlist pipeline web service
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, authentication, CORS, rate limiting, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the pipeline service.
// Implementations handle specific endpoints (health, playlist operations, builds).
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// NewRouter assembles the service router.
//
// The health route is registered before the owner middleware is added, so
// liveness probes do not need credentials; everything under the API handler
// requires the owner header.
func NewRouter(api *APIHandler, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()

	router.Use(RequestLogger(logger))
	router.Handle(http.MethodGet, "/health", HealthHandler())

	router.Use(RequireOwner())
	router.Handler(api)

	return router
}

// New builds an [http.Server] from configuration with conservative timeouts.
func New(cfg shared.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       time.Minute,
	}
}
