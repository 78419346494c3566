package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vocdoni/note-selector/log"
	"github.com/vocdoni/note-selector/selector"
	stg "github.com/vocdoni/note-selector/storage"
	"github.com/vocdoni/note-selector/web3"
)

// APIConfig type represents the configuration for the API HTTP server.
type APIConfig struct {
	Host    string
	Port    int
	Storage *stg.Storage
	// Selector runs the selections. Nil uses the default configuration.
	Selector *selector.Selector
	// Blocks provides the current block height when a selection request does
	// not include it. Optional.
	Blocks web3.BlockSource
}

// API type represents the note selector HTTP server.
type API struct {
	router   *chi.Mux
	storage  *stg.Storage
	selector *selector.Selector
	blocks   web3.BlockSource
	srv      *http.Server
	listener net.Listener
}

// New creates a new API instance with the given configuration and starts
// the HTTP server in background.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Storage == nil {
		return nil, fmt.Errorf("missing storage instance")
	}
	a := &API{
		storage:  conf.Storage,
		selector: conf.Selector,
		blocks:   conf.Blocks,
	}
	if a.selector == nil {
		a.selector = selector.New(nil)
	}

	// Initialize router
	a.initRouter()
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", conf.Host, conf.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s:%d: %w", conf.Host, conf.Port, err)
	}
	a.listener = listener
	a.srv = &http.Server{
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infow("starting API server", "addr", listener.Addr().String())
		if err := a.srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Errorf("API server failed: %v", err)
		}
	}()
	return a, nil
}

// Addr returns the address the server listens on.
func (a *API) Addr() net.Addr {
	return a.listener.Addr()
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

// Close gracefully stops the HTTP server.
func (a *API) Close(ctx context.Context) error {
	if a.srv == nil {
		return nil
	}
	return a.srv.Shutdown(ctx)
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})
	log.Infow("register handler", "endpoint", SelectionsEndpoint, "method", "POST")
	a.router.Post(SelectionsEndpoint, a.newSelection)
	log.Infow("register handler", "endpoint", SelectionEndpoint, "method", "GET")
	a.router.Get(SelectionEndpoint, a.selection)
	log.Infow("register handler", "endpoint", DistributionsEndpoint, "method", "POST")
	a.router.Post(DistributionsEndpoint, a.setDistribution)
	log.Infow("register handler", "endpoint", DistributionsEndpoint, "method", "GET")
	a.router.Get(DistributionsEndpoint, a.listDistributions)
	log.Infow("register handler", "endpoint", DistributionEndpoint, "method", "GET")
	a.router.Get(DistributionEndpoint, a.distribution)
	log.Infow("register handler", "endpoint", MetricsEndpoint, "method", "GET")
	a.router.Handle(MetricsEndpoint, metricsHandler())
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	// Create the router with a basic middleware stack
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))

	// Register the API handlers
	a.registerHandlers()
}
