package service

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/vocdoni/note-selector/api"
	"github.com/vocdoni/note-selector/log"
	"github.com/vocdoni/note-selector/storage"
	"github.com/vocdoni/note-selector/web3"
)

// shutdownTimeout bounds the time the API server waits for in-flight
// requests when stopped.
const shutdownTimeout = 5 * time.Second

// APIService represents a service that manages the HTTP API server.
type APIService struct {
	storage *storage.Storage
	blocks  web3.BlockSource
	api     *api.API
	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
	host    string
	port    int
}

// NewAPI creates a new APIService instance. The block source is optional.
func NewAPI(storage *storage.Storage, blocks web3.BlockSource, host string, port int) *APIService {
	return &APIService{
		storage: storage,
		blocks:  blocks,
		host:    host,
		port:    port,
	}
}

// Start begins the API server. It returns an error if the service
// is already running or if it fails to start.
func (as *APIService) Start(ctx context.Context) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		return fmt.Errorf("service already running")
	}

	ctx, as.cancel = context.WithCancel(ctx)

	var err error
	as.api, err = api.New(&api.APIConfig{
		Host:    as.host,
		Port:    as.port,
		Storage: as.storage,
		Blocks:  as.blocks,
	})
	if err != nil {
		as.cancel()
		as.cancel = nil
		return fmt.Errorf("failed to start API server: %w", err)
	}

	// stop the server once the context is done, by Stop or by the caller
	as.stopped = make(chan struct{})
	go func(a *api.API, stopped chan struct{}) {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Close(shutdownCtx); err != nil {
			log.Warnw("failed to stop API server", "error", err)
		}
	}(as.api, as.stopped)
	return nil
}

// Stop halts the API server and waits for it to shut down. The storage is
// owned by the caller and left open.
func (as *APIService) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		as.cancel()
		as.cancel = nil
		<-as.stopped
	}
}

// HostPort returns the host and port of the API server. Once started, the
// port is the one actually listened on, which matters when it was 0.
func (as *APIService) HostPort() (string, int) {
	as.mu.Lock()
	defer as.mu.Unlock()
	if as.api != nil && as.cancel != nil {
		if addr, ok := as.api.Addr().(*net.TCPAddr); ok {
			return as.host, addr.Port
		}
	}
	return as.host, as.port
}
