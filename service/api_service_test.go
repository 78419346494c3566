package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/arbo/memdb"
	"github.com/vocdoni/note-selector/api"
	"github.com/vocdoni/note-selector/storage"
	"github.com/vocdoni/note-selector/web3"
)

func TestAPIService(t *testing.T) {
	c := qt.New(t)

	// Setup storage
	store := storage.New(memdb.New())
	defer store.Close()

	// Port 0 lets the OS choose an available port
	apiService := NewAPI(store, web3.StaticBlockSource(1), "127.0.0.1", 0)

	ctx := context.Background()
	err := apiService.Start(ctx)
	c.Assert(err, qt.IsNil)
	defer apiService.Stop()

	host, port := apiService.HostPort()
	c.Assert(port, qt.Not(qt.Equals), 0)
	resp, err := http.Get(fmt.Sprintf("http://%s:%d%s", host, port, api.PingEndpoint))
	c.Assert(err, qt.IsNil)
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
	resp.Body.Close()

	// Test stopping and restarting
	apiService.Stop()
	_, err = http.Get(fmt.Sprintf("http://%s:%d%s", host, port, api.PingEndpoint))
	c.Assert(err, qt.IsNotNil)
	err = apiService.Start(ctx)
	c.Assert(err, qt.IsNil)

	// Test starting an already running service
	err = apiService.Start(ctx)
	c.Assert(err, qt.ErrorMatches, "service already running")
}

func TestAPIServiceParentContext(t *testing.T) {
	c := qt.New(t)
	store := storage.New(memdb.New())
	defer store.Close()

	apiService := NewAPI(store, nil, "127.0.0.1", 0)
	ctx, cancel := context.WithCancel(context.Background())
	c.Assert(apiService.Start(ctx), qt.IsNil)
	cancel()
	// stopping after the parent context is done does not block
	apiService.Stop()
	c.Assert(apiService.Start(context.Background()), qt.IsNil)
	apiService.Stop()
}
