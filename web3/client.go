// Package web3 provides the current block height of the chain where the
// privacy pool lives. The note selector only needs it to measure the age of
// the notes, so it is an optional collaborator: callers can also pass the
// block height explicitly.
//
// The Client keeps a list of endpoints for the same chain and switches to the
// next one when an endpoint fails, flagging it as unavailable. If every
// endpoint fails, the flags are reset and it starts again.
package web3

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/vocdoni/note-selector/log"
)

const (
	// DefaultMaxWeb3ClientRetries is the default number of retries to connect
	// to a web3 provider.
	DefaultMaxWeb3ClientRetries = 5
	// checkWeb3EndpointsTimeout is the timeout to check the web3 endpoints.
	checkWeb3EndpointsTimeout = time.Second * 10
)

// ErrNoEndpoints is returned when the client has no endpoint configured.
var ErrNoEndpoints = errors.New("no web3 endpoints")

// BlockSource returns the current block height.
type BlockSource interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

type endpoint struct {
	uri       string
	client    *ethclient.Client
	available bool
}

// Client is a BlockSource backed by one or more web3 endpoints of the same
// chain. It is safe for concurrent use.
type Client struct {
	chainID   uint64
	mu        sync.Mutex
	endpoints []*endpoint
	next      int
}

// New dials every uri provided and checks all of them serve the same chain.
func New(ctx context.Context, uris ...string) (*Client, error) {
	if len(uris) == 0 {
		return nil, ErrNoEndpoints
	}
	c := &Client{}
	for _, uri := range uris {
		if err := c.addEndpoint(ctx, uri); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

func (c *Client) addEndpoint(ctx context.Context, uri string) error {
	ctx, cancel := context.WithTimeout(ctx, checkWeb3EndpointsTimeout)
	defer cancel()
	client, err := connect(ctx, uri)
	if err != nil {
		return err
	}
	bChainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return fmt.Errorf("error getting the chainID from the web3 provider '%s': %w", uri, err)
	}
	chainID := bChainID.Uint64()
	if len(c.endpoints) > 0 && chainID != c.chainID {
		client.Close()
		return fmt.Errorf("web3 provider '%s' serves chain %d, expected %d", uri, chainID, c.chainID)
	}
	c.chainID = chainID
	c.endpoints = append(c.endpoints, &endpoint{uri: uri, client: client, available: true})
	log.Infow("web3 endpoint added", "chainID", chainID, "uri", uri)
	return nil
}

// ChainID returns the chain served by the endpoints.
func (c *Client) ChainID() uint64 {
	return c.chainID
}

// BlockNumber returns the most recent block height. Failing endpoints are
// skipped; an error is returned only if every endpoint fails.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var lastErr error
	for range len(c.endpoints) {
		ep, err := c.nextEndpoint()
		if err != nil {
			return 0, err
		}
		height, err := ep.client.BlockNumber(ctx)
		if err == nil {
			return height, nil
		}
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		log.Warnw("web3 endpoint failed", "uri", ep.uri, "error", err)
		c.disable(ep)
		lastErr = err
	}
	return 0, fmt.Errorf("every web3 endpoint failed: %w", lastErr)
}

// nextEndpoint returns the next available endpoint in round robin order. If
// none is available, every endpoint is flagged as available again.
func (c *Client) nextEndpoint() (*endpoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.endpoints) == 0 {
		return nil, ErrNoEndpoints
	}
	for range 2 {
		for range len(c.endpoints) {
			ep := c.endpoints[c.next]
			c.next = (c.next + 1) % len(c.endpoints)
			if ep.available {
				return ep, nil
			}
		}
		for _, ep := range c.endpoints {
			ep.available = true
		}
	}
	return nil, ErrNoEndpoints
}

func (c *Client) disable(ep *endpoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ep.available = false
}

// Close closes every endpoint connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ep := range c.endpoints {
		ep.client.Close()
	}
	c.endpoints = nil
}

// connect dials the web3 provider, retrying up to DefaultMaxWeb3ClientRetries
// times.
func connect(ctx context.Context, uri string) (client *ethclient.Client, err error) {
	for i := 0; i < DefaultMaxWeb3ClientRetries; i++ {
		if client, err = ethclient.DialContext(ctx, uri); err != nil {
			continue
		}
		return
	}
	return nil, fmt.Errorf("error dialing web3 provider uri '%s': %w", uri, err)
}

// StaticBlockSource always returns the same block height.
type StaticBlockSource uint64

// BlockNumber implements BlockSource.
func (s StaticBlockSource) BlockNumber(context.Context) (uint64, error) {
	return uint64(s), nil
}
