package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vocdoni/note-selector/anonymity"
	"github.com/vocdoni/note-selector/api"
	"github.com/vocdoni/note-selector/log"
	"github.com/vocdoni/note-selector/storage"
	"gopkg.in/yaml.v3"
)

// DefaultDistributionInterval is the default time between two fetches of
// the anonymity distributions.
const DefaultDistributionInterval = 10 * time.Minute

// maxDistributionSize bounds the size of a fetched distribution document.
const maxDistributionSize = 32 << 20 // 32 MiB

// DistributionSource provides the anonymity distributions computed from the
// chain analytics.
type DistributionSource interface {
	Distributions(ctx context.Context) ([]*api.DistributionRequest, error)
}

// NewDistributionSource returns a source reading the document at location,
// an http(s) URL or a file path. The document is either a single
// distribution request or a list of them, in JSON or, for files with a
// .yaml or .yml extension, in YAML.
func NewDistributionSource(location string) DistributionSource {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return &httpDistributionSource{url: location, client: &http.Client{Timeout: 30 * time.Second}}
	}
	return fileDistributionSource(location)
}

type fileDistributionSource string

func (f fileDistributionSource) Distributions(context.Context) ([]*api.DistributionRequest, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, fmt.Errorf("read distributions: %w", err)
	}
	switch strings.ToLower(filepath.Ext(string(f))) {
	case ".yaml", ".yml":
		return parseYAMLDistributions(data)
	}
	return parseDistributions(data)
}

type httpDistributionSource struct {
	url    string
	client *http.Client
}

func (h *httpDistributionSource) Distributions(ctx context.Context) ([]*api.DistributionRequest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch distributions: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch distributions: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDistributionSize))
	if err != nil {
		return nil, fmt.Errorf("read distributions: %w", err)
	}
	return parseDistributions(data)
}

func parseDistributions(data []byte) ([]*api.DistributionRequest, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []*api.DistributionRequest
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("decode distributions: %w", err)
		}
		return list, nil
	}
	single := &api.DistributionRequest{}
	if err := json.Unmarshal(data, single); err != nil {
		return nil, fmt.Errorf("decode distribution: %w", err)
	}
	return []*api.DistributionRequest{single}, nil
}

func parseYAMLDistributions(data []byte) ([]*api.DistributionRequest, error) {
	node := yaml.Node{}
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("decode distributions: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		var list []*api.DistributionRequest
		if err := node.Decode(&list); err != nil {
			return nil, fmt.Errorf("decode distributions: %w", err)
		}
		return list, nil
	}
	single := &api.DistributionRequest{}
	if err := node.Decode(single); err != nil {
		return nil, fmt.Errorf("decode distribution: %w", err)
	}
	return []*api.DistributionRequest{single}, nil
}

// DistributionMonitor represents a service that periodically fetches the
// anonymity distributions and stores the ones that changed.
type DistributionMonitor struct {
	source   DistributionSource
	storage  *storage.Storage
	interval time.Duration
	mu       sync.Mutex
	cancel   context.CancelFunc
}

// NewDistributionMonitor creates a new DistributionMonitor service. A zero
// interval uses DefaultDistributionInterval.
func NewDistributionMonitor(source DistributionSource, stg *storage.Storage, interval time.Duration) *DistributionMonitor {
	if interval <= 0 {
		interval = DefaultDistributionInterval
	}
	return &DistributionMonitor{
		source:   source,
		storage:  stg,
		interval: interval,
	}
}

// Start fetches the distributions once and then every interval. It returns
// an error if the service is already running.
func (dm *DistributionMonitor) Start(ctx context.Context) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.cancel != nil {
		return fmt.Errorf("service already running")
	}
	ctx, dm.cancel = context.WithCancel(ctx)
	go dm.monitorDistributions(ctx)
	return nil
}

// Stop halts the monitoring service.
func (dm *DistributionMonitor) Stop() {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.cancel != nil {
		dm.cancel()
		dm.cancel = nil
	}
}

func (dm *DistributionMonitor) monitorDistributions(ctx context.Context) {
	ticker := time.NewTicker(dm.interval)
	defer ticker.Stop()
	for {
		if _, err := dm.Update(ctx); err != nil {
			log.Warnw("failed to update anonymity distributions", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Update fetches the distributions and stores the ones that are new or
// changed. It returns the number of distributions stored. Invalid entries
// are skipped.
func (dm *DistributionMonitor) Update(ctx context.Context) (int, error) {
	reqs, err := dm.source.Distributions(ctx)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, req := range reqs {
		if req == nil || len(req.Distribution) == 0 {
			log.Warnw("skipping empty anonymity distribution")
			continue
		}
		dist, err := anonymity.FromMap(req.Distribution)
		if err != nil {
			log.Warnw("skipping invalid anonymity distribution",
				"chainId", req.ChainID, "scope", req.Scope.String(), "error", err)
			continue
		}
		if current, err := dm.storage.Distribution(req.ChainID, req.Scope); err == nil &&
			maps.Equal(current.Map(), dist.Map()) {
			continue
		}
		if err := dm.storage.SetDistribution(req.ChainID, req.Scope, dist); err != nil {
			return updated, fmt.Errorf("store distribution: %w", err)
		}
		log.Infow("anonymity distribution updated",
			"chainId", req.ChainID, "scope", req.Scope.String(), "entries", dist.Len())
		updated++
	}
	return updated, nil
}
