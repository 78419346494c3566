package tests

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/arbo/memdb"
	"github.com/vocdoni/note-selector/api"
	"github.com/vocdoni/note-selector/api/client"
	"github.com/vocdoni/note-selector/log"
	"github.com/vocdoni/note-selector/service"
	"github.com/vocdoni/note-selector/storage"
	"github.com/vocdoni/note-selector/types"
	"github.com/vocdoni/note-selector/web3"
)

const (
	testChainID = 11155111
	// testWeb3Env points the tests to a real web3 endpoint instead of a
	// static block height.
	testWeb3Env = "NOTESELECTOR_TEST_WEB3"
	testBlock   = 7_000_000
)

var testScope = types.NewInt(42)

// testDistributions is the document served by the analytics source, with
// the 0.1 ETH set size below the unhealthy threshold of the 1 ETH one.
var testDistributions = fmt.Sprintf(`[{"chainId": %d, "scope": "42", "distribution": {
  "10000000000000000": 3,
  "100000000000000000": 40,
  "500000000000000000": 900,
  "1000000000000000000": 25000
}}]`, testChainID)

// testBlockSource returns the web3 client for the endpoint in testWeb3Env, or
// a static block height.
func testBlockSource(t *testing.T, ctx context.Context) web3.BlockSource {
	uri := os.Getenv(testWeb3Env)
	if uri == "" {
		return web3.StaticBlockSource(testBlock)
	}
	cli, err := web3.New(ctx, uri)
	qt.Assert(t, err, qt.IsNil)
	t.Cleanup(cli.Close)
	return cli
}

// NewTestService starts the API and the distribution monitor over an
// in-memory database and returns a client for the API.
func NewTestService(t *testing.T, ctx context.Context) (*client.HTTPclient, *storage.Storage) {
	stg := storage.New(memdb.New())
	t.Cleanup(stg.Close)

	path := filepath.Join(t.TempDir(), "distributions.json")
	qt.Assert(t, os.WriteFile(path, []byte(testDistributions), 0o600), qt.IsNil)
	dm := service.NewDistributionMonitor(service.NewDistributionSource(path), stg, time.Second)
	qt.Assert(t, dm.Start(ctx), qt.IsNil)
	t.Cleanup(dm.Stop)

	apiSrv := service.NewAPI(stg, testBlockSource(t, ctx), "127.0.0.1", 0)
	qt.Assert(t, apiSrv.Start(ctx), qt.IsNil)
	t.Cleanup(apiSrv.Stop)

	host, port := apiSrv.HostPort()
	cli, err := client.New(fmt.Sprintf("http://%s:%d", host, port))
	qt.Assert(t, err, qt.IsNil)

	// wait for the first import of the distributions
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := stg.Distribution(testChainID, testScope); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("anonymity distribution not imported")
		}
		time.Sleep(20 * time.Millisecond)
	}
	log.Infow("test service ready", "host", host, "port", port)
	return cli, stg
}

func testNote(label int64, wei string, block uint64) *types.Note {
	return &types.Note{
		Label:       types.NewInt(label),
		Balance:     toBigInt(wei),
		BlockNumber: block,
		Status:      types.StatusApproved,
	}
}

func testRequest(amount string, notes ...*types.Note) *api.SelectionRequest {
	return &api.SelectionRequest{
		NativeNotes:     notes,
		RequestedAmount: toBigInt(amount),
		ChainID:         testChainID,
		Scope:           testScope,
	}
}

// toBigInt parses a decimal amount in wei.
func toBigInt(s string) *types.BigInt {
	bi := new(types.BigInt)
	if err := bi.UnmarshalText([]byte(s)); err != nil {
		panic(err)
	}
	return bi
}
