package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

const testRequest = `{
  "nativeNotes": [
    {"label": "1", "balance": "500000000000000000", "blockNumber": 10, "status": "APPROVED"},
    {"label": "2", "balance": "100000000000000000", "blockNumber": 20}
  ],
  "legacyNotes": [],
  "requestedAmount": "200000000000000000",
  "anonymityDistribution": {"100000000000000000": 50, "1000000000000000000": 20000},
  "currentBlock": 100
}`

type printedResult struct {
	Strategy string `json:"strategy"`
	Chosen   bool   `json:"isChosen"`
	Change   string `json:"change"`
}

func TestRunSelection(t *testing.T) {
	c := qt.New(t)

	seed := uint64(7)
	out := &bytes.Buffer{}
	c.Assert(runSelection(strings.NewReader(testRequest), out, &selectOptions{seed: &seed}), qt.IsNil)
	var results []printedResult
	c.Assert(json.Unmarshal(out.Bytes(), &results), qt.IsNil)
	c.Assert(len(results) > 0, qt.IsTrue)
	c.Assert(results[0].Chosen, qt.IsTrue)
	for _, r := range results[1:] {
		c.Assert(r.Chosen, qt.IsFalse)
	}

	// same seed, same ranking
	again := &bytes.Buffer{}
	c.Assert(runSelection(strings.NewReader(testRequest), again, &selectOptions{seed: &seed}), qt.IsNil)
	c.Assert(again.String(), qt.Equals, out.String())

	// not enough funds
	poor := strings.Replace(testRequest, `"requestedAmount": "200000000000000000"`, `"requestedAmount": "9000000000000000000"`, 1)
	out.Reset()
	c.Assert(runSelection(strings.NewReader(poor), out, &selectOptions{}), qt.IsNil)
	c.Assert(strings.TrimSpace(out.String()), qt.Equals, "[]")
}

func TestRunSelectionErrors(t *testing.T) {
	c := qt.New(t)
	out := &bytes.Buffer{}

	err := runSelection(strings.NewReader(`{"foo": 1}`), out, &selectOptions{})
	c.Assert(err, qt.ErrorMatches, "decode request: .*")

	bad := strings.Replace(testRequest, `"100000000000000000": 50`, `"-1": 50`, 1)
	err = runSelection(strings.NewReader(bad), out, &selectOptions{})
	c.Assert(err, qt.ErrorMatches, "invalid anonymity distribution: .*")

	zero := strings.Replace(testRequest, `"requestedAmount": "200000000000000000"`, `"requestedAmount": "0"`, 1)
	err = runSelection(strings.NewReader(zero), out, &selectOptions{})
	c.Assert(err, qt.IsNotNil)
}

func TestSelectCommand(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "request.json")
	c.Assert(os.WriteFile(path, []byte(testRequest), 0o600), qt.IsNil)

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"select", "--loglevel", "error", "--input", path, "--seed", "1", "--block", "50"})
	defer rootCmd.SetArgs(nil)
	c.Assert(rootCmd.Execute(), qt.IsNil)

	var results []printedResult
	c.Assert(json.Unmarshal(out.Bytes(), &results), qt.IsNil)
	c.Assert(len(results) > 0, qt.IsTrue)
	c.Assert(results[0].Chosen, qt.IsTrue)
}
