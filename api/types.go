package api

import (
	"github.com/google/uuid"
	"github.com/vocdoni/note-selector/anonymity"
	"github.com/vocdoni/note-selector/selector"
	"github.com/vocdoni/note-selector/types"
)

// SelectionRequest is the body of a new selection. Amounts are in wei.
//
// The anonymity distribution can be provided inline; otherwise the one
// stored for ChainID and Scope is used. If CurrentBlock is missing, the
// server asks its web3 endpoints.
type SelectionRequest struct {
	NativeNotes           []*types.Note     `json:"nativeNotes"`
	LegacyNotes           []*types.Note     `json:"legacyNotes"`
	RequestedAmount       *types.BigInt     `json:"requestedAmount"`
	AnonymityDistribution map[string]uint64 `json:"anonymityDistribution,omitempty"`
	ChainID               uint64            `json:"chainId,omitempty"`
	Scope                 *types.BigInt     `json:"scope,omitempty"`
	CurrentBlock          *uint64           `json:"currentBlock,omitempty"`
	Weights               selector.Weights  `json:"weights,omitempty"`
	UnhealthyPercentile   float64           `json:"unhealthyPercentile,omitempty"`
	HealthyPercentile     float64           `json:"healthyPercentile,omitempty"`
	// Seed makes the random noise objective reproducible.
	Seed *uint64 `json:"seed,omitempty"`
}

// SelectionResponse lists the scored candidates, best first. An empty list
// means the wallet cannot cover the requested amount.
type SelectionResponse struct {
	ID           uuid.UUID            `json:"id"`
	CurrentBlock uint64               `json:"currentBlock"`
	Thresholds   anonymity.Thresholds `json:"thresholds"`
	Results      []*selector.Result   `json:"results"`
}

// DistributionRequest stores the anonymity distribution of a pool, a map of
// decimal amounts in wei to anonymity set sizes.
type DistributionRequest struct {
	ChainID      uint64            `json:"chainId"      yaml:"chainId"`
	Scope        *types.BigInt     `json:"scope"        yaml:"scope"`
	Distribution map[string]uint64 `json:"distribution" yaml:"distribution"`
}

// DistributionResponse is the stored anonymity distribution of a pool with
// the thresholds it yields with the default percentiles.
type DistributionResponse struct {
	ChainID      uint64               `json:"chainId"`
	Scope        *types.BigInt        `json:"scope"`
	Distribution map[string]uint64    `json:"distribution"`
	Thresholds   anonymity.Thresholds `json:"thresholds"`
	UpdatedAt    int64                `json:"updatedAt,omitempty"`
}

// DistributionList is the list of stored distributions.
type DistributionList struct {
	Distributions []*DistributionResponse `json:"distributions"`
}

// SelectorRequest builds the engine request with the distribution and block
// height resolved by the caller.
func (r *SelectionRequest) SelectorRequest(dist *anonymity.Distribution, currentBlock uint64) *selector.Request {
	req := &selector.Request{
		NativeNotes:         r.NativeNotes,
		LegacyNotes:         r.LegacyNotes,
		RequestedAmount:     r.RequestedAmount.MathBigInt(),
		Distribution:        dist,
		CurrentBlock:        currentBlock,
		Weights:             r.Weights,
		UnhealthyPercentile: r.UnhealthyPercentile,
		HealthyPercentile:   r.HealthyPercentile,
	}
	if r.Seed != nil {
		req.Random = selector.NewSeededRandomSource(*r.Seed)
	}
	return req
}
