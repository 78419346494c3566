// Package selector chooses which shielded pool notes to spend, and how much
// from each one, to withdraw a requested amount.
//
// A selection runs four heuristics to generate candidate execution plans,
// scores every candidate against eight objectives (privacy first, cost
// second), normalizes the scores across candidates and ranks them by their
// weighted privacy score, lower is better. Finding the optimal plan is not
// feasible in general, so the result is the best of the candidates found.
//
// All amounts are handled as exact integers (wei). The selection performs
// no I/O and never modifies the notes provided by the caller, so it is safe
// to run concurrently.
package selector

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/vocdoni/note-selector/anonymity"
	"github.com/vocdoni/note-selector/log"
	"github.com/vocdoni/note-selector/types"
)

var (
	// ErrInvalidAmount is returned when the requested amount is missing or
	// not positive.
	ErrInvalidAmount = errors.New("requested amount must be positive")
	// ErrInvalidNote is returned when a note of the working set has no label,
	// a non-positive balance or a duplicated label.
	ErrInvalidNote = errors.New("invalid note")
	// ErrInvalidWeights is returned for negative or unknown weights.
	ErrInvalidWeights = errors.New("invalid weights")
)

// Request is the input of a selection.
type Request struct {
	// NativeNotes are derived from the account app secret, LegacyNotes from
	// the legacy mnemonic. Notes are tagged accordingly on copies.
	NativeNotes     []*types.Note
	LegacyNotes     []*types.Note
	RequestedAmount *big.Int
	Distribution    *anonymity.Distribution
	CurrentBlock    uint64
	// Weights overrides the default weights. Objectives missing from a
	// non-nil override weigh zero.
	Weights Weights
	// Percentiles used to compute the thresholds. Zero means default.
	UnhealthyPercentile float64
	HealthyPercentile   float64
	// Random feeds the random noise objective. Nil uses a fresh source
	// seeded from crypto/rand.
	Random RandomSource
}

// Result is a scored candidate. Results are read-only once returned.
type Result struct {
	// Strategy is the candidate name, Heuristic the strategy that built it.
	Strategy     string                `json:"strategy"`
	Heuristic    Strategy              `json:"heuristic"`
	Plan         *Plan                 `json:"plan"`
	Scores       map[Objective]float64 `json:"scores"`
	Normalized   map[Objective]float64 `json:"normalizedScores"`
	PrivacyScore float64               `json:"privacyScore"`
	TotalSpent   *types.BigInt         `json:"totalSpent"`
	TotalInput   *types.BigInt         `json:"totalInput"`
	Change       *types.BigInt         `json:"change"`
	Breakdown    []*NoteBreakdown      `json:"breakdown"`
	Chosen       bool                  `json:"isChosen"`
}

// NoteBreakdown describes, in a human readable way, how a note is used by a
// plan.
type NoteBreakdown struct {
	Label        *types.BigInt          `json:"label"`
	Derivation   types.DerivationMethod `json:"derivation"`
	Balance      string                 `json:"balance"`
	Spent        string                 `json:"spent"`
	Remaining    string                 `json:"remaining"`
	AnonymitySet uint64                 `json:"anonymitySet"`
	Healthy      bool                   `json:"healthy"`
}

// Selector runs selections with a fixed configuration.
type Selector struct {
	cfg *Config
}

// New returns a selector. A nil config uses DefaultConfig.
func New(cfg *Config) *Selector {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Selector{cfg: cfg}
}

// Select runs a selection with the default configuration.
func Select(req *Request) ([]*Result, error) {
	return New(nil).Select(req)
}

// Select returns every candidate found, sorted by ascending privacy score.
// The first one is flagged as chosen. An empty list means the requested
// amount cannot be withdrawn from the notes provided; it is not an error.
// Errors are only returned for malformed input.
func (s *Selector) Select(req *Request) ([]*Result, error) {
	ctx, err := s.NewContext(req)
	if err != nil {
		return nil, err
	}
	rnd := req.Random
	if rnd == nil {
		rnd = NewRandomSource()
	}

	candidates := Generate(ctx, req.RequestedAmount, s.cfg)
	log.Debugw("candidates generated",
		"notes", len(ctx.Notes),
		"requested", req.RequestedAmount.String(),
		"candidates", len(candidates),
		"unhealthyThreshold", ctx.Thresholds.Unhealthy,
		"healthyThreshold", ctx.Thresholds.Healthy,
	)
	results := make([]*Result, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, newResult(ctx, c, req.RequestedAmount, rnd))
	}
	if len(results) == 0 {
		return results, nil
	}

	bounds := Normalize(results)
	for _, r := range results {
		r.applyWeights(bounds, ctx.Weights)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].PrivacyScore < results[j].PrivacyScore
	})
	results[0].Chosen = true
	log.Debugw("note selection done",
		"chosen", results[0].Strategy,
		"privacyScore", results[0].PrivacyScore,
		"notes", results[0].Plan.Len(),
	)
	return results, nil
}

// NewContext validates the request and builds the selection context: the
// tagged working set, the weights and the thresholds.
func (s *Selector) NewContext(req *Request) (*Context, error) {
	if req == nil || req.RequestedAmount == nil || req.RequestedAmount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	weights := DefaultWeights()
	if req.Weights != nil {
		if err := req.Weights.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidWeights, err)
		}
		weights = req.Weights.Clone()
	}
	notes, err := workingSet(req.NativeNotes, req.LegacyNotes)
	if err != nil {
		return nil, err
	}
	unhealthyPct, healthyPct := req.UnhealthyPercentile, req.HealthyPercentile
	if unhealthyPct == 0 {
		unhealthyPct = anonymity.DefaultUnhealthyPercentile
	}
	if healthyPct == 0 {
		healthyPct = anonymity.DefaultHealthyPercentile
	}
	return &Context{
		Notes:           notes,
		Distribution:    req.Distribution,
		CurrentBlock:    req.CurrentBlock,
		Weights:         weights,
		PenaltyExponent: s.cfg.PenaltyExponent,
		MaxAnonymitySet: s.cfg.MaxAnonymitySet,
		Thresholds:      anonymity.ComputeThresholds(req.Distribution, unhealthyPct, healthyPct),
	}, nil
}

// workingSet tags copies of the notes with their derivation method and
// drops the ones that cannot be spent. The caller notes are not modified.
func workingSet(native, legacy []*types.Note) ([]*types.Note, error) {
	notes := make([]*types.Note, 0, len(native)+len(legacy))
	labels := make(map[string]struct{}, len(native)+len(legacy))
	add := func(n *types.Note, d types.DerivationMethod) error {
		if n == nil || n.Label == nil {
			return fmt.Errorf("%w: missing label", ErrInvalidNote)
		}
		if !n.Status.Eligible() {
			log.Debugw("skipping note", "label", n.Key(), "status", n.Status)
			return nil
		}
		if n.Balance.Sign() <= 0 {
			return fmt.Errorf("%w: note %s has a non-positive balance", ErrInvalidNote, n.Key())
		}
		if _, ok := labels[n.Key()]; ok {
			return fmt.Errorf("%w: duplicated label %s", ErrInvalidNote, n.Key())
		}
		labels[n.Key()] = struct{}{}
		notes = append(notes, n.WithDerivation(d))
		return nil
	}
	for _, n := range native {
		if err := add(n, types.DerivationNative); err != nil {
			return nil, err
		}
	}
	for _, n := range legacy {
		if err := add(n, types.DerivationLegacy); err != nil {
			return nil, err
		}
	}
	return notes, nil
}

func newResult(ctx *Context, c *Candidate, requested *big.Int, rnd RandomSource) *Result {
	spent := c.Plan.Total()
	input := c.Plan.TotalInput()
	r := &Result{
		Strategy:   c.Name,
		Heuristic:  c.Strategy,
		Plan:       c.Plan,
		Scores:     Score(ctx, c.Plan, requested, rnd),
		TotalSpent: types.FromBig(spent),
		TotalInput: types.FromBig(input),
		Change:     types.FromBig(new(big.Int).Sub(input, spent)),
	}
	for _, a := range c.Plan.allocations {
		r.Breakdown = append(r.Breakdown, &NoteBreakdown{
			Label:        a.Note.Label,
			Derivation:   a.Note.Derivation,
			Balance:      types.FormatEther(a.Note.Amount()),
			Spent:        types.FormatEther(a.Amount),
			Remaining:    types.FormatEther(new(big.Int).Sub(a.Note.Amount(), a.Amount)),
			AnonymitySet: ctx.AnonymitySetSize(a.Amount),
			Healthy:      ctx.Healthy(a.Note),
		})
	}
	return r
}
