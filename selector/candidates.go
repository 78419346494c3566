package selector

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/note-selector/log"
	"github.com/vocdoni/note-selector/types"
)

// Candidate is a named execution plan produced by one of the heuristics.
type Candidate struct {
	Name     string
	Strategy Strategy
	Plan     *Plan
}

// candidateSet collects candidates, dropping plans structurally equal to
// one already collected. The first name seen for a plan is kept.
type candidateSet struct {
	requested  *big.Int
	seen       map[string]struct{}
	candidates []*Candidate
}

func newCandidateSet(requested *big.Int) *candidateSet {
	return &candidateSet{
		requested: requested,
		seen:      make(map[string]struct{}),
	}
}

func (cs *candidateSet) add(name string, strategy Strategy, plan *Plan) {
	if plan == nil || plan.Len() == 0 {
		return
	}
	if !plan.Valid(cs.requested) {
		// heuristics only return exact plans, this would be a bug
		log.Warnw("discarding invalid plan", "strategy", name, "plan", plan.Key())
		return
	}
	key := plan.Key()
	if _, ok := cs.seen[key]; ok {
		log.Debugw("duplicated candidate", "strategy", name, "plan", key)
		return
	}
	cs.seen[key] = struct{}{}
	cs.candidates = append(cs.candidates, &Candidate{Name: name, Strategy: strategy, Plan: plan})
}

// Generate runs every enabled heuristic and returns the deduplicated list of
// candidates. Every returned plan spends exactly the requested amount. An
// empty result means the request cannot be satisfied by any heuristic.
func Generate(ctx *Context, requested *big.Int, cfg *Config) []*Candidate {
	cs := newCandidateSet(requested)
	if len(ctx.Notes) == 0 || requested.Sign() <= 0 {
		return cs.candidates
	}
	if cfg.Enabled(StrategyGreedyLarge) {
		cs.add(string(StrategyGreedyLarge), StrategyGreedyLarge, greedyLarge(ctx, requested))
	}
	if cfg.Enabled(StrategySanitizer) {
		for _, bite := range cfg.BiteSizes {
			name := fmt.Sprintf("%s-%seth", StrategySanitizer, types.FormatEther(bite))
			cs.add(name, StrategySanitizer, sanitizer(ctx, requested, bite, cfg.SanitizerPasses))
		}
	}
	if cfg.Enabled(StrategyDustAggregation) {
		cs.add(string(StrategyDustAggregation), StrategyDustAggregation, dustAggregation(ctx, requested))
	}
	if cfg.Enabled(StrategyAnchorSanitizer) && cfg.AnchorSize != nil {
		for _, note := range ctx.unhealthyNotes() {
			name := fmt.Sprintf("%s-%s", StrategyAnchorSanitizer, note.Key())
			cs.add(name, StrategyAnchorSanitizer, anchorSanitizer(ctx, requested, note, cfg.AnchorSize))
		}
	}
	return cs.candidates
}

// greedyLarge spends everything from the smallest note whose balance covers
// the requested amount.
func greedyLarge(ctx *Context, requested *big.Int) *Plan {
	for _, n := range sortedByBalance(ctx.Notes) {
		if n.Amount().Cmp(requested) >= 0 {
			plan := NewPlan()
			plan.Add(n, requested)
			return plan
		}
	}
	return nil
}

// sanitizer draws bites of at most biteSize from the unhealthy notes,
// cycling over them up to passes times, so the spent chunks are standard
// amounts. The plan is only returned if the bites add up to the requested
// amount.
func sanitizer(ctx *Context, requested, biteSize *big.Int, passes int) *Plan {
	if biteSize == nil || biteSize.Sign() <= 0 {
		return nil
	}
	unhealthy := ctx.unhealthyNotes()
	if len(unhealthy) == 0 {
		return nil
	}
	plan := NewPlan()
	remaining := new(big.Int).Set(requested)
	for pass := 0; pass < passes && remaining.Sign() > 0; pass++ {
		for _, n := range unhealthy {
			if remaining.Sign() == 0 {
				break
			}
			available := new(big.Int).Sub(n.Amount(), plan.Amount(n.Key()))
			if available.Sign() <= 0 {
				continue
			}
			bite := minInt(remaining, biteSize, available)
			plan.Add(n, bite)
			remaining.Sub(remaining, bite)
		}
	}
	if remaining.Sign() != 0 {
		return nil
	}
	return plan
}

// dustAggregation spends the smallest notes first, each up to its balance,
// until the requested amount is covered.
func dustAggregation(ctx *Context, requested *big.Int) *Plan {
	plan := NewPlan()
	remaining := new(big.Int).Set(requested)
	for _, n := range sortedByBalance(ctx.Notes) {
		if remaining.Sign() == 0 {
			break
		}
		chunk := minInt(remaining, n.Amount())
		plan.Add(n, chunk)
		remaining.Sub(remaining, chunk)
	}
	if remaining.Sign() != 0 {
		return nil
	}
	return plan
}

// anchorSanitizer takes exactly the anchor amount from the unhealthy note
// and fills the remainder from the healthy notes, smallest first.
func anchorSanitizer(ctx *Context, requested *big.Int, anchorNote *types.Note, anchor *big.Int) *Plan {
	if anchor.Sign() <= 0 || anchorNote.Amount().Cmp(anchor) < 0 || anchor.Cmp(requested) > 0 {
		return nil
	}
	plan := NewPlan()
	plan.Add(anchorNote, anchor)
	remaining := new(big.Int).Sub(requested, anchor)
	for _, n := range sortedByBalance(ctx.healthyNotes()) {
		if remaining.Sign() == 0 {
			break
		}
		if n.Key() == anchorNote.Key() {
			continue
		}
		chunk := minInt(remaining, n.Amount())
		plan.Add(n, chunk)
		remaining.Sub(remaining, chunk)
	}
	if remaining.Sign() != 0 {
		return nil
	}
	return plan
}

// minInt returns a copy of the smallest of the values provided.
func minInt(values ...*big.Int) *big.Int {
	m := values[0]
	for _, v := range values[1:] {
		if v.Cmp(m) < 0 {
			m = v
		}
	}
	return new(big.Int).Set(m)
}
