package selector

import (
	"math"
	"math/big"
	"slices"

	"github.com/vocdoni/note-selector/anonymity"
	"github.com/vocdoni/note-selector/types"
)

// Context bundles everything a selection needs. It is built once per call
// and never modified afterwards, so it can be shared by every candidate
// generator and objective function.
type Context struct {
	Notes           []*types.Note
	Distribution    *anonymity.Distribution
	CurrentBlock    uint64
	Weights         Weights
	PenaltyExponent float64
	MaxAnonymitySet uint64
	Thresholds      anonymity.Thresholds
}

// AnonymitySetSize returns the number of deposits the amount hides in.
func (ctx *Context) AnonymitySetSize(amount *big.Int) uint64 {
	return anonymity.SetSize(ctx.Distribution, amount, ctx.MaxAnonymitySet)
}

// penalty grows as the anonymity set shrinks: it is zero for the maximum
// anonymity set and (ln(max))^exp for an anonymity set of a single deposit.
func (ctx *Context) penalty(setSize uint64) float64 {
	d := math.Log(float64(ctx.MaxAnonymitySet)) - math.Log(float64(max(1, setSize)))
	return math.Pow(d, ctx.PenaltyExponent)
}

// Unhealthy returns true if the note balance hides in fewer deposits than
// the unhealthy threshold.
func (ctx *Context) Unhealthy(n *types.Note) bool {
	return ctx.AnonymitySetSize(n.Amount()) < ctx.Thresholds.Unhealthy
}

// Healthy returns true if the note balance hides in at least as many
// deposits as the healthy threshold.
func (ctx *Context) Healthy(n *types.Note) bool {
	return ctx.AnonymitySetSize(n.Amount()) >= ctx.Thresholds.Healthy
}

func (ctx *Context) unhealthyNotes() []*types.Note {
	var notes []*types.Note
	for _, n := range ctx.Notes {
		if ctx.Unhealthy(n) {
			notes = append(notes, n)
		}
	}
	return notes
}

func (ctx *Context) healthyNotes() []*types.Note {
	var notes []*types.Note
	for _, n := range ctx.Notes {
		if ctx.Healthy(n) {
			notes = append(notes, n)
		}
	}
	return notes
}

// sortedByBalance returns a copy of the notes sorted by ascending balance.
// Notes with the same balance keep their wallet order.
func sortedByBalance(notes []*types.Note) []*types.Note {
	sorted := slices.Clone(notes)
	slices.SortStableFunc(sorted, func(a, b *types.Note) int {
		return a.Amount().Cmp(b.Amount())
	})
	return sorted
}
