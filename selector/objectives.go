package selector

import (
	"math/big"
	"slices"

	"github.com/vocdoni/note-selector/types"
)

// Objective names one of the functions candidates are scored with. Every
// objective is minimized: a lower raw score is better.
type Objective string

const (
	// ObjectiveSpendPatternAnonymity penalizes the least anonymous chunk.
	ObjectiveSpendPatternAnonymity Objective = "spend_pattern_anonymity"
	// ObjectiveTemporalLinkability penalizes spending recent notes.
	ObjectiveTemporalLinkability Objective = "temporal_linkability"
	// ObjectiveDerivationPriority counts the legacy-mnemonic notes spent.
	ObjectiveDerivationPriority Objective = "derivation_priority"
	// ObjectiveGasProxy counts the withdrawals needed.
	ObjectiveGasProxy Objective = "gas_proxy"
	// ObjectiveRandomNoise breaks ties randomly.
	ObjectiveRandomNoise Objective = "random_noise"
	// ObjectiveWalletHealth penalizes change notes that are easy to spot.
	ObjectiveWalletHealth Objective = "wallet_health"
	// ObjectiveSpendAnonymityCost adds up the penalty of every chunk.
	ObjectiveSpendAnonymityCost Objective = "spend_anonymity_cost"
	// ObjectivePreserveHealthyNotes counts healthy notes touched by the plan.
	ObjectivePreserveHealthyNotes Objective = "preserve_healthy_notes"
)

// Objectives lists every objective in the order they are reported.
var Objectives = []Objective{
	ObjectiveSpendPatternAnonymity,
	ObjectiveTemporalLinkability,
	ObjectiveDerivationPriority,
	ObjectiveGasProxy,
	ObjectiveRandomNoise,
	ObjectiveWalletHealth,
	ObjectiveSpendAnonymityCost,
	ObjectivePreserveHealthyNotes,
}

// Known returns true if the objective is one of the scored ones.
func (o Objective) Known() bool {
	return slices.Contains(Objectives, o)
}

// ObjectiveFunc computes the raw score of a plan for one objective.
type ObjectiveFunc func(ctx *Context, plan *Plan, requested *big.Int, rnd RandomSource) float64

var objectiveFuncs = map[Objective]ObjectiveFunc{
	ObjectiveSpendPatternAnonymity: spendPatternAnonymity,
	ObjectiveTemporalLinkability:   temporalLinkability,
	ObjectiveDerivationPriority:    derivationPriority,
	ObjectiveGasProxy:              gasProxy,
	ObjectiveRandomNoise:           randomNoise,
	ObjectiveWalletHealth:          walletHealth,
	ObjectiveSpendAnonymityCost:    spendAnonymityCost,
	ObjectivePreserveHealthyNotes:  preserveHealthyNotes,
}

// Score evaluates the plan against every objective.
func Score(ctx *Context, plan *Plan, requested *big.Int, rnd RandomSource) map[Objective]float64 {
	scores := make(map[Objective]float64, len(Objectives))
	for _, obj := range Objectives {
		scores[obj] = objectiveFuncs[obj](ctx, plan, requested, rnd)
	}
	return scores
}

// spendPatternAnonymity is the penalty of the chunk with the smallest
// anonymity set: a single identifiable chunk links the whole withdrawal.
func spendPatternAnonymity(ctx *Context, plan *Plan, _ *big.Int, _ RandomSource) float64 {
	var (
		minAnon uint64
		found   bool
	)
	for _, a := range plan.allocations {
		if a.Amount.Sign() == 0 {
			continue
		}
		anon := ctx.AnonymitySetSize(a.Amount)
		if !found || anon < minAnon {
			minAnon, found = anon, true
		}
	}
	if !found {
		return 0
	}
	return ctx.penalty(minAnon)
}

// temporalLinkability is higher when the oldest spent note is recent. An
// empty plan scores 1.
func temporalLinkability(ctx *Context, plan *Plan, _ *big.Int, _ RandomSource) float64 {
	if plan.Len() == 0 {
		return 1
	}
	oldest := plan.allocations[0].Note.BlockNumber
	for _, a := range plan.allocations[1:] {
		oldest = min(oldest, a.Note.BlockNumber)
	}
	var age uint64
	if ctx.CurrentBlock > oldest {
		age = ctx.CurrentBlock - oldest
	}
	return 1 / float64(age+1)
}

// derivationPriority counts the legacy notes spent.
func derivationPriority(_ *Context, plan *Plan, _ *big.Int, _ RandomSource) float64 {
	var count int
	for _, a := range plan.allocations {
		if a.Note.Derivation == types.DerivationLegacy {
			count++
		}
	}
	return float64(count)
}

// gasProxy counts the distinct notes spent, one withdrawal each.
func gasProxy(_ *Context, plan *Plan, _ *big.Int, _ RandomSource) float64 {
	return float64(plan.Len())
}

// randomNoise draws a fresh number in [0, 1) on every call.
func randomNoise(_ *Context, _ *Plan, _ *big.Int, rnd RandomSource) float64 {
	return rnd.Float64()
}

// walletHealth is the penalty of the change left behind by the plan. No
// change means no penalty.
func walletHealth(ctx *Context, plan *Plan, requested *big.Int, _ RandomSource) float64 {
	change := new(big.Int).Sub(plan.TotalInput(), requested)
	if change.Sign() <= 0 {
		return 0
	}
	return ctx.penalty(ctx.AnonymitySetSize(change))
}

// spendAnonymityCost adds up the penalty of every non-zero chunk.
func spendAnonymityCost(ctx *Context, plan *Plan, _ *big.Int, _ RandomSource) float64 {
	var cost float64
	for _, a := range plan.allocations {
		if a.Amount.Sign() == 0 {
			continue
		}
		cost += ctx.penalty(ctx.AnonymitySetSize(a.Amount))
	}
	return cost
}

// preserveHealthyNotes counts the healthy notes touched by the plan.
func preserveHealthyNotes(ctx *Context, plan *Plan, _ *big.Int, _ RandomSource) float64 {
	var count int
	for _, a := range plan.allocations {
		if ctx.Healthy(a.Note) {
			count++
		}
	}
	return float64(count)
}
