package selector

import (
	"fmt"
	"maps"
)

// Weights maps every objective to its relative importance. Missing
// objectives weigh zero. Weights conventionally add up to 1.0, but it is not
// enforced.
type Weights map[Objective]float64

// DefaultWeights returns the standard weight distribution, privacy first.
func DefaultWeights() Weights {
	return Weights{
		ObjectiveSpendPatternAnonymity: 0.40,
		ObjectiveTemporalLinkability:   0.05,
		ObjectiveDerivationPriority:    0.04,
		ObjectiveGasProxy:              0.05,
		ObjectiveRandomNoise:           0.01,
		ObjectiveWalletHealth:          0.10,
		ObjectiveSpendAnonymityCost:    0.20,
		ObjectivePreserveHealthyNotes:  0.15,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	var sum float64
	for _, v := range w {
		sum += v
	}
	return sum
}

// Validate checks that every weight belongs to a known objective and none
// is negative.
func (w Weights) Validate() error {
	for obj, v := range w {
		if !obj.Known() {
			return fmt.Errorf("unknown objective %q", obj)
		}
		if v < 0 {
			return fmt.Errorf("negative weight for %s: %f", obj, v)
		}
	}
	return nil
}

// Clone returns a copy of the weights.
func (w Weights) Clone() Weights {
	return maps.Clone(w)
}
