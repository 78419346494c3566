package selector

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestNormalize(t *testing.T) {
	c := qt.New(t)
	results := []*Result{
		{Scores: map[Objective]float64{ObjectiveGasProxy: 1, ObjectiveWalletHealth: 4, ObjectiveRandomNoise: 0.5}},
		{Scores: map[Objective]float64{ObjectiveGasProxy: 3, ObjectiveWalletHealth: 4, ObjectiveRandomNoise: 0.25}},
		{Scores: map[Objective]float64{ObjectiveGasProxy: 2, ObjectiveWalletHealth: 4, ObjectiveRandomNoise: 0.75}},
	}
	bounds := Normalize(results)
	c.Assert(bounds[ObjectiveGasProxy], qt.Equals, Bounds{Min: 1, Max: 3})
	c.Assert(bounds[ObjectiveWalletHealth], qt.Equals, Bounds{Min: 4, Max: 4})

	weights := Weights{ObjectiveGasProxy: 0.5, ObjectiveWalletHealth: 0.5}
	for _, r := range results {
		r.applyWeights(bounds, weights)
		for obj, v := range r.Normalized {
			c.Assert(v >= 0 && v <= 1, qt.IsTrue, qt.Commentf("%s: %f", obj, v))
		}
		// objectives that do not discriminate normalize to zero
		c.Assert(r.Normalized[ObjectiveWalletHealth], qt.Equals, 0.0)
	}
	c.Assert(results[0].Normalized[ObjectiveGasProxy], qt.Equals, 0.0)
	c.Assert(results[1].Normalized[ObjectiveGasProxy], qt.Equals, 1.0)
	c.Assert(results[2].Normalized[ObjectiveGasProxy], qt.Equals, 0.5)
	c.Assert(results[2].Normalized[ObjectiveRandomNoise], qt.Equals, 1.0)

	// random noise weighs zero here
	c.Assert(results[0].PrivacyScore, qt.Equals, 0.0)
	c.Assert(results[1].PrivacyScore, qt.Equals, 0.5)
	c.Assert(results[2].PrivacyScore, qt.Equals, 0.25)
}

func TestNormalizeSingleResult(t *testing.T) {
	c := qt.New(t)
	r := &Result{Scores: map[Objective]float64{ObjectiveGasProxy: 7, ObjectiveSpendAnonymityCost: 120}}
	r.applyWeights(Normalize([]*Result{r}), DefaultWeights())
	c.Assert(r.Normalized[ObjectiveGasProxy], qt.Equals, 0.0)
	c.Assert(r.Normalized[ObjectiveSpendAnonymityCost], qt.Equals, 0.0)
	c.Assert(r.PrivacyScore, qt.Equals, 0.0)

	c.Assert(Normalize(nil), qt.HasLen, 0)
}
