package selector

// normalizationEpsilon is the minimum spread between the best and worst raw
// score of an objective for it to discriminate candidates.
const normalizationEpsilon = 1e-9

// Bounds are the minimum and maximum raw scores of an objective across the
// candidates.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Normalize returns the raw score bounds of every objective present in any
// of the results.
func Normalize(results []*Result) map[Objective]Bounds {
	bounds := make(map[Objective]Bounds)
	for _, r := range results {
		for obj, v := range r.Scores {
			b, ok := bounds[obj]
			if !ok {
				bounds[obj] = Bounds{Min: v, Max: v}
				continue
			}
			b.Min = min(b.Min, v)
			b.Max = max(b.Max, v)
			bounds[obj] = b
		}
	}
	return bounds
}

// normalize maps the raw value into [0, 1] within the bounds. Objectives
// that do not discriminate candidates normalize to 0.
func (b Bounds) normalize(v float64) float64 {
	spread := b.Max - b.Min
	if spread <= normalizationEpsilon {
		return 0
	}
	return (v - b.Min) / spread
}

// applyWeights fills the normalized scores of the result and computes its
// privacy score, the weighted sum of them.
func (r *Result) applyWeights(bounds map[Objective]Bounds, weights Weights) {
	r.Normalized = make(map[Objective]float64, len(r.Scores))
	r.PrivacyScore = 0
	for obj, v := range r.Scores {
		n := bounds[obj].normalize(v)
		r.Normalized[obj] = n
		r.PrivacyScore += n * weights[obj]
	}
}
