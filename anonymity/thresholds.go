package anonymity

import "math"

const (
	// DefaultUnhealthyPercentile is the percentile of the anonymity set
	// sizes below which a note is considered unhealthy.
	DefaultUnhealthyPercentile = 0.6
	// DefaultHealthyPercentile is the percentile of the anonymity set sizes
	// from which a note is considered healthy.
	DefaultHealthyPercentile = 0.8

	// FallbackUnhealthy and FallbackHealthy are used when there is no
	// distribution to compute the thresholds from.
	FallbackUnhealthy = 500
	FallbackHealthy   = 10000
)

// Thresholds are the anonymity set sizes that classify notes. A note whose
// balance maps to less than Unhealthy deposits is unhealthy; a note whose
// balance maps to Healthy deposits or more is healthy.
type Thresholds struct {
	Unhealthy uint64 `json:"unhealthy"`
	Healthy   uint64 `json:"healthy"`
}

// ComputeThresholds sorts every anonymity set size of the distribution and
// picks the values at the unhealthy and healthy percentiles. Percentiles
// are clamped to [0, 1].
func ComputeThresholds(d *Distribution, unhealthyPct, healthyPct float64) Thresholds {
	sizes := d.Sizes()
	if len(sizes) == 0 {
		return Thresholds{Unhealthy: FallbackUnhealthy, Healthy: FallbackHealthy}
	}
	return Thresholds{
		Unhealthy: sizes[percentileIndex(len(sizes), unhealthyPct)],
		Healthy:   sizes[percentileIndex(len(sizes), healthyPct)],
	}
}

func percentileIndex(n int, pct float64) int {
	if math.IsNaN(pct) || pct < 0 {
		pct = 0
	}
	idx := int(math.Floor(float64(n) * pct))
	if idx >= n {
		idx = n - 1
	}
	return idx
}
