package selector

import (
	"math/big"
	"slices"

	"github.com/vocdoni/note-selector/types"
)

// Strategy is the name of a candidate generation heuristic.
type Strategy string

const (
	// StrategyGreedyLarge spends the requested amount from the smallest note
	// that covers it alone.
	StrategyGreedyLarge Strategy = "greedy-large"
	// StrategySanitizer spends fixed-size bites from unhealthy notes only.
	StrategySanitizer Strategy = "sanitizer"
	// StrategyDustAggregation spends the smallest notes first.
	StrategyDustAggregation Strategy = "dust-aggregation"
	// StrategyAnchorSanitizer spends one fixed-size bite from an unhealthy
	// note and fills the rest from healthy notes.
	StrategyAnchorSanitizer Strategy = "anchor-sanitizer"
)

// AllStrategies lists every heuristic in the order they are run.
var AllStrategies = []Strategy{
	StrategyGreedyLarge,
	StrategySanitizer,
	StrategyDustAggregation,
	StrategyAnchorSanitizer,
}

const (
	// DefaultPenaltyExponent is the exponent applied to the log-distance
	// between an anonymity set and the maximum one.
	DefaultPenaltyExponent = 3.0
	// DefaultMaxAnonymitySet is the anonymity set size assumed for empty
	// amounts and the reference of every penalty.
	DefaultMaxAnonymitySet = 1_000_000
	// DefaultSanitizerPasses bounds the number of passes the sanitizer does
	// over the unhealthy notes. It is a heuristic bound: some wallets could
	// be sanitized with more passes.
	DefaultSanitizerPasses = 10
)

// Config holds the tunables of the selector. The zero value is not valid,
// use DefaultConfig.
type Config struct {
	// Strategies enabled. Nil enables all of them.
	Strategies []Strategy
	// BiteSizes used by the sanitizer, one candidate per size.
	BiteSizes []*big.Int
	// AnchorSize is the amount taken from the unhealthy note by the anchor
	// sanitizer.
	AnchorSize      *big.Int
	SanitizerPasses int
	PenaltyExponent float64
	MaxAnonymitySet uint64
}

// DefaultConfig returns the standard configuration: bites of 0.1, 0.2, 0.4
// and 0.6 ETH and an anchor of 0.1 ETH.
func DefaultConfig() *Config {
	return &Config{
		Strategies: slices.Clone(AllStrategies),
		BiteSizes: []*big.Int{
			types.EtherFraction(1, 10),
			types.EtherFraction(2, 10),
			types.EtherFraction(4, 10),
			types.EtherFraction(6, 10),
		},
		AnchorSize:      types.EtherFraction(1, 10),
		SanitizerPasses: DefaultSanitizerPasses,
		PenaltyExponent: DefaultPenaltyExponent,
		MaxAnonymitySet: DefaultMaxAnonymitySet,
	}
}

// Enabled returns true if the strategy should run.
func (c *Config) Enabled(s Strategy) bool {
	return c.Strategies == nil || slices.Contains(c.Strategies, s)
}
