package selector

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/note-selector/types"
)

func TestSelectSingleHealthyNote(t *testing.T) {
	c := qt.New(t)
	results, err := Select(&Request{
		NativeNotes:     []*types.Note{testNote(1, eth(1, 1), 10)},
		RequestedAmount: eth(1, 1),
		Distribution:    testDistribution(c),
		CurrentBlock:    100,
		Random:          NewSeededRandomSource(1),
	})
	c.Assert(err, qt.IsNil)
	c.Assert(results, qt.HasLen, 1)
	r := results[0]
	c.Assert(r.Strategy, qt.Equals, string(StrategyGreedyLarge))
	c.Assert(r.Chosen, qt.IsTrue)
	c.Assert(r.Change.Sign(), qt.Equals, 0)
	c.Assert(r.TotalSpent.MathBigInt().Cmp(eth(1, 1)), qt.Equals, 0)
	c.Assert(r.PrivacyScore, qt.Equals, 0.0)
	c.Assert(r.Breakdown, qt.HasLen, 1)
	c.Assert(r.Breakdown[0].Spent, qt.Equals, "1")
	c.Assert(r.Breakdown[0].Remaining, qt.Equals, "0")
	c.Assert(r.Breakdown[0].Derivation, qt.Equals, types.DerivationNative)
	c.Assert(r.Breakdown[0].Healthy, qt.IsTrue)
	c.Assert(r.Breakdown[0].AnonymitySet, qt.Equals, uint64(20000))
}

func TestSelectUnhealthyWallet(t *testing.T) {
	c := qt.New(t)
	results, err := Select(&Request{
		NativeNotes: []*types.Note{
			testNote(1, eth(2, 10), 10),
			testNote(2, eth(2, 10), 20),
			testNote(3, eth(2, 10), 30),
		},
		RequestedAmount: eth(4, 10),
		Distribution:    testDistribution(c),
		CurrentBlock:    100,
		Random:          NewSeededRandomSource(1),
	})
	c.Assert(err, qt.IsNil)
	c.Assert(results, qt.HasLen, 2)
	assertSorted(c, results)
	for _, r := range results {
		assertPlanInvariants(c, r.Plan, eth(4, 10))
		c.Assert(r.Plan.Len() <= 3, qt.IsTrue)
	}
}

func TestSelectEmptyWallet(t *testing.T) {
	c := qt.New(t)
	results, err := Select(&Request{RequestedAmount: eth(1, 1)})
	c.Assert(err, qt.IsNil)
	c.Assert(results, qt.IsNotNil)
	c.Assert(results, qt.HasLen, 0)

	// not enough funds is not an error either
	results, err = Select(&Request{
		NativeNotes:     []*types.Note{testNote(1, eth(1, 10), 10)},
		RequestedAmount: eth(1, 1),
	})
	c.Assert(err, qt.IsNil)
	c.Assert(results, qt.HasLen, 0)
}

func TestSelectMalformedInput(t *testing.T) {
	c := qt.New(t)
	notes := []*types.Note{testNote(1, eth(1, 1), 10)}

	for _, amount := range []*big.Int{nil, new(big.Int), big.NewInt(-1)} {
		_, err := Select(&Request{NativeNotes: notes, RequestedAmount: amount})
		c.Assert(errors.Is(err, ErrInvalidAmount), qt.IsTrue)
	}
	_, err := Select(nil)
	c.Assert(errors.Is(err, ErrInvalidAmount), qt.IsTrue)

	_, err = Select(&Request{
		NativeNotes:     notes,
		LegacyNotes:     []*types.Note{testNote(1, eth(2, 1), 10)},
		RequestedAmount: eth(1, 1),
	})
	c.Assert(errors.Is(err, ErrInvalidNote), qt.IsTrue)

	_, err = Select(&Request{
		NativeNotes:     []*types.Note{testNote(1, new(big.Int), 10)},
		RequestedAmount: eth(1, 1),
	})
	c.Assert(errors.Is(err, ErrInvalidNote), qt.IsTrue)

	_, err = Select(&Request{
		NativeNotes:     []*types.Note{{Balance: types.FromBig(eth(1, 1))}},
		RequestedAmount: eth(1, 1),
	})
	c.Assert(errors.Is(err, ErrInvalidNote), qt.IsTrue)

	_, err = Select(&Request{
		NativeNotes:     notes,
		RequestedAmount: eth(1, 1),
		Weights:         Weights{ObjectiveGasProxy: -0.5},
	})
	c.Assert(errors.Is(err, ErrInvalidWeights), qt.IsTrue)
}

func TestSelectSkipsIneligibleNotes(t *testing.T) {
	c := qt.New(t)
	pending := testNote(1, eth(5, 1), 10)
	pending.Status = types.StatusPending
	spent := testNote(2, eth(5, 1), 10)
	spent.Status = types.StatusSpent
	unknown := testNote(3, eth(1, 1), 10)
	unknown.Status = ""

	results, err := Select(&Request{
		NativeNotes:     []*types.Note{pending, spent, unknown},
		RequestedAmount: eth(1, 1),
	})
	c.Assert(err, qt.IsNil)
	c.Assert(results, qt.Not(qt.HasLen), 0)
	for _, r := range results {
		for _, a := range r.Plan.Allocations() {
			c.Assert(a.Note.Key(), qt.Equals, "3")
		}
	}
}

func TestSelectCustomWeights(t *testing.T) {
	c := qt.New(t)
	// only the number of notes matters: the single note plan wins
	results, err := Select(&Request{
		NativeNotes: []*types.Note{
			testNote(1, eth(2, 10), 10),
			testNote(2, eth(2, 10), 20),
			testNote(3, eth(5, 1), 30),
		},
		RequestedAmount: eth(4, 10),
		Distribution:    testDistribution(c),
		CurrentBlock:    100,
		Weights:         Weights{ObjectiveGasProxy: 1},
		Random:          NewSeededRandomSource(3),
	})
	c.Assert(err, qt.IsNil)
	assertSorted(c, results)
	c.Assert(results[0].Plan.Len(), qt.Equals, 1)
	c.Assert(results[0].Strategy, qt.Equals, string(StrategyGreedyLarge))
}

// TestSelectDeterministic checks that, except for the random noise, two
// selections over the same input score every candidate the same.
func TestSelectDeterministic(t *testing.T) {
	c := qt.New(t)
	req := func(seed uint64) *Request {
		return &Request{
			NativeNotes: []*types.Note{
				testNote(1, eth(2, 10), 10),
				testNote(2, eth(3, 10), 20),
				testNote(3, eth(3, 1), 30),
			},
			LegacyNotes:     []*types.Note{testNote(4, eth(7, 10), 5)},
			RequestedAmount: eth(8, 10),
			Distribution:    testDistribution(c),
			CurrentBlock:    100,
			Random:          NewSeededRandomSource(seed),
		}
	}
	withoutNoise := func(results []*Result) map[string]float64 {
		w := DefaultWeights()
		scores := make(map[string]float64)
		for _, r := range results {
			scores[r.Strategy] = r.PrivacyScore - w[ObjectiveRandomNoise]*r.Normalized[ObjectiveRandomNoise]
		}
		return scores
	}
	first, err := Select(req(1))
	c.Assert(err, qt.IsNil)
	second, err := Select(req(2))
	c.Assert(err, qt.IsNil)
	c.Assert(len(first) > 1, qt.IsTrue)
	c.Assert(second, qt.HasLen, len(first))

	a, b := withoutNoise(first), withoutNoise(second)
	c.Assert(a, qt.HasLen, len(b))
	for name, v := range a {
		c.Assert(math.Abs(v-b[name]) < 1e-9, qt.IsTrue, qt.Commentf("%s: %f != %f", name, v, b[name]))
	}

	// the same seed gives the same ranking
	again, err := Select(req(1))
	c.Assert(err, qt.IsNil)
	for i := range first {
		c.Assert(again[i].Strategy, qt.Equals, first[i].Strategy)
	}
}

func TestSelectConcurrent(t *testing.T) {
	c := qt.New(t)
	native := []*types.Note{
		testNote(1, eth(2, 10), 10),
		testNote(2, eth(3, 1), 20),
	}
	legacy := []*types.Note{testNote(3, eth(4, 10), 30)}
	dist := testDistribution(c)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Select(&Request{
				NativeNotes:     native,
				LegacyNotes:     legacy,
				RequestedAmount: eth(5, 10),
				Distribution:    dist,
				CurrentBlock:    100,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		c.Assert(err, qt.IsNil)
	}
	// caller notes are never tagged nor modified
	for _, n := range append(native, legacy...) {
		c.Assert(n.Derivation, qt.Equals, types.DerivationMethod(""))
	}
	c.Assert(native[0].Amount().Cmp(eth(2, 10)), qt.Equals, 0)
	c.Assert(native[1].Amount().Cmp(eth(3, 1)), qt.Equals, 0)
}

func TestResultJSON(t *testing.T) {
	c := qt.New(t)
	results, err := Select(&Request{
		NativeNotes:     []*types.Note{testNote(1, eth(1, 1), 10)},
		RequestedAmount: eth(1, 2),
		Distribution:    testDistribution(c),
	})
	c.Assert(err, qt.IsNil)
	data, err := json.Marshal(results[0])
	c.Assert(err, qt.IsNil)

	var decoded map[string]any
	c.Assert(json.Unmarshal(data, &decoded), qt.IsNil)
	c.Assert(decoded["isChosen"], qt.Equals, true)
	c.Assert(decoded["change"], qt.Equals, "500000000000000000")
	c.Assert(decoded["plan"], qt.DeepEquals, []any{
		map[string]any{"label": "1", "amount": "500000000000000000"},
	})
}

func assertSorted(c *qt.C, results []*Result) {
	c.Assert(results, qt.Not(qt.HasLen), 0)
	c.Assert(results[0].Chosen, qt.IsTrue)
	for i := 1; i < len(results); i++ {
		c.Assert(results[i].Chosen, qt.IsFalse)
		c.Assert(results[i-1].PrivacyScore <= results[i].PrivacyScore, qt.IsTrue)
	}
}
