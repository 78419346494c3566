package selector

import (
	"math/big"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/note-selector/anonymity"
	"github.com/vocdoni/note-selector/types"
)

// eth returns num/den ether in wei.
func eth(num, den int64) *big.Int {
	return types.EtherFraction(num, den)
}

func testNote(label int64, balance *big.Int, block uint64) *types.Note {
	return &types.Note{
		Label:       types.NewInt(label),
		Balance:     types.FromBig(balance),
		BlockNumber: block,
		Status:      types.StatusApproved,
		ChainID:     1,
		Scope:       types.NewInt(42),
	}
}

// testDistribution gives these anonymity sets:
//
//	[0.01, 0.1) -> 5, [0.1, 0.5) -> 50, [0.5, 1) -> 800, [1, 10) -> 20000, >= 10 -> 100
//
// so the default thresholds are unhealthy=800 and healthy=20000.
func testDistribution(c *qt.C) *anonymity.Distribution {
	d, err := anonymity.NewDistribution([]anonymity.Entry{
		{Amount: types.FromBig(eth(1, 100)), Size: 5},
		{Amount: types.FromBig(eth(1, 10)), Size: 50},
		{Amount: types.FromBig(eth(1, 2)), Size: 800},
		{Amount: types.FromBig(eth(1, 1)), Size: 20000},
		{Amount: types.FromBig(eth(10, 1)), Size: 100},
	})
	c.Assert(err, qt.IsNil)
	return d
}

func testContext(c *qt.C, req *Request) *Context {
	ctx, err := New(nil).NewContext(req)
	c.Assert(err, qt.IsNil)
	return ctx
}

// assertPlanInvariants checks the plan spends exactly the requested amount
// and no note over its balance.
func assertPlanInvariants(c *qt.C, plan *Plan, requested *big.Int) {
	c.Assert(plan.Total().Cmp(requested), qt.Equals, 0, qt.Commentf("plan %s", plan.Key()))
	for _, a := range plan.Allocations() {
		c.Assert(a.Amount.Sign() > 0, qt.IsTrue)
		c.Assert(a.Amount.Cmp(a.Note.Amount()) <= 0, qt.IsTrue,
			qt.Commentf("note %s overdrawn in plan %s", a.Note.Key(), plan.Key()))
	}
}
