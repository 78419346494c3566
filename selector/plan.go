package selector

import (
	"encoding/json"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/vocdoni/note-selector/types"
)

// Allocation is the amount spent from a single note.
type Allocation struct {
	Note   *types.Note
	Amount *big.Int
}

// Plan is an execution plan: the amount to spend from each note of the
// wallet. It is an association list keyed by note label, keeping insertion
// order.
type Plan struct {
	allocations []*Allocation
	index       map[string]int
}

// NewPlan returns an empty plan.
func NewPlan() *Plan {
	return &Plan{index: make(map[string]int)}
}

// Add spends amount from the note. Adding the same note twice accumulates
// both amounts.
func (p *Plan) Add(note *types.Note, amount *big.Int) {
	if i, ok := p.index[note.Key()]; ok {
		p.allocations[i].Amount.Add(p.allocations[i].Amount, amount)
		return
	}
	p.index[note.Key()] = len(p.allocations)
	p.allocations = append(p.allocations, &Allocation{
		Note:   note,
		Amount: new(big.Int).Set(amount),
	})
}

// Amount returns the amount spent from the note with the label provided, or
// zero if the note is not part of the plan.
func (p *Plan) Amount(label string) *big.Int {
	if i, ok := p.index[label]; ok {
		return new(big.Int).Set(p.allocations[i].Amount)
	}
	return new(big.Int)
}

// Len returns the number of distinct notes in the plan.
func (p *Plan) Len() int {
	return len(p.allocations)
}

// Allocations returns the allocations in insertion order.
func (p *Plan) Allocations() []*Allocation {
	return slices.Clone(p.allocations)
}

// Total returns the sum of every spent amount.
func (p *Plan) Total() *big.Int {
	total := new(big.Int)
	for _, a := range p.allocations {
		total.Add(total, a.Amount)
	}
	return total
}

// TotalInput returns the sum of the balances of every note in the plan.
func (p *Plan) TotalInput() *big.Int {
	total := new(big.Int)
	for _, a := range p.allocations {
		total.Add(total, a.Note.Amount())
	}
	return total
}

// Key identifies the plan structurally: the sorted label:amount pairs of its
// allocations. Two plans with the same key spend the same amounts from the
// same notes.
func (p *Plan) Key() string {
	pairs := make([]string, 0, len(p.allocations))
	for _, a := range p.allocations {
		pairs = append(pairs, a.Note.Key()+":"+a.Amount.String())
	}
	slices.Sort(pairs)
	return strings.Join(pairs, ",")
}

// Valid returns true if the plan spends exactly the requested amount and no
// note is spent over its balance.
func (p *Plan) Valid(requested *big.Int) bool {
	for _, a := range p.allocations {
		if a.Amount.Sign() < 0 || a.Amount.Cmp(a.Note.Amount()) > 0 {
			return false
		}
	}
	return p.Total().Cmp(requested) == 0
}

type allocationJSON struct {
	Label  *types.BigInt `json:"label"`
	Amount *types.BigInt `json:"amount"`
}

// MarshalJSON encodes the plan as a list of label and amount pairs, which is
// what the withdrawal proof builder consumes.
func (p *Plan) MarshalJSON() ([]byte, error) {
	out := make([]allocationJSON, 0, len(p.allocations))
	for _, a := range p.allocations {
		out = append(out, allocationJSON{
			Label:  a.Note.Label,
			Amount: types.FromBig(a.Amount),
		})
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a plan encoded by MarshalJSON. The decoded notes
// only carry their label, so the balance based methods are meaningless on
// the result.
func (p *Plan) UnmarshalJSON(data []byte) error {
	var in []allocationJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = *NewPlan()
	for _, a := range in {
		if a.Label == nil || a.Amount == nil {
			return fmt.Errorf("plan allocation without label or amount")
		}
		p.Add(&types.Note{Label: a.Label}, a.Amount.MathBigInt())
	}
	return nil
}
