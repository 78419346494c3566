// Package anonymity answers how many comparable deposits hide a given
// amount, using a precomputed amount -> anonymity-set-size distribution,
// and derives the thresholds that split notes into unhealthy and healthy
// ones.
package anonymity

import (
	"fmt"
	"math/big"
	"slices"

	"github.com/vocdoni/note-selector/types"
)

// Entry is a single step of the distribution: every amount greater or equal
// than Amount (and lower than the next entry amount) has an anonymity set of
// Size deposits.
type Entry struct {
	Amount *types.BigInt `json:"amount" cbor:"0,keyasint,omitempty"`
	Size   uint64        `json:"size"   cbor:"1,keyasint,omitempty"`
}

// Distribution is an immutable step function over amounts, sorted by amount
// in ascending order. The zero value and nil are valid empty distributions.
type Distribution struct {
	entries []Entry
}

// NewDistribution builds a distribution from the entries provided. The
// entries are copied and sorted; if the same amount appears twice, the last
// one wins. Negative or missing amounts are rejected.
func NewDistribution(entries []Entry) (*Distribution, error) {
	byAmount := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if e.Amount == nil {
			return nil, fmt.Errorf("distribution entry without amount")
		}
		if e.Amount.Sign() < 0 {
			return nil, fmt.Errorf("negative distribution amount %s", e.Amount)
		}
		byAmount[e.Amount.String()] = Entry{
			Amount: types.FromBig(e.Amount.MathBigInt()),
			Size:   e.Size,
		}
	}
	d := &Distribution{entries: make([]Entry, 0, len(byAmount))}
	for _, e := range byAmount {
		d.entries = append(d.entries, e)
	}
	slices.SortFunc(d.entries, func(a, b Entry) int {
		return a.Amount.MathBigInt().Cmp(b.Amount.MathBigInt())
	})
	return d, nil
}

// FromMap builds a distribution from a map of decimal (or 0x-prefixed hex)
// amounts to anonymity set sizes, the format used by the chain analytics
// exports.
func FromMap(m map[string]uint64) (*Distribution, error) {
	entries := make([]Entry, 0, len(m))
	for k, size := range m {
		amount := new(types.BigInt)
		if err := amount.UnmarshalText([]byte(k)); err != nil {
			return nil, fmt.Errorf("invalid distribution amount: %w", err)
		}
		entries = append(entries, Entry{Amount: amount, Size: size})
	}
	return NewDistribution(entries)
}

// Map returns the distribution as a map of decimal amounts to sizes.
func (d *Distribution) Map() map[string]uint64 {
	m := make(map[string]uint64, d.Len())
	for _, e := range d.Entries() {
		m[e.Amount.String()] = e.Size
	}
	return m
}

// Len returns the number of steps in the distribution.
func (d *Distribution) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Entries returns a copy of the sorted entries.
func (d *Distribution) Entries() []Entry {
	if d == nil {
		return nil
	}
	out := make([]Entry, len(d.entries))
	for i, e := range d.entries {
		out[i] = Entry{Amount: types.FromBig(e.Amount.MathBigInt()), Size: e.Size}
	}
	return out
}

// Sizes returns every anonymity set size of the distribution, sorted in
// ascending order.
func (d *Distribution) Sizes() []uint64 {
	sizes := make([]uint64, 0, d.Len())
	if d == nil {
		return sizes
	}
	for _, e := range d.entries {
		sizes = append(sizes, e.Size)
	}
	slices.Sort(sizes)
	return sizes
}

// Floor returns the size stored at the greatest amount lower or equal than
// the amount provided. The boolean is false if there is no such amount.
func (d *Distribution) Floor(amount *big.Int) (uint64, bool) {
	if d.Len() == 0 || amount == nil {
		return 0, false
	}
	// idx is the first entry with an amount >= the one requested
	idx, found := slices.BinarySearchFunc(d.entries, amount, func(e Entry, target *big.Int) int {
		return e.Amount.MathBigInt().Cmp(target)
	})
	if found {
		return d.entries[idx].Size, true
	}
	if idx == 0 {
		return 0, false
	}
	return d.entries[idx-1].Size, true
}

// SetSize returns the anonymity set size for the amount provided. Amounts
// lower or equal than zero hide in every deposit, so they return maxSize.
// Amounts with no step at or below them are maximally identifiable and
// return 1.
func SetSize(d *Distribution, amount *big.Int, maxSize uint64) uint64 {
	if amount == nil || amount.Sign() <= 0 {
		return maxSize
	}
	size, ok := d.Floor(amount)
	if !ok {
		return 1
	}
	return size
}
