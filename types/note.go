package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ReviewStatus is the association-set review state of a deposit. Only
// approved notes can be withdrawn through the regular flow.
type ReviewStatus string

const (
	StatusApproved ReviewStatus = "APPROVED"
	StatusPending  ReviewStatus = "PENDING"
	StatusDeclined ReviewStatus = "DECLINED"
	StatusExited   ReviewStatus = "EXITED"
	StatusSpent    ReviewStatus = "SPENT"
)

// Eligible returns true if a note with this status can be spent. An empty
// status is reported by the note reconstruction service for approved notes
// only, so it is considered eligible too.
func (s ReviewStatus) Eligible() bool {
	return s == "" || s == StatusApproved
}

// DerivationMethod identifies how the note secrets were derived.
type DerivationMethod string

const (
	// DerivationLegacy marks notes derived from the legacy mnemonic scheme.
	DerivationLegacy DerivationMethod = "legacy-mnemonic"
	// DerivationNative marks notes derived from the account app secret.
	DerivationNative DerivationMethod = "native-appsecret"
)

// Note is a spendable commitment of the shielded pool, the unit the note
// selection works with. Balance is expressed in wei and must be positive.
type Note struct {
	Label       *BigInt          `json:"label"                cbor:"0,keyasint,omitempty"`
	Balance     *BigInt          `json:"balance"              cbor:"1,keyasint,omitempty"`
	BlockNumber uint64           `json:"blockNumber"          cbor:"2,keyasint,omitempty"`
	Status      ReviewStatus     `json:"status,omitempty"     cbor:"3,keyasint,omitempty"`
	Derivation  DerivationMethod `json:"derivation,omitempty" cbor:"4,keyasint,omitempty"`
	ChainID     uint64           `json:"chainId,omitempty"    cbor:"5,keyasint,omitempty"`
	Scope       *BigInt          `json:"scope,omitempty"      cbor:"6,keyasint,omitempty"`
	Commitment  common.Hash      `json:"commitment"           cbor:"7,keyasint,omitempty"`
}

// Key returns the string used to identify the note inside an execution
// plan: the decimal representation of its label.
func (n *Note) Key() string {
	return n.Label.String()
}

// Amount returns the balance of the note as a *big.Int. A note without
// balance returns zero.
func (n *Note) Amount() *big.Int {
	if n.Balance == nil {
		return new(big.Int)
	}
	return n.Balance.MathBigInt()
}

// Clone returns a deep copy of the note, so callers can tag it without
// modifying the original value.
func (n *Note) Clone() *Note {
	c := *n
	c.Label = FromBig(n.Label.MathBigInt())
	c.Balance = FromBig(n.Balance.MathBigInt())
	c.Scope = FromBig(n.Scope.MathBigInt())
	return &c
}

// WithDerivation returns a copy of the note tagged with the derivation
// method provided.
func (n *Note) WithDerivation(d DerivationMethod) *Note {
	c := n.Clone()
	c.Derivation = d
	return c
}
