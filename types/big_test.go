package types

import (
	"encoding/json"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/fxamacker/cbor/v2"
)

func TestBigMarshalUnmarshalJSON(t *testing.T) {
	c := qt.New(t)
	bi := (*BigInt)(big.NewInt(1234567890))
	jsonBigInt := map[string]*BigInt{
		"bi": bi,
	}
	bBigInt, err := json.Marshal(jsonBigInt)
	c.Assert(err, qt.IsNil)
	c.Assert(string(bBigInt), qt.Equals, `{"bi":"1234567890"}`)

	var unmarshaled map[string]*BigInt
	c.Assert(json.Unmarshal(bBigInt, &unmarshaled), qt.IsNil)
	c.Assert(unmarshaled["bi"].Equal(bi), qt.IsTrue)

	// bare numbers and hex strings are accepted too
	c.Assert(json.Unmarshal([]byte(`{"bi":1234567890}`), &unmarshaled), qt.IsNil)
	c.Assert(unmarshaled["bi"].Equal(bi), qt.IsTrue)
	c.Assert(json.Unmarshal([]byte(`{"bi":"0x499602d2"}`), &unmarshaled), qt.IsNil)
	c.Assert(unmarshaled["bi"].Equal(bi), qt.IsTrue)

	c.Assert(json.Unmarshal([]byte(`{"bi":"12ab"}`), &unmarshaled), qt.IsNotNil)
}

func TestBigMarshalUnmarshalCBOR(t *testing.T) {
	c := qt.New(t)
	bi := (*BigInt)(big.NewInt(1234567890))
	cborBigInt := map[string]*BigInt{
		"bi": bi,
	}
	bBigInt, err := cbor.Marshal(cborBigInt)
	c.Assert(err, qt.IsNil)

	var unmarshaled map[string]*BigInt
	c.Assert(cbor.Unmarshal(bBigInt, &unmarshaled), qt.IsNil)
	c.Assert(unmarshaled["bi"].Equal(bi), qt.IsTrue)
}

func TestNoteClone(t *testing.T) {
	c := qt.New(t)
	n := &Note{
		Label:   NewInt(7),
		Balance: NewInt(100),
		Status:  StatusApproved,
	}
	tagged := n.WithDerivation(DerivationLegacy)
	c.Assert(tagged.Derivation, qt.Equals, DerivationLegacy)
	c.Assert(n.Derivation, qt.Equals, DerivationMethod(""))

	tagged.Balance.MathBigInt().SetInt64(1)
	c.Assert(n.Balance.String(), qt.Equals, "100")
	c.Assert(tagged.Key(), qt.Equals, "7")
	c.Assert(tagged.Scope, qt.IsNil)
}

func TestReviewStatusEligible(t *testing.T) {
	c := qt.New(t)
	c.Assert(StatusApproved.Eligible(), qt.IsTrue)
	c.Assert(ReviewStatus("").Eligible(), qt.IsTrue)
	for _, s := range []ReviewStatus{StatusPending, StatusDeclined, StatusExited, StatusSpent} {
		c.Assert(s.Eligible(), qt.IsFalse, qt.Commentf("status %s", s))
	}
}
