package types

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
	"github.com/vocdoni/note-selector/util"
)

// BigInt is a big.Int wrapper which marshals to and from a decimal string,
// both in JSON and CBOR. Amounts in wei and privacy pool labels and scopes
// do not fit in a JSON number, so they travel as strings.
type BigInt big.Int

// NewInt returns a new BigInt set to x.
func NewInt(x int64) *BigInt {
	return (*BigInt)(big.NewInt(x))
}

// FromBig wraps a copy of the big.Int provided. A nil input returns nil.
func FromBig(x *big.Int) *BigInt {
	if x == nil {
		return nil
	}
	return (*BigInt)(new(big.Int).Set(x))
}

// MathBigInt returns the underlying *big.Int. It does not copy.
func (i *BigInt) MathBigInt() *big.Int {
	return (*big.Int)(i)
}

// String returns the decimal representation of the number.
func (i *BigInt) String() string {
	if i == nil {
		return "0"
	}
	return (*big.Int)(i).String()
}

// Sign returns -1, 0 or 1. A nil BigInt has sign 0.
func (i *BigInt) Sign() int {
	if i == nil {
		return 0
	}
	return (*big.Int)(i).Sign()
}

// Bytes returns the absolute value of the number as a big-endian byte slice.
func (i *BigInt) Bytes() []byte {
	if i == nil {
		return nil
	}
	return (*big.Int)(i).Bytes()
}

// SetBytes interprets buf as a big-endian unsigned integer.
func (i *BigInt) SetBytes(buf []byte) *BigInt {
	(*big.Int)(i).SetBytes(buf)
	return i
}

// Equal reports whether both numbers are equal. Two nil values are equal.
func (i *BigInt) Equal(j *BigInt) bool {
	if i == nil || j == nil {
		return i == nil && j == nil
	}
	return (*big.Int)(i).Cmp((*big.Int)(j)) == 0
}

// MarshalText implements encoding.TextMarshaler.
func (i *BigInt) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Both decimal and
// 0x-prefixed hexadecimal strings are accepted.
func (i *BigInt) UnmarshalText(data []byte) error {
	s := string(data)
	base := 10
	if trimmed := util.TrimHex(s); trimmed != s {
		s, base = trimmed, 16
	}
	if _, ok := (*big.Int)(i).SetString(s, base); !ok {
		return fmt.Errorf("invalid big number %q", string(data))
	}
	return nil
}

// UnmarshalJSON accepts quoted strings as well as bare JSON numbers.
func (i *BigInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		return fmt.Errorf("empty big number")
	}
	return i.UnmarshalText(data)
}

// MarshalCBOR implements cbor.Marshaler.
func (i *BigInt) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(i.String())
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (i *BigInt) UnmarshalCBOR(data []byte) error {
	var s string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return err
	}
	return i.UnmarshalText([]byte(s))
}
