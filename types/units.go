package types

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/params"
)

// etherDecimals is the number of decimals of one ether expressed in wei.
const etherDecimals = 18

var weiPerEther = big.NewInt(params.Ether)

// EtherFraction returns num/den ether expressed in wei. It is used to build
// the fixed bite sizes of the selection heuristics without going through
// floating point numbers.
func EtherFraction(num, den int64) *big.Int {
	wei := new(big.Int).Mul(weiPerEther, big.NewInt(num))
	return wei.Quo(wei, big.NewInt(den))
}

// FormatEther renders an amount of wei as a decimal ether string, without
// trailing zeros (e.g. 100000000000000000 -> "0.1").
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	abs := new(big.Int).Abs(wei)
	q, r := new(big.Int).QuoRem(abs, weiPerEther, new(big.Int))
	sign := ""
	if wei.Sign() < 0 {
		sign = "-"
	}
	if r.Sign() == 0 {
		return sign + q.String()
	}
	frac := r.String()
	frac = strings.Repeat("0", etherDecimals-len(frac)) + frac
	return sign + q.String() + "." + strings.TrimRight(frac, "0")
}

// ParseEther parses a decimal ether string (e.g. "1.25") into wei. More
// than 18 decimals is an error, the conversion is always exact.
func ParseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > etherDecimals {
		return nil, fmt.Errorf("too many decimals in %q", s)
	}
	wei, ok := new(big.Int).SetString(intPart+fracPart+strings.Repeat("0", etherDecimals-len(fracPart)), 10)
	if !ok {
		return nil, fmt.Errorf("invalid ether amount %q", s)
	}
	if neg {
		wei.Neg(wei)
	}
	return wei, nil
}
