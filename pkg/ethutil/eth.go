package ethutil

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
)

const EtherDecimals = 18

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidAddress = errors.New("invalid address")
)

// ParseEther converts an ether denominated decimal string (e.g. "0.01") to
// wei.
func ParseEther(s string) (*big.Int, error) {
	return ParseUnits(s, EtherDecimals)
}

// ParseUnits converts a decimal string to its integer representation with the
// given number of decimals. It fails if the value has more fractional digits
// than decimals or is negative.
func ParseUnits(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidAmount
	}

	r, ok := new(big.Rat).SetString(s)
	if !ok || r.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, s)
	}

	r.Mul(r, new(big.Rat).SetInt(pow10(decimals)))
	if !r.IsInt() {
		return nil, fmt.Errorf("%w: too many decimals in %s", ErrInvalidAmount, s)
	}

	return new(big.Int).Set(r.Num()), nil
}

func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, EtherDecimals)
}

// FormatUnits is the inverse of ParseUnits. Trailing zeros of the fractional
// part are trimmed.
func FormatUnits(v *big.Int, decimals int) string {
	if v == nil {
		return "0"
	}

	sign := ""
	abs := new(big.Int).Set(v)
	if abs.Sign() < 0 {
		sign = "-"
		abs.Neg(abs)
	}

	q, r := new(big.Int).QuoRem(abs, pow10(decimals), new(big.Int))
	if r.Sign() == 0 {
		return sign + q.String()
	}

	frac := r.String()
	frac = strings.Repeat("0", decimals-len(frac)) + frac
	frac = strings.TrimRight(frac, "0")
	return sign + q.String() + "." + frac
}

// Ether returns n ether in wei.
func Ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(params.Ether))
}

func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %s", ErrInvalidAddress, s)
	}

	return common.HexToAddress(s), nil
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
