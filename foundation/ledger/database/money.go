package database

import (
	"errors"
	"math/bits"
)

// BpsDenominator is the denominator for all basis point rates in the ledger.
const BpsDenominator = 10000

// ErrOverflow indicates a money computation exceeded the representable
// range. Any call that trips this must abort without committing state.
var ErrOverflow = errors.New("arithmetic overflow")

// mul64 multiplies two amounts, failing on overflow rather than wrapping.
func mul64(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}

// MulBps applies a basis point rate to an amount, truncating toward zero.
// The caller owns routing the lost remainder to a sink.
func MulBps(amount, bps uint64) (uint64, error) {
	v, err := mul64(amount, bps)
	if err != nil {
		return 0, err
	}
	return v / BpsDenominator, nil
}

// MulDiv computes a*b/den with a 128-bit intermediate so pro-rata shares
// never overflow on the multiply.
func MulDiv(a, b, den uint64) (uint64, error) {
	if den == 0 {
		return 0, errors.New("division by zero")
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= den {
		return 0, ErrOverflow
	}
	q, _ := bits.Div64(hi, lo, den)
	return q, nil
}

// add64 adds two amounts, failing on overflow rather than wrapping.
func add64(a, b uint64) (uint64, error) {
	v, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return v, nil
}
