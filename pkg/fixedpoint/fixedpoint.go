// Package fixedpoint converts between the venue's 18-fractional-digit
// fixed-point integers and canonical decimals.
package fixedpoint

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits in the venue's fixed-point values.
const Scale = 18

// ErrOutOfRange is returned when a fixed-point value cannot be represented
// as a decimal without loss.
var ErrOutOfRange = errors.New("fixed-point value out of decimal range")

// maxCoefficientBits bounds the decimal coefficient; values wider than this
// cannot round-trip losslessly.
const maxCoefficientBits = 96

var scaleFactor = new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(Scale), nil))

// ToDecimal converts an x18 integer into a decimal. Conversion must be
// lossless; out-of-range values return ErrOutOfRange.
func ToDecimal(x18 *big.Int) (decimal.Decimal, error) {
	if x18 == nil {
		return decimal.Decimal{}, errors.New("nil fixed-point value")
	}
	if x18.BitLen() > maxCoefficientBits {
		return decimal.Decimal{}, ErrOutOfRange
	}
	return decimal.NewFromBigInt(x18, -Scale), nil
}

// FromFloat converts a finite float into the venue's x18 representation,
// truncating any precision beyond 18 fractional digits.
func FromFloat(f float64) *big.Int {
	// 128-bit precision keeps the product exact for any float64 input.
	scaled := new(big.Float).SetPrec(128).SetFloat64(f)
	scaled.Mul(scaled, scaleFactor)
	x18, _ := scaled.Int(nil)
	return x18
}
