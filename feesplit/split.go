// Package feesplit computes the protocol fee taken from a single
// denomination amount. The fee is always rounded up so the protocol never
// under-collects; the remainder absorbs the rounding.
package feesplit

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// BasisPointsPerUnit is the number of basis points in a rate of 1 (100%).
const BasisPointsPerUnit = 10000

var bpsDenominator = uint256.NewInt(BasisPointsPerUnit)

// Rate is a fee rate with basis-point granularity.
// The zero value is a 0% rate.
type Rate struct {
	bps uint64
}

// RateFromBasisPoints converts basis points (5000 = 50%) to a Rate.
// Out-of-range values are kept as-is; call Validate to enforce [0, 1].
func RateFromBasisPoints(bps uint64) Rate {
	return Rate{bps: bps}
}

// ParseRate parses a decimal rate such as "0.5" or "0.0125".
// Precision finer than one basis point is rejected.
func ParseRate(s string) (Rate, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Rate{}, fmt.Errorf("%w: %q: %w", ErrInvalidRate, s, err)
	}
	if d.IsNegative() {
		return Rate{}, fmt.Errorf("%w: %q is negative", ErrInvalidRate, s)
	}
	scaled := d.Shift(4)
	if !scaled.IsInteger() {
		return Rate{}, fmt.Errorf("%w: %q is finer than one basis point", ErrInvalidRate, s)
	}
	if !scaled.BigInt().IsUint64() {
		return Rate{}, fmt.Errorf("%w: %q", ErrRateOutOfRange, s)
	}
	r := Rate{bps: scaled.BigInt().Uint64()}
	if err := r.Validate(); err != nil {
		return Rate{}, err
	}
	return r, nil
}

// BasisPoints returns the rate in basis points.
func (r Rate) BasisPoints() uint64 { return r.bps }

// Validate reports ErrRateOutOfRange when the rate exceeds 100%.
func (r Rate) Validate() error {
	if r.bps > BasisPointsPerUnit {
		return fmt.Errorf("%w: %d bps", ErrRateOutOfRange, r.bps)
	}
	return nil
}

// IsZero reports whether the rate takes no fee.
func (r Rate) IsZero() bool { return r.bps == 0 }

// Decimal returns the rate as a decimal fraction (5000 bps -> 0.5).
func (r Rate) Decimal() decimal.Decimal {
	return decimal.NewFromUint64(r.bps).Shift(-4)
}

// String renders the rate as a decimal fraction with trailing zeros trimmed.
func (r Rate) String() string {
	return r.Decimal().String()
}

// Percent renders the rate in percent (5000 bps -> "50", 25 bps -> "0.25").
func (r Rate) Percent() string {
	return decimal.NewFromUint64(r.bps).Shift(-2).String()
}

// Split divides amount into a fee and a remainder:
//
//	fee       = ceil(amount * rate)
//	remainder = amount - fee
//
// remainder is nil when it would be zero, so callers never build
// zero-value transfers. The rate must already be validated; amounts are
// expected to fit in 128 bits, which keeps amount*bps well inside 256 bits.
func Split(amount *uint256.Int, rate Rate) (fee *uint256.Int, remainder *uint256.Int) {
	fee = new(uint256.Int).Mul(amount, uint256.NewInt(rate.bps))
	fee.AddUint64(fee, BasisPointsPerUnit-1)
	fee.Div(fee, bpsDenominator)

	if fee.Gt(amount) {
		// Only reachable with an unvalidated rate above 100%.
		fee.Set(amount)
	}

	rest := new(uint256.Int).Sub(amount, fee)
	if rest.IsZero() {
		return fee, nil
	}
	return fee, rest
}
