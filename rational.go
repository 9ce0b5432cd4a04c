// Exact rational timebases and 128-bit timestamp rescaling. Every timestamp
// in the pipeline is an integer count of ticks in some Rational timebase;
// conversions between timebases go through Rescale and never through
// floating point.

package avmux

import (
	"fmt"
	"math"
	"math/bits"
)

// NoTimestamp marks an unset timestamp. It passes through rescaling
// untouched.
const NoTimestamp int64 = math.MinInt64

// Rational is an exact fraction Num/Den, typically seconds per tick.
type Rational struct {
	Num int64
	Den int64
}

// Valid reports whether the rational is a usable positive timebase.
func (r Rational) Valid() bool {
	return r.Num > 0 && r.Den > 0
}

// Seconds returns the fraction as a float64.
func (r Rational) Seconds() float64 {
	return float64(r.Num) / float64(r.Den)
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Rounding selects how RescaleRound treats a non-exact quotient. All modes
// operate on the magnitude, so RoundDown truncates toward zero for positive
// values and away from zero for negative ones.
type Rounding int

const (
	// RoundZero truncates toward zero.
	RoundZero Rounding = iota
	// RoundDown rounds toward negative infinity.
	RoundDown
	// RoundUp rounds toward positive infinity.
	RoundUp
	// RoundNearest rounds to nearest, ties away from zero.
	RoundNearest
)

func (m Rounding) String() string {
	switch m {
	case RoundZero:
		return "zero"
	case RoundDown:
		return "down"
	case RoundUp:
		return "up"
	case RoundNearest:
		return "nearest"
	default:
		return fmt.Sprintf("Rounding(%d)", int(m))
	}
}

// Rescale converts v from one timebase to another, rounding to nearest with
// ties away from zero.
func Rescale(v int64, from, to Rational) int64 {
	return RescaleRound(v, from, to, RoundNearest)
}

// RescaleRound converts v from one timebase to another with the given
// rounding. NoTimestamp passes through.
func RescaleRound(v int64, from, to Rational, mode Rounding) int64 {
	return RescaleInt(v, from.Num*to.Den, from.Den*to.Num, mode)
}

// RescaleInt computes v*mul/div with a full 128-bit intermediate, so the
// product never wraps. mul and div must be positive. Results beyond the
// int64 range saturate.
func RescaleInt(v, mul, div int64, mode Rounding) int64 {
	if v == NoTimestamp {
		return NoTimestamp
	}
	neg := v < 0
	uv := uint64(v)
	if neg {
		uv = uint64(-v)
	}

	hi, lo := bits.Mul64(uv, uint64(mul))
	if hi >= uint64(div) {
		if neg {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	quo, rem := bits.Div64(hi, lo, uint64(div))

	switch mode {
	case RoundDown:
		if neg && rem > 0 {
			quo++
		}
	case RoundUp:
		if !neg && rem > 0 {
			quo++
		}
	case RoundNearest:
		if 2*rem >= uint64(div) {
			quo++
		}
	}

	if neg {
		if quo > uint64(math.MaxInt64) {
			return math.MinInt64
		}
		return -int64(quo)
	}
	if quo > uint64(math.MaxInt64) {
		return math.MaxInt64
	}
	return int64(quo)
}
