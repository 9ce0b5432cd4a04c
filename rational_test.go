package avmux

import (
	"math"
	"testing"
)

func TestRational_Valid(t *testing.T) {
	cases := []struct {
		r    Rational
		want bool
	}{
		{Rational{1, 48000}, true},
		{Rational{100, 2997}, true},
		{Rational{0, 1}, false},
		{Rational{1, 0}, false},
		{Rational{-1, 30}, false},
	}
	for _, c := range cases {
		if got := c.r.Valid(); got != c.want {
			t.Errorf("%v.Valid() = %v, want %v", c.r, got, c.want)
		}
	}
}

func TestRescaleRound_Modes(t *testing.T) {
	// 7 ticks of 1/3s into 1/2s ticks: exact value is 4.666...
	from := Rational{1, 3}
	to := Rational{1, 2}
	cases := []struct {
		v    int64
		mode Rounding
		want int64
	}{
		{7, RoundZero, 4},
		{7, RoundDown, 4},
		{7, RoundUp, 5},
		{7, RoundNearest, 5},
		// Negative values: modes act on the magnitude, so Down and Up
		// swap roles relative to truncation.
		{-7, RoundZero, -4},
		{-7, RoundDown, -5},
		{-7, RoundUp, -4},
		{-7, RoundNearest, -5},
		// Exact conversions are mode-independent.
		{6, RoundZero, 4},
		{6, RoundUp, 4},
	}
	for _, c := range cases {
		if got := RescaleRound(c.v, from, to, c.mode); got != c.want {
			t.Errorf("RescaleRound(%d, %v, %v, %v) = %d, want %d",
				c.v, from, to, c.mode, got, c.want)
		}
	}
}

func TestRescaleInt_TiesAwayFromZero(t *testing.T) {
	if got := RescaleInt(1, 1, 2, RoundNearest); got != 1 {
		t.Errorf("RescaleInt(1, 1, 2, nearest) = %d, want 1", got)
	}
	if got := RescaleInt(-1, 1, 2, RoundNearest); got != -1 {
		t.Errorf("RescaleInt(-1, 1, 2, nearest) = %d, want -1", got)
	}
	if got := RescaleInt(3, 1, 2, RoundNearest); got != 2 {
		t.Errorf("RescaleInt(3, 1, 2, nearest) = %d, want 2", got)
	}
}

func TestRescale_NoTimestamp(t *testing.T) {
	got := Rescale(NoTimestamp, Rational{1, 48000}, Rational{1, 90000})
	if got != NoTimestamp {
		t.Errorf("Rescale(NoTimestamp) = %d, want NoTimestamp", got)
	}
}

func TestRescale_ExactMultiple(t *testing.T) {
	// 48000 -> 90000 ticks: every input must land exactly on v*15/8 and
	// convert back without loss when divisible.
	from := Rational{1, 48000}
	to := Rational{1, 90000}
	for _, v := range []int64{0, 8, 1024, 48000, 123456, 1 << 40} {
		got := Rescale(v, from, to)
		want := v * 15 / 8
		if v%8 == 0 && got != want {
			t.Errorf("Rescale(%d) = %d, want %d", v, got, want)
		}
		if v%8 == 0 {
			if back := Rescale(got, to, from); back != v {
				t.Errorf("round trip of %d = %d", v, back)
			}
		}
	}
}

func TestRescale_Monotonic(t *testing.T) {
	// A non-decreasing tick sequence must stay non-decreasing through any
	// timebase conversion.
	from := Rational{100, 2997}
	to := Rational{1, 90000}
	prev := int64(math.MinInt64 + 1)
	var v int64
	for i := 0; i < 10000; i++ {
		got := RescaleRound(v, from, to, RoundNearest)
		if got < prev {
			t.Fatalf("Rescale(%d) = %d < previous %d", v, got, prev)
		}
		prev = got
		v += int64(i % 3) // repeats and gaps
	}
}

func TestRescaleInt_Saturation(t *testing.T) {
	got := RescaleInt(math.MaxInt64, 3, 1, RoundNearest)
	if got != math.MaxInt64 {
		t.Errorf("positive overflow = %d, want MaxInt64", got)
	}
	got = RescaleInt(math.MinInt64+1, 3, 1, RoundNearest)
	if got != math.MinInt64 {
		t.Errorf("negative overflow = %d, want MinInt64", got)
	}
}

func TestRescaleInt_LargeIntermediate(t *testing.T) {
	// v*mul wraps 64 bits but the quotient fits: the 128-bit path must
	// produce the exact value.
	v := int64(1) << 62
	got := RescaleInt(v, 90000, 48000, RoundZero)
	want := (v / 8) * 15 // 90000/48000 reduced
	if got != want {
		t.Errorf("RescaleInt(2^62, 90000, 48000) = %d, want %d", got, want)
	}
}
