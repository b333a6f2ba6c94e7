package mathutil

import "math"

// EuclidDiv returns the Euclidean quotient of a and b: the q for which
// a = q*b + r holds with 0 <= r < |b|. It panics if b is zero.
func EuclidDiv(a, b int64) int64 {
	q := a / b
	if a%b < 0 {
		if b > 0 {
			q--
		} else {
			q++
		}
	}
	return q
}

// EuclidMod returns the Euclidean remainder of a and b, always in [0, |b|).
// It panics if b is zero.
func EuclidMod(a, b int64) int64 {
	r := a % b
	if r < 0 {
		if b > 0 {
			r += b
		} else {
			r -= b
		}
	}
	return r
}

// SaturatingSubUint64 returns a-b, or 0 when b > a
func SaturatingSubUint64(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// SaturatingAdd returns a+b clamped to the int64 range
func SaturatingAdd(a, b int64) int64 {
	c := a + b
	switch {
	case a > 0 && b > 0 && c < 0:
		return math.MaxInt64
	case a < 0 && b < 0 && c >= 0:
		return math.MinInt64
	}
	return c
}

// SaturatingMul returns a*b clamped to the int64 range
func SaturatingMul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	c := a * b
	overflow := c/b != a ||
		(a == -1 && b == math.MinInt64) ||
		(b == -1 && a == math.MinInt64)
	if !overflow {
		return c
	}
	if (a < 0) == (b < 0) {
		return math.MaxInt64
	}
	return math.MinInt64
}

// FractionToNanos converts a 32-bit binary fraction of a second (value / 2^32)
// to nanoseconds, truncating toward zero. The result is always in [0, 1e9).
func FractionToNanos(frac uint32) int64 {
	return int64((uint64(frac) * 1_000_000_000) >> 32)
}
