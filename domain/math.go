package domain

import "math/bits"

const (
	// Scale is the fixed-point precision of the share price.
	Scale = uint64(1_000_000)

	// BasisPoints is the denominator of every allocation and rate.
	BasisPoints = uint64(10_000)
)

// mulDiv returns floor(a * b / c) using a 128 bit intermediate product.
func mulDiv(a, b, c uint64) (uint64, error) {
	if c == 0 {
		return 0, ErrorOverflow
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return 0, ErrorOverflow
	}
	q, _ := bits.Div64(hi, lo, c)
	return q, nil
}

func add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrorOverflow
	}
	return sum, nil
}
