package domain

import (
	"math"
	"strings"
)

// DecodeExponent maps a damage exponent code to a power of ten.
// It is total: every code, including empty or unrecognized ones, yields an
// exponent, and unknown codes mean "no scaling" (0).
func DecodeExponent(code string) int {
	code = strings.TrimSpace(code)
	if len(code) != 1 {
		return 0
	}

	c := code[0]
	switch c {
	case 'B', 'b':
		return 9
	case 'M', 'm':
		return 6
	case 'K', 'k':
		return 3
	case 'H', 'h':
		return 2
	}
	if c >= '0' && c <= '9' {
		return int(c - '0')
	}
	return 0
}

// DecodeAmount scales a raw damage magnitude by its exponent code.
func DecodeAmount(amount float64, code string) float64 {
	return amount * math.Pow10(DecodeExponent(code))
}
