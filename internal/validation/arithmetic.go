package validation

import (
	"math"

	"product-template-service/internal/apperr"
)

const (
	// BasisPointsScale is 100% expressed in basis points.
	BasisPointsScale int64 = 10_000
	DaysPerYear      int64 = 365
)

func SafeAdd(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, apperr.Newf(apperr.Overflow, "", "%d + %d overflows", a, b)
	}
	return a + b, nil
}

// SafeSub reports Overflow when subtracting a negative goes past MaxInt64 and
// Underflow when the result drops below MinInt64.
func SafeSub(a, b int64) (int64, error) {
	if b < 0 && a > math.MaxInt64+b {
		return 0, apperr.Newf(apperr.Overflow, "", "%d - %d overflows", a, b)
	}
	if b > 0 && a < math.MinInt64+b {
		return 0, apperr.Newf(apperr.Underflow, "", "%d - %d underflows", a, b)
	}
	return a - b, nil
}

func SafeMul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, apperr.Newf(apperr.Overflow, "", "%d * %d overflows", a, b)
	}
	c := a * b
	if c/b != a {
		return 0, apperr.Newf(apperr.Overflow, "", "%d * %d overflows", a, b)
	}
	return c, nil
}

// SafeDiv truncates toward zero like Go's integer division.
func SafeDiv(a, b int64) (int64, error) {
	if b == 0 {
		return 0, apperr.New(apperr.DivisionByZero, "", "division by zero")
	}
	if a == math.MinInt64 && b == -1 {
		return 0, apperr.Newf(apperr.Overflow, "", "%d / %d overflows", a, b)
	}
	return a / b, nil
}

// MulDiv computes a*b/d with the product checked before dividing.
func MulDiv(a, b, d int64) (int64, error) {
	p, err := SafeMul(a, b)
	if err != nil {
		return 0, err
	}
	return SafeDiv(p, d)
}

// ApplyBasisPoints returns amount * bps / 10 000. Multipliers above 100% are allowed.
func ApplyBasisPoints(amount int64, bps uint32) (int64, error) {
	return MulDiv(amount, int64(bps), BasisPointsScale)
}
