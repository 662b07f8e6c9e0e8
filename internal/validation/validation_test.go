package validation

import (
	"errors"
	"math"
	"testing"

	"product-template-service/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeArithmetic(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (int64, error)
		want int64
		kind apperr.Kind
	}{
		{"add", func() (int64, error) { return SafeAdd(2, 3) }, 5, ""},
		{"add overflow", func() (int64, error) { return SafeAdd(math.MaxInt64, 1) }, 0, apperr.Overflow},
		{"add negative overflow", func() (int64, error) { return SafeAdd(math.MinInt64, -1) }, 0, apperr.Overflow},
		{"sub", func() (int64, error) { return SafeSub(10, 4) }, 6, ""},
		{"sub underflow", func() (int64, error) { return SafeSub(math.MinInt64, 1) }, 0, apperr.Underflow},
		{"sub of negative past max", func() (int64, error) { return SafeSub(math.MaxInt64, -1) }, 0, apperr.Overflow},
		{"sub of min from zero", func() (int64, error) { return SafeSub(0, math.MinInt64) }, 0, apperr.Overflow},
		{"mul", func() (int64, error) { return SafeMul(-7, 6) }, -42, ""},
		{"mul by zero", func() (int64, error) { return SafeMul(0, math.MaxInt64) }, 0, ""},
		{"mul overflow", func() (int64, error) { return SafeMul(math.MaxInt64/2+1, 2) }, 0, apperr.Overflow},
		{"mul min by minus one", func() (int64, error) { return SafeMul(math.MinInt64, -1) }, 0, apperr.Overflow},
		{"div", func() (int64, error) { return SafeDiv(7, 2) }, 3, ""},
		{"div by zero", func() (int64, error) { return SafeDiv(7, 0) }, 0, apperr.DivisionByZero},
		{"div min by minus one", func() (int64, error) { return SafeDiv(math.MinInt64, -1) }, 0, apperr.Overflow},
		{"muldiv", func() (int64, error) { return MulDiv(100_000, 200, 10_000) }, 2_000, ""},
		{"basis points", func() (int64, error) { return ApplyBasisPoints(1_000, 15_000) }, 1_500, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if tt.kind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.kind, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidatePagination(t *testing.T) {
	assert.True(t, errors.Is(ValidatePagination(0), apperr.ErrInvalidPaginationParams))
	assert.True(t, errors.Is(ValidatePagination(1001), apperr.ErrInvalidPaginationParams))
	assert.NoError(t, ValidatePagination(1))
	assert.NoError(t, ValidatePagination(1000))
}

func TestValidateVotingThreshold(t *testing.T) {
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(ValidateVotingThreshold(0, 5100)))
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(ValidateVotingThreshold(101, 5100)))
	assert.Equal(t, apperr.ThresholdTooLow, apperr.KindOf(ValidateVotingThreshold(50, 0)))
	assert.Equal(t, apperr.ThresholdTooLow, apperr.KindOf(ValidateVotingThreshold(51, 5200)))
	assert.NoError(t, ValidateVotingThreshold(51, 5100))
	assert.NoError(t, ValidateVotingThreshold(100, 10_000))
}

func TestValidateStringLength(t *testing.T) {
	assert.Error(t, ValidateStringLength("name", "", 1, 10))
	assert.Error(t, ValidateStringLength("name", "abcdefghijk", 1, 10))
	// runes, not bytes
	assert.NoError(t, ValidateStringLength("name", "bảo hiểm", 1, 8))
}

func TestValidateBoundsHelpers(t *testing.T) {
	assert.NoError(t, ValidateAmountInBounds("coverage_amount", 10, 10, 20))
	assert.NoError(t, ValidateAmountInBounds("coverage_amount", 20, 10, 20))
	assert.Error(t, ValidateAmountInBounds("coverage_amount", 9, 10, 20))
	assert.Error(t, ValidateAmountInBounds("coverage_amount", 21, 10, 20))
	assert.Error(t, ValidateRange("coverage", 5, 4))
	assert.Error(t, ValidateBasisPoints("rate", 10_001))
	assert.Error(t, ValidatePositiveAmount("coverage", 0))
	assert.NoError(t, ValidateNonNegativeAmount("deductible", 0))
	assert.Error(t, ValidateCollectionLength("options", 1, 2, 16))
}

func TestValidateAllReturnsFirstFailure(t *testing.T) {
	first := apperr.New(apperr.InvalidInput, "a", "first")
	second := apperr.New(apperr.InvalidParameterValue, "b", "second")

	err := ValidateAll(Check{OK: true}, Check{OK: false, Err: first}, Check{OK: false, Err: second})
	assert.Same(t, first, err)
	assert.NoError(t, ValidateAll(Check{OK: true}))
}
