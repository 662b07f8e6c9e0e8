// Package validation holds the bounds checks and checked integer arithmetic
// shared by the registry, the parameter schema and the premium calculator.
// Every helper returns a typed *apperr.Error so results chain with early returns.
package validation

import (
	"unicode/utf8"

	"product-template-service/internal/apperr"
)

const (
	MaxBasisPoints uint32 = 10_000
	MaxPageSize    uint32 = 1_000
	MaxPercentage  uint32 = 100
	// SimpleMajorityPct is the floor any approval threshold must exceed.
	SimpleMajorityPct uint32 = 50
)

func ValidatePositiveAmount(field string, amount int64) error {
	if amount <= 0 {
		return apperr.Newf(apperr.InvalidInput, field, "must be greater than 0, got %d", amount)
	}
	return nil
}

func ValidateNonNegativeAmount(field string, amount int64) error {
	if amount < 0 {
		return apperr.Newf(apperr.InvalidInput, field, "cannot be negative, got %d", amount)
	}
	return nil
}

// ValidateAmountInBounds checks min <= amount <= max, both inclusive.
func ValidateAmountInBounds(field string, amount, min, max int64) error {
	if amount < min || amount > max {
		return apperr.Newf(apperr.InvalidInput, field, "%d outside [%d, %d]", amount, min, max)
	}
	return nil
}

func ValidateDaysInBounds(field string, days, min, max uint32) error {
	if days < min || days > max {
		return apperr.Newf(apperr.InvalidInput, field, "%d outside [%d, %d]", days, min, max)
	}
	return nil
}

// ValidateRange checks that a declared [min, max] pair is ordered.
func ValidateRange(field string, min, max int64) error {
	if min > max {
		return apperr.Newf(apperr.InvalidInput, field, "min %d exceeds max %d", min, max)
	}
	return nil
}

func ValidateBasisPoints(field string, bps uint32) error {
	if bps > MaxBasisPoints {
		return apperr.Newf(apperr.InvalidInput, field, "%d bps exceeds %d", bps, MaxBasisPoints)
	}
	return nil
}

func ValidatePercentage(field string, pct uint32) error {
	if pct > MaxPercentage {
		return apperr.Newf(apperr.InvalidInput, field, "%d%% exceeds 100%%", pct)
	}
	return nil
}

// ValidateVotingThreshold requires 1..100 and a strict majority, and at least minBps.
func ValidateVotingThreshold(pct uint32, minBps uint32) error {
	if pct == 0 {
		return apperr.New(apperr.InvalidInput, "threshold_pct", "must be greater than 0")
	}
	if err := ValidatePercentage("threshold_pct", pct); err != nil {
		return err
	}
	if pct <= SimpleMajorityPct {
		return apperr.Newf(apperr.ThresholdTooLow, "threshold_pct", "%d%% is not a majority", pct)
	}
	if pct*100 < minBps {
		return apperr.Newf(apperr.ThresholdTooLow, "threshold_pct", "%d%% below configured %d bps", pct, minBps)
	}
	return nil
}

// ValidatePagination accepts 1 <= limit <= 1000.
func ValidatePagination(limit uint32) error {
	if limit == 0 || limit > MaxPageSize {
		return apperr.Newf(apperr.InvalidPaginationParams, "limit", "must be within [1, %d], got %d", MaxPageSize, limit)
	}
	return nil
}

// ValidateStringLength counts runes, not bytes.
func ValidateStringLength(field, s string, min, max int) error {
	n := utf8.RuneCountInString(s)
	if n < min {
		return apperr.Newf(apperr.InvalidInput, field, "length %d below minimum %d", n, min)
	}
	if n > max {
		return apperr.Newf(apperr.InvalidInput, field, "length %d exceeds maximum %d", n, max)
	}
	return nil
}

func ValidateCollectionLength(field string, n, min, max int) error {
	if n < min || n > max {
		return apperr.Newf(apperr.InvalidInput, field, "%d items outside [%d, %d]", n, min, max)
	}
	return nil
}

// Check pairs a condition with the error reported when it does not hold.
type Check struct {
	OK  bool
	Err error
}

// ValidateAll returns the error of the first failing check.
func ValidateAll(checks ...Check) error {
	for _, c := range checks {
		if !c.OK {
			return c.Err
		}
	}
	return nil
}
