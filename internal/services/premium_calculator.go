package services

import (
	"log/slog"

	"product-template-service/internal/apperr"
	"product-template-service/internal/models"
	"product-template-service/internal/validation"
)

// annualRateDivisor folds the bps scale and the 365-day year into one divisor so
// every product is taken before the single division.
const annualRateDivisor = validation.BasisPointsScale * validation.DaysPerYear

type PremiumCalculator struct {
	pricing models.PricingConfig
}

func NewPremiumCalculator(pricing models.PricingConfig) (*PremiumCalculator, error) {
	if err := ValidatePricing(pricing); err != nil {
		return nil, err
	}
	return &PremiumCalculator{pricing: pricing}, nil
}

// PercentagePremium is coverage * rate / 10 000 * days / 365 computed as one
// checked product followed by one division.
func PercentagePremium(coverage int64, rateBps, days uint32) (int64, error) {
	if err := checkPricingInputs(coverage, days); err != nil {
		return 0, err
	}
	product, err := validation.SafeMul(coverage, int64(rateBps))
	if err != nil {
		return 0, err
	}
	return validation.MulDiv(product, int64(days), annualRateDivisor)
}

// RequiredCollateral is coverage * ratio / 10 000.
func RequiredCollateral(coverage int64, ratioBps uint32) (int64, error) {
	if err := validation.ValidatePositiveAmount("coverage_amount", coverage); err != nil {
		return 0, err
	}
	return validation.ApplyBasisPoints(coverage, ratioBps)
}

func checkPricingInputs(coverage int64, days uint32) error {
	if err := validation.ValidatePositiveAmount("coverage_amount", coverage); err != nil {
		return err
	}
	if days == 0 {
		return apperr.New(apperr.InvalidInput, "duration_days", "must be greater than 0")
	}
	return nil
}

// BasePremium prices a policy with the template's model before parameter adjustments.
func (c *PremiumCalculator) BasePremium(t *models.ProductTemplate, coverage int64, days uint32) (int64, error) {
	if err := checkPricingInputs(coverage, days); err != nil {
		return 0, err
	}

	switch t.PremiumModel {
	case models.PremiumFixed:
		return int64(t.BasePremiumRateBps), nil
	case models.PremiumPercentage:
		return PercentagePremium(coverage, t.BasePremiumRateBps, days)
	case models.PremiumRiskBased:
		base, err := PercentagePremium(coverage, t.BasePremiumRateBps, days)
		if err != nil {
			return 0, err
		}
		multiplier, ok := c.pricing.RiskMultipliersBps[t.RiskLevel]
		if !ok {
			return 0, apperr.Newf(apperr.InvalidInput, "risk_level", "no multiplier configured for %q", t.RiskLevel)
		}
		return validation.ApplyBasisPoints(base, multiplier)
	case models.PremiumTiered:
		base, err := PercentagePremium(coverage, t.BasePremiumRateBps, days)
		if err != nil {
			return 0, err
		}
		return validation.ApplyBasisPoints(base, c.tierMultiplier(coverage))
	default:
		return 0, apperr.Newf(apperr.InvalidInput, "premium_model", "unknown premium model %q", t.PremiumModel)
	}
}

// tierMultiplier picks the last tier starting at or below coverage.
func (c *PremiumCalculator) tierMultiplier(coverage int64) uint32 {
	multiplier := c.pricing.Tiers[0].MultiplierBps
	for _, tier := range c.pricing.Tiers {
		if tier.FromCoverage > coverage {
			break
		}
		multiplier = tier.MultiplierBps
	}
	return multiplier
}

// Premium applies the configured boolean adjustments, in schema order, on top of BasePremium.
func (c *PremiumCalculator) Premium(t *models.ProductTemplate, coverage int64, days uint32, values models.CustomParamValues) (int64, error) {
	premium, err := c.BasePremium(t, coverage, days)
	if err != nil {
		return 0, err
	}
	for _, v := range values {
		if v.Kind != models.ParamBoolean || !v.Bool {
			continue
		}
		bps, ok := c.pricing.BooleanAdjustments[v.Name]
		if !ok {
			continue
		}
		if premium, err = validation.ApplyBasisPoints(premium, bps); err != nil {
			return 0, err
		}
		slog.Debug("Applied premium adjustment", "template_id", t.ID, "parameter", v.Name, "adjustment_bps", bps)
	}
	return premium, nil
}
