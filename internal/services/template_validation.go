package services

import (
	"errors"
	"math"
	"time"

	"product-template-service/internal/apperr"
	"product-template-service/internal/models"
	"product-template-service/internal/validation"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 1024
	maxParamNameLength   = 64
	maxChoiceLabelLength = 64
	maxCustomParams      = 32
	minChoiceOptions     = 2
	maxChoiceOptions     = 16

	minProposalTitleLength       = 3
	maxProposalTitleLength       = 200
	maxProposalDescriptionLength = 2048
	maxReasonLength              = 256
)

// maxUpdateIntervalSecs is the longest interval a time.Duration can hold.
const maxUpdateIntervalSecs = uint64(math.MaxInt64 / int64(time.Second))

// ValidateRules checks that the registry rules are internally consistent.
func ValidateRules(r models.TemplateValidationRules) error {
	return validation.ValidateAll(
		validation.Check{OK: r.MinDurationDays > 0, Err: apperr.New(apperr.InvalidInput, "min_duration_days", "must be greater than 0")},
		validation.Check{OK: r.MinDurationDays <= r.MaxDurationDays, Err: apperr.Newf(apperr.InvalidInput, "max_duration_days", "min %d exceeds max %d", r.MinDurationDays, r.MaxDurationDays)},
		validation.Check{OK: r.MaxPremiumRateBps <= validation.MaxBasisPoints, Err: apperr.Newf(apperr.InvalidInput, "max_premium_rate_bps", "%d bps exceeds 10000", r.MaxPremiumRateBps)},
		validation.Check{OK: r.MinCollateralRatioBps <= validation.MaxBasisPoints, Err: apperr.Newf(apperr.InvalidInput, "min_collateral_ratio_bps", "%d bps exceeds 10000", r.MinCollateralRatioBps)},
		validation.Check{OK: r.ApprovalThresholdBps > 0 && r.ApprovalThresholdBps <= validation.MaxBasisPoints, Err: apperr.Newf(apperr.InvalidInput, "approval_threshold_bps", "must be within [1, 10000], got %d", r.ApprovalThresholdBps)},
		validation.Check{OK: r.MinUpdateIntervalSecs <= maxUpdateIntervalSecs, Err: apperr.Newf(apperr.InvalidInput, "min_update_interval", "%d seconds exceeds maximum %d", r.MinUpdateIntervalSecs, maxUpdateIntervalSecs)},
	)
}

// ValidatePricing checks the risk table and tier list used by the premium models.
// The risk table must cover every level and never decrease as risk grows. Tiers
// start at coverage 0 and ascend strictly.
func ValidatePricing(p models.PricingConfig) error {
	var prev uint32
	for _, level := range models.RiskLevels {
		m, ok := p.RiskMultipliersBps[level]
		if !ok || m == 0 {
			return apperr.Newf(apperr.InvalidInput, "risk_multipliers_bps", "missing multiplier for %s", level)
		}
		if m < prev {
			return apperr.Newf(apperr.InvalidInput, "risk_multipliers_bps", "multiplier for %s is below the previous level", level)
		}
		prev = m
	}
	for level := range p.RiskMultipliersBps {
		if !level.IsValid() {
			return apperr.Newf(apperr.InvalidInput, "risk_multipliers_bps", "unknown risk level %q", level)
		}
	}

	if len(p.Tiers) == 0 {
		return apperr.New(apperr.InvalidInput, "tiers", "at least one tier is required")
	}
	if p.Tiers[0].FromCoverage != 0 {
		return apperr.New(apperr.InvalidInput, "tiers", "first tier must start at coverage 0")
	}
	for i, tier := range p.Tiers {
		if tier.MultiplierBps == 0 {
			return apperr.Newf(apperr.InvalidInput, "tiers", "tier %d has a zero multiplier", i)
		}
		if i > 0 && tier.FromCoverage <= p.Tiers[i-1].FromCoverage {
			return apperr.Newf(apperr.InvalidInput, "tiers", "tier %d does not ascend", i)
		}
	}

	for name, bps := range p.BooleanAdjustments {
		if name == "" || bps == 0 {
			return apperr.Newf(apperr.InvalidInput, "boolean_adjustments_bps", "invalid adjustment %q = %d", name, bps)
		}
	}
	return nil
}

// collectTemplateIssues runs every template check against the rules and records
// each failure. Bound checks come before schema checks.
func collectTemplateIssues(t *models.ProductTemplate, rules models.TemplateValidationRules) *apperr.Aggregate {
	agg := &apperr.Aggregate{}

	agg.Add(validation.ValidateStringLength("name", t.Name, 1, maxNameLength))
	agg.Add(validation.ValidateStringLength("description", t.Description, 1, maxDescriptionLength))

	if !t.Category.IsValid() {
		agg.Add(apperr.Newf(apperr.InvalidInput, "category", "unknown category %q", t.Category))
	}
	if !t.RiskLevel.IsValid() {
		agg.Add(apperr.Newf(apperr.InvalidInput, "risk_level", "unknown risk level %q", t.RiskLevel))
	}
	if !t.PremiumModel.IsValid() {
		agg.Add(apperr.Newf(apperr.InvalidInput, "premium_model", "unknown premium model %q", t.PremiumModel))
	}
	if !t.CoverageType.IsValid() {
		agg.Add(apperr.Newf(apperr.InvalidInput, "coverage_type", "unknown coverage type %q", t.CoverageType))
	}

	agg.Add(validation.ValidatePositiveAmount("min_coverage", t.MinCoverage))
	agg.Add(validation.ValidatePositiveAmount("max_coverage", t.MaxCoverage))
	agg.Add(validation.ValidateRange("coverage", t.MinCoverage, t.MaxCoverage))

	agg.Add(validation.ValidateDaysInBounds("min_duration_days", t.MinDurationDays, rules.MinDurationDays, rules.MaxDurationDays))
	agg.Add(validation.ValidateDaysInBounds("max_duration_days", t.MaxDurationDays, rules.MinDurationDays, rules.MaxDurationDays))
	agg.Add(validation.ValidateRange("duration_days", int64(t.MinDurationDays), int64(t.MaxDurationDays)))

	agg.Add(validation.ValidateNonNegativeAmount("min_deductible", t.MinDeductible))
	agg.Add(validation.ValidateRange("deductible", t.MinDeductible, t.MaxDeductible))

	agg.Add(validation.ValidateBasisPoints("base_premium_rate_bps", t.BasePremiumRateBps))
	if t.BasePremiumRateBps > rules.MaxPremiumRateBps {
		agg.Add(apperr.Newf(apperr.InvalidInput, "base_premium_rate_bps", "%d exceeds maximum %d", t.BasePremiumRateBps, rules.MaxPremiumRateBps))
	}
	agg.Add(validation.ValidateBasisPoints("collateral_ratio_bps", t.CollateralRatioBps))
	if t.CollateralRatioBps < rules.MinCollateralRatioBps {
		agg.Add(apperr.Newf(apperr.InvalidInput, "collateral_ratio_bps", "%d below minimum %d", t.CollateralRatioBps, rules.MinCollateralRatioBps))
	}

	for _, err := range validateSchema(t.CustomParams) {
		agg.Add(err)
	}
	return agg
}

// validateSchema reports every malformed parameter definition as InvalidParameterValue.
func validateSchema(params models.CustomParams) []error {
	var errs []error
	if len(params) > maxCustomParams {
		errs = append(errs, apperr.Newf(apperr.InvalidParameterValue, "custom_params", "%d parameters exceeds %d", len(params), maxCustomParams))
	}

	seen := make(map[string]struct{}, len(params))
	for _, p := range params {
		field := "custom_params." + p.Name
		if err := validation.ValidateStringLength("custom_params.name", p.Name, 1, maxParamNameLength); err != nil {
			errs = append(errs, asParamError(err))
		}
		if _, dup := seen[p.Name]; dup {
			errs = append(errs, apperr.Newf(apperr.InvalidParameterValue, field, "duplicate parameter %q", p.Name))
		}
		seen[p.Name] = struct{}{}

		switch p.Kind {
		case models.ParamInteger, models.ParamDecimal:
			if p.Min > p.Max {
				errs = append(errs, apperr.Newf(apperr.InvalidParameterValue, field, "min %d exceeds max %d", p.Min, p.Max))
			} else if p.Default < p.Min || p.Default > p.Max {
				errs = append(errs, apperr.Newf(apperr.InvalidParameterValue, field, "default %d outside [%d, %d]", p.Default, p.Min, p.Max))
			}
		case models.ParamBoolean:
		case models.ParamChoice:
			errs = append(errs, validateChoice(field, p)...)
		default:
			errs = append(errs, apperr.Newf(apperr.InvalidParameterValue, field, "unknown parameter kind %q", p.Kind))
		}
	}
	return errs
}

func validateChoice(field string, p models.CustomParam) []error {
	var errs []error
	if err := validation.ValidateCollectionLength(field+".options", len(p.Options), minChoiceOptions, maxChoiceOptions); err != nil {
		errs = append(errs, asParamError(err))
	}
	labels := make(map[string]struct{}, len(p.Options))
	for _, opt := range p.Options {
		if err := validation.ValidateStringLength(field+".options", opt, 1, maxChoiceLabelLength); err != nil {
			errs = append(errs, asParamError(err))
		}
		if _, dup := labels[opt]; dup {
			errs = append(errs, apperr.Newf(apperr.InvalidParameterValue, field+".options", "duplicate option %q", opt))
		}
		labels[opt] = struct{}{}
	}
	if int(p.DefaultIndex) >= len(p.Options) {
		errs = append(errs, apperr.Newf(apperr.InvalidParameterValue, field+".default_index", "index %d out of range for %d options", p.DefaultIndex, len(p.Options)))
	}
	return errs
}

func asParamError(err error) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return apperr.New(apperr.InvalidParameterValue, e.Field, e.Reason)
	}
	return err
}

func validateProposal(req models.ProposalRequest, rules models.TemplateValidationRules) error {
	if err := validation.ValidateStringLength("title", req.Title, minProposalTitleLength, maxProposalTitleLength); err != nil {
		return err
	}
	if err := validation.ValidateStringLength("description", req.Description, 1, maxProposalDescriptionLength); err != nil {
		return err
	}
	if err := validation.ValidateStringLength("reason", req.Reason, 0, maxReasonLength); err != nil {
		return err
	}
	return validation.ValidateVotingThreshold(req.ThresholdPct, rules.ApprovalThresholdBps)
}
