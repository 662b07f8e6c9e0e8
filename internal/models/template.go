package models

import (
	"time"
)

// ============================================================================
// PRODUCT TEMPLATE
// ============================================================================

type ProductTemplate struct {
	ID                 uint64          `json:"id" db:"id"`
	Name               string          `json:"name" db:"name"`
	Description        string          `json:"description" db:"description"`
	Category           ProductCategory `json:"category" db:"category"`
	Status             TemplateStatus  `json:"status" db:"status"`
	RiskLevel          RiskLevel       `json:"risk_level" db:"risk_level"`
	PremiumModel       PremiumModel    `json:"premium_model" db:"premium_model"`
	CoverageType       CoverageType    `json:"coverage_type" db:"coverage_type"`
	MinCoverage        int64           `json:"min_coverage" db:"min_coverage"`
	MaxCoverage        int64           `json:"max_coverage" db:"max_coverage"`
	MinDurationDays    uint32          `json:"min_duration_days" db:"min_duration_days"`
	MaxDurationDays    uint32          `json:"max_duration_days" db:"max_duration_days"`
	BasePremiumRateBps uint32          `json:"base_premium_rate_bps" db:"base_premium_rate_bps"`
	MinDeductible      int64           `json:"min_deductible" db:"min_deductible"`
	MaxDeductible      int64           `json:"max_deductible" db:"max_deductible"`
	CollateralRatioBps uint32          `json:"collateral_ratio_bps" db:"collateral_ratio_bps"`
	CustomParams       CustomParams    `json:"custom_params" db:"custom_params"`
	Creator            string          `json:"creator" db:"creator"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
	Version            uint32          `json:"version" db:"version"`
}

// Clone returns a copy that shares no slices with t.
func (t ProductTemplate) Clone() ProductTemplate {
	t.CustomParams = t.CustomParams.Clone()
	return t
}

// TemplateValidationRules are fixed when the registry is constructed.
type TemplateValidationRules struct {
	MinCollateralRatioBps uint32 `json:"min_collateral_ratio_bps" yaml:"min_collateral_ratio_bps"`
	MaxPremiumRateBps     uint32 `json:"max_premium_rate_bps" yaml:"max_premium_rate_bps"`
	MinDurationDays       uint32 `json:"min_duration_days" yaml:"min_duration_days"`
	MaxDurationDays       uint32 `json:"max_duration_days" yaml:"max_duration_days"`
	ApprovalThresholdBps  uint32 `json:"approval_threshold_bps" yaml:"approval_threshold_bps"`
	MinUpdateIntervalSecs uint64 `json:"min_update_interval" yaml:"min_update_interval_seconds"`
}

func (r TemplateValidationRules) MinUpdateInterval() time.Duration {
	return time.Duration(r.MinUpdateIntervalSecs) * time.Second
}

// ============================================================================
// PRICING CONFIGURATION
// ============================================================================

// CoverageTier applies MultiplierBps to coverage amounts from FromCoverage
// (inclusive) up to the next tier's FromCoverage.
type CoverageTier struct {
	FromCoverage  int64  `json:"from_coverage" yaml:"from_coverage"`
	MultiplierBps uint32 `json:"multiplier_bps" yaml:"multiplier_bps"`
}

// PricingConfig is deployment-supplied data for the RiskBased and Tiered models
// and for premium adjustments driven by boolean custom parameters.
type PricingConfig struct {
	RiskMultipliersBps map[RiskLevel]uint32 `json:"risk_multipliers_bps" yaml:"risk_multipliers_bps"`
	Tiers              []CoverageTier       `json:"tiers" yaml:"tiers"`
	BooleanAdjustments map[string]uint32    `json:"boolean_adjustments_bps" yaml:"boolean_adjustments_bps"`
}

// TemplateFilter selects templates for paginated listing. Zero-valued fields match everything.
type TemplateFilter struct {
	Status   TemplateStatus
	Category ProductCategory
}

func (f TemplateFilter) Matches(t *ProductTemplate) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	return true
}

// Page is a start/limit window over an id-ordered listing.
type Page struct {
	Start uint32 `json:"start"`
	Limit uint32 `json:"limit"`
}
