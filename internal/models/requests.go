package models

// CreateTemplateRequest carries every field of a new template. The creator is
// the authenticated caller, not part of the body.
type CreateTemplateRequest struct {
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Category           ProductCategory `json:"category"`
	RiskLevel          RiskLevel       `json:"risk_level"`
	PremiumModel       PremiumModel    `json:"premium_model"`
	CoverageType       CoverageType    `json:"coverage_type"`
	MinCoverage        int64           `json:"min_coverage"`
	MaxCoverage        int64           `json:"max_coverage"`
	MinDurationDays    uint32          `json:"min_duration_days"`
	MaxDurationDays    uint32          `json:"max_duration_days"`
	BasePremiumRateBps uint32          `json:"base_premium_rate_bps"`
	MinDeductible      int64           `json:"min_deductible"`
	MaxDeductible      int64           `json:"max_deductible"`
	CollateralRatioBps uint32          `json:"collateral_ratio_bps"`
	CustomParams       []CustomParam   `json:"custom_params"`
}

// UpdateTemplateRequest replaces only the fields that are set.
type UpdateTemplateRequest struct {
	Name               *string          `json:"name,omitempty"`
	Description        *string          `json:"description,omitempty"`
	Category           *ProductCategory `json:"category,omitempty"`
	RiskLevel          *RiskLevel       `json:"risk_level,omitempty"`
	PremiumModel       *PremiumModel    `json:"premium_model,omitempty"`
	CoverageType       *CoverageType    `json:"coverage_type,omitempty"`
	MinCoverage        *int64           `json:"min_coverage,omitempty"`
	MaxCoverage        *int64           `json:"max_coverage,omitempty"`
	MinDurationDays    *uint32          `json:"min_duration_days,omitempty"`
	MaxDurationDays    *uint32          `json:"max_duration_days,omitempty"`
	BasePremiumRateBps *uint32          `json:"base_premium_rate_bps,omitempty"`
	MinDeductible      *int64           `json:"min_deductible,omitempty"`
	MaxDeductible      *int64           `json:"max_deductible,omitempty"`
	CollateralRatioBps *uint32          `json:"collateral_ratio_bps,omitempty"`
	CustomParams       *[]CustomParam   `json:"custom_params,omitempty"`
}

// ApplyTo merges the set fields into t.
func (r UpdateTemplateRequest) ApplyTo(t *ProductTemplate) {
	if r.Name != nil {
		t.Name = *r.Name
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if r.Category != nil {
		t.Category = *r.Category
	}
	if r.RiskLevel != nil {
		t.RiskLevel = *r.RiskLevel
	}
	if r.PremiumModel != nil {
		t.PremiumModel = *r.PremiumModel
	}
	if r.CoverageType != nil {
		t.CoverageType = *r.CoverageType
	}
	if r.MinCoverage != nil {
		t.MinCoverage = *r.MinCoverage
	}
	if r.MaxCoverage != nil {
		t.MaxCoverage = *r.MaxCoverage
	}
	if r.MinDurationDays != nil {
		t.MinDurationDays = *r.MinDurationDays
	}
	if r.MaxDurationDays != nil {
		t.MaxDurationDays = *r.MaxDurationDays
	}
	if r.BasePremiumRateBps != nil {
		t.BasePremiumRateBps = *r.BasePremiumRateBps
	}
	if r.MinDeductible != nil {
		t.MinDeductible = *r.MinDeductible
	}
	if r.MaxDeductible != nil {
		t.MaxDeductible = *r.MaxDeductible
	}
	if r.CollateralRatioBps != nil {
		t.CollateralRatioBps = *r.CollateralRatioBps
	}
	if r.CustomParams != nil {
		t.CustomParams = CustomParams(*r.CustomParams).Clone()
	}
}

// ToTemplate builds the unsaved template body for a create request.
func (r CreateTemplateRequest) ToTemplate() ProductTemplate {
	return ProductTemplate{
		Name:               r.Name,
		Description:        r.Description,
		Category:           r.Category,
		RiskLevel:          r.RiskLevel,
		PremiumModel:       r.PremiumModel,
		CoverageType:       r.CoverageType,
		MinCoverage:        r.MinCoverage,
		MaxCoverage:        r.MaxCoverage,
		MinDurationDays:    r.MinDurationDays,
		MaxDurationDays:    r.MaxDurationDays,
		BasePremiumRateBps: r.BasePremiumRateBps,
		MinDeductible:      r.MinDeductible,
		MaxDeductible:      r.MaxDeductible,
		CollateralRatioBps: r.CollateralRatioBps,
		CustomParams:       CustomParams(r.CustomParams).Clone(),
	}
}

type ProposalRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Reason       string `json:"reason,omitempty"`
	ThresholdPct uint32 `json:"threshold_pct"`
}

type CreatePolicyRequest struct {
	CoverageAmount int64              `json:"coverage_amount"`
	DurationDays   uint32             `json:"duration_days"`
	Deductible     int64              `json:"deductible"`
	CustomValues   []CustomParamValue `json:"custom_values"`
}

type ReasonRequest struct {
	Reason string `json:"reason"`
}
