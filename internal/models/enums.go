package models

type TemplateStatus string

const (
	TemplateDraft         TemplateStatus = "draft"
	TemplatePendingReview TemplateStatus = "pending_review"
	TemplateApproved      TemplateStatus = "approved"
	TemplateActive        TemplateStatus = "active"
	TemplateDeprecated    TemplateStatus = "deprecated"
	TemplateArchived      TemplateStatus = "archived"
)

func (s TemplateStatus) IsValid() bool {
	switch s {
	case TemplateDraft, TemplatePendingReview, TemplateApproved,
		TemplateActive, TemplateDeprecated, TemplateArchived:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no transition leaves s.
func (s TemplateStatus) IsTerminal() bool {
	return s == TemplateArchived
}

// IsEditable reports whether update_template is allowed in s.
func (s TemplateStatus) IsEditable() bool {
	switch s {
	case TemplateDraft, TemplateApproved:
		return true
	default:
		return false
	}
}

type ProductCategory string

const (
	CategoryProperty  ProductCategory = "property"
	CategoryAuto      ProductCategory = "auto"
	CategoryHealth    ProductCategory = "health"
	CategoryLife      ProductCategory = "life"
	CategoryTravel    ProductCategory = "travel"
	CategoryCrop      ProductCategory = "crop"
	CategoryLiability ProductCategory = "liability"
	CategoryCyber     ProductCategory = "cyber"
)

func (c ProductCategory) IsValid() bool {
	switch c {
	case CategoryProperty, CategoryAuto, CategoryHealth, CategoryLife,
		CategoryTravel, CategoryCrop, CategoryLiability, CategoryCyber:
		return true
	default:
		return false
	}
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

// RiskLevels lists every level from lowest to highest risk.
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskVeryHigh}

func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskVeryHigh:
		return true
	default:
		return false
	}
}

type PremiumModel string

const (
	PremiumFixed      PremiumModel = "fixed"
	PremiumPercentage PremiumModel = "percentage"
	PremiumRiskBased  PremiumModel = "risk_based"
	PremiumTiered     PremiumModel = "tiered"
)

func (m PremiumModel) IsValid() bool {
	switch m {
	case PremiumFixed, PremiumPercentage, PremiumRiskBased, PremiumTiered:
		return true
	default:
		return false
	}
}

type CoverageType string

const (
	CoverageComprehensive CoverageType = "comprehensive"
	CoverageBasic         CoverageType = "basic"
	CoverageParametric    CoverageType = "parametric"
	CoverageIndemnity     CoverageType = "indemnity"
)

func (c CoverageType) IsValid() bool {
	switch c {
	case CoverageComprehensive, CoverageBasic, CoverageParametric, CoverageIndemnity:
		return true
	default:
		return false
	}
}

type ParamKind string

const (
	ParamInteger ParamKind = "integer"
	ParamDecimal ParamKind = "decimal"
	ParamBoolean ParamKind = "boolean"
	ParamChoice  ParamKind = "choice"
)

func (k ParamKind) IsValid() bool {
	switch k {
	case ParamInteger, ParamDecimal, ParamBoolean, ParamChoice:
		return true
	default:
		return false
	}
}

type ProposalKind string

const (
	ProposalApproval  ProposalKind = "approval"
	ProposalRejection ProposalKind = "rejection"
)

type ProposalOutcome string

const (
	OutcomePending ProposalOutcome = "pending"
	OutcomePassed  ProposalOutcome = "passed"
	OutcomeFailed  ProposalOutcome = "failed"
)
