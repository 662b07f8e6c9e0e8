package models

import "time"

// TemplatePolicy is a policy stamped out of an Active template. TemplateVersion
// freezes the template version at issuance; later template updates never touch it.
type TemplatePolicy struct {
	PolicyID           uint64            `json:"policy_id" db:"policy_id"`
	TemplateID         uint64            `json:"template_id" db:"template_id"`
	Holder             string            `json:"holder" db:"holder"`
	CoverageAmount     int64             `json:"coverage_amount" db:"coverage_amount"`
	DurationDays       uint32            `json:"duration_days" db:"duration_days"`
	Deductible         int64             `json:"deductible" db:"deductible"`
	CustomValues       CustomParamValues `json:"custom_values" db:"custom_values"`
	PremiumAmount      int64             `json:"premium_amount" db:"premium_amount"`
	RequiredCollateral int64             `json:"required_collateral" db:"required_collateral"`
	CreatedAt          time.Time         `json:"created_at" db:"created_at"`
	StartTime          time.Time         `json:"start_time" db:"start_time"`
	EndTime            time.Time         `json:"end_time" db:"end_time"`
	TemplateVersion    uint32            `json:"template_version" db:"template_version"`
}

func (p TemplatePolicy) Clone() TemplatePolicy {
	p.CustomValues = append(CustomParamValues(nil), p.CustomValues...)
	return p
}

// PolicyFilter selects policies by holder or by template.
type PolicyFilter struct {
	Holder     string
	TemplateID uint64
}

func (f PolicyFilter) Matches(p *TemplatePolicy) bool {
	if f.Holder != "" && p.Holder != f.Holder {
		return false
	}
	if f.TemplateID != 0 && p.TemplateID != f.TemplateID {
		return false
	}
	return true
}
