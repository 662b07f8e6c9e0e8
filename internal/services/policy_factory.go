package services

import (
	"context"
	"log/slog"
	"time"

	"product-template-service/internal/apperr"
	"product-template-service/internal/models"
	"product-template-service/internal/repository"
	"product-template-service/internal/validation"
)

// PolicyFactory issues policies from Active templates.
type PolicyFactory struct {
	store      repository.Store
	calculator *PremiumCalculator
	options
}

func NewPolicyFactory(store repository.Store, calculator *PremiumCalculator, opts ...Option) *PolicyFactory {
	return &PolicyFactory{
		store:      store,
		calculator: calculator,
		options:    buildOptions(opts),
	}
}

// CreatePolicyFromTemplate validates the request against the template, prices it
// and stores a snapshot carrying the template's current version.
func (f *PolicyFactory) CreatePolicyFromTemplate(ctx context.Context, holder string, templateID uint64, req models.CreatePolicyRequest) (uint64, error) {
	var policy models.TemplatePolicy

	err := f.store.Atomically(ctx, func(tx repository.Tx) error {
		if err := requireRunning(tx); err != nil {
			return err
		}
		if holder == "" {
			return apperr.New(apperr.Unauthorized, "holder", "holder identity is required")
		}
		tmpl, err := tx.GetTemplate(templateID)
		if err != nil {
			return err
		}
		if tmpl.Status != models.TemplateActive {
			return apperr.Newf(apperr.InvalidTemplateStatus, "status", "policies need an %s template, got %s", models.TemplateActive, tmpl.Status)
		}

		values, premium, collateral, err := f.price(tmpl, req)
		if err != nil {
			return err
		}

		now := f.clock.Now()
		policy = models.TemplatePolicy{
			TemplateID:         templateID,
			Holder:             holder,
			CoverageAmount:     req.CoverageAmount,
			DurationDays:       req.DurationDays,
			Deductible:         req.Deductible,
			CustomValues:       values,
			PremiumAmount:      premium,
			RequiredCollateral: collateral,
			CreatedAt:          now,
			StartTime:          now,
			EndTime:            now.Add(time.Duration(req.DurationDays) * 24 * time.Hour),
			TemplateVersion:    tmpl.Version,
		}
		if policy.PolicyID, err = tx.NextPolicyID(); err != nil {
			return err
		}
		return tx.SavePolicy(&policy)
	})
	if err != nil {
		logRejected("create_policy_from_template", err, "template_id", templateID, "holder", holder)
		return 0, err
	}

	slog.Info("Policy created from template",
		"policy_id", policy.PolicyID,
		"template_id", templateID,
		"holder", holder,
		"premium_amount", policy.PremiumAmount,
		"required_collateral", policy.RequiredCollateral)
	f.committed(ctx, models.TemplateEvent{
		Type: models.EventPolicyCreated, TemplateID: templateID, PolicyID: policy.PolicyID,
		Actor: holder, Version: policy.TemplateVersion, At: policy.CreatedAt,
	})
	return policy.PolicyID, nil
}

// Quote is the price of a policy request that has not been issued.
type Quote struct {
	TemplateID         uint64                   `json:"template_id"`
	TemplateVersion    uint32                   `json:"template_version"`
	CustomValues       models.CustomParamValues `json:"custom_values"`
	PremiumAmount      int64                    `json:"premium_amount"`
	RequiredCollateral int64                    `json:"required_collateral"`
}

// QuotePremium runs every issuance check and returns the price without storing anything.
func (f *PolicyFactory) QuotePremium(ctx context.Context, templateID uint64, req models.CreatePolicyRequest) (*Quote, error) {
	var quote *Quote
	err := f.store.Atomically(ctx, func(tx repository.Tx) error {
		tmpl, err := tx.GetTemplate(templateID)
		if err != nil {
			return err
		}
		if tmpl.Status != models.TemplateActive {
			return apperr.Newf(apperr.InvalidTemplateStatus, "status", "quotes need an %s template, got %s", models.TemplateActive, tmpl.Status)
		}
		values, premium, collateral, err := f.price(tmpl, req)
		if err != nil {
			return err
		}
		quote = &Quote{
			TemplateID:         templateID,
			TemplateVersion:    tmpl.Version,
			CustomValues:       values,
			PremiumAmount:      premium,
			RequiredCollateral: collateral,
		}
		return nil
	})
	return quote, err
}

// price checks the request against the template bounds and schema, then prices it.
func (f *PolicyFactory) price(tmpl *models.ProductTemplate, req models.CreatePolicyRequest) (models.CustomParamValues, int64, int64, error) {
	if err := validation.ValidateAmountInBounds("coverage_amount", req.CoverageAmount, tmpl.MinCoverage, tmpl.MaxCoverage); err != nil {
		return nil, 0, 0, err
	}
	if err := validation.ValidateDaysInBounds("duration_days", req.DurationDays, tmpl.MinDurationDays, tmpl.MaxDurationDays); err != nil {
		return nil, 0, 0, err
	}
	if err := validation.ValidateAmountInBounds("deductible", req.Deductible, tmpl.MinDeductible, tmpl.MaxDeductible); err != nil {
		return nil, 0, 0, err
	}

	values, err := ResolveCustomValues(tmpl.CustomParams, req.CustomValues)
	if err != nil {
		return nil, 0, 0, err
	}
	premium, err := f.calculator.Premium(tmpl, req.CoverageAmount, req.DurationDays, values)
	if err != nil {
		return nil, 0, 0, err
	}
	collateral, err := RequiredCollateral(req.CoverageAmount, tmpl.CollateralRatioBps)
	if err != nil {
		return nil, 0, 0, err
	}
	return values, premium, collateral, nil
}

func (f *PolicyFactory) GetTemplatePolicy(ctx context.Context, policyID uint64) (*models.TemplatePolicy, error) {
	var policy *models.TemplatePolicy
	err := f.store.Atomically(ctx, func(tx repository.Tx) error {
		var err error
		policy, err = tx.GetPolicy(policyID)
		return err
	})
	return policy, err
}

func (f *PolicyFactory) GetPoliciesByHolder(ctx context.Context, holder string, start, limit uint32) ([]models.TemplatePolicy, error) {
	if err := validation.ValidatePagination(limit); err != nil {
		return nil, err
	}
	if holder == "" {
		return nil, apperr.New(apperr.InvalidInput, "holder", "holder is required")
	}
	return f.listPolicies(ctx, models.PolicyFilter{Holder: holder}, start, limit)
}

func (f *PolicyFactory) GetPoliciesByTemplate(ctx context.Context, templateID uint64, start, limit uint32) ([]models.TemplatePolicy, error) {
	if err := validation.ValidatePagination(limit); err != nil {
		return nil, err
	}
	if templateID == 0 {
		return nil, apperr.New(apperr.InvalidInput, "template_id", "template id is required")
	}
	return f.listPolicies(ctx, models.PolicyFilter{TemplateID: templateID}, start, limit)
}

func (f *PolicyFactory) listPolicies(ctx context.Context, filter models.PolicyFilter, start, limit uint32) ([]models.TemplatePolicy, error) {
	var out []models.TemplatePolicy
	err := f.store.Atomically(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.ListPolicies(filter, start, limit)
		return err
	})
	return out, err
}

func (f *PolicyFactory) GetTemplatePolicyCount(ctx context.Context) (uint64, error) {
	var count uint64
	err := f.store.Atomically(ctx, func(tx repository.Tx) error {
		var err error
		count, err = tx.PolicyCount()
		return err
	})
	return count, err
}
