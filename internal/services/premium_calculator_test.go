package services

import (
	"math"
	"testing"

	"product-template-service/internal/apperr"
	"product-template-service/internal/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCalculator(t *testing.T) *PremiumCalculator {
	t.Helper()
	calc, err := NewPremiumCalculator(testPricing())
	require.NoError(t, err)
	return calc
}

func TestPercentagePremium_MultipliesBeforeDividing(t *testing.T) {
	premium, err := PercentagePremium(100_000, 200, 180)
	require.NoError(t, err)
	assert.Equal(t, int64(986), premium, "100000*200*180/3650000")

	// dividing by 10 000 first would truncate 1.5 to 1 and end at 0
	premium, err = PercentagePremium(1_000, 15, 300)
	require.NoError(t, err)
	assert.Equal(t, int64(1), premium)

	premium, err = PercentagePremium(5_000, 30, 365)
	require.NoError(t, err)
	assert.Equal(t, int64(15), premium)
}

func TestPercentagePremium_Errors(t *testing.T) {
	_, err := PercentagePremium(0, 200, 180)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
	_, err = PercentagePremium(-5, 200, 180)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
	_, err = PercentagePremium(100, 200, 0)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
	_, err = PercentagePremium(math.MaxInt64/100, 200, 365)
	assert.Equal(t, apperr.Overflow, apperr.KindOf(err))
}

func TestBasePremium_Models(t *testing.T) {
	calc := newTestCalculator(t)
	base := func(model models.PremiumModel, risk models.RiskLevel) *models.ProductTemplate {
		return &models.ProductTemplate{PremiumModel: model, RiskLevel: risk, BasePremiumRateBps: 200}
	}

	cases := []struct {
		name     string
		tmpl     *models.ProductTemplate
		coverage int64
		days     uint32
		want     int64
	}{
		{"fixed ignores coverage", base(models.PremiumFixed, models.RiskLow), 999_999, 30, 200},
		{"percentage", base(models.PremiumPercentage, models.RiskLow), 100_000, 180, 986},
		{"risk low", base(models.PremiumRiskBased, models.RiskLow), 100_000, 180, 788},
		{"risk medium", base(models.PremiumRiskBased, models.RiskMedium), 100_000, 180, 986},
		{"risk high", base(models.PremiumRiskBased, models.RiskHigh), 100_000, 180, 1479},
		{"risk very high", base(models.PremiumRiskBased, models.RiskVeryHigh), 100_000, 180, 2465},
		{"tier one", base(models.PremiumTiered, models.RiskLow), 100_000_000, 365, 2_000_000},
		{"tier two lower bound", base(models.PremiumTiered, models.RiskLow), 100_000_001, 365, 1_800_000},
		{"tier three", base(models.PremiumTiered, models.RiskLow), 2_000_000_000, 365, 32_000_000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := calc.BasePremium(tc.tmpl, tc.coverage, tc.days)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBasePremium_RejectsNonPositiveInputsForEveryModel(t *testing.T) {
	calc := newTestCalculator(t)
	for _, model := range []models.PremiumModel{models.PremiumFixed, models.PremiumPercentage, models.PremiumRiskBased, models.PremiumTiered} {
		tmpl := &models.ProductTemplate{PremiumModel: model, RiskLevel: models.RiskLow, BasePremiumRateBps: 200}
		_, err := calc.BasePremium(tmpl, 0, 30)
		assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err), model)
		_, err = calc.BasePremium(tmpl, 1000, 0)
		assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err), model)
	}
}

func TestPremium_BooleanAdjustments(t *testing.T) {
	calc := newTestCalculator(t)
	tmpl := &models.ProductTemplate{PremiumModel: models.PremiumPercentage, BasePremiumRateBps: 200}

	got, err := calc.Premium(tmpl, 100_000, 180, models.CustomParamValues{
		models.BooleanValue("additional_coverage", true),
		models.BooleanValue("high_deductible", false),
		models.BooleanValue("unpriced_flag", true),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1183), got, "986 * 1.2")

	got, err = calc.Premium(tmpl, 100_000, 180, models.CustomParamValues{
		models.BooleanValue("additional_coverage", true),
		models.BooleanValue("high_deductible", true),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(946), got, "986 * 1.2 = 1183, * 0.8 = 946")
}

func TestPremium_DefaultedAdjustmentApplies(t *testing.T) {
	calc := newTestCalculator(t)
	tmpl := &models.ProductTemplate{PremiumModel: models.PremiumPercentage, BasePremiumRateBps: 200}
	schema := models.CustomParams{models.BooleanParam("additional_coverage", true)}

	values, err := ResolveCustomValues(schema, nil)
	require.NoError(t, err)
	got, err := calc.Premium(tmpl, 100_000, 365, values)
	require.NoError(t, err)
	assert.Equal(t, int64(2400), got, "2000 * 1.2 without the caller supplying the flag")

	values, err = ResolveCustomValues(schema, []models.CustomParamValue{models.BooleanValue("additional_coverage", false)})
	require.NoError(t, err)
	got, err = calc.Premium(tmpl, 100_000, 365, values)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), got)
}

func TestRequiredCollateral(t *testing.T) {
	got, err := RequiredCollateral(100_000, 1500)
	require.NoError(t, err)
	assert.Equal(t, int64(15_000), got)

	_, err = RequiredCollateral(0, 1500)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))

	_, err = RequiredCollateral(math.MaxInt64, 2)
	assert.Equal(t, apperr.Overflow, apperr.KindOf(err))
}

func TestNewPremiumCalculator_RejectsBadPricing(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.PricingConfig)
	}{
		{"missing level", func(p *models.PricingConfig) { delete(p.RiskMultipliersBps, models.RiskHigh) }},
		{"decreasing risk", func(p *models.PricingConfig) { p.RiskMultipliersBps[models.RiskVeryHigh] = 9000 }},
		{"unknown level", func(p *models.PricingConfig) { p.RiskMultipliersBps["extreme"] = 30000 }},
		{"no tiers", func(p *models.PricingConfig) { p.Tiers = nil }},
		{"first tier not zero", func(p *models.PricingConfig) { p.Tiers[0].FromCoverage = 1 }},
		{"tiers not ascending", func(p *models.PricingConfig) { p.Tiers[2].FromCoverage = p.Tiers[1].FromCoverage }},
		{"zero tier multiplier", func(p *models.PricingConfig) { p.Tiers[1].MultiplierBps = 0 }},
		{"zero adjustment", func(p *models.PricingConfig) { p.BooleanAdjustments["high_deductible"] = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pricing := testPricing()
			tc.mutate(&pricing)
			_, err := NewPremiumCalculator(pricing)
			assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
		})
	}
}

// Property: for a fixed rate and duration the percentage premium never decreases
// as coverage grows.
func TestPercentagePremium_MonotonicInCoverage(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("premium is non-decreasing in coverage", prop.ForAll(
		func(coverage int64, delta int64, rate uint32, days uint32) bool {
			lower, err1 := PercentagePremium(coverage, rate, days)
			higher, err2 := PercentagePremium(coverage+delta, rate, days)
			if err1 != nil || err2 != nil {
				return false
			}
			return higher >= lower
		},
		gen.Int64Range(1, 1_000_000_000_000),
		gen.Int64Range(0, 1_000_000_000),
		gen.UInt32Range(0, 10_000),
		gen.UInt32Range(1, 365),
	))

	properties.Property("premium never exceeds the undivided annual rate", prop.ForAll(
		func(coverage int64, rate uint32, days uint32) bool {
			premium, err := PercentagePremium(coverage, rate, days)
			if err != nil {
				return false
			}
			return premium <= coverage*int64(rate)/10_000+1
		},
		gen.Int64Range(1, 1_000_000_000_000),
		gen.UInt32Range(0, 10_000),
		gen.UInt32Range(1, 365),
	))

	properties.TestingRun(t)
}
