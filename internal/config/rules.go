package config

import (
	"fmt"
	"os"

	"product-template-service/internal/models"

	"gopkg.in/yaml.v3"
)

// RegistryRules is the YAML document read from RULES_FILE. Keys left out of
// the file keep their DefaultRules values.
type RegistryRules struct {
	Validation models.TemplateValidationRules `yaml:"validation_rules" json:"validation_rules"`
	Pricing    models.PricingConfig           `yaml:"pricing" json:"pricing"`
}

func DefaultRules() RegistryRules {
	return RegistryRules{
		Validation: models.TemplateValidationRules{
			MinCollateralRatioBps: 1000,
			MaxPremiumRateBps:     5000,
			MinDurationDays:       1,
			MaxDurationDays:       365,
			ApprovalThresholdBps:  5100,
			MinUpdateIntervalSecs: 86_400,
		},
		Pricing: models.PricingConfig{
			RiskMultipliersBps: map[models.RiskLevel]uint32{
				models.RiskLow:      8000,
				models.RiskMedium:   10000,
				models.RiskHigh:     15000,
				models.RiskVeryHigh: 25000,
			},
			Tiers: []models.CoverageTier{
				{FromCoverage: 0, MultiplierBps: 10000},
				{FromCoverage: 100_000_001, MultiplierBps: 9000},
				{FromCoverage: 1_000_000_001, MultiplierBps: 8000},
			},
			BooleanAdjustments: map[string]uint32{
				"additional_coverage": 12000,
				"high_deductible":     8000,
			},
		},
	}
}

// LoadRules reads rules from path. An empty path yields the defaults.
func LoadRules(path string) (RegistryRules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return RegistryRules{}, fmt.Errorf("load rules %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RegistryRules{}, fmt.Errorf("parse rules %q: %w", path, err)
	}
	return rules, nil
}
