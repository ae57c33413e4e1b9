package service

import (
	"sort"

	"github.com/rotisserie/eris"
)

// APRTier assigns APR to every credit score at or above MinScore.
type APRTier struct {
	MinScore int     `yaml:"min_score" mapstructure:"min_score"`
	APR      float64 `yaml:"apr" mapstructure:"apr"`
}

// Policy holds every tunable constant of the affordability engine.
type Policy struct {
	APRTiers   []APRTier `yaml:"apr_tiers" mapstructure:"apr_tiers"`
	FloorAPR   float64   `yaml:"floor_apr" mapstructure:"floor_apr"`     // score below every tier
	DefaultAPR float64   `yaml:"default_apr" mapstructure:"default_apr"` // no score at all

	DefaultTaxRate         float64 `yaml:"default_tax_rate" mapstructure:"default_tax_rate"`
	DefaultInsuranceAnnual float64 `yaml:"default_insurance_annual" mapstructure:"default_insurance_annual"`
	DefaultHOAMonthly      float64 `yaml:"default_hoa_monthly" mapstructure:"default_hoa_monthly"`

	HousingCapFraction float64 `yaml:"housing_cap_fraction" mapstructure:"housing_cap_fraction"`
	PIBuffer           float64 `yaml:"pi_buffer" mapstructure:"pi_buffer"`
	FiveDownFactor     float64 `yaml:"five_down_factor" mapstructure:"five_down_factor"`

	CushionLow  float64 `yaml:"cushion_low" mapstructure:"cushion_low"`
	CushionGood float64 `yaml:"cushion_good" mapstructure:"cushion_good"`

	GradeARatio      float64 `yaml:"grade_a_ratio" mapstructure:"grade_a_ratio"`
	GradeAMinusRatio float64 `yaml:"grade_a_minus_ratio" mapstructure:"grade_a_minus_ratio"`
	GradeBPlusRatio  float64 `yaml:"grade_b_plus_ratio" mapstructure:"grade_b_plus_ratio"`

	MinTermYears     int    `yaml:"min_term_years" mapstructure:"min_term_years"`
	MaxTermYears     int    `yaml:"max_term_years" mapstructure:"max_term_years"`
	DefaultTermYears int    `yaml:"default_term_years" mapstructure:"default_term_years"`
	MinCreditScore   int    `yaml:"min_credit_score" mapstructure:"min_credit_score"`
	MaxCreditScore   int    `yaml:"max_credit_score" mapstructure:"max_credit_score"`
	DefaultLoanType  string `yaml:"default_loan_type" mapstructure:"default_loan_type"`

	// TargetPriceRounding is the step a suggested lower price is rounded to.
	TargetPriceRounding float64 `yaml:"target_price_rounding" mapstructure:"target_price_rounding"`
}

// DefaultPolicy returns the production assumptions.
func DefaultPolicy() Policy {
	return Policy{
		APRTiers: []APRTier{
			{MinScore: 780, APR: 0.0625},
			{MinScore: 740, APR: 0.0675},
			{MinScore: 700, APR: 0.0725},
			{MinScore: 660, APR: 0.0800},
		},
		FloorAPR:               0.0900,
		DefaultAPR:             0.0700,
		DefaultTaxRate:         0.020,
		DefaultInsuranceAnnual: 2400,
		DefaultHOAMonthly:      0,
		HousingCapFraction:     0.30,
		PIBuffer:               1.28,
		FiveDownFactor:         0.95,
		CushionLow:             0.05,
		CushionGood:            0.12,
		GradeARatio:            0.25,
		GradeAMinusRatio:       0.28,
		GradeBPlusRatio:        0.30,
		MinTermYears:           10,
		MaxTermYears:           40,
		DefaultTermYears:       30,
		MinCreditScore:         300,
		MaxCreditScore:         850,
		DefaultLoanType:        "conv",
		TargetPriceRounding:    1000,
	}
}

// Validate rejects policies the engine cannot evaluate with.
func (p Policy) Validate() error {
	if p.HousingCapFraction <= 0 || p.HousingCapFraction > 1 {
		return eris.New("policy: housing_cap_fraction must be in (0, 1]")
	}
	if p.PIBuffer <= 0 {
		return eris.New("policy: pi_buffer must be greater than 0")
	}
	if p.FiveDownFactor <= 0 || p.FiveDownFactor > 1 {
		return eris.New("policy: five_down_factor must be in (0, 1]")
	}
	if p.MinTermYears <= 0 || p.MinTermYears > p.MaxTermYears {
		return eris.New("policy: invalid term bounds")
	}
	if p.DefaultTermYears < p.MinTermYears || p.DefaultTermYears > p.MaxTermYears {
		return eris.New("policy: default_term_years outside term bounds")
	}
	if p.MinCreditScore > p.MaxCreditScore {
		return eris.New("policy: invalid credit score bounds")
	}
	if p.CushionLow > p.CushionGood {
		return eris.New("policy: cushion_low cannot exceed cushion_good")
	}
	if p.TargetPriceRounding <= 0 {
		return eris.New("policy: target_price_rounding must be greater than 0")
	}
	for _, t := range p.APRTiers {
		if t.APR < 0 {
			return eris.Errorf("policy: negative apr for tier %d", t.MinScore)
		}
	}
	return nil
}

// sortedTiers returns the tiers ordered from the highest threshold down.
func (p Policy) sortedTiers() []APRTier {
	tiers := make([]APRTier, len(p.APRTiers))
	copy(tiers, p.APRTiers)
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].MinScore > tiers[j].MinScore
	})
	return tiers
}
