package domain

type Breakdown struct {
	PrincipalAndInterest float64 `json:"principalAndInterest"`
	Taxes                float64 `json:"taxes"`
	Insurance            float64 `json:"insurance"`
	HOA                  float64 `json:"hoa"`
}

type MortgageEstimate struct {
	OK              bool
	Reason          string
	LoanAmount      float64
	APRAssumed      float64
	TermYears       int
	Breakdown       Breakdown
	AllInMonthly    float64
	AssumptionsUsed Assumptions
}

type QuickMaxPrice struct {
	Price0Down float64 `json:"price_0_down"`
	Price5Down float64 `json:"price_5_down"`
}

type QuickRails struct {
	HousingCapMonthly float64       `json:"housing_cap_monthly"`
	PITargetMonthly   float64       `json:"pi_target_monthly"`
	APRAssumed        float64       `json:"apr_assumed"`
	TermYears         int           `json:"term_years"`
	QuickMaxPrice     QuickMaxPrice `json:"quick_max_price"`
}
