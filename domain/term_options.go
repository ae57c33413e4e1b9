package domain

type TermOptionsRequest struct {
	EvaluateRequest
	Terms []int `json:"terms,omitempty" validate:"max=12,dive,min=1,max=50"`
}

type TermOption struct {
	TermYears            int           `json:"term_years"`
	APRAssumed           float64       `json:"apr_assumed"`
	PrincipalAndInterest float64       `json:"principal_and_interest"`
	AllInMonthly         float64       `json:"all_in_monthly"`
	Status               VerdictStatus `json:"status"`
	Grade                string        `json:"grade"`
}

type TermOptionsResult struct {
	Evaluation      EvaluationResult `json:"evaluation"`
	Options         []TermOption     `json:"options"`
	RecommendedTerm *int             `json:"recommended_term"`
	Reason          string           `json:"reason"`
}
