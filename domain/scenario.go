package domain

// Scenario field names, shared by sources, missing_inputs and the resolver.
const (
	FieldPrice           = "price"
	FieldExpenses        = "expenses"
	FieldDownpayment     = "downpayment"
	FieldCreditScore     = "creditScore"
	FieldTermYears       = "termYears"
	FieldLoanType        = "loanType"
	FieldIncome          = "income"
	FieldTaxRate         = "taxRate"
	FieldInsuranceAnnual = "insuranceAnnual"
	FieldHOAMonthly      = "hoaMonthly"
)

// Provenance tags recorded in Scenario.Sources.
const (
	SourceOverrides            = "overrides"
	SourceSnapshot             = "snapshot"
	SourceScenario             = "scenario"
	SourceProfile              = "profile"
	SourceQuestionHypothetical = "question_hypothetical"
	SourceDefault              = "default"
	SourceMissing              = "missing"
)

// Scenario is the canonical input bundle for one affordability evaluation.
// Nil pointers mean the value is absent.
type Scenario struct {
	Price           *float64
	Expenses        *float64
	Downpayment     *float64
	CreditScore     *int
	TermYears       int
	LoanType        string
	Income          *float64
	TaxRate         *float64
	InsuranceAnnual *float64
	HOAMonthly      *float64
	Sources         map[string]string
}

type Assumptions struct {
	TaxRate         float64 `json:"taxRate"`
	InsuranceAnnual float64 `json:"insuranceAnnual"`
	HOAMonthly      float64 `json:"hoaMonthly"`
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}
