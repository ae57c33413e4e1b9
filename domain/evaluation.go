package domain

// EvaluateRequest is the body accepted by the affordability endpoint and the
// evaluate command. Overrides, Scenario and the snapshot are left untyped so
// that loosely shaped client payloads can be coerced field by field.
type EvaluateRequest struct {
	Email     string         `json:"email,omitempty" validate:"omitempty,email"`
	Question  string         `json:"question,omitempty" validate:"max=2000"`
	Overrides map[string]any `json:"overrides,omitempty"`
	Scenario  map[string]any `json:"scenario,omitempty"`
	Context   RequestContext `json:"context"`
	Explain   bool           `json:"explain,omitempty"`
}

type RequestContext struct {
	FAD     map[string]any `json:"fad,omitempty"`
	Profile map[string]any `json:"profile,omitempty"`
}

type InputsUsed struct {
	Income      *float64          `json:"income"`
	Expenses    *float64          `json:"expenses"`
	Price       *float64          `json:"price"`
	Downpayment *float64          `json:"downpayment"`
	CreditScore *int              `json:"creditScore"`
	TermYears   int               `json:"termYears"`
	LoanType    string            `json:"loanType"`
	Assumptions Assumptions       `json:"assumptions"`
	Sources     map[string]string `json:"sources"`
}

// MortgageBlock is the wire form of the housing estimate. Numeric fields are
// null when no estimate could be produced.
type MortgageBlock struct {
	Source          string       `json:"source"`
	AllInMonthly    *float64     `json:"all_in_monthly"`
	Breakdown       *Breakdown   `json:"breakdown"`
	AssumptionsUsed *Assumptions `json:"assumptions_used"`
	APRAssumed      *float64     `json:"apr_assumed"`
	TermYears       int          `json:"term_years"`
	LoanAmount      *float64     `json:"loan_amount"`
	Error           *string      `json:"error"`
}

const (
	MortgageSourceEstimator = "estimator"
	MortgageSourceSnapshot  = "snapshot"
	MortgageSourceNone      = "none"
)

type ProfileSummary struct {
	FirstName string `json:"first_name,omitempty"`
	FullName  string `json:"full_name,omitempty"`
}

type EvaluationResult struct {
	OK            bool            `json:"ok"`
	TS            string          `json:"ts,omitempty"`
	ScenarioID    string          `json:"scenario_id,omitempty"`
	MissingInputs []string        `json:"missing_inputs"`
	InputsUsed    InputsUsed      `json:"inputs_used"`
	Quick         *QuickRails     `json:"quick"`
	Mortgage      MortgageBlock   `json:"mortgage"`
	Verdict       Verdict         `json:"verdict"`
	NextAction    NextAction      `json:"next_action"`
	Profile       *ProfileSummary `json:"profile,omitempty"`
	Reply         string          `json:"reply,omitempty"`
}
