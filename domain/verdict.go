package domain

type VerdictStatus string

const (
	StatusGreen        VerdictStatus = "GREEN"
	StatusCaution      VerdictStatus = "CAUTION"
	StatusNoGo         VerdictStatus = "NO-GO"
	StatusInsufficient VerdictStatus = "INSUFFICIENT"
)

type Ratios struct {
	HousingRatio *float64 `json:"housing_ratio"`
	ExpenseRatio *float64 `json:"expense_ratio"`
}

type Verdict struct {
	Status     VerdictStatus `json:"status"`
	Grade      string        `json:"grade"`
	HousingCap *float64      `json:"housing_cap"`
	Ratios     Ratios        `json:"ratios"`
	Residual   *float64      `json:"residual"`
	Notes      []string      `json:"notes"`
}

type ActionType string

const (
	ActionCollectMissingInputs ActionType = "collect_missing_inputs"
	ActionLowerPrice           ActionType = "lower_price"
	ActionAdjustScenario       ActionType = "adjust_scenario"
	ActionIncreaseBuffer       ActionType = "increase_buffer"
	ActionLockInPlan           ActionType = "lock_in_plan"
)

type NextAction struct {
	Type   ActionType     `json:"type"`
	Target map[string]any `json:"target"`
	Why    string         `json:"why"`
}
