package service

import (
	"elena-agent/domain"
)

// Evaluate runs resolver, estimator, quick rails, verdict and next action
// over one request. It is pure: identical input gives identical output and
// no metadata (ts, scenario_id) is filled in.
func (p Policy) Evaluate(req domain.EvaluateRequest, profileIncome *float64) domain.EvaluationResult {
	scenario := p.ResolveScenario(req, profileIncome)
	return p.EvaluateScenario(scenario, SnapshotAllIn(req))
}

// EvaluateScenario evaluates an already resolved scenario. snapshotAllIn is
// used as the housing cost when the estimator cannot produce one.
func (p Policy) EvaluateScenario(s domain.Scenario, snapshotAllIn *float64) domain.EvaluationResult {
	missing := MissingInputs(s)
	assumptions := p.assumptionsFor(s)

	estimate := p.EstimateAllIn(s)
	quick := p.QuickAffordability(s.Income, p.APRForScore(s.CreditScore), s.TermYears)

	mortgage := mortgageBlock(estimate, snapshotAllIn)
	verdict := p.ComputeVerdict(s.Income, s.Expenses, mortgage.AllInMonthly)
	next := p.PickNextAction(verdict, missing, s.Price, mortgage.AllInMonthly)

	return domain.EvaluationResult{
		OK:            true,
		MissingInputs: missing,
		InputsUsed: domain.InputsUsed{
			Income:      s.Income,
			Expenses:    s.Expenses,
			Price:       s.Price,
			Downpayment: s.Downpayment,
			CreditScore: s.CreditScore,
			TermYears:   p.clampTerm(s.TermYears),
			LoanType:    s.LoanType,
			Assumptions: assumptions,
			Sources:     s.Sources,
		},
		Quick:      quick,
		Mortgage:   mortgage,
		Verdict:    verdict,
		NextAction: next,
	}
}

func mortgageBlock(e domain.MortgageEstimate, snapshotAllIn *float64) domain.MortgageBlock {
	if e.OK {
		breakdown := e.Breakdown
		assumptions := e.AssumptionsUsed
		return domain.MortgageBlock{
			Source:          domain.MortgageSourceEstimator,
			AllInMonthly:    domain.Ptr(e.AllInMonthly),
			Breakdown:       &breakdown,
			AssumptionsUsed: &assumptions,
			APRAssumed:      domain.Ptr(e.APRAssumed),
			TermYears:       e.TermYears,
			LoanAmount:      domain.Ptr(e.LoanAmount),
		}
	}

	block := domain.MortgageBlock{
		Source:    domain.MortgageSourceNone,
		TermYears: e.TermYears,
		Error:     domain.Ptr(e.Reason),
	}
	if snapshotAllIn != nil {
		block.Source = domain.MortgageSourceSnapshot
		block.AllInMonthly = domain.Ptr(roundWhole(*snapshotAllIn).InexactFloat64())
	}
	return block
}
