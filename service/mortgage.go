package service

import (
	"math"

	"github.com/shopspring/decimal"

	"elena-agent/domain"
)

const reasonNoPI = "Unable to compute P&I."

// roundTo rounds value to the given number of decimal places.
func roundTo(value float64, places int32) float64 {
	if !isFinite(value) {
		return value
	}
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

// roundWhole rounds an amount to whole currency units. Non-finite values
// become zero; callers check finiteness before rounding.
func roundWhole(value float64) decimal.Decimal {
	if !isFinite(value) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(value).Round(0)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// APRForScore maps a credit score onto the tier table. A nil score gets
// DefaultAPR; a score under every tier gets FloorAPR.
func (p Policy) APRForScore(score *int) float64 {
	if score == nil {
		return p.DefaultAPR
	}
	for _, tier := range p.sortedTiers() {
		if *score >= tier.MinScore {
			return tier.APR
		}
	}
	return p.FloorAPR
}

// MonthlyPayment is the fixed-rate amortized principal and interest payment.
func MonthlyPayment(principal, apr float64, termYears int) float64 {
	n := float64(termYears * 12)
	if n <= 0 {
		return math.NaN()
	}
	r := apr / 12
	if r == 0 {
		return principal / n
	}
	factor := math.Pow(1+r, n)
	return principal * (r * factor) / (factor - 1)
}

// PrincipalForPayment inverts MonthlyPayment: the principal a payment of
// payment per month retires over termYears at apr.
func PrincipalForPayment(payment, apr float64, termYears int) float64 {
	n := float64(termYears * 12)
	if n <= 0 {
		return math.NaN()
	}
	r := apr / 12
	if r == 0 {
		return payment * n
	}
	factor := math.Pow(1+r, n)
	return payment * (factor - 1) / (r * factor)
}

func (p Policy) validScore(score int) bool {
	return score >= p.MinCreditScore && score <= p.MaxCreditScore
}

func (p Policy) clampTerm(termYears int) int {
	if termYears == 0 {
		return p.DefaultTermYears
	}
	return min(max(termYears, p.MinTermYears), p.MaxTermYears)
}

// assumptionsFor fills tax, insurance and HOA with policy defaults where the
// scenario leaves them absent or negative.
func (p Policy) assumptionsFor(s domain.Scenario) domain.Assumptions {
	a := domain.Assumptions{
		TaxRate:         p.DefaultTaxRate,
		InsuranceAnnual: p.DefaultInsuranceAnnual,
		HOAMonthly:      p.DefaultHOAMonthly,
	}
	if s.TaxRate != nil && *s.TaxRate >= 0 {
		a.TaxRate = *s.TaxRate
	}
	if s.InsuranceAnnual != nil && *s.InsuranceAnnual >= 0 {
		a.InsuranceAnnual = *s.InsuranceAnnual
	}
	if s.HOAMonthly != nil && *s.HOAMonthly >= 0 {
		a.HOAMonthly = *s.HOAMonthly
	}
	return a
}

// EstimateAllIn computes the monthly all-in housing cost for a scenario.
// Missing or invalid inputs yield an estimate with OK false and a Reason.
func (p Policy) EstimateAllIn(s domain.Scenario) domain.MortgageEstimate {
	term := p.clampTerm(s.TermYears)
	failed := func(reason string) domain.MortgageEstimate {
		return domain.MortgageEstimate{OK: false, Reason: reason, TermYears: term}
	}

	if s.Price == nil || *s.Price <= 0 {
		return failed("Missing or invalid price.")
	}
	if s.Downpayment == nil || *s.Downpayment < 0 {
		return failed("Missing or invalid downpayment.")
	}
	if s.CreditScore == nil || !p.validScore(*s.CreditScore) {
		return failed("Missing or invalid credit score.")
	}

	price := *s.Price
	assumptions := p.assumptionsFor(s)
	loan := math.Max(0, price-*s.Downpayment)
	apr := p.APRForScore(s.CreditScore)

	pi := MonthlyPayment(loan, apr, term)
	taxes := price * assumptions.TaxRate / 12
	insurance := assumptions.InsuranceAnnual / 12
	hoa := assumptions.HOAMonthly
	for _, v := range []float64{pi, taxes, insurance, hoa} {
		if !isFinite(v) || v < 0 {
			return failed(reasonNoPI)
		}
	}

	// Each component is rounded before summing so the breakdown adds up to
	// the reported total exactly.
	piR, taxesR, insuranceR, hoaR := roundWhole(pi), roundWhole(taxes), roundWhole(insurance), roundWhole(hoa)
	total := piR.Add(taxesR).Add(insuranceR).Add(hoaR)
	if !total.IsPositive() {
		return failed(reasonNoPI)
	}

	return domain.MortgageEstimate{
		OK:         true,
		LoanAmount: roundWhole(loan).InexactFloat64(),
		APRAssumed: apr,
		TermYears:  term,
		Breakdown: domain.Breakdown{
			PrincipalAndInterest: piR.InexactFloat64(),
			Taxes:                taxesR.InexactFloat64(),
			Insurance:            insuranceR.InexactFloat64(),
			HOA:                  hoaR.InexactFloat64(),
		},
		AllInMonthly:    total.InexactFloat64(),
		AssumptionsUsed: assumptions,
	}
}

// QuickAffordability derives a rough maximum price from income alone. It
// ignores the scenario's tax and insurance and returns nil without income.
func (p Policy) QuickAffordability(income *float64, apr float64, termYears int) *domain.QuickRails {
	if income == nil || !isFinite(*income) || *income <= 0 {
		return nil
	}
	term := p.clampTerm(termYears)
	housingCap := *income * p.HousingCapFraction
	piTarget := housingCap / p.PIBuffer

	principal := PrincipalForPayment(piTarget, apr, term)
	fiveDown := principal / p.FiveDownFactor
	for _, v := range []float64{housingCap, piTarget, principal, fiveDown} {
		if !isFinite(v) || v < 0 {
			return nil
		}
	}

	return &domain.QuickRails{
		HousingCapMonthly: roundWhole(housingCap).InexactFloat64(),
		PITargetMonthly:   roundWhole(piTarget).InexactFloat64(),
		APRAssumed:        apr,
		TermYears:         term,
		QuickMaxPrice: domain.QuickMaxPrice{
			Price0Down: roundWhole(principal).InexactFloat64(),
			Price5Down: roundWhole(fiveDown).InexactFloat64(),
		},
	}
}
