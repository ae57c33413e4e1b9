package service

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"elena-agent/domain"
)

// fieldAliases lists the keys each scenario field is read from, in order of
// preference. Upstream snapshots use a mix of camel and snake case.
var fieldAliases = map[string][]string{
	domain.FieldPrice:           {"price", "homePrice", "home_price", "projected_home_price", "target_price"},
	domain.FieldExpenses:        {"expenses", "monthlyExpenses", "monthly_expenses", "monthly_debts"},
	domain.FieldDownpayment:     {"downpayment", "downPayment", "down_payment", "down_payment_amount"},
	domain.FieldCreditScore:     {"creditScore", "credit_score", "fico", "fico_score"},
	domain.FieldTermYears:       {"termYears", "term_years", "term"},
	domain.FieldLoanType:        {"loanType", "loan_type"},
	domain.FieldIncome:          {"income", "monthlyIncome", "monthly_income", "gross_monthly_income"},
	domain.FieldTaxRate:         {"taxRate", "tax_rate", "property_tax_rate"},
	domain.FieldInsuranceAnnual: {"insuranceAnnual", "insurance_annual", "homeowners_insurance_annual"},
	domain.FieldHOAMonthly:      {"hoaMonthly", "hoa_monthly", "hoa"},
}

var snapshotAllInAliases = []string{"housing_all_in_monthly", "all_in_monthly", "allInMonthly", "monthly_housing_cost"}

type layer struct {
	source string
	values map[string]any
}

// NumberOrNil coerces v to a finite float64. Anything else, including empty
// or non-numeric strings, yields nil.
func NumberOrNil(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if !isFinite(f) {
		return nil
	}
	return &f
}

func pickNumber(values map[string]any, field string) *float64 {
	for _, key := range fieldAliases[field] {
		if raw, ok := values[key]; ok {
			if n := NumberOrNil(raw); n != nil {
				return n
			}
		}
	}
	return nil
}

func pickString(values map[string]any, field string) string {
	for _, key := range fieldAliases[field] {
		if s, ok := values[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func requestLayers(req domain.EvaluateRequest) []layer {
	return []layer{
		{source: domain.SourceOverrides, values: req.Overrides},
		{source: domain.SourceSnapshot, values: req.Context.FAD},
		{source: domain.SourceScenario, values: req.Scenario},
	}
}

// ResolveScenario merges overrides, the upstream snapshot and the baseline
// scenario into one Scenario. profileIncome is consulted for income only,
// after every request layer.
func (p Policy) ResolveScenario(req domain.EvaluateRequest, profileIncome *float64) domain.Scenario {
	layers := requestLayers(req)
	s := domain.Scenario{Sources: make(map[string]string, len(fieldAliases))}

	money := func(field string) *float64 {
		for _, l := range layers {
			if v := pickNumber(l.values, field); v != nil {
				s.Sources[field] = l.source
				return v
			}
		}
		s.Sources[field] = domain.SourceMissing
		return nil
	}

	s.Price = money(domain.FieldPrice)
	s.Expenses = money(domain.FieldExpenses)
	s.Downpayment = money(domain.FieldDownpayment)
	s.TaxRate = money(domain.FieldTaxRate)
	s.InsuranceAnnual = money(domain.FieldInsuranceAnnual)
	s.HOAMonthly = money(domain.FieldHOAMonthly)

	s.Income = money(domain.FieldIncome)
	if s.Income == nil && profileIncome != nil && isFinite(*profileIncome) {
		s.Income = domain.Ptr(*profileIncome)
		s.Sources[domain.FieldIncome] = domain.SourceProfile
	}

	s.CreditScore = p.resolveCreditScore(layers, req.Question, s.Sources)

	s.TermYears = p.DefaultTermYears
	s.Sources[domain.FieldTermYears] = domain.SourceDefault
	for _, l := range layers {
		if v := pickNumber(l.values, domain.FieldTermYears); v != nil {
			s.TermYears = p.clampTerm(int(math.Round(*v)))
			s.Sources[domain.FieldTermYears] = l.source
			break
		}
	}

	s.LoanType = p.DefaultLoanType
	s.Sources[domain.FieldLoanType] = domain.SourceDefault
	for _, l := range layers {
		if v := pickString(l.values, domain.FieldLoanType); v != "" {
			s.LoanType = v
			s.Sources[domain.FieldLoanType] = l.source
			break
		}
	}

	return s
}

// resolveCreditScore takes the first in-range score across layers. Out of
// range values are skipped rather than clamped. Without any numeric score a
// hypothetical one may be read from the question.
func (p Policy) resolveCreditScore(layers []layer, question string, sources map[string]string) *int {
	for _, l := range layers {
		v := pickNumber(l.values, domain.FieldCreditScore)
		if v == nil {
			continue
		}
		score := int(math.Round(*v))
		if !p.validScore(score) {
			continue
		}
		sources[domain.FieldCreditScore] = l.source
		return &score
	}

	if score, ok := ParseHypotheticalCreditScore(question, p.MinCreditScore, p.MaxCreditScore); ok {
		sources[domain.FieldCreditScore] = domain.SourceQuestionHypothetical
		return &score
	}

	sources[domain.FieldCreditScore] = domain.SourceMissing
	return nil
}

// SnapshotAllIn returns an all-in monthly housing figure carried by the
// upstream snapshot, if any.
func SnapshotAllIn(req domain.EvaluateRequest) *float64 {
	for _, key := range snapshotAllInAliases {
		if raw, ok := req.Context.FAD[key]; ok {
			if n := NumberOrNil(raw); n != nil && *n > 0 {
				return n
			}
		}
	}
	return nil
}

// ProfileIncome reads a monthly income from a loosely shaped profile map.
// annual_income is converted to a monthly figure.
func ProfileIncome(profile map[string]any) *float64 {
	for _, key := range []string{"monthly_income", "monthlyIncome", "income"} {
		if n := NumberOrNil(profile[key]); n != nil {
			return n
		}
	}
	if n := NumberOrNil(profile["annual_income"]); n != nil {
		return domain.Ptr(*n / 12)
	}
	return nil
}

// MissingInputs names the core inputs a scenario lacks, in a stable order.
func MissingInputs(s domain.Scenario) []string {
	missing := []string{}
	if !positive(s.Income) {
		missing = append(missing, domain.FieldIncome)
	}
	if s.Expenses == nil {
		missing = append(missing, domain.FieldExpenses)
	}
	if !positive(s.Price) {
		missing = append(missing, domain.FieldPrice)
	}
	if s.Downpayment == nil || *s.Downpayment < 0 {
		missing = append(missing, domain.FieldDownpayment)
	}
	if s.CreditScore == nil {
		missing = append(missing, domain.FieldCreditScore)
	}
	return missing
}
