package service

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elena-agent/domain"
)

func TestResolveScenario_Precedence(t *testing.T) {
	p := DefaultPolicy()
	req := domain.EvaluateRequest{
		Overrides: map[string]any{"price": 410000.0},
		Context: domain.RequestContext{FAD: map[string]any{
			"price":       390000.0,
			"downpayment": 50000.0,
			"income":      8000.0,
		}},
		Scenario: map[string]any{
			"price":       380000.0,
			"downpayment": 20000.0,
			"expenses":    1200.0,
			"income":      7000.0,
		},
	}

	s := p.ResolveScenario(req, domain.Ptr(9000.0))

	assert.Equal(t, 410000.0, *s.Price)
	assert.Equal(t, domain.SourceOverrides, s.Sources[domain.FieldPrice])
	assert.Equal(t, 50000.0, *s.Downpayment)
	assert.Equal(t, domain.SourceSnapshot, s.Sources[domain.FieldDownpayment])
	assert.Equal(t, 1200.0, *s.Expenses)
	assert.Equal(t, domain.SourceScenario, s.Sources[domain.FieldExpenses])
	assert.Equal(t, 8000.0, *s.Income)
	assert.Equal(t, domain.SourceSnapshot, s.Sources[domain.FieldIncome])
}

func TestResolveScenario_ProfileIncomeIsLastResort(t *testing.T) {
	p := DefaultPolicy()

	s := p.ResolveScenario(domain.EvaluateRequest{}, domain.Ptr(7000.0))

	require.NotNil(t, s.Income)
	assert.Equal(t, 7000.0, *s.Income)
	assert.Equal(t, domain.SourceProfile, s.Sources[domain.FieldIncome])
}

func TestResolveScenario_AliasesAndCoercion(t *testing.T) {
	p := DefaultPolicy()
	req := domain.EvaluateRequest{
		Scenario: map[string]any{
			"homePrice":       " 350000 ",
			"down_payment":    json.Number("35000"),
			"fico":            745.4,
			"term":            55,
			"monthly_debts":   "not a number",
			"monthlyExpenses": 900,
			"loan_type":       "fha",
		},
	}

	s := p.ResolveScenario(req, nil)

	assert.Equal(t, 350000.0, *s.Price)
	assert.Equal(t, 35000.0, *s.Downpayment)
	assert.Equal(t, 745, *s.CreditScore)
	assert.Equal(t, 40, s.TermYears)
	assert.Equal(t, 900.0, *s.Expenses)
	assert.Equal(t, "fha", s.LoanType)
	assert.Equal(t, domain.SourceScenario, s.Sources[domain.FieldLoanType])
}

func TestResolveScenario_Defaults(t *testing.T) {
	p := DefaultPolicy()

	s := p.ResolveScenario(domain.EvaluateRequest{}, nil)

	assert.Nil(t, s.Price)
	assert.Nil(t, s.Income)
	assert.Nil(t, s.CreditScore)
	assert.Equal(t, 30, s.TermYears)
	assert.Equal(t, "conv", s.LoanType)
	assert.Equal(t, domain.SourceDefault, s.Sources[domain.FieldTermYears])
	assert.Equal(t, domain.SourceMissing, s.Sources[domain.FieldPrice])
	assert.Equal(t, domain.SourceMissing, s.Sources[domain.FieldCreditScore])
}

func TestResolveScenario_TermClamped(t *testing.T) {
	p := DefaultPolicy()

	short := p.ResolveScenario(domain.EvaluateRequest{Overrides: map[string]any{"termYears": 5}}, nil)
	long := p.ResolveScenario(domain.EvaluateRequest{Overrides: map[string]any{"termYears": "45"}}, nil)

	assert.Equal(t, 10, short.TermYears)
	assert.Equal(t, 40, long.TermYears)
	assert.Equal(t, domain.SourceOverrides, long.Sources[domain.FieldTermYears])
}

func TestResolveScenario_CreditScoreBounds(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name   string
		req    domain.EvaluateRequest
		want   *int
		source string
	}{
		{
			name:   "upper bound accepted",
			req:    domain.EvaluateRequest{Overrides: map[string]any{"creditScore": 850}},
			want:   domain.Ptr(850),
			source: domain.SourceOverrides,
		},
		{
			name:   "lower bound accepted",
			req:    domain.EvaluateRequest{Overrides: map[string]any{"creditScore": 300}},
			want:   domain.Ptr(300),
			source: domain.SourceOverrides,
		},
		{
			name: "out of range skipped to next layer",
			req: domain.EvaluateRequest{
				Overrides: map[string]any{"creditScore": 851},
				Context:   domain.RequestContext{FAD: map[string]any{"credit_score": 700}},
			},
			want:   domain.Ptr(700),
			source: domain.SourceSnapshot,
		},
		{
			name:   "below range never clamped",
			req:    domain.EvaluateRequest{Scenario: map[string]any{"creditScore": 299}},
			want:   nil,
			source: domain.SourceMissing,
		},
		{
			name: "numeric score beats question",
			req: domain.EvaluateRequest{
				Question: "what if my credit score went up to 790?",
				Scenario: map[string]any{"creditScore": 680},
			},
			want:   domain.Ptr(680),
			source: domain.SourceScenario,
		},
		{
			name:   "question used without numeric score",
			req:    domain.EvaluateRequest{Question: "What if my credit score went up to 790?"},
			want:   domain.Ptr(790),
			source: domain.SourceQuestionHypothetical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := p.ResolveScenario(tt.req, nil)
			assert.Equal(t, tt.want, s.CreditScore)
			assert.Equal(t, tt.source, s.Sources[domain.FieldCreditScore])
		})
	}
}

func TestNumberOrNil(t *testing.T) {
	tests := []struct {
		in   any
		want *float64
	}{
		{12.5, domain.Ptr(12.5)},
		{7, domain.Ptr(7.0)},
		{int64(9), domain.Ptr(9.0)},
		{" 42 ", domain.Ptr(42.0)},
		{json.Number("3.25"), domain.Ptr(3.25)},
		{"", nil},
		{"abc", nil},
		{true, nil},
		{nil, nil},
		{math.NaN(), nil},
		{"Inf", nil},
		{map[string]any{}, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NumberOrNil(tt.in), "%#v", tt.in)
	}
}

func TestSnapshotAllIn(t *testing.T) {
	req := domain.EvaluateRequest{Context: domain.RequestContext{FAD: map[string]any{
		"housing_all_in_monthly": "0",
		"allInMonthly":           "2450.40",
	}}}

	got := SnapshotAllIn(req)

	require.NotNil(t, got)
	assert.Equal(t, 2450.40, *got)
	assert.Nil(t, SnapshotAllIn(domain.EvaluateRequest{}))
}

func TestProfileIncome(t *testing.T) {
	assert.Equal(t, domain.Ptr(6500.0), ProfileIncome(map[string]any{"monthly_income": 6500}))
	assert.Equal(t, domain.Ptr(5000.0), ProfileIncome(map[string]any{"monthlyIncome": "5000"}))
	assert.Equal(t, domain.Ptr(10000.0), ProfileIncome(map[string]any{"annual_income": 120000}))
	assert.Nil(t, ProfileIncome(map[string]any{"name": "x"}))
	assert.Nil(t, ProfileIncome(nil))
}

func TestMissingInputs_Order(t *testing.T) {
	assert.Equal(t,
		[]string{"income", "expenses", "price", "downpayment", "creditScore"},
		MissingInputs(domain.Scenario{}))

	s := domain.Scenario{
		Income:      domain.Ptr(5000.0),
		Expenses:    domain.Ptr(0.0),
		Price:       domain.Ptr(300000.0),
		Downpayment: domain.Ptr(0.0),
		CreditScore: domain.Ptr(720),
	}
	assert.Empty(t, MissingInputs(s))

	s.Income = domain.Ptr(0.0)
	s.Downpayment = domain.Ptr(-5.0)
	assert.Equal(t, []string{"income", "downpayment"}, MissingInputs(s))
}
