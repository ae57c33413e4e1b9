package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elena-agent/domain"
)

func fullScenario(price, down float64, score, term int) domain.Scenario {
	return domain.Scenario{
		Price:       domain.Ptr(price),
		Downpayment: domain.Ptr(down),
		CreditScore: domain.Ptr(score),
		TermYears:   term,
	}
}

func TestEstimateAllIn_ReferenceScenario(t *testing.T) {
	p := DefaultPolicy()
	s := fullScenario(400000, 40000, 760, 30)
	s.TaxRate = domain.Ptr(0.02)
	s.InsuranceAnnual = domain.Ptr(2400.0)
	s.HOAMonthly = domain.Ptr(0.0)

	est := p.EstimateAllIn(s)

	require.True(t, est.OK, est.Reason)
	assert.Equal(t, 360000.0, est.LoanAmount)
	assert.Equal(t, 0.0675, est.APRAssumed)
	assert.Equal(t, 30, est.TermYears)
	assert.Equal(t, 2335.0, est.Breakdown.PrincipalAndInterest)
	assert.Equal(t, 667.0, est.Breakdown.Taxes)
	assert.Equal(t, 200.0, est.Breakdown.Insurance)
	assert.Equal(t, 0.0, est.Breakdown.HOA)
	assert.Equal(t, 3202.0, est.AllInMonthly)
	assert.Equal(t, domain.Assumptions{TaxRate: 0.02, InsuranceAnnual: 2400, HOAMonthly: 0}, est.AssumptionsUsed)
}

func TestEstimateAllIn_DefaultAssumptions(t *testing.T) {
	p := DefaultPolicy()

	est := p.EstimateAllIn(fullScenario(400000, 40000, 760, 30))

	require.True(t, est.OK)
	assert.Equal(t, 3202.0, est.AllInMonthly)
	assert.InDelta(t, 0.020, est.AssumptionsUsed.TaxRate, 1e-9)
	assert.Equal(t, 2400.0, est.AssumptionsUsed.InsuranceAnnual)
	assert.Equal(t, 0.0, est.AssumptionsUsed.HOAMonthly)
}

func TestEstimateAllIn_BreakdownSumsToTotal(t *testing.T) {
	p := DefaultPolicy()
	for _, price := range []float64{85000, 199999, 333333, 412345.67, 1250000} {
		for _, downFrac := range []float64{0, 0.035, 0.1, 0.2, 0.5} {
			for _, score := range []int{300, 659, 660, 700, 739, 741, 780, 850} {
				for _, term := range []int{10, 15, 30, 40} {
					s := fullScenario(price, price*downFrac, score, term)
					s.HOAMonthly = domain.Ptr(137.5)

					est := p.EstimateAllIn(s)

					require.True(t, est.OK)
					b := est.Breakdown
					assert.Equal(t, est.AllInMonthly, b.PrincipalAndInterest+b.Taxes+b.Insurance+b.HOA,
						"price=%v down=%v score=%d term=%d", price, downFrac, score, term)
					for _, v := range []float64{b.PrincipalAndInterest, b.Taxes, b.Insurance, b.HOA, est.AllInMonthly} {
						assert.Equal(t, math.Round(v), v)
					}
				}
			}
		}
	}
}

func TestEstimateAllIn_Failures(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name   string
		s      domain.Scenario
		reason string
	}{
		{"missing price", domain.Scenario{Downpayment: domain.Ptr(0.0), CreditScore: domain.Ptr(700)}, "Missing or invalid price."},
		{"zero price", fullScenario(0, 0, 700, 30), "Missing or invalid price."},
		{"negative downpayment", fullScenario(300000, -1, 700, 30), "Missing or invalid downpayment."},
		{"missing downpayment", domain.Scenario{Price: domain.Ptr(300000.0), CreditScore: domain.Ptr(700)}, "Missing or invalid downpayment."},
		{"missing score", domain.Scenario{Price: domain.Ptr(300000.0), Downpayment: domain.Ptr(0.0)}, "Missing or invalid credit score."},
		{"score above range", fullScenario(300000, 0, 851, 30), "Missing or invalid credit score."},
		{"score below range", fullScenario(300000, 0, 299, 30), "Missing or invalid credit score."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := p.EstimateAllIn(tt.s)
			assert.False(t, est.OK)
			assert.Equal(t, tt.reason, est.Reason)
			assert.Zero(t, est.AllInMonthly)
		})
	}
}

func TestEstimateAllIn_ScoreBoundsInclusive(t *testing.T) {
	p := DefaultPolicy()

	assert.True(t, p.EstimateAllIn(fullScenario(300000, 30000, 850, 30)).OK)
	assert.True(t, p.EstimateAllIn(fullScenario(300000, 30000, 300, 30)).OK)
}

func TestEstimateAllIn_DownpaymentCoversPrice(t *testing.T) {
	p := DefaultPolicy()

	est := p.EstimateAllIn(fullScenario(240000, 300000, 720, 30))

	require.True(t, est.OK)
	assert.Zero(t, est.LoanAmount)
	assert.Zero(t, est.Breakdown.PrincipalAndInterest)
	assert.Equal(t, 400.0+200.0, est.AllInMonthly)
}

func TestEstimateAllIn_ZeroEverythingFails(t *testing.T) {
	p := DefaultPolicy()
	s := fullScenario(100, 100, 720, 30)
	s.TaxRate = domain.Ptr(0.0)
	s.InsuranceAnnual = domain.Ptr(0.0)

	est := p.EstimateAllIn(s)

	assert.False(t, est.OK)
	assert.Equal(t, "Unable to compute P&I.", est.Reason)
}

func TestAPRForScore_Tiers(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		score *int
		want  float64
	}{
		{domain.Ptr(850), 0.0625},
		{domain.Ptr(780), 0.0625},
		{domain.Ptr(779), 0.0675},
		{domain.Ptr(740), 0.0675},
		{domain.Ptr(739), 0.0725},
		{domain.Ptr(700), 0.0725},
		{domain.Ptr(699), 0.08},
		{domain.Ptr(660), 0.08},
		{domain.Ptr(659), 0.09},
		{domain.Ptr(300), 0.09},
		{nil, 0.07},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.APRForScore(tt.score))
	}
}

func TestAPRForScore_MonotonicNonIncreasing(t *testing.T) {
	p := DefaultPolicy()
	prev := p.APRForScore(domain.Ptr(300))
	for score := 301; score <= 850; score++ {
		apr := p.APRForScore(domain.Ptr(score))
		assert.LessOrEqual(t, apr, prev, "score %d", score)
		prev = apr
	}
}

func TestAPRForScore_UnsortedTiers(t *testing.T) {
	p := DefaultPolicy()
	p.APRTiers = []APRTier{{MinScore: 660, APR: 0.08}, {MinScore: 780, APR: 0.0625}}

	assert.Equal(t, 0.0625, p.APRForScore(domain.Ptr(800)))
	assert.Equal(t, 0.08, p.APRForScore(domain.Ptr(700)))
	assert.Equal(t, p.FloorAPR, p.APRForScore(domain.Ptr(600)))
}

func TestMonthlyPayment_ZeroRate(t *testing.T) {
	assert.Equal(t, 1000.0, MonthlyPayment(120000, 0, 10))
	assert.Equal(t, 120000.0, PrincipalForPayment(1000, 0, 10))
}

func TestPrincipalForPayment_InvertsMonthlyPayment(t *testing.T) {
	for _, apr := range []float64{0.0625, 0.07, 0.09} {
		for _, term := range []int{10, 30, 40} {
			principal := PrincipalForPayment(1500, apr, term)
			assert.InDelta(t, 1500, MonthlyPayment(principal, apr, term), 1e-6)
		}
	}
}

func TestQuickAffordability_IncomeOnly(t *testing.T) {
	p := DefaultPolicy()

	q := p.QuickAffordability(domain.Ptr(5000.0), p.APRForScore(nil), 30)

	require.NotNil(t, q)
	assert.Equal(t, 1500.0, q.HousingCapMonthly)
	assert.Equal(t, 1172.0, q.PITargetMonthly)
	assert.Equal(t, 0.07, q.APRAssumed)
	assert.Equal(t, 30, q.TermYears)
	assert.Equal(t, 176142.0, q.QuickMaxPrice.Price0Down)
	assert.Equal(t, 185412.0, q.QuickMaxPrice.Price5Down)
}

func TestQuickAffordability_FiveDownAboveZeroDown(t *testing.T) {
	p := DefaultPolicy()
	for _, income := range []float64{1500, 4000, 8250, 25000} {
		for _, apr := range []float64{0.0625, 0.07, 0.09} {
			q := p.QuickAffordability(domain.Ptr(income), apr, 30)
			require.NotNil(t, q)
			assert.Greater(t, q.QuickMaxPrice.Price5Down, q.QuickMaxPrice.Price0Down)
		}
	}
}

func TestQuickAffordability_NoIncome(t *testing.T) {
	p := DefaultPolicy()

	assert.Nil(t, p.QuickAffordability(nil, 0.07, 30))
	assert.Nil(t, p.QuickAffordability(domain.Ptr(0.0), 0.07, 30))
	assert.Nil(t, p.QuickAffordability(domain.Ptr(math.Inf(1)), 0.07, 30))
}

func TestQuickAffordability_UsesConfiguredBuffer(t *testing.T) {
	p := DefaultPolicy()
	p.PIBuffer = 1.0

	q := p.QuickAffordability(domain.Ptr(5000.0), 0.07, 30)

	require.NotNil(t, q)
	assert.Equal(t, 1500.0, q.PITargetMonthly)
}

func TestQuickAffordability_OverflowingIncome(t *testing.T) {
	p := DefaultPolicy()

	assert.NotPanics(t, func() {
		assert.Nil(t, p.QuickAffordability(domain.Ptr(5e306), 0.07, 30))
	})
}

func TestRoundWhole_NonFinite(t *testing.T) {
	assert.True(t, roundWhole(math.Inf(1)).IsZero())
	assert.True(t, roundWhole(math.NaN()).IsZero())
	assert.Equal(t, "0", money(math.Inf(-1)))
}
