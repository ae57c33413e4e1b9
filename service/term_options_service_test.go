package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elena-agent/domain"
)

func TestRecommendTerm_ShortestGreen(t *testing.T) {
	svc := NewTermOptionsService(newTestService(nil, nil))
	req := domain.TermOptionsRequest{EvaluateRequest: domain.EvaluateRequest{
		Scenario: map[string]any{"price": 300000, "downpayment": 60000, "creditScore": 790, "income": 10000, "expenses": 1000},
	}}

	res, err := svc.RecommendTerm(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, res.Options, 7)
	assert.Equal(t, 10, res.Options[0].TermYears)
	assert.Equal(t, domain.StatusNoGo, res.Options[0].Status)
	assert.Equal(t, 3395.0, res.Options[0].AllInMonthly)
	assert.Equal(t, 2058.0, res.Options[1].PrincipalAndInterest)
	require.NotNil(t, res.RecommendedTerm)
	assert.Equal(t, 15, *res.RecommendedTerm)
	assert.Equal(t, "15 years is the shortest term that keeps the plan GREEN (grade A-).", res.Reason)
	assert.Equal(t, domain.StatusGreen, res.Evaluation.Verdict.Status)
	assert.Equal(t, 30, res.Evaluation.InputsUsed.TermYears)
}

func TestRecommendTerm_CheapestWhenNothingGreen(t *testing.T) {
	svc := NewTermOptionsService(newTestService(nil, nil))
	req := domain.TermOptionsRequest{
		EvaluateRequest: domain.EvaluateRequest{
			Overrides: map[string]any{"income": 6000, "expenses": 1500},
			Scenario:  map[string]any{"price": 400000, "downpayment": 40000, "creditScore": 760},
		},
		Terms: []int{30, 5, 30, 45},
	}

	res, err := svc.RecommendTerm(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, res.Options, 3)
	assert.Equal(t, []int{10, 30, 40}, []int{res.Options[0].TermYears, res.Options[1].TermYears, res.Options[2].TermYears})
	assert.Equal(t, 3039.0, res.Options[2].AllInMonthly)
	require.NotNil(t, res.RecommendedTerm)
	assert.Equal(t, 40, *res.RecommendedTerm)
	assert.Equal(t, "No term rates GREEN; 40 years has the lowest monthly cost (NO-GO).", res.Reason)
}

func TestRecommendTerm_NotEnoughData(t *testing.T) {
	svc := NewTermOptionsService(newTestService(nil, nil))

	res, err := svc.RecommendTerm(context.Background(), domain.TermOptionsRequest{})

	require.NoError(t, err)
	assert.Empty(t, res.Options)
	assert.Nil(t, res.RecommendedTerm)
	assert.NotEmpty(t, res.Reason)
	assert.Equal(t, domain.StatusInsufficient, res.Evaluation.Verdict.Status)
}

func TestTermCandidates(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, []int{10, 15, 20, 25, 30, 35, 40}, p.termCandidates(nil))
	assert.Equal(t, []int{10, 20, 40}, p.termCandidates([]int{40, 20, 1, 50, 10}))
}
