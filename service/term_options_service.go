package service

import (
	"context"
	"fmt"
	"sort"

	"elena-agent/domain"
)

var defaultTermOptions = []int{10, 15, 20, 25, 30, 35, 40}

type TermOptionsService struct {
	affordability *AffordabilityService
}

func NewTermOptionsService(affordability *AffordabilityService) *TermOptionsService {
	return &TermOptionsService{affordability: affordability}
}

// RecommendTerm evaluates the resolved scenario across loan terms and picks
// the shortest term that still rates GREEN, or else the cheapest monthly one.
func (s *TermOptionsService) RecommendTerm(
	ctx context.Context,
	req domain.TermOptionsRequest,
) (domain.TermOptionsResult, error) {
	evaluation, scenario, err := s.affordability.evaluate(ctx, req.EvaluateRequest)
	if err != nil {
		return domain.TermOptionsResult{}, err
	}

	policy := s.affordability.Policy()
	options := []domain.TermOption{}
	for _, term := range policy.termCandidates(req.Terms) {
		sc := scenario
		sc.TermYears = term

		estimate := policy.EstimateAllIn(sc)
		if !estimate.OK {
			continue
		}
		verdict := policy.ComputeVerdict(sc.Income, sc.Expenses, &estimate.AllInMonthly)
		options = append(options, domain.TermOption{
			TermYears:            term,
			APRAssumed:           estimate.APRAssumed,
			PrincipalAndInterest: estimate.Breakdown.PrincipalAndInterest,
			AllInMonthly:         estimate.AllInMonthly,
			Status:               verdict.Status,
			Grade:                verdict.Grade,
		})
	}

	result := domain.TermOptionsResult{
		Evaluation: evaluation,
		Options:    options,
	}
	if len(options) == 0 {
		result.Reason = "Price, downpayment and credit score are needed to compare loan terms."
		return result, nil
	}

	for _, opt := range options {
		if opt.Status == domain.StatusGreen {
			result.RecommendedTerm = domain.Ptr(opt.TermYears)
			result.Reason = fmt.Sprintf("%d years is the shortest term that keeps the plan GREEN (grade %s).", opt.TermYears, opt.Grade)
			return result, nil
		}
	}

	cheapest := options[0]
	for _, opt := range options[1:] {
		if opt.AllInMonthly < cheapest.AllInMonthly {
			cheapest = opt
		}
	}
	result.RecommendedTerm = domain.Ptr(cheapest.TermYears)
	result.Reason = fmt.Sprintf("No term rates GREEN; %d years has the lowest monthly cost (%s).", cheapest.TermYears, cheapest.Status)
	return result, nil
}

// termCandidates clamps the requested terms into policy bounds, drops
// duplicates and sorts ascending. An empty request uses the default ladder.
func (p Policy) termCandidates(requested []int) []int {
	if len(requested) == 0 {
		requested = defaultTermOptions
	}
	seen := make(map[int]bool, len(requested))
	terms := make([]int, 0, len(requested))
	for _, t := range requested {
		t = p.clampTerm(t)
		if t <= 0 || seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}
	sort.Ints(terms)
	return terms
}
