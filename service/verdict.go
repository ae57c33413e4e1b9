package service

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"elena-agent/domain"
)

const (
	gradeA      = "A"
	gradeAMinus = "A-"
	gradeBPlus  = "B+"
	gradeB      = "B"
	gradeCPlus  = "C+"
	gradeD      = "D"
	gradeNA     = "N/A"
)

func positive(v *float64) bool {
	return v != nil && isFinite(*v) && *v > 0
}

// ComputeVerdict classifies affordability from monthly income, monthly
// expenses and the all-in housing cost. Absent expenses count as zero.
func (p Policy) ComputeVerdict(income, expenses, housingAllIn *float64) domain.Verdict {
	if !positive(income) {
		return domain.Verdict{
			Status: domain.StatusInsufficient,
			Grade:  gradeNA,
			Notes:  []string{"Missing income; cannot compute affordability rails."},
		}
	}

	inc := *income
	housingCap := inc * p.HousingCapFraction

	if !positive(housingAllIn) {
		return domain.Verdict{
			Status:     domain.StatusInsufficient,
			Grade:      gradeNA,
			HousingCap: domain.Ptr(roundTo(housingCap, 2)),
			Notes:      []string{"Missing housing estimate; using cap + quick rails only."},
		}
	}

	housing := *housingAllIn
	exp := 0.0
	if expenses != nil && isFinite(*expenses) {
		exp = *expenses
	}

	housingRatio := housing / inc
	residual := inc - exp - housing
	cushionLow := inc * p.CushionLow
	cushionGood := inc * p.CushionGood

	v := domain.Verdict{
		HousingCap: domain.Ptr(roundTo(housingCap, 2)),
		Ratios: domain.Ratios{
			HousingRatio: domain.Ptr(roundTo(housingRatio, 4)),
			ExpenseRatio: domain.Ptr(roundTo(exp/inc, 4)),
		},
		Residual: domain.Ptr(roundTo(residual, 2)),
	}

	switch {
	case residual < 0:
		v.Status, v.Grade = domain.StatusNoGo, gradeD
		v.Notes = append(v.Notes, "Residual income is negative after expenses + housing.")
	case housing > housingCap:
		v.Status, v.Grade = domain.StatusNoGo, gradeD
		v.Notes = append(v.Notes, fmt.Sprintf("Housing cost exceeds the %s housing cap.", p.capLabel()))
	case residual < cushionLow:
		v.Status, v.Grade = domain.StatusCaution, gradeCPlus
		v.Notes = append(v.Notes, "Buffer is thin after expenses + housing.")
	default:
		v.Status = domain.StatusGreen
		v.Grade = p.greenGrade(housingRatio, residual, cushionLow, cushionGood)
		v.Notes = append(v.Notes, "Housing fits under the cap with a positive buffer.")
	}

	if expenses == nil {
		v.Ratios.ExpenseRatio = nil
		v.Notes = append(v.Notes, "Expenses not provided; residual assumes zero.")
	}
	return v
}

func (p Policy) greenGrade(housingRatio, residual, cushionLow, cushionGood float64) string {
	switch {
	case housingRatio <= p.GradeARatio && residual >= cushionGood:
		return gradeA
	case housingRatio <= p.GradeAMinusRatio && residual >= cushionLow:
		return gradeAMinus
	case housingRatio <= p.GradeBPlusRatio && residual >= cushionLow:
		return gradeBPlus
	default:
		return gradeB
	}
}

func (p Policy) capLabel() string {
	return decimal.NewFromFloat(p.HousingCapFraction*100).Round(2).String() + "%"
}

// PickNextAction selects the single recommended follow-up for a verdict.
func (p Policy) PickNextAction(v domain.Verdict, missing []string, price, housingAllIn *float64) domain.NextAction {
	switch v.Status {
	case domain.StatusInsufficient:
		if len(missing) == 0 {
			return domain.NextAction{
				Type: domain.ActionCollectMissingInputs,
				Why:  "Not enough data to rate affordability yet.",
			}
		}
		return domain.NextAction{
			Type:   domain.ActionCollectMissingInputs,
			Target: map[string]any{"missing": append([]string(nil), missing...)},
			Why:    "A few numbers are still missing before the plan can be rated.",
		}

	case domain.StatusNoGo:
		// Scaling the price only helps when housing itself is over the cap.
		if positive(price) && positive(housingAllIn) && v.HousingCap != nil && *v.HousingCap > 0 && *housingAllIn > *v.HousingCap {
			target := p.roundToStep(*price * (*v.HousingCap / *housingAllIn))
			return domain.NextAction{
				Type: domain.ActionLowerPrice,
				Target: map[string]any{
					"target_price":   target,
					"housing_cap":    *v.HousingCap,
					"current_all_in": *housingAllIn,
					"current_price":  *price,
				},
				Why: "Scaling the price down brings the monthly housing cost back to the cap.",
			}
		}
		return domain.NextAction{
			Type: domain.ActionAdjustScenario,
			Why:  "Lower the price, raise the downpayment, or reduce monthly expenses to get back under the cap.",
		}

	case domain.StatusCaution:
		return domain.NextAction{
			Type: domain.ActionIncreaseBuffer,
			Why:  "The plan works on paper but leaves a thin monthly buffer; trim expenses or add savings first.",
		}

	default:
		return domain.NextAction{
			Type: domain.ActionLockInPlan,
			Why:  "The numbers hold up; get pre-approved and lock the plan in.",
		}
	}
}

func (p Policy) roundToStep(v float64) float64 {
	if !isFinite(v) {
		return math.NaN()
	}
	step := decimal.NewFromFloat(p.TargetPriceRounding)
	return decimal.NewFromFloat(v).Div(step).Round(0).Mul(step).InexactFloat64()
}
