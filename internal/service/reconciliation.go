package service

import "github.com/shopspring/decimal"

// Reconciliation classifications.
const (
	CashSurplus  = "surplus"  // counted more than expected
	CashShortage = "shortage" // counted less than expected
	CashBalanced = "balanced"
)

// Reconciliation is the outcome of comparing the counted drawer against the
// expected cash at close time. Pure value — persistence is the shift
// service's job.
type Reconciliation struct {
	ExpectedCash   decimal.Decimal
	ActualCash     decimal.Decimal
	Variance       decimal.Decimal
	Classification string
}

// Reconcile computes variance = actual - expected and classifies it.
func Reconcile(expected, actual decimal.Decimal) Reconciliation {
	variance := actual.Sub(expected)
	classification := CashBalanced
	switch {
	case variance.IsPositive():
		classification = CashSurplus
	case variance.IsNegative():
		classification = CashShortage
	}
	return Reconciliation{
		ExpectedCash:   expected,
		ActualCash:     actual,
		Variance:       variance,
		Classification: classification,
	}
}

// Balanced reports whether the count matched exactly. A non-balanced close
// requires an explanation in the session notes.
func (r Reconciliation) Balanced() bool { return r.Variance.IsZero() }
