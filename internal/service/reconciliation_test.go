package service_test

import (
	"testing"

	"warungpos/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestReconcileBalanced(t *testing.T) {
	r := service.Reconcile(d("800000"), d("800000"))

	assert.True(t, r.Variance.IsZero())
	assert.Equal(t, service.CashBalanced, r.Classification)
	assert.True(t, r.Balanced())
}

func TestReconcileShortage(t *testing.T) {
	r := service.Reconcile(d("800000"), d("795000"))

	assert.True(t, r.Variance.Equal(d("-5000")))
	assert.Equal(t, service.CashShortage, r.Classification)
	assert.False(t, r.Balanced())
}

func TestReconcileSurplus(t *testing.T) {
	r := service.Reconcile(d("800000"), d("801500.50"))

	assert.True(t, r.Variance.Equal(d("1500.50")))
	assert.Equal(t, service.CashSurplus, r.Classification)
	assert.False(t, r.Balanced())
}

func TestReconcileZeroCount(t *testing.T) {
	// A zero count is a real count of an empty drawer, not a missing value.
	r := service.Reconcile(d("500000"), decimal.Zero)

	assert.True(t, r.Variance.Equal(d("-500000")))
	assert.Equal(t, service.CashShortage, r.Classification)
}
