package service_test

import (
	"context"
	"sync"
	"testing"

	"warungpos/internal/apperror"
	"warungpos/internal/dto"
	"warungpos/internal/model"
	"warungpos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shiftEnv struct {
	shiftRepo *fakeShiftRepo
	saleRepo  *fakeSaleRepo
	svc       service.ShiftService
	companyID uuid.UUID
	cashierID uuid.UUID
}

func newShiftEnv() *shiftEnv {
	shiftRepo := newFakeShiftRepo()
	saleRepo := newFakeSaleRepo()
	return &shiftEnv{
		shiftRepo: shiftRepo,
		saleRepo:  saleRepo,
		svc:       service.NewShiftService(shiftRepo, saleRepo, nil),
		companyID: uuid.New(),
		cashierID: uuid.New(),
	}
}

func (e *shiftEnv) open(t *testing.T, registerID int, openingCash string) uuid.UUID {
	t.Helper()
	resp, err := e.svc.Open(context.Background(), e.companyID, e.cashierID, dto.OpenShiftRequest{
		RegisterID:  registerID,
		OpeningCash: d(openingCash),
	})
	require.NoError(t, err)
	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	return id
}

func (e *shiftEnv) recordSale(t *testing.T, sessionID uuid.UUID, method, amount string) {
	t.Helper()
	sale := &model.Sale{
		CompanyID:      e.companyID,
		ShiftSessionID: sessionID,
		CashierID:      e.cashierID,
		Total:          d(amount),
		Payments:       []model.SalePayment{{Method: method, Amount: d(amount)}},
	}
	require.NoError(t, e.saleRepo.CreateTx(nil, sale))
}

// ── Open ──────────────────────────────────────────────────────────────────────

func TestOpenShift(t *testing.T) {
	env := newShiftEnv()

	resp, err := env.svc.Open(context.Background(), env.companyID, env.cashierID, dto.OpenShiftRequest{
		RegisterID:  1,
		OpeningCash: d("500000"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ShiftOpen, resp.Status)
	assert.True(t, resp.OpeningCash.Equal(d("500000")))
	assert.Nil(t, resp.Reconciliation)
}

func TestOpenShiftNegativeOpeningCash(t *testing.T) {
	env := newShiftEnv()

	_, err := env.svc.Open(context.Background(), env.companyID, env.cashierID, dto.OpenShiftRequest{
		RegisterID:  1,
		OpeningCash: d("-1"),
	})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestOpenShiftDuplicate(t *testing.T) {
	env := newShiftEnv()
	env.open(t, 1, "100000")

	_, err := env.svc.Open(context.Background(), env.companyID, env.cashierID, dto.OpenShiftRequest{
		RegisterID:  1,
		OpeningCash: d("100000"),
	})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	// A different register is an independent scope.
	_, err = env.svc.Open(context.Background(), env.companyID, env.cashierID, dto.OpenShiftRequest{
		RegisterID:  2,
		OpeningCash: d("100000"),
	})
	assert.NoError(t, err)
}

func TestOpenShiftConcurrentSameRegister(t *testing.T) {
	env := newShiftEnv()

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.Open(context.Background(), env.companyID, env.cashierID, dto.OpenShiftRequest{
				RegisterID:  7,
				OpeningCash: d("50000"),
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.True(t, apperror.IsKind(err, apperror.KindConflict))
		}
	}
	assert.Equal(t, 1, successes)
}

// ── Summary ───────────────────────────────────────────────────────────────────

func TestSummaryExpectedCash(t *testing.T) {
	env := newShiftEnv()
	sessionID := env.open(t, 1, "500000")

	env.recordSale(t, sessionID, model.PayCash, "100000")
	env.recordSale(t, sessionID, model.PayCash, "100000")
	env.recordSale(t, sessionID, model.PayCash, "100000")
	env.recordSale(t, sessionID, model.PayCard, "250000")

	summary, err := env.svc.Summary(context.Background(), env.companyID, sessionID)
	require.NoError(t, err)

	assert.Equal(t, int64(4), summary.TotalTransactions)
	assert.True(t, summary.CashSales.Equal(d("300000")))
	assert.True(t, summary.CardSales.Equal(d("250000")))
	assert.True(t, summary.TotalSales.Equal(d("550000")))
	// Only cash feeds the drawer: expected = opening + cash sales.
	assert.True(t, summary.ExpectedCash.Equal(d("800000")))
}

func TestSummaryEmptyShift(t *testing.T) {
	env := newShiftEnv()
	sessionID := env.open(t, 1, "200000")

	summary, err := env.svc.Summary(context.Background(), env.companyID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalTransactions)
	assert.True(t, summary.ExpectedCash.Equal(d("200000")))
}

func TestSummaryNotFound(t *testing.T) {
	env := newShiftEnv()
	_, err := env.svc.Summary(context.Background(), env.companyID, uuid.New())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

// ── Close ─────────────────────────────────────────────────────────────────────

func TestCloseBalanced(t *testing.T) {
	env := newShiftEnv()
	sessionID := env.open(t, 1, "500000")
	env.recordSale(t, sessionID, model.PayCash, "300000")

	resp, err := env.svc.Close(context.Background(), env.companyID, sessionID, dto.CloseShiftRequest{
		ActualCash: d("800000"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ShiftClosed, resp.Status)
	require.NotNil(t, resp.Reconciliation)
	assert.True(t, resp.Reconciliation.Variance.IsZero())
	assert.Equal(t, service.CashBalanced, resp.Reconciliation.Classification)
	assert.NotNil(t, resp.ClosedAt)
}

func TestCloseShortageRequiresNotes(t *testing.T) {
	env := newShiftEnv()
	sessionID := env.open(t, 1, "500000")
	env.recordSale(t, sessionID, model.PayCash, "300000")

	_, err := env.svc.Close(context.Background(), env.companyID, sessionID, dto.CloseShiftRequest{
		ActualCash: d("795000"),
	})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	// The failed close left the session open.
	summary, err := env.svc.Summary(context.Background(), env.companyID, sessionID)
	require.NoError(t, err)
	assert.True(t, summary.ExpectedCash.Equal(d("800000")))

	notes := "5000 short, till counted twice"
	resp, err := env.svc.Close(context.Background(), env.companyID, sessionID, dto.CloseShiftRequest{
		ActualCash: d("795000"),
		Notes:      &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, service.CashShortage, resp.Reconciliation.Classification)
	assert.True(t, resp.Reconciliation.Variance.Equal(d("-5000")))
}

func TestCloseSurplusWithNotes(t *testing.T) {
	env := newShiftEnv()
	sessionID := env.open(t, 1, "100000")

	notes := "found an extra note under the tray"
	resp, err := env.svc.Close(context.Background(), env.companyID, sessionID, dto.CloseShiftRequest{
		ActualCash: d("102000"),
		Notes:      &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, service.CashSurplus, resp.Reconciliation.Classification)
	assert.True(t, resp.Reconciliation.Variance.Equal(d("2000")))
}

func TestCloseNegativeActualCash(t *testing.T) {
	env := newShiftEnv()
	sessionID := env.open(t, 1, "100000")

	_, err := env.svc.Close(context.Background(), env.companyID, sessionID, dto.CloseShiftRequest{
		ActualCash: d("-10"),
	})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestCloseTwice(t *testing.T) {
	env := newShiftEnv()
	sessionID := env.open(t, 1, "100000")

	_, err := env.svc.Close(context.Background(), env.companyID, sessionID, dto.CloseShiftRequest{
		ActualCash: d("100000"),
	})
	require.NoError(t, err)

	_, err = env.svc.Close(context.Background(), env.companyID, sessionID, dto.CloseShiftRequest{
		ActualCash: d("100000"),
	})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
}

func TestCloseConcurrentExactlyOneWins(t *testing.T) {
	env := newShiftEnv()
	sessionID := env.open(t, 1, "100000")

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.Close(context.Background(), env.companyID, sessionID, dto.CloseShiftRequest{
				ActualCash: d("100000"),
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
		}
	}
	assert.Equal(t, 1, successes)
}

func TestCloseNotFound(t *testing.T) {
	env := newShiftEnv()
	_, err := env.svc.Close(context.Background(), env.companyID, uuid.New(), dto.CloseShiftRequest{
		ActualCash: decimal.Zero,
	})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

// ── Active / RequireOpen ──────────────────────────────────────────────────────

func TestActiveShift(t *testing.T) {
	env := newShiftEnv()
	sessionID := env.open(t, 3, "75000")

	resp, err := env.svc.Active(context.Background(), env.companyID, env.cashierID, 3)
	require.NoError(t, err)
	assert.Equal(t, sessionID.String(), resp.ID)

	_, err = env.svc.Active(context.Background(), env.companyID, env.cashierID, 4)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestRequireOpenRejectsClosed(t *testing.T) {
	env := newShiftEnv()
	sessionID := env.open(t, 1, "100000")

	_, err := env.svc.RequireOpen(context.Background(), env.companyID, sessionID)
	require.NoError(t, err)

	_, err = env.svc.Close(context.Background(), env.companyID, sessionID, dto.CloseShiftRequest{
		ActualCash: d("100000"),
	})
	require.NoError(t, err)

	_, err = env.svc.RequireOpen(context.Background(), env.companyID, sessionID)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
}

func TestShiftTenantIsolation(t *testing.T) {
	env := newShiftEnv()
	sessionID := env.open(t, 1, "100000")

	otherCompany := uuid.New()
	_, err := env.svc.Summary(context.Background(), otherCompany, sessionID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
