package service_test

import (
	"context"
	"testing"

	"warungpos/internal/apperror"
	"warungpos/internal/dto"
	"warungpos/internal/model"
	"warungpos/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saleEnv struct {
	stockRepo *fakeStockRepo
	saleRepo  *fakeSaleRepo
	shiftSvc  service.ShiftService
	svc       service.SaleService
	companyID uuid.UUID
	cashierID uuid.UUID
}

func newSaleEnv() *saleEnv {
	stockRepo := newFakeStockRepo()
	saleRepo := newFakeSaleRepo()
	shiftRepo := newFakeShiftRepo()
	shiftSvc := service.NewShiftService(shiftRepo, saleRepo, nil)
	return &saleEnv{
		stockRepo: stockRepo,
		saleRepo:  saleRepo,
		shiftSvc:  shiftSvc,
		svc:       service.NewSaleService(saleRepo, stockRepo, shiftSvc, nil),
		companyID: uuid.New(),
		cashierID: uuid.New(),
	}
}

func (e *saleEnv) openShift(t *testing.T) uuid.UUID {
	t.Helper()
	resp, err := e.shiftSvc.Open(context.Background(), e.companyID, e.cashierID, dto.OpenShiftRequest{
		RegisterID:  1,
		OpeningCash: d("100000"),
	})
	require.NoError(t, err)
	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	return id
}

func (e *saleEnv) stockIn(t *testing.T, productID, warehouseID uuid.UUID, qty int64) {
	t.Helper()
	_, err := e.stockRepo.ApplyMovement(context.Background(), &model.StockMovement{
		CompanyID:   e.companyID,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        model.MovementIn,
		Quantity:    qty,
		CreatedBy:   e.cashierID,
	}, qty)
	require.NoError(t, err)
}

func TestRecordSale(t *testing.T) {
	env := newSaleEnv()
	sessionID := env.openShift(t)
	productID, warehouseID := uuid.New(), uuid.New()
	env.stockIn(t, productID, warehouseID, 10)

	resp, err := env.svc.RecordSale(context.Background(), env.companyID, env.cashierID, dto.RecordSaleRequest{
		ShiftSessionID: sessionID.String(),
		Items: []dto.SaleItemRequest{
			{ProductID: productID.String(), WarehouseID: warehouseID.String(), Quantity: 3, UnitPrice: d("15000")},
		},
		Payments: []dto.SalePaymentRequest{
			{Method: model.PayCash, Amount: d("50000")},
		},
	})
	require.NoError(t, err)

	assert.True(t, resp.Total.Equal(d("45000")))
	assert.True(t, resp.Change.Equal(d("5000")))
	assert.Equal(t, int64(7), env.stockRepo.quantity(env.companyID, productID, warehouseID))

	// The sale feeds the shift summary.
	summary, err := env.shiftSvc.Summary(context.Background(), env.companyID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TotalTransactions)
	assert.True(t, summary.CashSales.Equal(d("50000")))
}

func TestRecordSaleSplitTender(t *testing.T) {
	env := newSaleEnv()
	sessionID := env.openShift(t)
	productID, warehouseID := uuid.New(), uuid.New()
	env.stockIn(t, productID, warehouseID, 5)

	resp, err := env.svc.RecordSale(context.Background(), env.companyID, env.cashierID, dto.RecordSaleRequest{
		ShiftSessionID: sessionID.String(),
		Items: []dto.SaleItemRequest{
			{ProductID: productID.String(), WarehouseID: warehouseID.String(), Quantity: 2, UnitPrice: d("40000")},
		},
		Payments: []dto.SalePaymentRequest{
			{Method: model.PayCash, Amount: d("30000")},
			{Method: model.PayEwallet, Amount: d("50000")},
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.Change.IsZero())

	// Each component method lands in its own summary bucket.
	summary, err := env.shiftSvc.Summary(context.Background(), env.companyID, sessionID)
	require.NoError(t, err)
	assert.True(t, summary.CashSales.Equal(d("30000")))
	assert.True(t, summary.EwalletSales.Equal(d("50000")))
	assert.True(t, summary.ExpectedCash.Equal(d("130000")))
}

func TestRecordSaleInsufficientStock(t *testing.T) {
	env := newSaleEnv()
	sessionID := env.openShift(t)
	productID, warehouseID := uuid.New(), uuid.New()
	env.stockIn(t, productID, warehouseID, 2)

	_, err := env.svc.RecordSale(context.Background(), env.companyID, env.cashierID, dto.RecordSaleRequest{
		ShiftSessionID: sessionID.String(),
		Items: []dto.SaleItemRequest{
			{ProductID: productID.String(), WarehouseID: warehouseID.String(), Quantity: 3, UnitPrice: d("10000")},
		},
		Payments: []dto.SalePaymentRequest{
			{Method: model.PayCash, Amount: d("30000")},
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInsufficientStock))
	assert.Equal(t, int64(2), env.stockRepo.quantity(env.companyID, productID, warehouseID))
}

func TestRecordSaleUnderpaid(t *testing.T) {
	env := newSaleEnv()
	sessionID := env.openShift(t)
	productID, warehouseID := uuid.New(), uuid.New()
	env.stockIn(t, productID, warehouseID, 5)

	_, err := env.svc.RecordSale(context.Background(), env.companyID, env.cashierID, dto.RecordSaleRequest{
		ShiftSessionID: sessionID.String(),
		Items: []dto.SaleItemRequest{
			{ProductID: productID.String(), WarehouseID: warehouseID.String(), Quantity: 1, UnitPrice: d("20000")},
		},
		Payments: []dto.SalePaymentRequest{
			{Method: model.PayCash, Amount: d("15000")},
		},
	})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Equal(t, int64(5), env.stockRepo.quantity(env.companyID, productID, warehouseID))
}

func TestRecordSaleClosedShift(t *testing.T) {
	env := newSaleEnv()
	sessionID := env.openShift(t)
	productID, warehouseID := uuid.New(), uuid.New()
	env.stockIn(t, productID, warehouseID, 5)

	_, err := env.shiftSvc.Close(context.Background(), env.companyID, sessionID, dto.CloseShiftRequest{
		ActualCash: d("100000"),
	})
	require.NoError(t, err)

	_, err = env.svc.RecordSale(context.Background(), env.companyID, env.cashierID, dto.RecordSaleRequest{
		ShiftSessionID: sessionID.String(),
		Items: []dto.SaleItemRequest{
			{ProductID: productID.String(), WarehouseID: warehouseID.String(), Quantity: 1, UnitPrice: d("10000")},
		},
		Payments: []dto.SalePaymentRequest{
			{Method: model.PayCash, Amount: d("10000")},
		},
	})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
}

func TestRecordSaleUnknownSession(t *testing.T) {
	env := newSaleEnv()

	_, err := env.svc.RecordSale(context.Background(), env.companyID, env.cashierID, dto.RecordSaleRequest{
		ShiftSessionID: uuid.NewString(),
		Items: []dto.SaleItemRequest{
			{ProductID: uuid.NewString(), WarehouseID: uuid.NewString(), Quantity: 1, UnitPrice: d("10000")},
		},
		Payments: []dto.SalePaymentRequest{
			{Method: model.PayCash, Amount: d("10000")},
		},
	})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
