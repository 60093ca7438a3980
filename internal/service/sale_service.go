package service

import (
	"context"
	"fmt"
	"time"

	"warungpos/internal/apperror"
	"warungpos/internal/dto"
	"warungpos/internal/model"
	"warungpos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleService records POS transactions against an open shift. Each sale
// decrements stock atomically with the sale insert: either the whole basket
// commits or nothing does.
type SaleService interface {
	RecordSale(ctx context.Context, companyID, cashierID uuid.UUID, req dto.RecordSaleRequest) (*dto.SaleResponse, error)
	GetSale(ctx context.Context, companyID, saleID uuid.UUID) (*dto.SaleResponse, error)
}

type saleService struct {
	saleRepo  repository.SaleRepository
	stockRepo repository.StockRepository
	shifts    ShiftService
	rdb       *redis.Client
}

func NewSaleService(saleRepo repository.SaleRepository, stockRepo repository.StockRepository, shifts ShiftService, rdb *redis.Client) SaleService {
	return &saleService{saleRepo: saleRepo, stockRepo: stockRepo, shifts: shifts, rdb: rdb}
}

func (s *saleService) RecordSale(ctx context.Context, companyID, cashierID uuid.UUID, req dto.RecordSaleRequest) (*dto.SaleResponse, error) {
	sessionID, err := uuid.Parse(req.ShiftSessionID)
	if err != nil {
		return nil, apperror.Validation("invalid shift_session_id: %s", req.ShiftSessionID)
	}

	session, err := s.shifts.RequireOpen(ctx, companyID, sessionID)
	if err != nil {
		return nil, err
	}

	sale := &model.Sale{
		CompanyID:      companyID,
		ShiftSessionID: session.ID,
		CashierID:      cashierID,
		CreatedAt:      time.Now(),
	}

	total := decimal.Zero
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, apperror.Validation("invalid product_id: %s", item.ProductID)
		}
		warehouseID, err := uuid.Parse(item.WarehouseID)
		if err != nil {
			return nil, apperror.Validation("invalid warehouse_id: %s", item.WarehouseID)
		}
		if item.Quantity <= 0 {
			return nil, apperror.Validation("item quantity must be positive")
		}
		subtotal := item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))
		total = total.Add(subtotal)
		sale.Items = append(sale.Items, model.SaleItem{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    subtotal,
		})
	}
	sale.Total = total

	paid := decimal.Zero
	for _, p := range req.Payments {
		paid = paid.Add(p.Amount)
		sale.Payments = append(sale.Payments, model.SalePayment{
			Method: p.Method,
			Amount: p.Amount,
		})
	}
	if paid.LessThan(total) {
		return nil, apperror.Validation("payments %s do not cover total %s", paid, total)
	}
	change := paid.Sub(total)

	err = runTx(ctx, s.saleRepo.DB(), func(tx *gorm.DB) error {
		if err := s.saleRepo.CreateTx(tx, sale); err != nil {
			return err
		}
		for _, item := range sale.Items {
			mov := &model.StockMovement{
				CompanyID:   companyID,
				ProductID:   item.ProductID,
				WarehouseID: item.WarehouseID,
				Type:        model.MovementOut,
				Quantity:    item.Quantity,
				Reference:   fmt.Sprintf("sale %s", sale.ID),
				CreatedBy:   cashierID,
			}
			if _, err := s.stockRepo.ApplyMovementTx(tx, mov, -item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if apperror.IsKind(err, apperror.KindInsufficientStock) {
			return nil, err
		}
		return nil, apperror.Internal(err, "failed to record sale")
	}

	for _, item := range sale.Items {
		s.invalidateStock(ctx, companyID, item.ProductID, item.WarehouseID)
	}

	return saleToResponse(sale, change), nil
}

func (s *saleService) GetSale(ctx context.Context, companyID, saleID uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, companyID, saleID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("sale not found")
		}
		return nil, apperror.Internal(err, "failed to load sale")
	}
	paid := decimal.Zero
	for _, p := range sale.Payments {
		paid = paid.Add(p.Amount)
	}
	return saleToResponse(sale, paid.Sub(sale.Total)), nil
}

func (s *saleService) invalidateStock(ctx context.Context, companyID, productID, warehouseID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Del(ctx, stockCacheKey(companyID, productID, warehouseID)).Err()
}

// runTx runs fn inside a database transaction. When db is nil (unit tests
// backed by in-memory fakes) fn runs directly with a nil tx.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func saleToResponse(sale *model.Sale, change decimal.Decimal) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:             sale.ID.String(),
		ShiftSessionID: sale.ShiftSessionID.String(),
		Total:          sale.Total,
		Change:         change,
		CreatedAt:      sale.CreatedAt.Format(time.RFC3339),
	}
	for _, item := range sale.Items {
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ProductID:   item.ProductID.String(),
			WarehouseID: item.WarehouseID.String(),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}
	for _, p := range sale.Payments {
		resp.Payments = append(resp.Payments, dto.SalePaymentRequest{Method: p.Method, Amount: p.Amount})
	}
	return resp
}
