package repository

import (
	"context"

	"warungpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleRepository interface {
	// CreateTx inserts the sale with its items and payments inside the
	// caller's transaction.
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Sale, error)
	// SumPaymentsByMethod aggregates the payment rows recorded during one
	// shift session, keyed by payment method. Missing methods are absent
	// from the map.
	SumPaymentsByMethod(ctx context.Context, sessionID uuid.UUID) (map[string]decimal.Decimal, error)
	CountBySession(ctx context.Context, sessionID uuid.UUID) (int64, error)

	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Payments").
		Where("id = ? AND company_id = ?", id, companyID).
		First(&s).Error
	return &s, err
}

func (r *saleRepo) SumPaymentsByMethod(ctx context.Context, sessionID uuid.UUID) (map[string]decimal.Decimal, error) {
	type row struct {
		Method string
		Total  decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).Raw(`
		SELECT sp.method AS method, COALESCE(SUM(sp.amount), 0) AS total
		FROM sale_payments sp
		JOIN sales s ON s.id = sp.sale_id
		WHERE s.shift_session_id = ?
		GROUP BY sp.method`, sessionID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sums := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		sums[r.Method] = r.Total
	}
	return sums, nil
}

func (r *saleRepo) CountBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("shift_session_id = ?", sessionID).Count(&n).Error
	return n, err
}

func (r *saleRepo) DB() *gorm.DB { return r.db }
