package repository

import (
	"context"

	"warungpos/internal/apperror"
	"warungpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockFilter defines filters for listing ledger movements.
type StockFilter struct {
	ProductID   *uuid.UUID
	WarehouseID *uuid.UUID
	Type        string
	Page        int
	Limit       int
}

// StockRepository is the sole writer of stock_records. ApplyMovement performs
// the ledger append and the projection update as one atomic unit: either both
// are durable or neither is. A failed movement never leaves an orphan ledger
// row, and the quantity can never be observed negative.
type StockRepository interface {
	ApplyMovement(ctx context.Context, m *model.StockMovement, delta int64) (*model.StockRecord, error)
	// ApplyMovementTx runs the same atomic unit inside an existing
	// transaction — used by the sale flow so an insufficient item rolls
	// back the whole sale.
	ApplyMovementTx(tx *gorm.DB, m *model.StockMovement, delta int64) (*model.StockRecord, error)
	FindRecord(ctx context.Context, companyID, productID, warehouseID uuid.UUID) (*model.StockRecord, error)
	ListMovements(ctx context.Context, companyID uuid.UUID, filter StockFilter) ([]model.StockMovement, int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) ApplyMovement(ctx context.Context, m *model.StockMovement, delta int64) (*model.StockRecord, error) {
	var rec *model.StockRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		rec, txErr = r.ApplyMovementTx(tx, m, delta)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ApplyMovementTx serializes concurrent writers on the same key through a
// single conditional UPDATE: the quantity precondition and the new value are
// evaluated in one statement, so two concurrent OUT movements can never both
// read the same "current" value and both decide it is sufficient. The loser
// matches zero rows and gets InsufficientStock; no read-then-write window
// exists and no caller-visible retry is needed.
func (r *stockRepo) ApplyMovementTx(tx *gorm.DB, m *model.StockMovement, delta int64) (*model.StockRecord, error) {
	// Implicit creation: a key seen for the first time starts at quantity 0.
	if err := tx.Exec(`
		INSERT INTO stock_records (company_id, product_id, warehouse_id, quantity, last_updated)
		VALUES (?, ?, ?, 0, now())
		ON CONFLICT (company_id, product_id, warehouse_id) DO NOTHING`,
		m.CompanyID, m.ProductID, m.WarehouseID).Error; err != nil {
		return nil, err
	}

	var rec model.StockRecord
	res := tx.Raw(`
		UPDATE stock_records
		SET quantity = quantity + ?, last_updated = now()
		WHERE company_id = ? AND product_id = ? AND warehouse_id = ?
		  AND quantity + ? >= 0
		RETURNING id, company_id, product_id, warehouse_id, quantity, last_updated`,
		delta, m.CompanyID, m.ProductID, m.WarehouseID, delta).Scan(&rec)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// The row exists (ensured above), so zero rows means the
		// precondition failed. The transaction rolls back, discarding
		// the implicit record creation too.
		return nil, apperror.InsufficientStock("insufficient stock for product %s in warehouse %s", m.ProductID, m.WarehouseID)
	}

	m.QuantityBefore = rec.Quantity - delta
	m.QuantityAfter = rec.Quantity
	if err := tx.Create(m).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *stockRepo) FindRecord(ctx context.Context, companyID, productID, warehouseID uuid.UUID) (*model.StockRecord, error) {
	var rec model.StockRecord
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND product_id = ? AND warehouse_id = ?", companyID, productID, warehouseID).
		First(&rec).Error
	return &rec, err
}

func (r *stockRepo) ListMovements(ctx context.Context, companyID uuid.UUID, filter StockFilter) ([]model.StockMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Where("company_id = ?", companyID)
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.WarehouseID != nil {
		q = q.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var movements []model.StockMovement
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&movements).Error
	return movements, total, err
}

func (r *stockRepo) DB() *gorm.DB { return r.db }
