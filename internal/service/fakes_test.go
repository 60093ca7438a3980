package service_test

import (
	"context"
	"sync"
	"time"

	"warungpos/internal/apperror"
	"warungpos/internal/model"
	"warungpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory StockRepository ────────────────────────────────────────────────
// The mutex stands in for the row-level serialization the conditional UPDATE
// gives the real repository: the precondition check and the write are one
// critical section.

type stockKey struct {
	companyID, productID, warehouseID uuid.UUID
}

type fakeStockRepo struct {
	mu        sync.Mutex
	records   map[stockKey]*model.StockRecord
	movements []model.StockMovement
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{records: make(map[stockKey]*model.StockRecord)}
}

func (r *fakeStockRepo) ApplyMovement(_ context.Context, m *model.StockMovement, delta int64) (*model.StockRecord, error) {
	return r.ApplyMovementTx(nil, m, delta)
}

func (r *fakeStockRepo) ApplyMovementTx(_ *gorm.DB, m *model.StockMovement, delta int64) (*model.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := stockKey{m.CompanyID, m.ProductID, m.WarehouseID}
	rec, ok := r.records[key]
	if !ok {
		rec = &model.StockRecord{
			ID:          uuid.New(),
			CompanyID:   m.CompanyID,
			ProductID:   m.ProductID,
			WarehouseID: m.WarehouseID,
		}
	}
	if rec.Quantity+delta < 0 {
		return nil, apperror.InsufficientStock("insufficient stock for product %s in warehouse %s", m.ProductID, m.WarehouseID)
	}

	m.QuantityBefore = rec.Quantity
	rec.Quantity += delta
	rec.LastUpdated = time.Now()
	r.records[key] = rec
	m.QuantityAfter = rec.Quantity

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, *m)

	out := *rec
	return &out, nil
}

func (r *fakeStockRepo) FindRecord(_ context.Context, companyID, productID, warehouseID uuid.UUID) (*model.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[stockKey{companyID, productID, warehouseID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *rec
	return &out, nil
}

func (r *fakeStockRepo) ListMovements(_ context.Context, companyID uuid.UUID, filter repository.StockFilter) ([]model.StockMovement, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.StockMovement
	for _, m := range r.movements {
		if m.CompanyID != companyID {
			continue
		}
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.WarehouseID != nil && m.WarehouseID != *filter.WarehouseID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		result = append(result, m)
	}
	return result, int64(len(result)), nil
}

func (r *fakeStockRepo) DB() *gorm.DB { return nil }

func (r *fakeStockRepo) quantity(companyID, productID, warehouseID uuid.UUID) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[stockKey{companyID, productID, warehouseID}]
	if !ok {
		return 0
	}
	return rec.Quantity
}

// ── In-memory ShiftRepository ────────────────────────────────────────────────
// Create enforces the open-session uniqueness the partial unique index gives
// the real repository, and CloseSession is the same compare-and-set.

type fakeShiftRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*model.ShiftSession
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{sessions: make(map[uuid.UUID]*model.ShiftSession)}
}

func (r *fakeShiftRepo) CreateSession(_ context.Context, s *model.ShiftSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sessions {
		if existing.CompanyID == s.CompanyID &&
			existing.CashierID == s.CashierID &&
			existing.RegisterID == s.RegisterID &&
			existing.Status == model.ShiftOpen {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	stored := *s
	r.sessions[s.ID] = &stored
	return nil
}

func (r *fakeShiftRepo) FindSessionByID(_ context.Context, companyID, id uuid.UUID) (*model.ShiftSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	out := *s
	return &out, nil
}

func (r *fakeShiftRepo) FindOpenSession(_ context.Context, companyID, cashierID uuid.UUID, registerID int) (*model.ShiftSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.CompanyID == companyID && s.CashierID == cashierID &&
			s.RegisterID == registerID && s.Status == model.ShiftOpen {
			out := *s
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeShiftRepo) CloseSession(_ context.Context, s *model.ShiftSession) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[s.ID]
	if !ok || stored.CompanyID != s.CompanyID || stored.Status != model.ShiftOpen {
		return false, nil
	}
	stored.ClosingCash = s.ClosingCash
	stored.ActualCash = s.ActualCash
	stored.Variance = s.Variance
	stored.Notes = s.Notes
	stored.Status = model.ShiftClosed
	stored.ClosedAt = s.ClosedAt
	return true, nil
}

func (r *fakeShiftRepo) ListSessions(_ context.Context, companyID uuid.UUID, page, limit int) ([]model.ShiftSession, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.ShiftSession
	for _, s := range r.sessions {
		if s.CompanyID == companyID {
			result = append(result, *s)
		}
	}
	return result, int64(len(result)), nil
}

// ── In-memory SaleRepository ─────────────────────────────────────────────────

type fakeSaleRepo struct {
	mu    sync.Mutex
	sales []model.Sale
}

func newFakeSaleRepo() *fakeSaleRepo { return &fakeSaleRepo{} }

func (r *fakeSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for i := range s.Items {
		s.Items[i].ID = uuid.New()
		s.Items[i].SaleID = s.ID
	}
	for i := range s.Payments {
		s.Payments[i].ID = uuid.New()
		s.Payments[i].SaleID = s.ID
	}
	r.sales = append(r.sales, *s)
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sales {
		if s.ID == id && s.CompanyID == companyID {
			out := s
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSaleRepo) SumPaymentsByMethod(_ context.Context, sessionID uuid.UUID) (map[string]decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := make(map[string]decimal.Decimal)
	for _, s := range r.sales {
		if s.ShiftSessionID != sessionID {
			continue
		}
		for _, p := range s.Payments {
			sums[p.Method] = sums[p.Method].Add(p.Amount)
		}
	}
	return sums, nil
}

func (r *fakeSaleRepo) CountBySession(_ context.Context, sessionID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.sales {
		if s.ShiftSessionID == sessionID {
			n++
		}
	}
	return n, nil
}

func (r *fakeSaleRepo) DB() *gorm.DB { return nil }

// ── In-memory UserRepository ─────────────────────────────────────────────────

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	stored := *u
	r.users[u.ID] = &stored
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username && u.Active {
			out := *u
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(_ context.Context, companyID uuid.UUID) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.User
	for _, u := range r.users {
		if u.CompanyID == companyID && u.Active {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) ListAll(_ context.Context, companyID uuid.UUID) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.User
	for _, u := range r.users {
		if u.CompanyID == companyID {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *u
	r.users[u.ID] = &stored
	return nil
}

func (r *fakeUserRepo) SoftDelete(_ context.Context, companyID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok && u.CompanyID == companyID {
		u.Active = false
	}
	return nil
}

func (r *fakeUserRepo) Reactivate(_ context.Context, companyID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok && u.CompanyID == companyID {
		u.Active = true
	}
	return nil
}
