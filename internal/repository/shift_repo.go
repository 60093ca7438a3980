package repository

import (
	"context"

	"warungpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShiftRepository interface {
	// CreateSession inserts a new OPEN session. The partial unique index on
	// (company_id, cashier_id, register_id) WHERE status = 'open' makes the
	// uniqueness check authoritative under concurrency; callers translate
	// gorm.ErrDuplicatedKey into a Conflict.
	CreateSession(ctx context.Context, s *model.ShiftSession) error
	FindSessionByID(ctx context.Context, companyID, id uuid.UUID) (*model.ShiftSession, error)
	FindOpenSession(ctx context.Context, companyID, cashierID uuid.UUID, registerID int) (*model.ShiftSession, error)
	// CloseSession is a compare-and-set on status: the UPDATE only matches
	// while the session is still open. Returns false when zero rows matched,
	// meaning a concurrent close already won.
	CloseSession(ctx context.Context, s *model.ShiftSession) (bool, error)
	ListSessions(ctx context.Context, companyID uuid.UUID, page, limit int) ([]model.ShiftSession, int64, error)
}

type shiftRepo struct{ db *gorm.DB }

func NewShiftRepository(db *gorm.DB) ShiftRepository { return &shiftRepo{db: db} }

func (r *shiftRepo) CreateSession(ctx context.Context, s *model.ShiftSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *shiftRepo) FindSessionByID(ctx context.Context, companyID, id uuid.UUID) (*model.ShiftSession, error) {
	var s model.ShiftSession
	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&s).Error
	return &s, err
}

func (r *shiftRepo) FindOpenSession(ctx context.Context, companyID, cashierID uuid.UUID, registerID int) (*model.ShiftSession, error) {
	var s model.ShiftSession
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND cashier_id = ? AND register_id = ? AND status = ?",
			companyID, cashierID, registerID, model.ShiftOpen).
		First(&s).Error
	return &s, err
}

func (r *shiftRepo) CloseSession(ctx context.Context, s *model.ShiftSession) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.ShiftSession{}).
		Where("id = ? AND company_id = ? AND status = ?", s.ID, s.CompanyID, model.ShiftOpen).
		Updates(map[string]interface{}{
			"closing_cash": s.ClosingCash,
			"actual_cash":  s.ActualCash,
			"variance":     s.Variance,
			"notes":        s.Notes,
			"status":       model.ShiftClosed,
			"closed_at":    s.ClosedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *shiftRepo) ListSessions(ctx context.Context, companyID uuid.UUID, page, limit int) ([]model.ShiftSession, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.ShiftSession{}).
		Where("company_id = ?", companyID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var sessions []model.ShiftSession
	err := q.Order("opened_at DESC").Offset(offset).Limit(limit).Find(&sessions).Error
	return sessions, total, err
}
