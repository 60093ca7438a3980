package service

import (
	"context"
	"errors"
	"time"

	"warungpos/internal/apperror"
	"warungpos/internal/dto"
	"warungpos/internal/model"
	"warungpos/internal/repository"
	"warungpos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShiftService manages the cash-drawer session lifecycle: open → accumulating
// → closed. Closed is terminal; the close mutation happens exactly once.
type ShiftService interface {
	Open(ctx context.Context, companyID, cashierID uuid.UUID, req dto.OpenShiftRequest) (*dto.ShiftResponse, error)
	// Summary recomputes totals from the recorded sales on every call —
	// never cached, because sales keep accumulating while the shift is open.
	Summary(ctx context.Context, companyID, sessionID uuid.UUID) (*dto.ShiftSummaryResponse, error)
	Close(ctx context.Context, companyID, sessionID uuid.UUID, req dto.CloseShiftRequest) (*dto.ShiftResponse, error)
	Active(ctx context.Context, companyID, cashierID uuid.UUID, registerID int) (*dto.ShiftResponse, error)
	History(ctx context.Context, companyID uuid.UUID, page, limit int) ([]dto.ShiftResponse, int64, error)
	// RequireOpen is called by SaleService to validate the target session.
	RequireOpen(ctx context.Context, companyID, sessionID uuid.UUID) (*model.ShiftSession, error)
}

type shiftService struct {
	repo       repository.ShiftRepository
	saleRepo   repository.SaleRepository
	dispatcher *worker.Dispatcher
}

// NewShiftService wires the session store, the sales feed it aggregates, and
// an optional dispatcher for the async close report (nil disables it).
func NewShiftService(repo repository.ShiftRepository, saleRepo repository.SaleRepository, dispatcher *worker.Dispatcher) ShiftService {
	return &shiftService{repo: repo, saleRepo: saleRepo, dispatcher: dispatcher}
}

// ── Open ──────────────────────────────────────────────────────────────────────
// At most one OPEN session per (cashier, register). The pre-check gives a
// friendly fast path; the partial unique index decides races, surfacing as a
// duplicate-key error translated to Conflict.

func (s *shiftService) Open(ctx context.Context, companyID, cashierID uuid.UUID, req dto.OpenShiftRequest) (*dto.ShiftResponse, error) {
	if req.OpeningCash.IsNegative() {
		return nil, apperror.Validation("opening_cash must not be negative")
	}
	if req.RegisterID < 1 {
		return nil, apperror.Validation("register_id must be positive")
	}

	if existing, err := s.repo.FindOpenSession(ctx, companyID, cashierID, req.RegisterID); err == nil && existing != nil {
		return nil, apperror.Conflict("an open shift already exists for this register")
	}

	session := &model.ShiftSession{
		CompanyID:   companyID,
		CashierID:   cashierID,
		RegisterID:  req.RegisterID,
		OpeningCash: req.OpeningCash,
		Status:      model.ShiftOpen,
		OpenedAt:    time.Now(),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("an open shift already exists for this register")
		}
		return nil, apperror.Internal(err, "failed to open shift")
	}

	return shiftToResponse(session), nil
}

// ── Summary ───────────────────────────────────────────────────────────────────

func (s *shiftService) Summary(ctx context.Context, companyID, sessionID uuid.UUID) (*dto.ShiftSummaryResponse, error) {
	session, err := s.findSession(ctx, companyID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.buildSummary(ctx, session)
}

func (s *shiftService) buildSummary(ctx context.Context, session *model.ShiftSession) (*dto.ShiftSummaryResponse, error) {
	sums, err := s.saleRepo.SumPaymentsByMethod(ctx, session.ID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to aggregate shift sales")
	}
	count, err := s.saleRepo.CountBySession(ctx, session.ID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to count shift sales")
	}

	get := func(method string) decimal.Decimal {
		if v, ok := sums[method]; ok {
			return v
		}
		return decimal.Zero
	}

	summary := &dto.ShiftSummaryResponse{
		ShiftSessionID:    session.ID.String(),
		OpeningCash:       session.OpeningCash,
		TotalTransactions: count,
		CashSales:         get(model.PayCash),
		CardSales:         get(model.PayCard),
		TransferSales:     get(model.PayTransfer),
		EwalletSales:      get(model.PayEwallet),
		CreditSales:       get(model.PayCredit),
	}
	summary.TotalSales = summary.CashSales.
		Add(summary.CardSales).
		Add(summary.TransferSales).
		Add(summary.EwalletSales).
		Add(summary.CreditSales)
	summary.ExpectedCash = session.OpeningCash.Add(summary.CashSales)
	return summary, nil
}

// ── Close ─────────────────────────────────────────────────────────────────────
// Expected cash is computed from the sales feed, the counted drawer is
// reconciled against it, and the transition to CLOSED is a compare-and-set:
// concurrent closes yield exactly one success.

func (s *shiftService) Close(ctx context.Context, companyID, sessionID uuid.UUID, req dto.CloseShiftRequest) (*dto.ShiftResponse, error) {
	if req.ActualCash.IsNegative() {
		return nil, apperror.Validation("actual_cash must not be negative")
	}

	session, err := s.findSession(ctx, companyID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.ShiftOpen {
		return nil, apperror.InvalidState("shift session is already closed")
	}

	summary, err := s.buildSummary(ctx, session)
	if err != nil {
		return nil, err
	}

	recon := Reconcile(summary.ExpectedCash, req.ActualCash)
	if !recon.Balanced() && (req.Notes == nil || *req.Notes == "") {
		return nil, apperror.Validation("variance must be explained: notes are required when counted cash differs from expected cash")
	}

	now := time.Now()
	closing := recon.ExpectedCash
	actual := recon.ActualCash
	variance := recon.Variance
	session.ClosingCash = &closing
	session.ActualCash = &actual
	session.Variance = &variance
	session.Notes = req.Notes
	session.Status = model.ShiftClosed
	session.ClosedAt = &now

	closed, err := s.repo.CloseSession(ctx, session)
	if err != nil {
		return nil, apperror.Internal(err, "failed to close shift")
	}
	if !closed {
		// Lost the compare-and-set race: another close committed first.
		return nil, apperror.InvalidState("shift session is already closed")
	}

	s.enqueueReport(ctx, session, summary, recon)
	return shiftToResponse(session), nil
}

// enqueueReport dispatches the reconciliation report job. Best-effort: a
// queue failure is logged, never surfaced — the close has already committed.
func (s *shiftService) enqueueReport(ctx context.Context, session *model.ShiftSession, summary *dto.ShiftSummaryResponse, recon Reconciliation) {
	if s.dispatcher == nil {
		return
	}
	payload := worker.ShiftReportPayload{
		ShiftSessionID:    session.ID.String(),
		CashierID:         session.CashierID.String(),
		RegisterID:        session.RegisterID,
		OpeningCash:       session.OpeningCash,
		CashSales:         summary.CashSales,
		CardSales:         summary.CardSales,
		TransferSales:     summary.TransferSales,
		EwalletSales:      summary.EwalletSales,
		CreditSales:       summary.CreditSales,
		TotalSales:        summary.TotalSales,
		TotalTransactions: summary.TotalTransactions,
		ExpectedCash:      recon.ExpectedCash,
		ActualCash:        recon.ActualCash,
		Variance:          recon.Variance,
		Classification:    recon.Classification,
		Notes:             session.Notes,
		OpenedAt:          session.OpenedAt,
		ClosedAt:          *session.ClosedAt,
	}
	if err := s.dispatcher.EnqueueShiftReport(ctx, payload); err != nil {
		log.Error().Err(err).Str("shift_session_id", session.ID.String()).Msg("failed to enqueue shift report")
	}
}

// ── Active / History ──────────────────────────────────────────────────────────

func (s *shiftService) Active(ctx context.Context, companyID, cashierID uuid.UUID, registerID int) (*dto.ShiftResponse, error) {
	session, err := s.repo.FindOpenSession(ctx, companyID, cashierID, registerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("no open shift for this register")
		}
		return nil, apperror.Internal(err, "failed to look up open shift")
	}
	return shiftToResponse(session), nil
}

func (s *shiftService) History(ctx context.Context, companyID uuid.UUID, page, limit int) ([]dto.ShiftResponse, int64, error) {
	sessions, total, err := s.repo.ListSessions(ctx, companyID, page, limit)
	if err != nil {
		return nil, 0, apperror.Internal(err, "failed to list shifts")
	}
	resp := make([]dto.ShiftResponse, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, *shiftToResponse(&sessions[i]))
	}
	return resp, total, nil
}

// ── RequireOpen ───────────────────────────────────────────────────────────────

func (s *shiftService) RequireOpen(ctx context.Context, companyID, sessionID uuid.UUID) (*model.ShiftSession, error) {
	session, err := s.findSession(ctx, companyID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.ShiftOpen {
		return nil, apperror.InvalidState("shift session is not open")
	}
	return session, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *shiftService) findSession(ctx context.Context, companyID, sessionID uuid.UUID) (*model.ShiftSession, error) {
	session, err := s.repo.FindSessionByID(ctx, companyID, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("shift session not found")
		}
		return nil, apperror.Internal(err, "failed to load shift session")
	}
	return session, nil
}

func shiftToResponse(session *model.ShiftSession) *dto.ShiftResponse {
	resp := &dto.ShiftResponse{
		ID:          session.ID.String(),
		CashierID:   session.CashierID.String(),
		RegisterID:  session.RegisterID,
		OpeningCash: session.OpeningCash,
		Status:      session.Status,
		Notes:       session.Notes,
		OpenedAt:    session.OpenedAt.Format(time.RFC3339),
	}
	if session.ClosingCash != nil && session.ActualCash != nil && session.Variance != nil {
		recon := Reconcile(*session.ClosingCash, *session.ActualCash)
		resp.Reconciliation = &dto.ReconciliationResponse{
			ExpectedCash:   recon.ExpectedCash,
			ActualCash:     recon.ActualCash,
			Variance:       recon.Variance,
			Classification: recon.Classification,
		}
	}
	if session.ClosedAt != nil {
		t := session.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}
