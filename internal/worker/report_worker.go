package worker

// report_worker.go
// Processes shift reconciliation report jobs from QueueShiftReport.
// Renders the PDF and mails it to the owner through the SMTP circuit breaker,
// with exponential backoff (max 3 retries) before the job lands in the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"warungpos/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ShiftReportPayload is the job envelope sent to QueueShiftReport. It carries
// the full reconciliation snapshot taken at close time, so the worker never
// re-reads the shift from the database.
type ShiftReportPayload struct {
	ShiftSessionID    string          `json:"shift_session_id"`
	CashierID         string          `json:"cashier_id"`
	RegisterID        int             `json:"register_id"`
	OpeningCash       decimal.Decimal `json:"opening_cash"`
	CashSales         decimal.Decimal `json:"cash_sales"`
	CardSales         decimal.Decimal `json:"card_sales"`
	TransferSales     decimal.Decimal `json:"transfer_sales"`
	EwalletSales      decimal.Decimal `json:"ewallet_sales"`
	CreditSales       decimal.Decimal `json:"credit_sales"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalTransactions int64           `json:"total_transactions"`
	ExpectedCash      decimal.Decimal `json:"expected_cash"`
	ActualCash        decimal.Decimal `json:"actual_cash"`
	Variance          decimal.Decimal `json:"variance"`
	Classification    string          `json:"classification"`
	Notes             *string         `json:"notes,omitempty"`
	OpenedAt          time.Time       `json:"opened_at"`
	ClosedAt          time.Time       `json:"closed_at"`
}

// ReportWorker renders and mails end-of-shift reconciliation reports.
type ReportWorker struct {
	mailer      *infra.Mailer
	cb          *infra.CircuitBreaker
	rdb         *redis.Client
	storagePath string
	recipient   string
}

func NewReportWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker, rdb *redis.Client, storagePath, recipient string) *ReportWorker {
	return &ReportWorker{
		mailer:      mailer,
		cb:          cb,
		rdb:         rdb,
		storagePath: storagePath,
		recipient:   recipient,
	}
}

// Process handles a single report job:
//  1. Parse ShiftReportPayload from the job envelope
//  2. Render the reconciliation PDF
//  3. Send it by email through the circuit breaker, with backoff
//  4. On exhaustion, move the job to the DLQ
func (w *ReportWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ShiftReportPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("report_worker: invalid payload")
		return
	}

	report := &infra.ShiftReport{
		ShiftSessionID:    payload.ShiftSessionID,
		CashierID:         payload.CashierID,
		RegisterID:        payload.RegisterID,
		OpeningCash:       payload.OpeningCash,
		CashSales:         payload.CashSales,
		CardSales:         payload.CardSales,
		TransferSales:     payload.TransferSales,
		EwalletSales:      payload.EwalletSales,
		CreditSales:       payload.CreditSales,
		TotalSales:        payload.TotalSales,
		TotalTransactions: payload.TotalTransactions,
		ExpectedCash:      payload.ExpectedCash,
		ActualCash:        payload.ActualCash,
		Variance:          payload.Variance,
		Classification:    payload.Classification,
		Notes:             payload.Notes,
		OpenedAt:          payload.OpenedAt,
		ClosedAt:          payload.ClosedAt,
	}

	pdfPath, err := infra.GenerateShiftReportPDF(report, w.storagePath)
	if err != nil {
		log.Error().Err(err).Str("shift_session_id", payload.ShiftSessionID).Msg("report_worker: PDF generation failed")
		SendToDLQ(ctx, w.rdb, QueueShiftReport, "shift_report", raw, fmt.Sprintf("pdf generation: %v", err), 1)
		return
	}
	log.Info().Str("pdf", pdfPath).Str("shift_session_id", payload.ShiftSessionID).Msg("report_worker: PDF generated")

	if w.recipient == "" {
		log.Warn().Msg("report_worker: no report recipient configured — skipping email")
		return
	}

	subject := fmt.Sprintf("Shift report — register %d, %s", payload.RegisterID, payload.ClosedAt.Format("02/01/2006"))
	body := fmt.Sprintf(
		"Shift %s closed.\nExpected cash: Rp %s\nCounted: Rp %s\nVariance: Rp %s (%s)",
		payload.ShiftSessionID,
		payload.ExpectedCash.StringFixed(2),
		payload.ActualCash.StringFixed(2),
		payload.Variance.StringFixed(2),
		payload.Classification,
	)

	sendErr := withRetry(ctx, 3, func(attempt int) error {
		err := w.cb.Execute(func() error {
			return w.mailer.SendShiftReport(w.recipient, subject, body, pdfPath)
		})
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("shift_session_id", payload.ShiftSessionID).
				Msg("report_worker: send attempt failed, retrying")
		}
		return err
	})
	if sendErr != nil {
		log.Error().Err(sendErr).Str("shift_session_id", payload.ShiftSessionID).Msg("report_worker: send failed after all retries")
		SendToDLQ(ctx, w.rdb, QueueShiftReport, "shift_report", raw, fmt.Sprintf("email send: %v", sendErr), 3)
		return
	}
	log.Info().Str("to", w.recipient).Str("shift_session_id", payload.ShiftSessionID).Msg("report_worker: report sent successfully")
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			// 1s, 2s … (exponential backoff)
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
