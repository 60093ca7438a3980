package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenShiftRequest struct {
	RegisterID  int             `json:"register_id"  validate:"required,min=1"`
	OpeningCash decimal.Decimal `json:"opening_cash" validate:"min=0"`
}

type CloseShiftRequest struct {
	// ActualCash is the counted drawer amount. Zero is a legitimate
	// empty-drawer count, not "not yet entered".
	ActualCash decimal.Decimal `json:"actual_cash" validate:"min=0"`
	Notes      *string         `json:"notes"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ShiftSummaryResponse struct {
	ShiftSessionID    string          `json:"shift_session_id"`
	OpeningCash       decimal.Decimal `json:"opening_cash"`
	TotalTransactions int64           `json:"total_transactions"`
	CashSales         decimal.Decimal `json:"cash_sales"`
	CardSales         decimal.Decimal `json:"card_sales"`
	TransferSales     decimal.Decimal `json:"transfer_sales"`
	EwalletSales      decimal.Decimal `json:"ewallet_sales"`
	CreditSales       decimal.Decimal `json:"credit_sales"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	ExpectedCash      decimal.Decimal `json:"expected_cash"`
}

type ReconciliationResponse struct {
	ExpectedCash   decimal.Decimal `json:"expected_cash"`
	ActualCash     decimal.Decimal `json:"actual_cash"`
	Variance       decimal.Decimal `json:"variance"`
	Classification string          `json:"classification"` // surplus | shortage | balanced
}

type ShiftResponse struct {
	ID             string                  `json:"id"`
	CashierID      string                  `json:"cashier_id"`
	RegisterID     int                     `json:"register_id"`
	OpeningCash    decimal.Decimal         `json:"opening_cash"`
	Status         string                  `json:"status"`
	Notes          *string                 `json:"notes,omitempty"`
	Reconciliation *ReconciliationResponse `json:"reconciliation,omitempty"`
	OpenedAt       string                  `json:"opened_at"`
	ClosedAt       *string                 `json:"closed_at,omitempty"`
}
