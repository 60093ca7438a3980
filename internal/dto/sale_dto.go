package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductID   string          `json:"product_id"   validate:"required,uuid"`
	WarehouseID string          `json:"warehouse_id" validate:"required,uuid"`
	Quantity    int64           `json:"quantity"     validate:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"   validate:"min=0"`
}

type SalePaymentRequest struct {
	Method string          `json:"method" validate:"required,oneof=cash card transfer ewallet credit"`
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
}

type RecordSaleRequest struct {
	ShiftSessionID string               `json:"shift_session_id" validate:"required,uuid"`
	Items          []SaleItemRequest    `json:"items"    validate:"required,min=1,dive"`
	Payments       []SalePaymentRequest `json:"payments" validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID             string               `json:"id"`
	ShiftSessionID string               `json:"shift_session_id"`
	Items          []SaleItemResponse   `json:"items"`
	Payments       []SalePaymentRequest `json:"payments"`
	Total          decimal.Decimal      `json:"total"`
	Change         decimal.Decimal      `json:"change"`
	CreatedAt      string               `json:"created_at"`
}
