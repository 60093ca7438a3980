package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ApplyMovementRequest struct {
	ProductID   string `json:"product_id"   validate:"required,uuid"`
	WarehouseID string `json:"warehouse_id" validate:"required,uuid"`
	Type        string `json:"type"         validate:"required,oneof=in out adjustment"`
	// Quantity must be > 0 for in/out; adjustment accepts any non-zero
	// signed value. The sign rule is enforced in the service, not here.
	Quantity  int64  `json:"quantity"  validate:"required"`
	Reference string `json:"reference"`
}

type MovementFilter struct {
	ProductID   string `form:"product_id"`
	WarehouseID string `form:"warehouse_id"`
	Type        string `form:"type"`
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type StockResponse struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int64  `json:"quantity"`
	LastUpdated string `json:"last_updated,omitempty"`
}

type MovementResponse struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	WarehouseID    string `json:"warehouse_id"`
	Type           string `json:"type"`
	Quantity       int64  `json:"quantity"`
	QuantityBefore int64  `json:"quantity_before"`
	QuantityAfter  int64  `json:"quantity_after"`
	Reference      string `json:"reference,omitempty"`
	CreatedBy      string `json:"created_by"`
	CreatedAt      string `json:"created_at"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
