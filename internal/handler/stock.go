package handler

import (
	"net/http"

	"warungpos/internal/apierror"
	"warungpos/internal/dto"
	"warungpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct{ svc service.StockService }

func NewStockHandler(svc service.StockService) *StockHandler { return &StockHandler{svc: svc} }

// ApplyMovement godoc
// @Summary Apply a stock movement (in / out / adjustment)
// @Tags stock
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ApplyMovementRequest true "Movement data"
// @Success 201 {object} dto.StockResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/stock/movements [post]
func (h *StockHandler) ApplyMovement(c *gin.Context) {
	var req dto.ApplyMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	companyID, userID, ok := actorFromClaims(c)
	if !ok {
		return
	}

	resp, err := h.svc.ApplyMovement(c.Request.Context(), companyID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CurrentQuantity godoc
// @Summary Current on-hand quantity for a (product, warehouse) pair
// @Tags stock
// @Produce json
// @Security BearerAuth
// @Param product_id query string true "Product UUID"
// @Param warehouse_id query string true "Warehouse UUID"
// @Success 200 {object} dto.StockResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/stock [get]
func (h *StockHandler) CurrentQuantity(c *gin.Context) {
	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product_id"))
		return
	}
	warehouseID, err := uuid.Parse(c.Query("warehouse_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid warehouse_id"))
		return
	}
	companyID, _, ok := actorFromClaims(c)
	if !ok {
		return
	}

	resp, err := h.svc.CurrentQuantity(c.Request.Context(), companyID, productID, warehouseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListMovements returns the paginated movement history, newest first.
func (h *StockHandler) ListMovements(c *gin.Context) {
	var filter dto.MovementFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query parameters"))
		return
	}
	companyID, _, ok := actorFromClaims(c)
	if !ok {
		return
	}

	resp, err := h.svc.ListMovements(c.Request.Context(), companyID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
