package handler

import (
	"net/http"
	"strconv"

	"warungpos/internal/apierror"
	"warungpos/internal/dto"
	"warungpos/internal/middleware"
	"warungpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ShiftHandler struct{ svc service.ShiftService }

func NewShiftHandler(svc service.ShiftService) *ShiftHandler { return &ShiftHandler{svc: svc} }

// Open godoc
// @Summary Open a new shift session on a register
// @Tags shifts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenShiftRequest true "Opening data"
// @Success 201 {object} dto.ShiftResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/shifts [post]
func (h *ShiftHandler) Open(c *gin.Context) {
	var req dto.OpenShiftRequest
	if !bindAndValidate(c, &req) {
		return
	}
	companyID, userID, ok := actorFromClaims(c)
	if !ok {
		return
	}

	resp, err := h.svc.Open(c.Request.Context(), companyID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Summary godoc
// @Summary Live sales summary and expected cash for a shift
// @Tags shifts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shift session UUID"
// @Success 200 {object} dto.ShiftSummaryResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/shifts/{id}/summary [get]
func (h *ShiftHandler) Summary(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid shift session id"))
		return
	}
	companyID, _, ok := actorFromClaims(c)
	if !ok {
		return
	}

	resp, err := h.svc.Summary(c.Request.Context(), companyID, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Close godoc
// @Summary Close a shift with the counted drawer amount
// @Tags shifts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shift session UUID"
// @Param body body dto.CloseShiftRequest true "Counted cash and notes"
// @Success 200 {object} dto.ShiftResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/shifts/{id}/close [post]
func (h *ShiftHandler) Close(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid shift session id"))
		return
	}
	var req dto.CloseShiftRequest
	if !bindAndValidate(c, &req) {
		return
	}
	companyID, _, ok := actorFromClaims(c)
	if !ok {
		return
	}

	resp, err := h.svc.Close(c.Request.Context(), companyID, sessionID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Active returns the caller's open shift on the given register.
func (h *ShiftHandler) Active(c *gin.Context) {
	companyID, userID, ok := actorFromClaims(c)
	if !ok {
		return
	}

	registerID := 0
	if q := c.Query("register_id"); q != "" {
		registerID, _ = strconv.Atoi(q)
	} else if claims := middleware.GetClaims(c); claims != nil && claims.RegisterID != nil {
		registerID = *claims.RegisterID
	}
	if registerID < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("register_id is required"))
		return
	}

	resp, err := h.svc.Active(c.Request.Context(), companyID, userID, registerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History returns a paginated list of shift sessions, newest first.
func (h *ShiftHandler) History(c *gin.Context) {
	companyID, _, ok := actorFromClaims(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	sessions, total, err := h.svc.History(c.Request.Context(), companyID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sessions, "total": total, "page": page, "limit": limit})
}
