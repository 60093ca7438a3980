package handler

import (
	"errors"
	"net/http"
	"reflect"

	"warungpos/internal/apierror"
	"warungpos/internal/apperror"
	"warungpos/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// actorFromClaims extracts the tenant and user identity from the verified JWT.
// Writes a 401 and returns ok=false when the claims are malformed.
func actorFromClaims(c *gin.Context) (companyID, userID uuid.UUID, ok bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("authentication required"))
		return
	}
	companyID, err := uuid.Parse(claims.CompanyID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("invalid company claim"))
		return
	}
	userID, err = uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("invalid user claim"))
		return
	}
	return companyID, userID, true
}

// respondError maps a business error kind to its HTTP status. Internal errors
// are logged with their cause and answered with a generic message so
// infrastructure details never leak to clients.
func respondError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)

	msg := err.Error()
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}

	var status int
	switch kind {
	case apperror.KindValidation:
		status = http.StatusBadRequest
	case apperror.KindNotFound:
		status = http.StatusNotFound
	case apperror.KindConflict, apperror.KindInvalidState, apperror.KindInsufficientStock:
		status = http.StatusConflict
	default:
		log.Error().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Err(err).
			Msg("internal error")
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
		return
	}

	c.JSON(status, apierror.NewKind(kind.String(), msg))
}
