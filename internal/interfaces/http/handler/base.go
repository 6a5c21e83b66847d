package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tbeauty/backend/internal/domain/shared"
	"github.com/tbeauty/backend/internal/infrastructure/logger"
	"github.com/tbeauty/backend/internal/interfaces/http/dto"
	"github.com/tbeauty/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessList sends {"<key>": items, "total": N} with pagination meta
func (h *BaseHandler) SuccessList(c *gin.Context, key string, items any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(dto.NewListData(key, items, total), total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the status derived from code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeBadRequest, message)
}

// ValidationError sends a 422 with one detail per offending field and a
// message of the form "<field> is <reason>, ..."
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusUnprocessableEntity, dto.NewValidationErrorResponse(
		middleware.ValidationMessage(details),
		middleware.GetRequestID(c),
		details,
	))
}

// BindError answers a failed ShouldBind*: validator failures are 422,
// malformed input is 400.
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	if details, ok := middleware.ValidationDetails(err); ok {
		h.ValidationError(c, details)
		return
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var numErr *strconv.NumError
	switch {
	case errors.Is(err, io.EOF):
		h.BadRequest(c, "Request body is empty")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		h.BadRequest(c, "Request body is not valid JSON")
	case errors.As(err, &typeErr):
		h.BadRequest(c, typeErr.Field+" has the wrong type")
	case errors.As(err, &numErr):
		h.BadRequest(c, "Query parameter "+strconv.Quote(numErr.Num)+" is not a number")
	default:
		h.BadRequest(c, err.Error())
	}
}

// HandleError maps an application error to the response envelope. Unknown
// errors are logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		if domainErr.Code == shared.CodeValidation && len(domainErr.Fields) > 0 {
			details := make([]dto.ValidationDetail, len(domainErr.Fields))
			for i, f := range domainErr.Fields {
				details[i] = dto.ValidationDetail{Field: f.Field, Reason: f.Reason}
			}
			h.ValidationError(c, details)
			return
		}
		h.Error(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
		return
	}

	_ = c.Error(err)
	logger.WithLogger(c.Request.Context(), logger.GetGinLogger(c)).Error("request failed", zap.Error(err))
	h.Error(c, dto.ErrCodeInternal, "An unexpected error occurred. Please try again.")
}

// pathUUID parses a UUID path parameter, answering 400 when malformed
func (h *BaseHandler) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, name+" is not a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
