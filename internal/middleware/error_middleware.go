package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models/dto"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/apperrors"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/logger"
)

const (
	msgInternal    = "Internal server error"
	msgUnavailable = "Service temporarily unavailable"
)

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindAuth:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindUpstream:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func defaultCode(kind apperrors.Kind) dto.ErrorCode {
	switch kind {
	case apperrors.KindValidation:
		return dto.ErrorCodeValidationFailed
	case apperrors.KindConflict:
		return dto.ErrorCodeResourceAlreadyExists
	case apperrors.KindAuth:
		return dto.ErrorCodeUnauthorized
	case apperrors.KindForbidden:
		return dto.ErrorCodeForbidden
	case apperrors.KindNotFound:
		return dto.ErrorCodeResourceNotFound
	case apperrors.KindUpstream:
		return dto.ErrorCodeExternalServiceError
	default:
		return dto.ErrorCodeInternalServer
	}
}

// HandleAPIError writes the response for err and aborts the chain. Internal
// errors never expose their message; in debug mode it is attached as "debug".
func HandleAPIError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	status := StatusOf(kind)
	ce, isCustom := apperrors.As(err)

	var body *dto.ErrorResponse
	switch {
	case kind == apperrors.KindInternal:
		body = dto.NewErrorResponse(dto.ErrorCodeInternalServer, msgInternal)
		if gin.IsDebugging() {
			body.WithDebug(err.Error())
		}
	case !isCustom:
		// context deadline or cancellation from a store call
		body = dto.NewErrorResponse(defaultCode(kind), msgUnavailable)
	default:
		code := defaultCode(kind)
		if ce.Code != "" {
			code = dto.ErrorCode(ce.Code)
		}
		body = dto.NewErrorResponse(code, ce.Message).WithField(ce.Field).WithDetails(ce.Details)
		if kind == apperrors.KindUpstream && gin.IsDebugging() && ce.Cause() != nil {
			body.WithDebug(ce.Cause().Error())
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString(ContextRequestID)).
			Int("status", status).
			Msg("Request failed")
	}

	c.AbortWithStatusJSON(status, body)
}
