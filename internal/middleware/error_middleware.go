package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/logger"
)

// HandleAPIError maps an error of the apperrors taxonomy to its status and error code
func HandleAPIError(c *gin.Context, err error) {
	status, errorDetail := errorDetailFor(err)
	errorDetail = errorDetail.WithSeverity(severityFor(status))

	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Request failed")
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(errorDetail))
}

func errorDetailFor(err error) (int, *dto.ErrorDetail) {
	var custom *apperrors.CustomError
	message := ""
	if errors.As(err, &custom) {
		message = custom.Message
	}
	withMessage := func(fallback string) string {
		if message != "" {
			return message
		}
		return fallback
	}

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, withMessage("Validation failed"))
		if details := apperrors.DetailsOf(err); details != nil {
			if field, ok := details["field"].(string); ok {
				detail = detail.WithField(field)
			} else {
				detail = detail.WithDetails(details)
			}
		}
		return http.StatusBadRequest, detail
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, withMessage("Resource not found"))
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict, withMessage("Conflict"))
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeAccountDisabled, "Account is disabled")
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied")
	case errors.Is(err, apperrors.ErrInfrastructure):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Storage unavailable")
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

func severityFor(status int) dto.ErrorSeverity {
	switch {
	case status >= http.StatusInternalServerError:
		return dto.ErrorSeverityCritical
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return dto.ErrorSeverityError
	default:
		return dto.ErrorSeverityWarning
	}
}
