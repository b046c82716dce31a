package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/unicampus/internal/app/models/dto"
)

// HandleBindingError responds 400 to a request body that failed to bind.
// Validator failures list every offending field.
func HandleBindingError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := dto.NewValidationErrors()
		for _, fe := range validationErrors {
			fields.AddError(jsonFieldName(fe), formatValidationError(fe))
		}

		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").
			WithSeverity(dto.ErrorSeverityWarning).
			WithDetails(fields.Errors)
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
		WithSeverity(dto.ErrorSeverityWarning).
		WithDetails(err.Error())
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}

// jsonFieldName lower-cases the first letter of the struct field, matching the camelCase JSON tags
func jsonFieldName(e validator.FieldError) string {
	name := e.Field()
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	field := jsonFieldName(e)
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + e.Param()
	case "max":
		return field + " must be at most " + e.Param()
	case "email":
		return field + " must be a valid email address"
	case "entitytype", "relationtype":
		return field + " must be an upper snake case token"
	case "attrname":
		return field + " must start with a letter and contain only letters, digits and underscores"
	case "oneof":
		return field + " must be one of: " + e.Param()
	default:
		return field + " validation failed: " + e.Tag()
	}
}
