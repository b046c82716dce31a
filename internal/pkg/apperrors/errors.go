package apperrors

import "errors"

// Error taxonomy shared by the EAV core and the HTTP layer
var (
	// ErrNotFound marks a missing entity, attribute, relation or account
	ErrNotFound = errors.New("resource not found")
	// ErrValidation marks a bad input (missing required field, unknown enum value, uncoercible value)
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a unique key that cannot be resolved by upsert (account email)
	ErrConflict = errors.New("conflict")
	// ErrInfrastructure marks a backing store failure
	ErrInfrastructure = errors.New("infrastructure failure")

	// Authentication and authorization errors
	ErrUnauthorized       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// Account errors
var (
	ErrEmailAlreadyInUse = NewConflictError("email already in use")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// NewNotFoundError creates a not-found error with a message
func NewNotFoundError(message string) error {
	return NewCustomError(ErrNotFound, message)
}

// NewValidationError creates a validation error with a message
func NewValidationError(message string) error {
	return NewCustomError(ErrValidation, message)
}

// NewFieldValidationError creates a validation error pointing at one input field
func NewFieldValidationError(field, message string) error {
	return NewCustomError(ErrValidation, message).WithDetails(map[string]interface{}{"field": field})
}

// NewConflictError creates a conflict error with a message
func NewConflictError(message string) error {
	return NewCustomError(ErrConflict, message)
}

// NewInfrastructureError wraps a store failure; the cause stays reachable through errors.Is/As
func NewInfrastructureError(cause error, message string) error {
	return &CustomError{
		Err:     errors.Join(ErrInfrastructure, cause),
		Message: message,
	}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// IsNotFound reports whether err is a NotFound error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// DetailsOf returns the details attached to err, if any
func DetailsOf(err error) map[string]interface{} {
	var custom *CustomError
	if errors.As(err, &custom) {
		return custom.Details
	}
	return nil
}
