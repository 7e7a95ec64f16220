package errors

import "fmt"

// Error codes
const (
	CodeAppError   = "APP_ERROR"
	CodeAPIError   = "API_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeStore      = "STORE_ERROR"
	CodeService    = "SERVICE_ERROR"
)

type AppError struct {
	Message string
	Code    string
	Context map[string]any
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(message, code string, context map[string]any) *AppError {
	return &AppError{
		Message: message,
		Code:    code,
		Context: context,
	}
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// APIError wraps a failed call to a hosted model provider.
type APIError struct {
	*AppError
	Provider string
}

func NewAPIError(message, provider string, cause error) *APIError {
	return &APIError{
		AppError: &AppError{
			Message: message,
			Code:    CodeAPIError,
			Context: map[string]any{
				"provider": provider,
			},
			Cause: cause,
		},
		Provider: provider,
	}
}

type ValidationError struct {
	*AppError
	Field string
	Value any
}

func NewValidationError(message, field string, value any) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Message: message,
			Code:    CodeValidation,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

// StoreError reports a failed history persistence operation.
type StoreError struct {
	*AppError
	Operation string
	Location  string
}

func NewStoreError(message, operation, location string, cause error) *StoreError {
	return &StoreError{
		AppError: &AppError{
			Message: message,
			Code:    CodeStore,
			Context: map[string]any{
				"operation": operation,
				"location":  location,
			},
			Cause: cause,
		},
		Operation: operation,
		Location:  location,
	}
}

type ServiceError struct {
	*AppError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		AppError: &AppError{
			Message: message,
			Code:    CodeService,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}
