package shared

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	ErrorCategoryConfiguration  ErrorCategory = "configuration"
	ErrorCategoryValidation     ErrorCategory = "validation"
	ErrorCategoryAuthentication ErrorCategory = "authentication"
	ErrorCategoryNotFound       ErrorCategory = "not_found"
	ErrorCategoryUpstream       ErrorCategory = "upstream"
	ErrorCategoryCache          ErrorCategory = "cache"
	ErrorCategoryTimeout        ErrorCategory = "timeout"
)

// ServiceError represents a standardized error with additional context
type ServiceError struct {
	Category    ErrorCategory `json:"category"`
	Code        string        `json:"code"`
	Message     string        `json:"message"`
	Details     interface{}   `json:"details,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
	ServiceName string        `json:"service_name"`
	Operation   string        `json:"operation"`
	Cause       error         `json:"-"` // Original error, not serialized
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// NewServiceError creates a new service error
func NewServiceError(category ErrorCategory, code, message, serviceName, operation string, cause error) *ServiceError {
	return &ServiceError{
		Category:    category,
		Code:        code,
		Message:     message,
		Timestamp:   time.Now(),
		ServiceName: serviceName,
		Operation:   operation,
		Cause:       cause,
	}
}

// NewUpstreamError reports a transport, status or decoding failure against an upstream API.
func NewUpstreamError(code, message, serviceName, operation string, cause error) *ServiceError {
	category := ErrorCategoryUpstream
	if isTimeout(cause) {
		category = ErrorCategoryTimeout
	}
	return NewServiceError(category, code, message, serviceName, operation, cause)
}

// WithDetails adds additional details to the error
func (e *ServiceError) WithDetails(details interface{}) *ServiceError {
	e.Details = details
	return e
}

// Fields returns the structured log fields describing the error
func (e *ServiceError) Fields() logrus.Fields {
	fields := logrus.Fields{
		"error_category": e.Category,
		"error_code":     e.Code,
		"service_name":   e.ServiceName,
		"operation":      e.Operation,
	}
	if e.Details != nil {
		fields["details"] = e.Details
	}
	if e.Cause != nil {
		fields["underlying_error"] = e.Cause.Error()
	}
	return fields
}

// LogError logs the error at error level on logger
func (e *ServiceError) LogError(logger *logrus.Entry) {
	logger.WithFields(e.Fields()).Error(e.Message)
}

// CategoryOf returns the category of the first ServiceError in the chain, or "" when there is none.
func CategoryOf(err error) ErrorCategory {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Category
	}
	return ""
}

func isTimeout(err error) bool {
	var timeout interface{ Timeout() bool }
	return err != nil && errors.As(err, &timeout) && timeout.Timeout()
}
