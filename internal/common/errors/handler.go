// internal/common/errors/handler.go
package errors

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrorHandler normalizes arbitrary errors from handlers and services into
// StandardError values ready for HTTP responses and logging.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &StandardError{
			Code:      ErrCodeQueryTimeout,
			Message:   "Operation timed out",
			Details:   err.Error(),
			Retryable: true,
			Timestamp: time.Now().UTC(),
		}
	case errors.Is(err, sql.ErrNoRows):
		return &StandardError{
			Code:      ErrCodeResourceNotFound,
			Message:   "Resource not found",
			Details:   err.Error(),
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}
	}

	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Handle normalizes err, logs it with request context and returns the
// StandardError plus the HTTP status to respond with. Client errors (4xx)
// log at warn, server errors at error.
func (h *ErrorHandler) Handle(err error, operation string) (*StandardError, int) {
	stdErr := Normalize(err)
	status := HTTPStatus(stdErr.Code)

	fields := map[string]interface{}{
		"operation":     operation,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"httpStatus":    status,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}

	if IsClientError(stdErr.Code) {
		h.logger.Warn("request failed", fields)
	} else {
		h.logger.Error("request failed", fields)
	}

	return stdErr, status
}
