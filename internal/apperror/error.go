package apperror

import (
	"errors"
	"fmt"
	"time"
)

// AppError carries a stable machine-readable code alongside human context.
// Callers branch on the code; everything else is for logs.
type AppError struct {
	Code      Code
	Message   string
	Context   string
	Timestamp time.Time
	cause     error
}

func (e *AppError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Context)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches AppErrors by code, so errors.Is(err, New(CodeNoLiquidity))
// works regardless of context or cause.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Option configures a new AppError.
type Option func(*AppError)

// WithMessage overrides the default message for the code.
func WithMessage(message string) Option {
	return func(e *AppError) {
		e.Message = message
	}
}

// WithContext attaches situational detail (pair, venue, endpoint).
func WithContext(context string) Option {
	return func(e *AppError) {
		e.Context = context
	}
}

// WithCause records the underlying error for errors.Is/As chains.
func WithCause(cause error) Option {
	return func(e *AppError) {
		e.cause = cause
	}
}

// New creates an AppError for the code. The message defaults to the code's
// registered text, falling back to the code itself.
func New(code Code, opts ...Option) *AppError {
	err := &AppError{
		Code:      code,
		Message:   messages[code],
		Timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(err)
	}
	if err.Message == "" {
		err.Message = string(code)
	}
	return err
}

// Validation flags rejected input.
func Validation(code Code, context string) *AppError {
	return New(code, WithContext(context))
}

// NotFound flags a missing entity (pair, venue, route).
func NotFound(code Code, context string) *AppError {
	return New(code, WithContext(context))
}

// Internal flags a failure inside the router itself.
func Internal(code Code, context string, cause error) *AppError {
	return New(code, WithContext(context), WithCause(cause))
}

// Wrap coerces err into an AppError. An existing AppError passes through,
// picking up context when it has none.
func Wrap(err error, code Code, context string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if context != "" && appErr.Context == "" {
			appErr.Context = context
		}
		return appErr
	}

	return Internal(code, context, err)
}

// GetCode extracts the code from any error in the chain.
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknownError
}
