package errutil

import (
	"errors"
	"fmt"
)

type Detail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// BaseError is the domain error type returned by every service. Reason is a
// stable machine-readable code that survives transport mapping; Code is the
// transport-agnostic status class it belongs to.
type BaseError struct {
	Code    CoreStatus `json:"code"`
	Reason  string     `json:"reason"`
	Message string     `json:"message"`
	Details []Detail   `json:"details,omitempty"`
	Err     error      `json:"-"`
}

func (e BaseError) Status() CoreStatus {
	return e.Code
}

func (e BaseError) JSON() interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"code":    e.Code,
			"reason":  e.Reason,
			"message": e.messageWithErr(),
			"details": e.Details,
		},
	}
}

func (e BaseError) Unwrap() error {
	return e.Err
}

func (e BaseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("[%s] %s", e.Reason, e.messageWithErr())
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.messageWithErr())
}

func (e BaseError) messageWithErr() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

type Option func(*BaseError)

func WithDetails(details ...Detail) Option {
	return func(be *BaseError) { be.Details = details }
}

func WithErr(err error) Option {
	return func(be *BaseError) { be.Err = err }
}

func New(code CoreStatus, reason, message string, opts ...Option) error {
	be := BaseError{Code: code, Reason: reason, Message: message}
	for _, opt := range opts {
		opt(&be)
	}
	return be
}

// ReasonIs reports whether err carries the given stable reason code.
func ReasonIs(err error, reason string) bool {
	var be BaseError
	return errors.As(err, &be) && be.Reason == reason
}

func NotFound(reason, msg string, options ...Option) error {
	return New(StatusNotFound, reason, msg, options...)
}

func Conflict(reason, msg string, options ...Option) error {
	return New(StatusConflict, reason, msg, options...)
}

func PreconditionFailed(reason, msg string, options ...Option) error {
	return New(StatusUnprocessableEntity, reason, msg, options...)
}

func BadRequest(reason, msg string, options ...Option) error {
	return New(StatusBadRequest, reason, msg, options...)
}

func ValidationFailed(reason, msg string, options ...Option) error {
	return New(StatusValidationFailed, reason, msg, options...)
}

func Internal(reason, msg string, options ...Option) error {
	return New(StatusInternal, reason, msg, options...)
}

func Unauthorized(reason, msg string, options ...Option) error {
	return New(StatusUnauthorized, reason, msg, options...)
}

func Forbidden(reason, msg string, options ...Option) error {
	return New(StatusForbidden, reason, msg, options...)
}

func NotImplemented(reason, msg string, options ...Option) error {
	return New(StatusNotImplemented, reason, msg, options...)
}
