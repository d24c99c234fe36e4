package types

import (
	"errors"
	"fmt"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewErrorResponse builds a consistent API error payload.
// details can be string, map, struct, etc.
func NewErrorResponse(code, message string, details any) ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

var (
	// ErrChannelClosed means the peer of a worker mailbox is gone. Fatal for the worker loop.
	ErrChannelClosed = errors.New("channel closed: peer is gone")

	// ErrSendFailed is returned when submitting to a worker that has already terminated.
	ErrSendFailed = errors.New("send failed: worker has terminated")

	ErrNoDevice    = errors.New("no device is open")
	ErrUnsupported = errors.New("operation not supported by device")

	ErrUnreadableField = errors.New("unreadable field")
	ErrDuplicateID     = errors.New("duplicate sibling id")
	ErrDuplicateName   = errors.New("duplicate sibling name")
)

// DeviceError wraps a failed call into the native device library.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %s failed: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// NewDeviceError returns nil for a nil err.
func NewDeviceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DeviceError{Op: op, Err: err}
}

// DecodeError means a preview frame could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("preview decode failed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ConfigError reports a node of the raw widget tree that could not be converted.
type ConfigError struct {
	Path  string
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("config %s: %s: %v", e.Path, e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// JoinError means the worker goroutine could not be reaped on shutdown.
type JoinError struct {
	Err error
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("failed to join worker: %v", e.Err)
}

func (e *JoinError) Unwrap() error { return e.Err }

// UIError is the queued, user-dismissable form of an error.
type UIError struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func NewUIError(err error) UIError {
	return UIError{Title: Title(err), Message: err.Error()}
}

// Title classifies err for display.
func Title(err error) string {
	var (
		devErr    *DeviceError
		decodeErr *DecodeError
		cfgErr    *ConfigError
		joinErr   *JoinError
	)

	switch {
	case errors.As(err, &decodeErr):
		return "Image Error"
	case errors.As(err, &cfgErr):
		return "Configuration Error"
	case errors.As(err, &devErr), errors.Is(err, ErrNoDevice), errors.Is(err, ErrUnsupported):
		return "Device Error"
	case errors.As(err, &joinErr), errors.Is(err, ErrChannelClosed), errors.Is(err, ErrSendFailed):
		return "Threading Error"
	default:
		return "Unknown Error"
	}
}
