package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures the way the request/renderer layers need to
// decide whether a failure is recoverable (the batch keeps going) or fatal
// (the host tears down).
type ErrorKind uint8

const (
	ErrorKindNone ErrorKind = iota
	ErrorKindInvalidId
	ErrorKindInvalidAction
	ErrorKindResourceExhausted
	ErrorKindDeviceLost
	ErrorKindUnsupportedFeature
	ErrorKindShaderCompileError
	ErrorKindSwapchainOutOfDate
	ErrorKindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindInvalidId:
		return "invalid_id"
	case ErrorKindInvalidAction:
		return "invalid_action"
	case ErrorKindResourceExhausted:
		return "resource_exhausted"
	case ErrorKindDeviceLost:
		return "device_lost"
	case ErrorKindUnsupportedFeature:
		return "unsupported_feature"
	case ErrorKindShaderCompileError:
		return "shader_compile_error"
	case ErrorKindSwapchainOutOfDate:
		return "swapchain_out_of_date"
	case ErrorKindTimeout:
		return "timeout"
	default:
		return "none"
	}
}

// Error wraps an ErrorKind and an underlying cause, the way the renderer
// needs to report failures back through a request's result without a bare
// string.
type Error struct {
	Kind  ErrorKind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

func NewErrorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Cause: fmt.Errorf(format, args...)}
}

// KindOf extracts the ErrorKind from err, defaulting to ErrorKindNone when
// err was not produced by NewError/NewErrorf.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrorKindNone
}

// Fatal reports whether an error of this kind should tear down the host
// rather than just fail the one request that raised it.
func (k ErrorKind) Fatal() bool {
	switch k {
	case ErrorKindResourceExhausted, ErrorKindDeviceLost, ErrorKindUnsupportedFeature, ErrorKindShaderCompileError:
		return true
	default:
		return false
	}
}

var (
	ErrSwapchainBooting = errors.New("swapchain resized or recreated, booting")
	ErrUnknown          = errors.New("unknown")
)
