package driftchat

import (
	"errors"
	"fmt"
)

// Code categorizes an error produced by the SDK.
type Code int

const (
	CodeUnknown Code = iota

	// Failures surfaced from the REST collaborator.
	CodeUnauthorized
	CodeNotFound
	CodeTransient
	CodeUploadFailed

	// Failures produced by the live channel.
	CodeAuthRejected
	CodeChannelDisconnected
	CodeNotConnected

	// Client-side failures.
	CodeEmptyContent
	CodeInvalidConfig
	CodeSerialization
)

// String returns the string representation of a Code.
func (c Code) String() string {
	switch c {
	case CodeUnauthorized:
		return "unauthorized"
	case CodeNotFound:
		return "not_found"
	case CodeTransient:
		return "transient"
	case CodeUploadFailed:
		return "upload_failed"
	case CodeAuthRejected:
		return "auth_rejected"
	case CodeChannelDisconnected:
		return "channel_disconnected"
	case CodeNotConnected:
		return "not_connected"
	case CodeEmptyContent:
		return "empty_content"
	case CodeInvalidConfig:
		return "invalid_config"
	case CodeSerialization:
		return "serialization_error"
	default:
		return fmt.Sprintf("unknown_code_%d", c)
	}
}

// Error is a structured SDK error carrying a Code and optional cause.
type Error struct {
	Code    Code
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause for errors.Unwrap support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is matches two SDK errors by Code, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates an Error with the given code and message.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a code and message.
func WrapError(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Wrapped: err}
}

// Sentinel errors for use with errors.Is. Matching is by Code, so any
// *Error produced by the SDK with the same code compares equal.
var (
	ErrUnauthorized        = NewError(CodeUnauthorized, "credential invalid or expired")
	ErrNotFound            = NewError(CodeNotFound, "room not found")
	ErrTransient           = NewError(CodeTransient, "network failure")
	ErrUploadFailed        = NewError(CodeUploadFailed, "file upload failed")
	ErrAuthRejected        = NewError(CodeAuthRejected, "credential rejected at connect")
	ErrChannelDisconnected = NewError(CodeChannelDisconnected, "live channel is down")
	ErrNotConnected        = NewError(CodeNotConnected, "not connected")
	ErrEmptyContent        = NewError(CodeEmptyContent, "message content is empty")
)

// CodeOf extracts the Code from an error chain, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsRetryable reports whether the failure is worth retrying as-is.
// Transient network failures and a temporarily down channel qualify;
// auth and not-found failures do not.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case CodeTransient, CodeChannelDisconnected, CodeNotConnected:
		return true
	default:
		return false
	}
}
