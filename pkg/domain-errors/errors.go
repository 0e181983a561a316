// Package domainerrors provides code-carrying errors for domain logic.
// Services create or wrap errors with a Code; transports map codes to
// protocol responses without inspecting error strings. Codes distinguish
// "retry later" refusals (token_paused, transfer_paused) from terminal
// ones (unauthorized, quota_exceeded).
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// Authorization and input codes.
	CodeUnauthorized   Code = "unauthorized"
	CodeInvalidAccount Code = "invalid_account"
	CodeInvalidAmount  Code = "invalid_amount"
	CodeBadRequest     Code = "bad_request"
	CodeInvalidInput   Code = "invalid_input"

	// Issuance codes.
	CodeQuotaExceeded Code = "quota_exceeded"
	CodeAccountFrozen Code = "account_frozen"
	CodeTokenPaused   Code = "token_paused"

	// Compliance codes.
	CodeComplianceNotEnabled        Code = "compliance_not_enabled"
	CodePermanentDelegateNotEnabled Code = "permanent_delegate_not_enabled"
	CodeAlreadyBlacklisted          Code = "already_blacklisted"
	CodeNotBlacklisted              Code = "not_blacklisted"

	// Transfer-validation codes.
	CodeTransferPaused       Code = "transfer_paused"
	CodeSenderBlacklisted    Code = "sender_blacklisted"
	CodeRecipientBlacklisted Code = "recipient_blacklisted"

	// Ambient codes.
	CodeNotFound Code = "not_found"
	CodeConflict Code = "conflict"
	CodeInternal Code = "internal"
)

// Error is a domain error with a machine-readable code.
type Error struct {
	code  Code
	msg   string
	cause error
}

// New creates a domain error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{code: code, msg: msg, cause: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Code returns the error's classification code.
func (e *Error) Code() Code {
	return e.code
}

// Message returns the human-readable message without the code prefix.
func (e *Error) Message() string {
	return e.msg
}

// CodeOf extracts the Code from err, or CodeInternal for unclassified errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}
