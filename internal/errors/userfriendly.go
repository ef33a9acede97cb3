package errors

import (
	"fmt"
	"strings"
)

// UserFriendlyError provides user-friendly error messages with context and hints
type UserFriendlyError struct {
	Message string
	Reason  string
	Hint    string
	Try     string
	Err     error
}

func (e UserFriendlyError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Message)
	if e.Reason != "" {
		buf.WriteString("\n  Reason: " + e.Reason)
	}
	if e.Hint != "" {
		buf.WriteString("\n  Hint: " + e.Hint)
	}
	if e.Try != "" {
		buf.WriteString("\n  Try: " + e.Try)
	}
	if e.Err != nil {
		buf.WriteString("\n  Details: " + e.Err.Error())
	}
	return buf.String()
}

func (e UserFriendlyError) Unwrap() error {
	return e.Err
}

// WrapConfigError wraps fatal configuration errors with user-friendly context
func WrapConfigError(err error, what string) error {
	if err == nil {
		return nil
	}

	return UserFriendlyError{
		Message: fmt.Sprintf("Configuration error: %s", what),
		Reason:  err.Error(),
		Hint:    "The secret must be at least 32 bytes of hex and the peer address six colon-separated octets",
		Try:     "attscope search --input capture.jsonl --peer 7c:e9:13:6e:4d:75",
		Err:     err,
	}
}

// WrapInputError wraps record-stream input errors with user-friendly context
func WrapInputError(err error, path string) error {
	if err == nil {
		return nil
	}

	return UserFriendlyError{
		Message: fmt.Sprintf("Failed to read record stream %s", path),
		Reason:  err.Error(),
		Hint:    "The input must be JSONL with one record object per line (frame, t_epoch, opcode, att_handle, value_hex)",
		Err:     err,
	}
}

// WrapHexError wraps literal hex argument errors with user-friendly context
func WrapHexError(err error, what string) error {
	if err == nil {
		return nil
	}

	return UserFriendlyError{
		Message: fmt.Sprintf("Invalid hex for %s", what),
		Reason:  err.Error(),
		Hint:    "Hex strings take an even number of [0-9a-f] digits; colons are tolerated",
		Err:     err,
	}
}
