package oai

import (
	"errors"
	"fmt"
)

// ErrorCode is a protocol error condition. Every recoverable failure the
// engine can observe maps to exactly one code; the response document
// carries it as <error code="...">.
type ErrorCode string

const (
	CodeBadVerb                 ErrorCode = "badVerb"
	CodeBadArgument             ErrorCode = "badArgument"
	CodeBadResumptionToken      ErrorCode = "badResumptionToken"
	CodeCannotDisseminateFormat ErrorCode = "cannotDisseminateFormat"
	CodeIDDoesNotExist          ErrorCode = "idDoesNotExist"
	CodeNoRecordsMatch          ErrorCode = "noRecordsMatch"

	// CodeInternal is the only non-protocol code: it reports an
	// unclassified failure that aborted the current request.
	CodeInternal ErrorCode = "internalError"
)

// Error is a protocol-level error. It is always recoverable: the engine
// converts it to an error response, never a process fault.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a protocol error with the given code and message.
func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the protocol code from err. Unclassified errors report
// CodeInternal and false.
func CodeOf(err error) (ErrorCode, bool) {
	var oaiErr *Error
	if errors.As(err, &oaiErr) {
		return oaiErr.Code, true
	}
	return CodeInternal, false
}
