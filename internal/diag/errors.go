package diag

import (
	"errors"
	"fmt"
)

// InternalError is a fatal translator error. Output produced after one is
// not trustworthy, so the session stops at the first InternalError.
type InternalError struct {
	// Code identifies the error category.
	Code InternalErrorCode

	// Message is a human-readable description.
	Message string

	// Class is the class being processed, if any.
	Class string

	// Method is the method being lowered, if any.
	Method string

	// Stmt is the rendering of the offending statement, if any.
	Stmt string
}

// InternalErrorCode categorizes internal errors.
type InternalErrorCode string

const (
	// ErrCodeIncomplete indicates an IR shape outside the lowering taxonomy.
	ErrCodeIncomplete InternalErrorCode = "INCOMPLETE_IMPLEMENTATION"

	// ErrCodePolicyNotFound indicates a restriction name with no registered policy.
	ErrCodePolicyNotFound InternalErrorCode = "POLICY_NOT_FOUND"

	// ErrCodePolicyInvocation indicates a policy that panicked or returned an error.
	ErrCodePolicyInvocation InternalErrorCode = "POLICY_INVOCATION"

	// ErrCodeUnknownClass indicates a reference to a class the program does not declare.
	ErrCodeUnknownClass InternalErrorCode = "UNKNOWN_CLASS"

	// ErrCodeInvalidProgram indicates a program that failed validation.
	ErrCodeInvalidProgram InternalErrorCode = "INVALID_PROGRAM"

	// ErrCodeDuplicateEntry indicates more than one main method was emitted.
	ErrCodeDuplicateEntry InternalErrorCode = "DUPLICATE_ENTRY"

	// ErrCodeSkippedReached indicates emitted code that needs a class skipped
	// for restriction violations.
	ErrCodeSkippedReached InternalErrorCode = "SKIPPED_CLASS_REACHED"
)

// Error implements the error interface.
func (e *InternalError) Error() string {
	switch {
	case e.Class != "" && e.Method != "":
		return fmt.Sprintf("%s: %s (class=%s, method=%s)", e.Code, e.Message, e.Class, e.Method)
	case e.Class != "":
		return fmt.Sprintf("%s: %s (class=%s)", e.Code, e.Message, e.Class)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInternal reports whether err wraps an InternalError.
func IsInternal(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}

// IsIncomplete reports whether err is an incomplete-implementation error.
func IsIncomplete(err error) bool {
	return hasCode(err, ErrCodeIncomplete)
}

// IsPolicyError reports whether err is a policy resolution or invocation error.
func IsPolicyError(err error) bool {
	return hasCode(err, ErrCodePolicyNotFound) || hasCode(err, ErrCodePolicyInvocation)
}

func hasCode(err error, code InternalErrorCode) bool {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.Code == code
	}
	return false
}

// Incomplete creates the error raised for any construct the generator has
// no rule for.
func Incomplete(what, stmt string) *InternalError {
	return &InternalError{
		Code:    ErrCodeIncomplete,
		Message: fmt.Sprintf("incomplete implementation: %s", what),
		Stmt:    stmt,
	}
}

// Errorf creates an InternalError with a formatted message.
func Errorf(code InternalErrorCode, format string, args ...any) *InternalError {
	return &InternalError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// At returns a copy of e annotated with the class and method being
// processed. Existing annotations win.
func (e *InternalError) At(class, method string) *InternalError {
	c := *e
	if c.Class == "" {
		c.Class = class
	}
	if c.Method == "" {
		c.Method = method
	}
	return &c
}
