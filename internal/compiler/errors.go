package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/lowerc/internal/diag"
)

// Stage names where a compilation failed.
type Stage string

const (
	StageValidate      Stage = "validate"
	StagePrepare       Stage = "prepare"
	StageCheck         Stage = "check"
	StageTranslate     Stage = "translate"
	StagePostTranslate Stage = "post-translate"
)

// CompileError is an aborted compilation.
type CompileError struct {
	Stage Stage
	Class string // class being processed, if any
	Err   error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Class != "" {
		return fmt.Sprintf("%s %s: %v", e.Stage, e.Class, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *CompileError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the internal error code carried by err, or "" when err
// carries none.
func ErrorCode(err error) string {
	var ie *diag.InternalError
	if errors.As(err, &ie) {
		return string(ie.Code)
	}
	return ""
}
