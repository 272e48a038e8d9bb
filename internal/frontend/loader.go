// Package frontend reads front-end program dumps. Dumps are CUE or JSON;
// both go through the CUE evaluator, so a dump may be split across files
// of a directory and may use CUE definitions to factor repeated shapes.
package frontend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/lowerc/internal/ir"
)

// Error codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNoFiles     = "E003" // No dump files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build or validation failed
	ErrCodeDecode      = "E007" // Value does not decode into a program
	ErrCodeNoClasses   = "E008" // Program declares no classes
)

// programField optionally wraps the program in a dump.
const programField = "program"

// LoadError is a front-end dump that could not be turned into a program.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsLoadError reports whether err is a LoadError with the given code.
func IsLoadError(err error, code string) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Code == code
}

// Load reads a dump from a file or a directory of .cue files.
func Load(path string) (*ir.Program, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("program not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing program: %v", err)}
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// LoadFile reads a single .cue or .json dump.
func LoadFile(path string) (*ir.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading program: %v", err)}
	}
	switch filepath.Ext(path) {
	case ".cue", ".json":
	default:
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("unsupported program format: %s", path)}
	}

	ctx := cuecontext.New()
	return CompileValue(ctx.CompileBytes(data, cue.Filename(path)))
}

// LoadDir loads every .cue file of dir as one CUE instance.
func LoadDir(dir string) (*ir.Program, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("scanning %s: %v", dir, err)}
	}
	if len(matches) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err), Pos: position(inst.Err)}
	}

	ctx := cuecontext.New()
	return CompileValue(ctx.BuildInstance(inst))
}

// CompileString compiles CUE or JSON source held in memory.
func CompileString(src, filename string) (*ir.Program, error) {
	ctx := cuecontext.New()
	return CompileValue(ctx.CompileString(src, cue.Filename(filename)))
}

// CompileValue decodes a built CUE value into a program. The program is
// either the value itself or its top-level "program" field. Every field
// must be concrete.
func CompileValue(v cue.Value) (*ir.Program, error) {
	if err := v.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err), Pos: position(err)}
	}

	root := v
	if p := v.LookupPath(cue.ParsePath(programField)); p.Exists() {
		root = p
	}
	if err := root.Validate(cue.Concrete(true)); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("validating program: %v", err), Pos: position(err)}
	}

	var prog ir.Program
	if err := root.Decode(&prog); err != nil {
		return nil, &LoadError{Code: ErrCodeDecode, Message: fmt.Sprintf("decoding program: %v", err), Pos: position(err)}
	}
	if len(prog.Classes) == 0 {
		return nil, &LoadError{Code: ErrCodeNoClasses, Message: "program declares no classes", Pos: root.Pos()}
	}
	return &prog, nil
}

// position returns the first position CUE attached to err.
func position(err error) token.Pos {
	for _, e := range cueerrors.Errors(err) {
		if p := e.Position(); p.IsValid() {
			return p
		}
	}
	return token.NoPos
}
