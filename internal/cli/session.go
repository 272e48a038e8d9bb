package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/lowerc/internal/compiler"
	"github.com/roach88/lowerc/internal/config"
	"github.com/roach88/lowerc/internal/frontend"
	"github.com/roach88/lowerc/internal/semantic"
	"github.com/roach88/lowerc/internal/store"
)

// CLI error codes. Front-end codes (E001-E008) come from frontend; aborted
// translations report the internal error code.
const (
	ErrCodeConfig      = "E009" // Options file or flag combination rejected
	ErrCodeWriteFailed = "E010" // Output units could not be written
	ErrCodeLedger      = "E011" // Session ledger could not be opened or written
	ErrCodeNoSession   = "E012" // Requested session is not in the ledger
)

// optionFlags override values read from the options file. Only flags the
// user set take effect.
type optionFlags struct {
	Devirtualize    bool
	AllowInline     bool
	ObjectInlining  bool
	InlineThreshold int
	SkipOnViolation bool
	Mute            bool
	Classes         []string
}

func (f *optionFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&f.Devirtualize, "devirtualize", true, "specialize virtual calls using points-to facts")
	fs.BoolVar(&f.AllowInline, "allow-inline", false, "inline small methods at call sites")
	fs.BoolVar(&f.ObjectInlining, "object-inlining", false, "embed inlinable fields and locals by value")
	fs.IntVar(&f.InlineThreshold, "inline-threshold", semantic.DefaultInlineThreshold, "largest body, in statements, eligible for inlining")
	fs.BoolVar(&f.SkipOnViolation, "skip-on-violation", false, "do not translate classes that fail a restriction check")
	fs.BoolVar(&f.Mute, "mute", false, "suppress checker progress lines")
	fs.StringArrayVar(&f.Classes, "class", nil, "translate only this class and what it reaches (repeatable)")
}

// resolve layers the options file and the changed flags over the defaults.
func (f *optionFlags) resolve(root *RootOptions, cmd *cobra.Command) (config.Options, error) {
	opts := config.Defaults()
	if root.Config != "" {
		loaded, err := config.Load(root.Config)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}

	fs := cmd.Flags()
	if fs.Changed("devirtualize") {
		opts.Devirtualize = f.Devirtualize
	}
	if fs.Changed("allow-inline") {
		opts.AllowInline = f.AllowInline
	}
	if fs.Changed("object-inlining") {
		opts.ObjectInlining = f.ObjectInlining
	}
	if fs.Changed("inline-threshold") {
		opts.InlineThreshold = f.InlineThreshold
	}
	if fs.Changed("skip-on-violation") {
		opts.TranslateOnViolation = !f.SkipOnViolation
	}
	if fs.Changed("mute") {
		opts.Mute = f.Mute
	}
	return opts, opts.Validate()
}

// compileProgram loads the program at path and compiles it in a fresh
// session whose checker output goes to progress. The session is returned
// whenever it was created, together with the compilation error, so callers
// can still report a session that aborted. Failures before the session
// exists are printed through formatter and returned as ExitErrors.
func compileProgram(cmd *cobra.Command, root *RootOptions, flags *optionFlags, path string, progress io.Writer, formatter *OutputFormatter) (*compiler.Session, error) {
	cfg, err := flags.resolve(root, cmd)
	if err != nil {
		return nil, outputError(formatter, ErrCodeConfig, err.Error(), nil)
	}

	formatter.VerboseLog("Loading program %s", path)
	prog, err := frontend.Load(path)
	if err != nil {
		var loadErr *frontend.LoadError
		if errors.As(err, &loadErr) {
			msg := loadErr.Message
			if pos := loadErr.Pos; pos.IsValid() {
				msg = fmt.Sprintf("%s:%d:%d: %s", pos.Filename(), pos.Line(), pos.Column(), msg)
			}
			return nil, outputError(formatter, loadErr.Code, msg, nil)
		}
		return nil, outputError(formatter, frontend.ErrCodeGeneric, err.Error(), nil)
	}
	formatter.VerboseLog("Loaded %d class declaration(s)", len(prog.Classes))

	sess, err := compiler.NewSession(cfg,
		compiler.WithLogger(newLogger(formatter.GetErrWriter(), root.Verbose)),
		compiler.WithOutput(progress),
	)
	if err != nil {
		return nil, outputError(formatter, ErrCodeConfig, err.Error(), nil)
	}
	formatter.SessionID = sess.ID()

	compileErr := sess.Compile(compiler.Task{Program: prog, Classes: flags.Classes})

	if err := recordSession(cmd.Context(), root.DB, sess.Report()); err != nil {
		return sess, outputError(formatter, ErrCodeLedger, err.Error(), nil)
	}
	if root.DB != "" {
		formatter.VerboseLog("Recorded session %s in %s", sess.ID(), root.DB)
	}
	return sess, compileErr
}

// recordSession appends the report to the ledger at path. An empty path
// disables the ledger.
func recordSession(ctx context.Context, path string, r *compiler.Report) error {
	if path == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer st.Close()

	if err := st.WriteReport(ctx, r); err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}
	return nil
}

// outputCompileError prints an aborted compilation. Validation errors are
// listed individually.
func outputCompileError(formatter *OutputFormatter, sess *compiler.Session, err error) error {
	code := compiler.ErrorCode(err)
	if code == "" {
		code = frontend.ErrCodeGeneric
	}

	var details interface{}
	if validation := sess.Report().Validation; len(validation) > 0 {
		msgs := make([]string, len(validation))
		for i, v := range validation {
			msgs[i] = v.Error()
		}
		details = msgs
		if !formatter.structured() {
			_ = formatter.Error(code, err.Error(), nil)
			for _, m := range msgs {
				fmt.Fprintf(formatter.Writer, "  %s\n", m)
			}
			return WrapExitError(ExitCommandError, "translation aborted", err)
		}
	}

	_ = formatter.Error(code, err.Error(), details)
	return WrapExitError(ExitCommandError, "translation aborted", err)
}

// outputError prints a command-level error and returns it with exit code 2.
func outputError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// violationError is the exit status of a session that reported violations.
func violationError(n int) error {
	if n == 0 {
		return nil
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d restriction violation(s)", n))
}
