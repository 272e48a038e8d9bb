package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/lowerc/internal/codegen"
	"github.com/roach88/lowerc/internal/compiler"
	"github.com/roach88/lowerc/internal/diag"
)

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	*RootOptions
	optionFlags
	Output string // output directory
}

// TranslateResult is the JSON payload of a successful translation.
type TranslateResult struct {
	SessionID  string                `json:"session_id"`
	OutputDir  string                `json:"output_dir"`
	Classes    []string              `json:"classes"`
	Skipped    []string              `json:"skipped,omitempty"`
	Units      []compiler.UnitRecord `json:"units"`
	Violations []diag.Violation      `json:"violations"`
	Counters   map[string]int64      `json:"counters"`
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "translate <program>",
		Short: "Translate a program dump to C",
		Long: `Translate a front-end program dump (a .cue or .json file, or a
directory of .cue files) to C units.

Every class is checked against its restriction policies before it is
translated. Violations are reported after the run; by default the
offending classes are still translated.

Exit codes:
  0 - Translated without violations
  1 - Translated, but restriction violations were reported
  2 - Command error or aborted translation

Examples:
  lowerc translate ./zoo -o out
  lowerc translate prog.json --class app.Main --db ledger.db
  lowerc translate prog.cue --config lowerc.toml --skip-on-violation`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", ".", "output directory for the C units")
	opts.optionFlags.register(cmd)

	return cmd
}

func runTranslate(opts *TranslateOptions, programPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// Checker lines would corrupt JSON on stdout.
	progress := cmd.OutOrStdout()
	if formatter.structured() {
		progress = cmd.ErrOrStderr()
	}

	sess, err := compileProgram(cmd, opts.RootOptions, &opts.optionFlags, programPath, progress, formatter)
	if sess == nil {
		return err
	}
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return err
		}
		return outputCompileError(formatter, sess, err)
	}

	if err := writeUnits(opts.Output, sess.Units()); err != nil {
		return outputError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing units: %v", err), nil)
	}

	report := sess.Report()
	if formatter.structured() {
		if err := formatter.Success(TranslateResult{
			SessionID:  report.SessionID,
			OutputDir:  opts.Output,
			Classes:    report.Classes,
			Skipped:    report.Skipped,
			Units:      report.Units,
			Violations: report.Violations,
			Counters:   report.Counters,
		}); err != nil {
			return err
		}
	} else {
		outputTranslateText(formatter.Writer, report, opts.Output)
	}

	return violationError(len(report.Violations))
}

// writeUnits writes each unit into dir under its own name.
func writeUnits(dir string, units []codegen.Unit) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, u := range units {
		if err := os.WriteFile(filepath.Join(dir, u.Name), []byte(u.Text), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func outputTranslateText(w io.Writer, report *compiler.Report, dir string) {
	fmt.Fprintf(w, "✓ Translated %d class(es) into %d unit(s) in %s\n", len(report.Classes), len(report.Units), dir)
	for _, name := range report.Skipped {
		fmt.Fprintf(w, "  skipped %s\n", name)
	}
	fmt.Fprintf(w, "Session: %s\n", report.SessionID)
}
