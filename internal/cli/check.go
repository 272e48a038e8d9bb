package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/lowerc/internal/diag"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	optionFlags
}

// CheckResult is the JSON payload of the check command.
type CheckResult struct {
	SessionID  string           `json:"session_id"`
	Classes    []string         `json:"classes"`
	Skipped    []string         `json:"skipped,omitempty"`
	Violations []diag.Violation `json:"violations"`
	Warnings   []diag.Warning   `json:"warnings,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <program>",
		Short: "Check a program against its restriction policies",
		Long: `Run the restriction checker and the translator over a program dump
without writing any units.

With --format lsp the violations and any internal error are printed as
LSP publishDiagnostics params, one entry per source document.

Exit codes:
  0 - No violations
  1 - Restriction violations were reported
  2 - Command error or aborted translation`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	opts.optionFlags.register(cmd)

	return cmd
}

func runCheck(opts *CheckOptions, programPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	progress := cmd.OutOrStdout()
	if formatter.structured() {
		progress = cmd.ErrOrStderr()
	}

	sess, err := compileProgram(cmd, opts.RootOptions, &opts.optionFlags, programPath, progress, formatter)
	if sess == nil {
		return err
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	report := sess.Report()

	if opts.Format == "lsp" {
		params := diag.ToLSP(report.Violations, err, sess.Sources())
		enc := json.NewEncoder(formatter.Writer)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(params); encErr != nil {
			return encErr
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "translation aborted", err)
		}
		return violationError(len(report.Violations))
	}

	if err != nil {
		return outputCompileError(formatter, sess, err)
	}

	if formatter.structured() {
		if err := formatter.Success(CheckResult{
			SessionID:  report.SessionID,
			Classes:    report.Classes,
			Skipped:    report.Skipped,
			Violations: report.Violations,
			Warnings:   report.Warnings,
		}); err != nil {
			return err
		}
		return violationError(len(report.Violations))
	}

	if len(report.Violations) == 0 {
		fmt.Fprintf(formatter.Writer, "✓ Checked %d class(es)\n", len(report.Classes))
	} else {
		fmt.Fprintf(formatter.Writer, "✗ Checked %d class(es), %d violation(s)\n", len(report.Classes), len(report.Violations))
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(formatter.Writer, "  warning: %s\n", formatWarning(w))
	}
	return violationError(len(report.Violations))
}

func formatWarning(w diag.Warning) string {
	switch {
	case w.Method != "":
		return fmt.Sprintf("%s: %s", w.Method, w.Message)
	case w.Class != "":
		return fmt.Sprintf("%s: %s", w.Class, w.Message)
	}
	return w.Message
}
