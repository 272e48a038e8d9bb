package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/lowerc/internal/compiler"
	"github.com/roach88/lowerc/internal/store"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Latest   bool   // show the most recent session
	Emitting string // list sessions that emitted a unit with this hash
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report [session-id]",
		Short: "Show sessions recorded in the ledger",
		Long: `Show translation sessions recorded with --db.

Without arguments every session is listed. With a session ID, or with
--latest, the full report of one session is printed.

Examples:
  lowerc report --db ledger.db
  lowerc report --db ledger.db --latest
  lowerc report --db ledger.db 01890a5d-ac96-774b-bcce-b302099a8057
  lowerc report --db ledger.db --emitting <unit-hash>`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := ""
			if len(args) == 1 {
				sessionID = args[0]
			}
			return runReport(opts, sessionID, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Latest, "latest", false, "show the most recent session")
	cmd.Flags().StringVar(&opts.Emitting, "emitting", "", "list sessions that emitted a unit with this content hash")

	return cmd
}

func runReport(opts *ReportOptions, sessionID string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.DB == "" {
		return outputError(formatter, ErrCodeLedger, "--db is required", nil)
	}
	if _, err := os.Stat(opts.DB); os.IsNotExist(err) {
		return outputError(formatter, ErrCodeLedger, fmt.Sprintf("database not found: %s", opts.DB), nil)
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		return outputError(formatter, ErrCodeLedger, fmt.Sprintf("failed to open ledger: %v", err), nil)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch {
	case opts.Emitting != "":
		ids, err := st.SessionsEmitting(ctx, opts.Emitting)
		if err != nil {
			return outputError(formatter, ErrCodeLedger, err.Error(), nil)
		}
		if formatter.structured() {
			return formatter.Success(ids)
		}
		for _, id := range ids {
			fmt.Fprintln(formatter.Writer, id)
		}
		return nil

	case sessionID == "" && !opts.Latest:
		sessions, err := st.ListSessions(ctx)
		if err != nil {
			return outputError(formatter, ErrCodeLedger, err.Error(), nil)
		}
		if formatter.structured() {
			return formatter.Success(sessions)
		}
		outputSessionList(formatter.Writer, sessions)
		return nil
	}

	if sessionID == "" {
		if sessionID, err = st.LatestSession(ctx); err != nil {
			return reportLookupError(formatter, err)
		}
	}

	report, err := st.ReadReport(ctx, sessionID)
	if err != nil {
		return reportLookupError(formatter, err)
	}
	formatter.SessionID = report.SessionID
	if formatter.structured() {
		return formatter.Success(report)
	}
	outputReportText(formatter.Writer, report)
	return nil
}

func reportLookupError(formatter *OutputFormatter, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return outputError(formatter, ErrCodeNoSession, err.Error(), nil)
	}
	return outputError(formatter, ErrCodeLedger, err.Error(), nil)
}

func outputSessionList(w io.Writer, sessions []store.SessionSummary) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tSTARTED\tCLASSES\tUNITS\tVIOLATIONS\tERROR")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
			s.ID, s.StartedAt.Format("2006-01-02 15:04:05"), s.Classes, s.Units, s.Violations, s.ErrorCode)
	}
	tw.Flush()
}

func outputReportText(w io.Writer, r *compiler.Report) {
	fmt.Fprintf(w, "Session %s\n", r.SessionID)
	fmt.Fprintf(w, "  translator: %s\n", r.TranslatorVersion)
	fmt.Fprintf(w, "  started:    %s\n", r.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  duration:   %s\n", r.FinishedAt.Sub(r.StartedAt))
	fmt.Fprintf(w, "  program:    %s\n", r.ProgramHash)
	fmt.Fprintf(w, "  config:     %s\n", r.ConfigHash)
	if r.Failed() {
		fmt.Fprintf(w, "  error:      [%s] %s\n", r.ErrorCode, r.Error)
	}

	if len(r.Classes) > 0 {
		fmt.Fprintf(w, "\nClasses (%d):\n  %s\n", len(r.Classes), strings.Join(r.Classes, "\n  "))
	}
	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "\nSkipped (%d):\n  %s\n", len(r.Skipped), strings.Join(r.Skipped, "\n  "))
	}

	if len(r.Units) > 0 {
		fmt.Fprintf(w, "\nUnits (%d):\n", len(r.Units))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, u := range r.Units {
			fmt.Fprintf(tw, "  %s\t%s\t%d bytes\n", u.Name, u.Hash, u.Bytes)
		}
		tw.Flush()
	}

	if len(r.Violations) > 0 {
		fmt.Fprintf(w, "\nViolations (%d):\n", len(r.Violations))
		for _, v := range r.Violations {
			fmt.Fprintf(w, "  %s\n", v)
		}
	}
	if len(r.Validation) > 0 {
		fmt.Fprintf(w, "\nValidation errors (%d):\n", len(r.Validation))
		for _, v := range r.Validation {
			fmt.Fprintf(w, "  %s\n", v.Error())
		}
	}

	if len(r.Counters) > 0 {
		fmt.Fprintln(w, "\nCounters:")
		for _, name := range slices.Sorted(maps.Keys(r.Counters)) {
			fmt.Fprintf(w, "  %s: %d\n", name, r.Counters[name])
		}
	}
}
