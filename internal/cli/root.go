package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json" | "lsp"
	Config  string // options file (.yaml, .yml or .toml)
	DB      string // session ledger path
}

// ValidFormats defines the allowed output formats. Only check renders
// "lsp"; the other commands treat it as "json".
var ValidFormats = []string{"text", "json", "lsp"}

// NewRootCommand creates the root command for the lowerc CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "lowerc",
		Short: "lowerc - lower a typed OO program to C",
		Long: `A whole-program translator from a typed object-oriented IR to C.

lowerc checks each class against its restriction policies, substitutes
intrinsics, and emits one header and one source unit per reachable class
plus the program-wide units and the runtime support unit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|lsp)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "translator options file")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "session ledger database")

	cmd.AddCommand(NewTranslateCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewScenarioCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newLogger returns the logger commands hand to the compiler. Logs always
// go to w so they never mix with JSON output.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
