// Package cli implements the cobra-based command line for recovery-card.
//
// The root command generates the recovery cards. The "prune" subcommand
// removes compile containers left behind by interrupted docker-engine runs.
// This file defines the root command, global flags and error handling.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/recovery-card/internal/model"
)

// Global flag variables shared across all subcommands.
var (
	// jsonOutput makes result summaries and errors machine-readable.
	jsonOutput bool

	// verbose enables detailed logging to stderr.
	verbose bool

	// logOut is where VerboseLog writes; it follows the command's stderr.
	logOut io.Writer = os.Stderr
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
func NewRootCommand() *cobra.Command {
	flags := &generateFlags{}

	rootCmd := &cobra.Command{
		Use:   "recovery-card",
		Short: "Generate printable recovery cards for Proton, Bitwarden and MetaMask",
		Long: `recovery-card fills a card template with your Proton recovery phrase,
Bitwarden recovery code and MetaMask secret recovery phrase, and compiles it
to a printable PDF with pdflatex.

Without credential flags the values are prompted for interactively. If any of
--proton, --bitwarden or --metamask-phrase is given, all three are required.

Use --output - to write the PDF to stdout and leave nothing on disk.

Examples:
  recovery-card
  recovery-card --proton "..." --bitwarden "..." --metamask-phrase "..."
  recovery-card --output /secure/usb/cards.pdf
  recovery-card --engine docker --output - > cards.pdf`,

		Args: cobra.NoArgs,

		// Errors are printed by Execute, in text or JSON.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logOut = cmd.ErrOrStderr()
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, flags)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output result summaries in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/recovery-card/config.yaml)")

	registerGenerateFlags(rootCmd, flags)

	rootCmd.AddCommand(NewPruneCommand())

	return rootCmd
}

// Execute runs the root command and exits the process with the
// appropriate code.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			printError(rootCmd.ErrOrStderr(), cliErr.Message, cliErr.Err)
		} else {
			printError(rootCmd.ErrOrStderr(), err.Error(), nil)
		}
		os.Exit(int(ExitCodeFor(err)))
	}
}

// ExitCodeFor maps an error returned by a command to a process exit code.
// CLIError carries its own code; anything else is a general error.
func ExitCodeFor(err error) model.ExitCode {
	if err == nil {
		return model.ExitSuccess
	}
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}
	return model.ExitGeneralError
}

// printError writes an error message in the format selected by --json.
// Errors always go to stderr: stdout may be carrying PDF bytes.
func printError(w io.Writer, message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"message": message,
		}
		if underlying != nil {
			errObj["detail"] = underlying.Error()
		}
		data, _ := json.MarshalIndent(map[string]interface{}{"error": errObj}, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if underlying != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(w, "Error: %s\n", message)
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
// It never receives secret values.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(logOut, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}
