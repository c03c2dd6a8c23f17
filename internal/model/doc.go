// Package model defines the domain types and value objects for the
// recovery-card CLI.
//
// This package contains pure data structures with no external dependencies:
// the user's RecoveryInputs, the resolved OutputTarget, and the
// CompileResult of one pdflatex run.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
