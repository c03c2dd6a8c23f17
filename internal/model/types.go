// Package model defines the domain types for the recovery-card CLI.
//
// Every value in this package lives for a single invocation only. The
// secrets entered by the user are carried in RecoveryInputs, flow through
// formatting and rendering, and are never written anywhere except the
// transient LaTeX source file next to the produced PDF.
package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultMetaMaskAccount is the account label printed on the MetaMask card
// when the user does not supply one.
const DefaultMetaMaskAccount = "Main Account"

// RecoveryInputs holds the four values printed on the recovery cards.
// All fields must be non-empty before rendering starts; the CLI front-end
// enforces this via Validate.
//
// The three phrase fields are secrets. They must never be logged, put in
// a Docker label, or included in an error message; only their lengths
// and line counts may be reported.
type RecoveryInputs struct {
	// ProtonPhrase is the Proton account recovery phrase, usually
	// 12 or 24 space-separated words.
	ProtonPhrase string

	// BitwardenCode is the Bitwarden two-step login recovery code.
	BitwardenCode string

	// MetaMaskPhrase is the MetaMask secret recovery phrase.
	// Exactly 12 space-separated words are expected.
	MetaMaskPhrase string

	// MetaMaskAccount is the account label shown above the seed grid.
	MetaMaskAccount string
}

// Validate reports the first required field that is empty or blank.
// The returned error names the field the way the CLI prompts for it.
func (in *RecoveryInputs) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"Proton phrase", in.ProtonPhrase},
		{"Bitwarden phrase", in.BitwardenCode},
		{"MetaMask phrase", in.MetaMaskPhrase},
		{"MetaMask account", in.MetaMaskAccount},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%s cannot be empty", f.name)
		}
	}
	return nil
}

// OutputMode selects what happens to the compiled PDF.
type OutputMode string

const (
	// ModeDisk keeps the PDF (and its LaTeX source) in the resolved
	// working directory.
	ModeDisk OutputMode = "disk"

	// ModeStream writes the PDF bytes to standard output and removes
	// the temporary working directory afterwards.
	ModeStream OutputMode = "stream"
)

// String returns the string representation of OutputMode.
func (m OutputMode) String() string {
	return string(m)
}

// IsValid checks whether the OutputMode value is one of the predefined modes.
func (m OutputMode) IsValid() bool {
	switch m {
	case ModeDisk, ModeStream:
		return true
	default:
		return false
	}
}

// OutputTarget is where a single invocation writes its files.
// It is derived once from the --output argument by output.Resolve.
//
// All generated files share WorkDir and JobName:
//
//	<WorkDir>/<JobName>.tex   the rendered source (kept in disk mode)
//	<WorkDir>/<JobName>.pdf   the compiled card
//	<WorkDir>/<JobName>.aux   compiler byproducts, removed after success
//
// In stream mode WorkDir is a private temporary directory that is removed
// as a whole once the PDF has been written to stdout.
type OutputTarget struct {
	// WorkDir is the directory that receives <job>.tex and <job>.pdf.
	// In stream mode it is a temporary directory owned by this invocation.
	WorkDir string

	// JobName is the filename stem shared by the source and the artifact.
	JobName string

	// Mode decides between keeping the files and streaming the PDF.
	Mode OutputMode
}

// SourcePath returns the path of the generated LaTeX source file.
func (t *OutputTarget) SourcePath() string {
	return t.pathWithExt(".tex")
}

// ArtifactPath returns the path where the compiler writes the PDF.
func (t *OutputTarget) ArtifactPath() string {
	return t.pathWithExt(".pdf")
}

// ByproductPath returns the path of an auxiliary file with the given
// extension (including the leading dot).
func (t *OutputTarget) ByproductPath(ext string) string {
	return t.pathWithExt(ext)
}

func (t *OutputTarget) pathWithExt(ext string) string {
	return filepath.Join(t.WorkDir, t.JobName+ext)
}

// IsStream reports whether the target streams the artifact to stdout.
func (t *OutputTarget) IsStream() bool {
	return t.Mode == ModeStream
}

// CompileResult captures one run of the external document compiler.
// It is produced by both compiler engines (the local binary and the Docker
// container), so the CLI reports success and failure the same way
// regardless of where pdflatex ran.
type CompileResult struct {
	// ExitCode is the compiler's process exit status.
	ExitCode int

	// Stdout and Stderr hold the compiler's complete output.
	Stdout string
	Stderr string

	// ArtifactPath is the produced PDF. Empty unless ExitCode is zero.
	ArtifactPath string
}

// Succeeded reports whether the compiler exited cleanly.
func (r *CompileResult) Succeeded() bool {
	return r.ExitCode == 0
}

// Engine selects which compiler implementation runs pdflatex.
// It is set with --engine or the "engine" config key; the zero value is
// not valid, so callers go through ParseEngine.
type Engine string

const (
	// EngineLocal runs a pdflatex binary found on the host.
	EngineLocal Engine = "local"

	// EngineDocker runs pdflatex inside a TeX Live container.
	EngineDocker Engine = "docker"
)

// String returns the string representation of Engine.
func (e Engine) String() string {
	return string(e)
}

// IsValid checks whether the Engine value is one of the predefined engines.
func (e Engine) IsValid() bool {
	switch e {
	case EngineLocal, EngineDocker:
		return true
	default:
		return false
	}
}

// ParseEngine converts a string to an Engine.
// Returns an error if the string does not match any valid engine.
func ParseEngine(s string) (Engine, error) {
	engine := Engine(strings.ToLower(strings.TrimSpace(s)))
	if !engine.IsValid() {
		return "", fmt.Errorf("invalid engine: %q (valid: local, docker)", s)
	}
	return engine, nil
}

// ExitCode defines the CLI process exit codes.
type ExitCode int

const (
	// ExitSuccess indicates the card was generated.
	ExitSuccess ExitCode = 0

	// ExitGeneralError covers every failure: invalid input, a missing
	// toolchain, and compiler errors all exit with 1.
	ExitGeneralError ExitCode = 1
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
