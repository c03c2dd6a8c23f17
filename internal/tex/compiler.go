// Package tex writes the rendered card source to disk and runs pdflatex
// on it.
//
// The Compiler interface has two implementations: LocalCompiler in this
// package, which runs a pdflatex binary on the host, and docker.Compiler,
// which runs the same command inside a TeX Live container. Both block until
// the compiler exits and capture its complete output.
package tex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/recovery-card/internal/card"
	"github.com/shinji-kodama/recovery-card/internal/model"
)

// DefaultBinary is the compiler executable looked up on PATH.
const DefaultBinary = "pdflatex"

// InstallHint is printed when no compiler can be found.
const InstallHint = "Please install a LaTeX distribution (e.g., MacTeX, TeX Live)"

// ErrCompilerNotFound is returned (wrapped) when the toolchain is missing:
// the pdflatex binary is not on PATH, or the Docker daemon is unreachable.
var ErrCompilerNotFound = errors.New("LaTeX compiler not found")

// Job describes one compile.
type Job struct {
	// SourcePath is the .tex file to compile.
	SourcePath string

	// OutputDir receives the PDF and the byproducts.
	OutputDir string

	// ResourceDir is the compiler's working directory. The template
	// references the logo images relative to it.
	ResourceDir string

	// JobName is the stem of SourcePath; the PDF is <OutputDir>/<JobName>.pdf.
	JobName string
}

// NewJob builds the Job for a resolved output target.
func NewJob(target *model.OutputTarget, resourceDir string) Job {
	return Job{
		SourcePath:  target.SourcePath(),
		OutputDir:   target.WorkDir,
		ResourceDir: resourceDir,
		JobName:     target.JobName,
	}
}

// Compiler runs the document compiler for a job.
//
// A nil error means the compiler ran to completion and exited zero.
// A *CompileError means it ran but failed; the result is still returned.
// An error wrapping ErrCompilerNotFound means it could not be started.
type Compiler interface {
	Compile(ctx context.Context, job Job) (*model.CompileResult, error)
}

// CompileError reports a compiler run that exited non-zero.
type CompileError struct {
	Result *model.CompileResult
}

// Error returns a short summary; Diagnostics returns the full output.
func (e *CompileError) Error() string {
	return fmt.Sprintf("PDF compilation failed (exit status %d)", e.Result.ExitCode)
}

// Diagnostics returns the compiler's stdout followed by its stderr.
func (e *CompileError) Diagnostics() string {
	var b strings.Builder
	b.WriteString(e.Result.Stdout)
	if e.Result.Stdout != "" && !strings.HasSuffix(e.Result.Stdout, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(e.Result.Stderr)
	return b.String()
}

// Args returns the pdflatex arguments for a job, with paths expressed by
// the caller's view of the filesystem.
func Args(sourcePath, outputDir string) []string {
	return []string{
		"-interaction=nonstopmode",
		"-output-directory=" + outputDir,
		sourcePath,
	}
}

// WriteSource writes doc to target's .tex file and returns its path.
// The file holds the user's secrets, so it is readable by the owner only.
func WriteSource(target *model.OutputTarget, doc card.Document) (string, error) {
	path := target.SourcePath()
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// MissingAssets returns the template's image assets that are not present
// in resourceDir.
func MissingAssets(resourceDir string) []string {
	var missing []string
	for _, name := range card.Assets {
		if _, err := os.Stat(filepath.Join(resourceDir, name)); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}
