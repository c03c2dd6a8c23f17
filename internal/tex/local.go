package tex

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/recovery-card/internal/model"
)

// LocalCompiler runs a pdflatex binary installed on the host.
type LocalCompiler struct {
	// Binary is the executable name or path. Empty means DefaultBinary.
	Binary string
}

// NewLocalCompiler creates a LocalCompiler for the given binary.
func NewLocalCompiler(binary string) *LocalCompiler {
	return &LocalCompiler{Binary: binary}
}

func (c *LocalCompiler) binary() string {
	if c.Binary == "" {
		return DefaultBinary
	}
	return c.Binary
}

// Compile runs pdflatex in batch mode with job.ResourceDir as its working
// directory and job.OutputDir as its output directory. It waits for the
// process to exit; there is no timeout.
func (c *LocalCompiler) Compile(ctx context.Context, job Job) (*model.CompileResult, error) {
	path, err := exec.LookPath(c.binary())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCompilerNotFound, c.binary(), err)
	}
	// A relative path would be resolved against cmd.Dir, not the
	// directory the user gave it from.
	if path, err = filepath.Abs(path); err != nil {
		return nil, fmt.Errorf("failed to resolve compiler path %s: %w", c.binary(), err)
	}

	// #nosec G204: the binary comes from the operator's own flag or config
	cmd := exec.CommandContext(ctx, path, Args(job.SourcePath, job.OutputDir)...)
	cmd.Dir = job.ResourceDir

	// Capture stdout and stderr separately so both can be relayed in
	// full when the compile fails.
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := &model.CompileResult{}
	runErr := cmd.Run()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, &CompileError{Result: result}
		}
		// The binary was found but could not be started (e.g., permissions).
		return nil, fmt.Errorf("%w: %s: %v", ErrCompilerNotFound, path, runErr)
	}

	result.ArtifactPath = filepath.Join(job.OutputDir, job.JobName+".pdf")
	return result, nil
}
