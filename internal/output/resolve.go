// Package output decides where a card is written and what happens to the
// compiled PDF afterwards.
//
// Resolve maps the --output argument to an OutputTarget. Publish handles a
// successful compile: it either tidies the working directory and leaves the
// PDF in place, or streams the PDF to the caller and removes the temporary
// directory. Discard cleans up after a failed compile in stream mode.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/recovery-card/internal/model"
)

const (
	// StreamSentinel is the --output value that streams the PDF to stdout.
	StreamSentinel = "-"

	// StreamJobName is the job name used inside the temporary directory.
	StreamJobName = "card"

	// DefaultName is the --output default.
	DefaultName = "recovery_cards"

	// tempDirPattern names the per-invocation temporary directory.
	tempDirPattern = "recovery-card-*"
)

// Resolve turns an output name into an OutputTarget.
//
//   - "-" allocates a fresh temporary directory and selects stream mode.
//   - An absolute path writes next to that path, named after its stem.
//   - A relative name writes into resourceDir so the compiler, which runs
//     there, finds the logo assets; any directory part of the name is kept
//     below resourceDir.
//
// The working directory exists when Resolve returns.
func Resolve(name, resourceDir string) (*model.OutputTarget, error) {
	if name == StreamSentinel {
		dir, err := os.MkdirTemp("", tempDirPattern)
		if err != nil {
			return nil, fmt.Errorf("failed to create temporary directory: %w", err)
		}
		return &model.OutputTarget{WorkDir: dir, JobName: StreamJobName, Mode: model.ModeStream}, nil
	}

	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("output name must not be empty")
	}

	var target *model.OutputTarget
	if filepath.IsAbs(name) {
		base := filepath.Base(name)
		target = &model.OutputTarget{
			WorkDir: filepath.Dir(name),
			JobName: strings.TrimSuffix(base, filepath.Ext(base)),
			Mode:    model.ModeDisk,
		}
	} else {
		target = &model.OutputTarget{
			WorkDir: filepath.Join(resourceDir, filepath.Dir(name)),
			JobName: trimKnownExt(filepath.Base(name)),
			Mode:    model.ModeDisk,
		}
	}

	if target.JobName == "" || target.JobName == "." || target.JobName == string(filepath.Separator) {
		return nil, fmt.Errorf("output name %q has no file name", name)
	}

	if err := os.MkdirAll(target.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", target.WorkDir, err)
	}
	return target, nil
}

// trimKnownExt drops a trailing .pdf or .tex from a relative output name,
// so "cards.pdf" produces cards.tex and cards.pdf rather than cards.pdf.pdf.
func trimKnownExt(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".tex":
		return strings.TrimSuffix(name, filepath.Ext(name))
	default:
		return name
	}
}
