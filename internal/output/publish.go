package output

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"

	"github.com/shinji-kodama/recovery-card/internal/model"
)

// ByproductExts are the auxiliary files pdflatex (and latexmk, when users
// run it by hand) leave next to the PDF. The .tex source and the .pdf are
// not in this list.
var ByproductExts = []string{".aux", ".log", ".out", ".fls", ".fdb_latexmk", ".synctex.gz"}

// Artifact describes the published PDF.
type Artifact struct {
	// Path is where the PDF was left. Empty in stream mode, because the
	// file is gone once Publish returns.
	Path string `json:"path,omitempty"`

	// Size is the PDF size in bytes.
	Size int64 `json:"size"`

	// Digest is the hex BLAKE3-256 digest of the PDF bytes, so a printed
	// copy can be matched to the file it came from.
	Digest string `json:"digest"`
}

// Publish finishes a successful compile.
//
// In disk mode the PDF and .tex are kept and byproducts removed. In stream
// mode the PDF is read completely, written verbatim to stdout, and only
// then is the whole working directory removed.
//
// The returned error is fatal (the artifact could not be read or written).
// Cleanup problems are not fatal; they are returned separately as warnings.
func Publish(target *model.OutputTarget, result *model.CompileResult, stdout io.Writer) (*Artifact, []error, error) {
	if !target.Mode.IsValid() {
		return nil, nil, fmt.Errorf("invalid output mode %q", target.Mode)
	}

	path := result.ArtifactPath
	if path == "" {
		path = target.ArtifactPath()
	}

	if target.IsStream() {
		return publishStream(target, path, stdout)
	}
	return publishDisk(target, path)
}

func publishDisk(target *model.OutputTarget, path string) (*Artifact, []error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	artifact := &Artifact{Path: path, Size: int64(len(data)), Digest: Digest(data)}
	return artifact, RemoveByproducts(target), nil
}

func publishStream(target *model.OutputTarget, path string, stdout io.Writer) (*Artifact, []error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Discard(target), fmt.Errorf("failed to read %s: %w", path, err)
	}

	artifact := &Artifact{Size: int64(len(data)), Digest: Digest(data)}
	if _, err := stdout.Write(data); err != nil {
		return nil, Discard(target), fmt.Errorf("failed to write PDF to stdout: %w", err)
	}
	return artifact, Discard(target), nil
}

// RemoveByproducts deletes the auxiliary compiler files for target's job.
// Files that do not exist are skipped; any other failure is collected.
func RemoveByproducts(target *model.OutputTarget) []error {
	var errs []error
	for _, ext := range ByproductExts {
		p := target.ByproductPath(ext)
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", p, err))
		}
	}
	return errs
}

// Discard removes the working directory of a stream-mode target. Targets
// in disk mode are left untouched so the source can be inspected.
func Discard(target *model.OutputTarget) []error {
	if !target.IsStream() {
		return nil
	}
	if err := os.RemoveAll(target.WorkDir); err != nil {
		return []error{fmt.Errorf("failed to remove temporary directory %s: %w", target.WorkDir, err)}
	}
	return nil
}

// Digest returns the hex BLAKE3-256 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
