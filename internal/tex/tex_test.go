package tex

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/recovery-card/internal/card"
	"github.com/shinji-kodama/recovery-card/internal/model"
)

// fakeCompilerScript behaves like pdflatex for the tests: it records its
// working directory, writes <job>.pdf and <job>.log into the output
// directory, and fails when the source contains the word FAIL.
const fakeCompilerScript = `#!/bin/sh
out=""
src=""
for a in "$@"; do
  case "$a" in
    -output-directory=*) out="${a#-output-directory=}" ;;
    -*) ;;
    *) src="$a" ;;
  esac
done
job=$(basename "$src" .tex)
pwd > "$out/$job.cwd"
if grep -q FAIL "$src"; then
  echo "! Undefined control sequence."
  echo "fatal: see log" >&2
  exit 1
fi
printf '%%PDF-1.4 fake' > "$out/$job.pdf"
echo "log" > "$out/$job.log"
echo "Output written on $job.pdf"
`

// installFakeCompiler writes fakeCompilerScript into a temp dir and
// returns its path. Tests using it are skipped on Windows.
func installFakeCompiler(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compiler is a POSIX shell script")
	}
	path := filepath.Join(t.TempDir(), "pdflatex")
	require.NoError(t, os.WriteFile(path, []byte(fakeCompilerScript), 0o755))
	return path
}

// newTarget returns a disk-mode target in a fresh directory.
func newTarget(t *testing.T) *model.OutputTarget {
	t.Helper()
	return &model.OutputTarget{WorkDir: t.TempDir(), JobName: "cards", Mode: model.ModeDisk}
}

// TestWriteSource writes the document owner-readable only.
func TestWriteSource(t *testing.T) {
	target := newTarget(t)

	path, err := WriteSource(target, card.Document("\\documentclass{article}"))
	require.NoError(t, err)

	assert.Equal(t, target.SourcePath(), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\\documentclass{article}", string(data))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

// TestWriteSource_MissingDirectory reports the path that failed.
func TestWriteSource_MissingDirectory(t *testing.T) {
	target := &model.OutputTarget{WorkDir: filepath.Join(t.TempDir(), "gone"), JobName: "cards"}

	_, err := WriteSource(target, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), target.SourcePath())
}

// TestArgs checks the batch-mode command line.
func TestArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"-interaction=nonstopmode", "-output-directory=/out", "/out/card.tex"},
		Args("/out/card.tex", "/out"))
}

// TestLocalCompiler_Success runs the fake compiler and checks the result.
func TestLocalCompiler_Success(t *testing.T) {
	binary := installFakeCompiler(t)
	resources := t.TempDir()
	target := newTarget(t)
	_, err := WriteSource(target, "hello")
	require.NoError(t, err)

	result, err := NewLocalCompiler(binary).Compile(context.Background(), NewJob(target, resources))

	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Equal(t, target.ArtifactPath(), result.ArtifactPath)
	assert.Contains(t, result.Stdout, "Output written on cards.pdf")
	assert.FileExists(t, target.ArtifactPath())

	// The compiler must run inside the resource directory so that the
	// template's relative \includegraphics paths resolve.
	cwd, err := os.ReadFile(target.ByproductPath(".cwd"))
	require.NoError(t, err)
	wantDir, err := filepath.EvalSymlinks(resources)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(string(cwd[:len(cwd)-1]))
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)
}

// TestLocalCompiler_RelativeBinary resolves a relative compiler path
// against the current directory, not the resource directory.
func TestLocalCompiler_RelativeBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake compiler is a POSIX shell script")
	}
	workDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(workDir, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "bin", "pdflatex"), []byte(fakeCompilerScript), 0o755))
	t.Chdir(workDir)

	target := newTarget(t)
	_, err := WriteSource(target, "hello")
	require.NoError(t, err)

	result, err := NewLocalCompiler("./bin/pdflatex").Compile(context.Background(), NewJob(target, t.TempDir()))

	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.FileExists(t, target.ArtifactPath())
}

// TestLocalCompiler_Failure relays the full output as a CompileError.
func TestLocalCompiler_Failure(t *testing.T) {
	binary := installFakeCompiler(t)
	target := newTarget(t)
	_, err := WriteSource(target, "FAIL")
	require.NoError(t, err)

	result, err := NewLocalCompiler(binary).Compile(context.Background(), NewJob(target, t.TempDir()))

	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, 1, result.ExitCode)
	assert.Empty(t, result.ArtifactPath)
	assert.Contains(t, compileErr.Diagnostics(), "! Undefined control sequence.")
	assert.Contains(t, compileErr.Diagnostics(), "fatal: see log")
	assert.Equal(t, "PDF compilation failed (exit status 1)", compileErr.Error())
	assert.NoFileExists(t, target.ArtifactPath())
}

// TestLocalCompiler_NotFound reports a missing toolchain.
func TestLocalCompiler_NotFound(t *testing.T) {
	target := newTarget(t)

	_, err := NewLocalCompiler(filepath.Join(t.TempDir(), "no-such-pdflatex")).
		Compile(context.Background(), NewJob(target, t.TempDir()))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCompilerNotFound))
}

// TestLocalCompiler_DefaultBinary falls back to pdflatex on PATH.
func TestLocalCompiler_DefaultBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := NewLocalCompiler("").Compile(context.Background(), NewJob(newTarget(t), t.TempDir()))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCompilerNotFound))
	assert.Contains(t, err.Error(), DefaultBinary)
}

// TestCompileError_Diagnostics joins stdout and stderr on separate lines.
func TestCompileError_Diagnostics(t *testing.T) {
	err := &CompileError{Result: &model.CompileResult{ExitCode: 1, Stdout: "out", Stderr: "err\n"}}
	assert.Equal(t, "out\nerr\n", err.Diagnostics())
}

// TestMissingAssets lists only the absent logo files.
func TestMissingAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "proton-logo.png"), []byte("png"), 0o644))

	assert.Equal(t, []string{"bitwarden-logo.png", "metamask-logo.png"}, MissingAssets(dir))
}
