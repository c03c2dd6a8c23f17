package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/shinji-kodama/recovery-card/internal/model"
	"github.com/shinji-kodama/recovery-card/internal/tex"
)

// DefaultImage is the TeX Live image used when none is configured.
const DefaultImage = "texlive/texlive:latest"

// Mount points inside the compile container.
const (
	containerAssetsDir = "/assets"
	containerOutputDir = "/out"
)

// Compiler runs pdflatex in a throwaway container. It satisfies
// tex.Compiler.
//
// The resource directory is mounted read-only as the working directory,
// the output directory is mounted read-write, and the container has no
// network access. The container runs as the invoking user on Unix so the
// files it writes are owned by that user.
type Compiler struct {
	// Image is the TeX Live image. Empty means DefaultImage.
	Image string

	// Progress receives image pull progress. nil discards it.
	Progress io.Writer

	// now is overridable in tests.
	now func() time.Time
}

// NewCompiler creates a docker Compiler for the given image.
func NewCompiler(imageRef string, progress io.Writer) *Compiler {
	return &Compiler{Image: imageRef, Progress: progress, now: time.Now}
}

func (c *Compiler) image() string {
	if c.Image == "" {
		return DefaultImage
	}
	return c.Image
}

// Compile runs one job to completion. An unreachable daemon is reported as
// tex.ErrCompilerNotFound; a non-zero pdflatex exit as *tex.CompileError.
//
// Lifecycle:
//  1. Connect and ping the daemon
//  2. Pull the image if it is not present locally
//  3. Create the container with the job's mounts and labels
//  4. Start it and block until pdflatex exits
//  5. Read the complete stdout/stderr from the container logs
//  6. Remove the container (always, via defer)
func (c *Compiler) Compile(ctx context.Context, job tex.Job) (*model.CompileResult, error) {
	cli, err := NewClient()
	if err != nil {
		return nil, err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return nil, err
	}

	// The first run on a machine pulls several GB; progress goes to
	// c.Progress so --verbose can show it.
	if err := EnsureImage(ctx, cli, c.image(), c.Progress); err != nil {
		return nil, err
	}

	config, hostConfig := c.containerSpec(job)
	created, err := cli.Inner().ContainerCreate(ctx, config, hostConfig, nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create compile container: %w", err)
	}
	// Removal must happen even when ctx was cancelled mid-compile.
	defer func() {
		_ = RemoveContainer(context.WithoutCancel(ctx), cli, created.ID, true)
	}()

	if err := cli.Inner().ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("failed to start compile container %q: %w", ShortID(created.ID), err)
	}

	// Logs are read after the exit so the diagnostics are complete.
	exitCode, err := waitForExit(ctx, cli, created.ID)
	if err != nil {
		return nil, err
	}

	stdout, stderr, err := collectLogs(ctx, cli, created.ID)
	if err != nil {
		return nil, err
	}

	result := &model.CompileResult{ExitCode: exitCode, Stdout: stdout, Stderr: stderr}
	if !result.Succeeded() {
		return result, &tex.CompileError{Result: result}
	}
	result.ArtifactPath = filepath.Join(job.OutputDir, job.JobName+".pdf")
	return result, nil
}

// containerSpec builds the container and host configuration for job.
// Paths inside the container always use forward slashes.
func (c *Compiler) containerSpec(job tex.Job) (*container.Config, *container.HostConfig) {
	source := path.Join(containerOutputDir, filepath.Base(job.SourcePath))

	config := &container.Config{
		Image:      c.image(),
		Cmd:        append([]string{tex.DefaultBinary}, tex.Args(source, containerOutputDir)...),
		WorkingDir: containerAssetsDir,
		Labels:     BuildLabels(job, c.clock()),
		User:       hostUser(),
	}

	hostConfig := &container.HostConfig{
		Binds: []string{
			job.ResourceDir + ":" + containerAssetsDir + ":ro",
			job.OutputDir + ":" + containerOutputDir,
		},
		NetworkMode: "none",
	}
	return config, hostConfig
}

func (c *Compiler) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

// hostUser returns "uid:gid" of the current process, or "" on platforms
// without numeric ids.
func hostUser() string {
	if runtime.GOOS == "windows" {
		return ""
	}
	return fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid())
}

// EnsureImage pulls ref unless it is already present locally.
func EnsureImage(ctx context.Context, cli *Client, ref string, progress io.Writer) error {
	images, err := cli.Inner().ImageList(ctx, image.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", ref)),
	})
	if err != nil {
		return fmt.Errorf("failed to list Docker images: %w", err)
	}
	if len(images) > 0 {
		return nil
	}

	reader, err := cli.Inner().ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}
	defer reader.Close()

	// The pull only completes once the progress stream is drained.
	if progress == nil {
		progress = io.Discard
	}
	if _, err := io.Copy(progress, reader); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}
	return nil
}

// waitForExit blocks until the container stops and returns its exit code.
func waitForExit(ctx context.Context, cli *Client, id string) (int, error) {
	statusCh, errCh := cli.Inner().ContainerWait(ctx, id, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		return 0, fmt.Errorf("failed waiting for compile container %q: %w", ShortID(id), err)
	case status := <-statusCh:
		if status.Error != nil && status.Error.Message != "" {
			return 0, fmt.Errorf("compile container %q: %s", ShortID(id), status.Error.Message)
		}
		return int(status.StatusCode), nil
	}
}

// collectLogs reads the container's complete stdout and stderr. The log
// stream is multiplexed because the container has no TTY.
func collectLogs(ctx context.Context, cli *Client, id string) (string, string, error) {
	logs, err := cli.Inner().ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to read compile container logs: %w", err)
	}
	defer logs.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, logs); err != nil {
		return "", "", fmt.Errorf("failed to read compile container logs: %w", err)
	}
	return stdout.String(), stderr.String(), nil
}
