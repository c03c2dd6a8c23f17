// prune.go implements the "recovery-card prune" command.
//
// A docker-engine compile removes its container as soon as pdflatex
// exits. If the process is killed mid-compile the container survives,
// holding a bind mount of the output directory. prune finds those
// containers by label and removes them.
package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/recovery-card/internal/docker"
	"github.com/shinji-kodama/recovery-card/internal/model"
)

// pruneFlags holds the flag values for the prune command.
type pruneFlags struct {
	dryRun bool // --dry-run: list only, remove nothing
}

// NewPruneCommand creates the "prune" cobra command.
func NewPruneCommand() *cobra.Command {
	flags := &pruneFlags{}

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove leftover compile containers",
		Long: `Remove compile containers left behind by interrupted docker-engine runs.

Only containers labelled by recovery-card are touched.

Examples:
  recovery-card prune
  recovery-card prune --dry-run`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runPrune(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "List leftover containers without removing them")

	return cmd
}

// runPrune connects to Docker, lists the compile containers and removes
// them unless --dry-run is set.
func runPrune(ctx context.Context, w, errOut io.Writer, flags *pruneFlags) error {
	// Step 1: Connect to Docker daemon.
	cli, err := docker.NewClient()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "Docker is not available", err)
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "Docker is not available", err)
	}
	VerboseLog("Connected to Docker daemon")

	// Step 2: Find our containers.
	containers, err := docker.ListCompileContainers(ctx, cli)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to list compile containers", err)
	}
	VerboseLog("Found %d compile container(s)", len(containers))

	sort.Slice(containers, func(i, j int) bool {
		return containers[i].CreatedAt.Before(containers[j].CreatedAt)
	})

	// Step 3: Remove them. Force kills containers that are still running.
	removed := containers
	var failures []string
	if !flags.dryRun {
		removed, failures = removeEach(containers, errOut, func(id string) error {
			return docker.RemoveContainer(ctx, cli, id, true)
		})
	}

	// Step 4: Output the result.
	if IsJSONOutput() {
		if err := printPruneResultJSON(w, removed, !flags.dryRun); err != nil {
			return err
		}
	} else if len(removed) > 0 || len(failures) == 0 {
		printPruneResultText(w, removed, !flags.dryRun, time.Now())
	}

	if len(failures) > 0 {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to remove %d compile container(s): %s", len(failures), strings.Join(failures, ", ")))
	}
	return nil
}

// removeEach calls remove for every container. A failure is reported to
// errOut and the remaining containers are still attempted. It returns the
// containers that were removed and the short IDs of those that were not.
func removeEach(containers []docker.CompileContainer, errOut io.Writer, remove func(id string) error) ([]docker.CompileContainer, []string) {
	removed := make([]docker.CompileContainer, 0, len(containers))
	var failures []string
	for _, c := range containers {
		VerboseLog("Removing container %s (%s)...", c.JobName, docker.ShortID(c.ContainerID))
		if err := remove(c.ContainerID); err != nil {
			fmt.Fprintf(errOut, "⚠ Warning: %v\n", err)
			failures = append(failures, docker.ShortID(c.ContainerID))
			continue
		}
		removed = append(removed, c)
	}
	return removed, failures
}

// pruneContainerJSON is the JSON form of one pruned container.
type pruneContainerJSON struct {
	ID        string `json:"id"`
	Job       string `json:"job"`
	OutputDir string `json:"outputDir"`
	CreatedAt string `json:"createdAt"`
}

// printPruneResultJSON writes the containers under a "containers" key.
func printPruneResultJSON(w io.Writer, containers []docker.CompileContainer, removed bool) error {
	result := struct {
		Removed    bool                 `json:"removed"`
		Containers []pruneContainerJSON `json:"containers"`
	}{
		Removed:    removed,
		Containers: make([]pruneContainerJSON, 0, len(containers)),
	}
	for _, c := range containers {
		result.Containers = append(result.Containers, pruneContainerJSON{
			ID:        c.ContainerID,
			Job:       c.JobName,
			OutputDir: c.OutputDir,
			CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return printJSON(w, result)
}

// printPruneResultText writes an aligned table of the containers.
//
//	JOB             OUTPUT DIR                     AGE       ID
//	recovery_cards  /home/user/cards               2h        0123456789ab
func printPruneResultText(w io.Writer, containers []docker.CompileContainer, removed bool, now time.Time) {
	if len(containers) == 0 {
		fmt.Fprintln(w, "No leftover compile containers found.")
		return
	}

	fmt.Fprintf(w, "%-20s %-40s %-8s %s\n", "JOB", "OUTPUT DIR", "AGE", "ID")
	for _, c := range containers {
		fmt.Fprintf(w, "%-20s %-40s %-8s %s\n",
			c.JobName,
			c.OutputDir,
			FormatAge(now.Sub(c.CreatedAt)),
			docker.ShortID(c.ContainerID),
		)
	}

	if removed {
		fmt.Fprintf(w, "\nRemoved %d container(s).\n", len(containers))
	} else {
		fmt.Fprintf(w, "\n%d container(s) would be removed.\n", len(containers))
	}
}

// FormatAge renders a duration in the coarse units docker ps uses.
//
//	45s → "45s", 90s → "1m", 3h → "3h", 50h → "2d"
func FormatAge(d time.Duration) string {
	switch {
	case d < 0:
		return "-"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d/time.Second))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	}
}
