// container.go implements listing and removal of compile containers.
//
// Compile containers are normally removed as soon as pdflatex exits. If the
// process is killed while a compile is running, the container survives;
// ListCompileContainers finds it through the managed-by label and
// RemoveContainer deletes it (used by the "prune" command).
package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
)

// ListCompileContainers returns every container labelled as a
// recovery-card compile container, running or not. Containers whose labels
// cannot be parsed are skipped.
func ListCompileContainers(ctx context.Context, cli *Client) ([]CompileContainer, error) {
	// Docker filters server-side, so unrelated containers are never returned.
	filterArgs := filters.NewArgs(
		filters.Arg("label", FilterLabel()),
	)

	summaries, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list Docker containers: %w", err)
	}

	result := make([]CompileContainer, 0, len(summaries))
	for _, s := range summaries {
		if c, ok := summaryToContainer(s); ok {
			result = append(result, c)
		}
	}
	return result, nil
}

// summaryToContainer converts a Docker API container summary into a
// CompileContainer. It reports false when the labels are incomplete.
func summaryToContainer(s container.Summary) (CompileContainer, bool) {
	c, err := ParseLabels(s.Labels)
	if err != nil {
		return CompileContainer{}, false
	}
	c.ContainerID = s.ID
	return *c, true
}

// RemoveContainer removes a container by its ID. With force set, a running
// container is killed first.
func RemoveContainer(ctx context.Context, cli *Client, containerID string, force bool) error {
	err := cli.Inner().ContainerRemove(ctx, containerID, container.RemoveOptions{
		Force: force,
	})
	if err != nil {
		return fmt.Errorf("failed to remove container %q: %w", ShortID(containerID), err)
	}
	return nil
}

// ShortID returns the 12-character prefix Docker shows in its own output.
func ShortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
