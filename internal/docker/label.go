package docker

import (
	"fmt"
	"strings"
	"time"

	"github.com/shinji-kodama/recovery-card/internal/tex"
)

// Label keys applied to every compile container. They identify containers
// created by this tool and record which job they were compiling. No secret
// material is ever placed in a label.
const (
	// LabelPrefix namespaces all recovery-card labels.
	LabelPrefix = "recovery-card."

	// LabelManagedBy identifies containers created by recovery-card.
	// Key: "recovery-card.managed-by", Value: always ManagedByValue.
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelJob stores the job name (the .tex/.pdf stem).
	LabelJob = LabelPrefix + "job"

	// LabelOutputDir stores the host directory mounted as /out.
	LabelOutputDir = LabelPrefix + "output-dir"

	// LabelCreatedAt stores the RFC3339 creation timestamp.
	LabelCreatedAt = LabelPrefix + "created-at"
)

// ManagedByValue is the constant value for the LabelManagedBy label.
const ManagedByValue = "recovery-card"

// CompileContainer is the metadata reconstructed from a compile
// container's labels. It is what "prune" lists and removes.
type CompileContainer struct {
	// ContainerID is the full Docker container ID. It is not a label;
	// it comes from the container summary.
	ContainerID string

	// JobName is the stem of the .tex file the container was compiling.
	JobName string

	// OutputDir is the host directory bind-mounted as /out. A leftover
	// container keeps this mount, which is why pruning matters.
	OutputDir string

	// CreatedAt is when the compile started, parsed from LabelCreatedAt.
	CreatedAt time.Time
}

// BuildLabels constructs the label map for a compile container.
// UTC keeps the timestamp independent of the host's timezone.
func BuildLabels(job tex.Job, createdAt time.Time) map[string]string {
	return map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelJob:       job.JobName,
		LabelOutputDir: job.OutputDir,
		LabelCreatedAt: createdAt.UTC().Format(time.RFC3339),
	}
}

// ParseLabels reconstructs CompileContainer metadata from labels.
// It is the inverse of BuildLabels; all required labels are checked at
// once so the error lists every missing key.
func ParseLabels(labels map[string]string) (*CompileContainer, error) {
	requiredKeys := []string{
		LabelManagedBy,
		LabelJob,
		LabelOutputDir,
		LabelCreatedAt,
	}

	var missing []string
	for _, key := range requiredKeys {
		if _, ok := labels[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required Docker labels: %s", strings.Join(missing, ", "))
	}

	if labels[LabelManagedBy] != ManagedByValue {
		return nil, fmt.Errorf(
			"label %s has unexpected value %q (expected %q)",
			LabelManagedBy, labels[LabelManagedBy], ManagedByValue,
		)
	}

	createdAt, err := time.Parse(time.RFC3339, labels[LabelCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("invalid label %s: %w", LabelCreatedAt, err)
	}

	return &CompileContainer{
		JobName:   labels[LabelJob],
		OutputDir: labels[LabelOutputDir],
		CreatedAt: createdAt,
	}, nil
}

// FilterLabel returns the "key=value" label filter that selects compile
// containers in the Docker API's list endpoint.
//
// Example: "recovery-card.managed-by=recovery-card"
func FilterLabel() string {
	return LabelManagedBy + "=" + ManagedByValue
}
