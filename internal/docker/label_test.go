package docker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/recovery-card/internal/tex"
)

// testJob returns a compile job with fixed paths.
func testJob() tex.Job {
	return tex.Job{
		SourcePath:  "/home/user/cards/recovery_cards.tex",
		OutputDir:   "/home/user/cards",
		ResourceDir: "/opt/recovery-card",
		JobName:     "recovery_cards",
	}
}

// TestBuildLabels verifies that every required key is set and that no
// other label is added.
func TestBuildLabels(t *testing.T) {
	createdAt := time.Date(2026, 10, 19, 9, 30, 0, 0, time.FixedZone("CEST", 2*60*60))

	labels := BuildLabels(testJob(), createdAt)

	assert.Equal(t, ManagedByValue, labels[LabelManagedBy])
	assert.Equal(t, "recovery_cards", labels[LabelJob])
	assert.Equal(t, "/home/user/cards", labels[LabelOutputDir])
	assert.Equal(t, "2026-10-19T07:30:00Z", labels[LabelCreatedAt], "timestamp should be UTC")
	assert.Len(t, labels, 4)
}

// TestParseLabels_RoundTrip verifies that ParseLabels inverts BuildLabels.
func TestParseLabels_RoundTrip(t *testing.T) {
	createdAt := time.Date(2026, 10, 19, 7, 30, 0, 0, time.UTC)

	got, err := ParseLabels(BuildLabels(testJob(), createdAt))
	require.NoError(t, err)

	assert.Equal(t, "recovery_cards", got.JobName)
	assert.Equal(t, "/home/user/cards", got.OutputDir)
	assert.True(t, createdAt.Equal(got.CreatedAt))
}

// TestParseLabels_Errors covers missing keys, foreign containers and bad
// timestamps.
func TestParseLabels_Errors(t *testing.T) {
	tests := []struct {
		name    string
		labels  map[string]string
		wantErr string
	}{
		{
			name:    "no labels",
			labels:  map[string]string{},
			wantErr: "missing required Docker labels: recovery-card.managed-by, recovery-card.job, recovery-card.output-dir, recovery-card.created-at",
		},
		{
			name: "other manager",
			labels: map[string]string{
				LabelManagedBy: "someone-else",
				LabelJob:       "card",
				LabelOutputDir: "/tmp",
				LabelCreatedAt: "2026-10-19T07:30:00Z",
			},
			wantErr: "unexpected value",
		},
		{
			name: "bad timestamp",
			labels: map[string]string{
				LabelManagedBy: ManagedByValue,
				LabelJob:       "card",
				LabelOutputDir: "/tmp",
				LabelCreatedAt: "yesterday",
			},
			wantErr: "invalid label recovery-card.created-at",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLabels(tt.labels)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestFilterLabel checks the Docker list filter expression.
func TestFilterLabel(t *testing.T) {
	assert.Equal(t, "recovery-card.managed-by=recovery-card", FilterLabel())
}
