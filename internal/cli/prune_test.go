package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/recovery-card/internal/docker"
)

func leftovers(now time.Time) []docker.CompileContainer {
	return []docker.CompileContainer{
		{
			ContainerID: "0123456789abcdef0123",
			JobName:     "recovery_cards",
			OutputDir:   "/home/user/cards",
			CreatedAt:   now.Add(-3 * time.Hour),
		},
		{
			ContainerID: "fedcba9876543210",
			JobName:     "card",
			OutputDir:   "/tmp/recovery-card-123",
			CreatedAt:   now.Add(-50 * time.Hour),
		},
	}
}

// TestFormatAge uses the coarsest whole unit.
func TestFormatAge(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"seconds", 45 * time.Second, "45s"},
		{"minutes", 90 * time.Second, "1m"},
		{"hours", 3*time.Hour + 59*time.Minute, "3h"},
		{"days", 50 * time.Hour, "2d"},
		{"clock skew", -time.Second, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAge(tt.d))
		})
	}
}

// TestRemoveEach keeps going after a failed removal.
func TestRemoveEach(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	containers := leftovers(now)

	var attempted []string
	var errOut bytes.Buffer
	removed, failures := removeEach(containers, &errOut, func(id string) error {
		attempted = append(attempted, id)
		if id == containers[0].ContainerID {
			return errors.New("failed to remove container \"0123456789ab\": device busy")
		}
		return nil
	})

	assert.Equal(t, []string{containers[0].ContainerID, containers[1].ContainerID}, attempted)
	require.Len(t, removed, 1)
	assert.Equal(t, "card", removed[0].JobName)
	assert.Equal(t, []string{"0123456789ab"}, failures)
	assert.Contains(t, errOut.String(), "⚠ Warning: failed to remove container")
	assert.Contains(t, errOut.String(), "device busy")
}

// TestRemoveEach_AllSucceed reports no failures.
func TestRemoveEach_AllSucceed(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	var errOut bytes.Buffer
	removed, failures := removeEach(leftovers(now), &errOut, func(string) error { return nil })

	assert.Len(t, removed, 2)
	assert.Empty(t, failures)
	assert.Empty(t, errOut.String())
}

// TestPrintPruneResultText lists each container and the outcome.
func TestPrintPruneResultText(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	printPruneResultText(&buf, leftovers(now), true, now)
	out := buf.String()

	assert.Contains(t, out, "JOB")
	assert.Contains(t, out, "OUTPUT DIR")
	assert.Contains(t, out, "recovery_cards")
	assert.Contains(t, out, "/home/user/cards")
	assert.Contains(t, out, "0123456789ab")
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "3h")
	assert.Contains(t, out, "2d")
	assert.Contains(t, out, "Removed 2 container(s).")

	buf.Reset()
	printPruneResultText(&buf, leftovers(now), false, now)
	assert.Contains(t, buf.String(), "2 container(s) would be removed.")

	buf.Reset()
	printPruneResultText(&buf, nil, true, now)
	assert.Equal(t, "No leftover compile containers found.\n", buf.String())
}

// TestPrintPruneResultJSON emits an empty array rather than null.
func TestPrintPruneResultJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printPruneResultJSON(&buf, nil, false))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, false, got["removed"])
	assert.Equal(t, []interface{}{}, got["containers"])

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	buf.Reset()
	require.NoError(t, printPruneResultJSON(&buf, leftovers(now), true))
	assert.Contains(t, buf.String(), `"job": "recovery_cards"`)
	assert.Contains(t, buf.String(), `"createdAt": "2026-10-19T09:00:00Z"`)
}
