package cmd

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})

	Version = "1.0.0"
	GitCommit = "abc123"
	BuildDate = "2026-01-27T12:00:00Z"

	output, err := execute(t, "version")
	require.NoError(t, err)

	for _, want := range []string{
		"Vape Shop Catalog Server",
		"Version:    1.0.0",
		"Git commit: abc123",
		"Build date: 2026-01-27T12:00:00Z",
		"Go version: " + runtime.Version(),
		"Platform:   " + runtime.GOOS + "/" + runtime.GOARCH,
	} {
		require.Contains(t, output, want)
	}
}
