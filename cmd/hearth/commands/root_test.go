package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand_ShowsHelpWhenNoSubcommand(t *testing.T) {
	output, err := execute(t, "")
	assert.NoError(t, err)
	assert.Contains(t, output, "Usage:", "Help should be displayed")
	assert.Contains(t, output, "hearth")
}

func TestRootCommand_RejectsUnknownFlags(t *testing.T) {
	_, err := execute(t, "", "--unknown-flag", "value")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")
}

func TestRootCommand_Version(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2024-01-01")
	t.Cleanup(func() { versionString = "dev" })

	output, err := execute(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, output, "1.2.3 (commit: abc123, built: 2024-01-01)")
}

func TestConfigCommand_PrintsDefaults(t *testing.T) {
	output, err := execute(t, "", "config")
	require.NoError(t, err)
	assert.Contains(t, output, "reference_temperature: 22")
	assert.Contains(t, output, "thermocouples: 4")
	assert.Contains(t, output, "temperature_period: 500ms")
}

func TestConfigCommand_AppliesFileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hearth.yml")
	require.NoError(t, os.WriteFile(path, []byte("comfort_band: 0.5\nthermocouples: 6\n"), 0644))

	output, err := execute(t, "", "config", "--config", path, "--thermocouples=8")
	require.NoError(t, err)
	assert.Contains(t, output, "comfort_band: 0.5")
	assert.Contains(t, output, "thermocouples: 8")
}

func TestConfigCommand_RejectsInvalidValue(t *testing.T) {
	_, err := execute(t, "", "config", "--temperature-alpha=2")
	require.Error(t, err)
	assert.Equal(t, "invalid configuration", err.Error())
}

func TestRunCommand_QuitsAtEndOfInput(t *testing.T) {
	output, err := execute(t, "m\np 50\n",
		"run",
		"--temperature-period=10ms",
		"--pressure-period=5ms",
		"--decision-period=2ms",
		"--sample-wait=5ms",
		"--display-period=10ms",
		"--seed=3",
	)
	require.NoError(t, err)
	assert.Contains(t, output, "[SW] Commands: a / m / p <0..100> / q")
}

func TestRunCommand_RejectsArguments(t *testing.T) {
	_, err := execute(t, "", "run", "extra")
	assert.Error(t, err)
}
