package config

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	AddFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newCommand(t))
	require.NoError(t, err)

	require.Equal(t, DefaultOutput, cfg.Output)
	require.Empty(t, cfg.Cwd)
	require.False(t, cfg.Verbose)
	require.False(t, cfg.KeepGoing)
	require.False(t, cfg.Concurrent)
	require.Equal(t, []string{"npx", "--no-install", "tsc"}, cfg.Tsc)
}

func TestLoad_Flags(t *testing.T) {
	cfg, err := Load(newCommand(t, "-o", "build", "--cwd", "/ws", "--verbose", "--keep-going", "--concurrent", "--tsc", "node_modules/.bin/tsc"))
	require.NoError(t, err)

	require.Equal(t, "build", cfg.Output)
	require.Equal(t, "/ws", cfg.Cwd)
	require.True(t, cfg.Verbose)
	require.True(t, cfg.KeepGoing)
	require.True(t, cfg.Concurrent)
	require.Equal(t, []string{"node_modules/.bin/tsc"}, cfg.Tsc)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("NX_LIB_BUNDLE_OUTPUT", "packages")
	t.Setenv("NX_LIB_BUNDLE_KEEP_GOING", "true")

	cfg, err := Load(newCommand(t))
	require.NoError(t, err)
	require.Equal(t, "packages", cfg.Output)
	require.True(t, cfg.KeepGoing)
}

func TestLoad_FlagOverridesEnvironment(t *testing.T) {
	t.Setenv("NX_LIB_BUNDLE_OUTPUT", "packages")

	cfg, err := Load(newCommand(t, "--output", "out"))
	require.NoError(t, err)
	require.Equal(t, "out", cfg.Output)
}

func TestLoad_EmptyTsc(t *testing.T) {
	_, err := Load(newCommand(t, "--tsc", " "))
	require.EqualError(t, err, "tsc must not be empty")
}
