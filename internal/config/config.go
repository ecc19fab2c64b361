// Package config resolves the run configuration from command-line flags and
// NX_LIB_BUNDLE_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/novotea/nx-lib-bundle/internal/bundler"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment variable, e.g. NX_LIB_BUNDLE_OUTPUT.
	EnvPrefix = "NX_LIB_BUNDLE"

	// DefaultOutput is the output root used when none is given.
	DefaultOutput = "dist"
)

// Flag names, also used as configuration keys.
const (
	KeyOutput     = "output"
	KeyCwd        = "cwd"
	KeyVerbose    = "verbose"
	KeyKeepGoing  = "keep-going"
	KeyConcurrent = "concurrent"
	KeyTsc        = "tsc"
)

// Config is the resolved configuration of one run.
type Config struct {
	// Output is the output root; relative paths are taken from the workspace root.
	Output string

	// Cwd is the directory the workspace search starts from. Empty means
	// the current working directory.
	Cwd string

	Verbose    bool
	KeepGoing  bool
	Concurrent bool

	// Tsc is the TypeScript compiler command line, used for declarations and es5 lowering.
	Tsc []string
}

// AddFlags registers the persistent flags read by Load.
func AddFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringP(KeyOutput, "o", DefaultOutput, "Output root for the generated packages")
	flags.String(KeyCwd, "", "Directory to start the workspace search from (defaults to the current directory)")
	flags.BoolP(KeyVerbose, "v", false, "Print every progress message")
	flags.Bool(KeyKeepGoing, false, "Continue with the next library after a failure")
	flags.Bool(KeyConcurrent, false, "Run the legacy and modern passes of a library concurrently")
	flags.String(KeyTsc, strings.Join(bundler.DefaultTscCommand, " "), "TypeScript compiler command used for declarations and es5 lowering")
}

// Load reads the configuration for cmd. Flags set on the command line win
// over environment variables, which win over the flag defaults.
func Load(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	cfg := &Config{
		Output:     v.GetString(KeyOutput),
		Cwd:        v.GetString(KeyCwd),
		Verbose:    v.GetBool(KeyVerbose),
		KeepGoing:  v.GetBool(KeyKeepGoing),
		Concurrent: v.GetBool(KeyConcurrent),
		Tsc:        strings.Fields(v.GetString(KeyTsc)),
	}

	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if len(cfg.Tsc) == 0 {
		return nil, fmt.Errorf("%s must not be empty", KeyTsc)
	}

	return cfg, nil
}
