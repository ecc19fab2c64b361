package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/novotea/nx-lib-bundle/internal/bundler"
	"github.com/novotea/nx-lib-bundle/internal/config"
	"github.com/novotea/nx-lib-bundle/internal/filesystem"
	"github.com/novotea/nx-lib-bundle/internal/workspace"
	"github.com/spf13/cobra"
)

// Toolchain creates the compiler and minifier used for a run over ws.
type Toolchain func(fs filesystem.FileSystem, cfg *config.Config, ws *workspace.Config) (bundler.Compiler, bundler.Minifier)

// DefaultToolchain bundles with esbuild. tsc emits declarations and lowers
// the es5 pass. UMD bundles are stamped with the workspace version.
func DefaultToolchain(fs filesystem.FileSystem, cfg *config.Config, ws *workspace.Config) (bundler.Compiler, bundler.Minifier) {
	declarations := bundler.NewTscDeclarationEmitter(fs, cfg.Tsc...)
	lowerer := bundler.NewTscLowerer(fs, cfg.Tsc...)
	return bundler.NewEsbuildCompiler(declarations, lowerer, ws.Version()), bundler.NewEsbuildMinifier()
}

// NewRootCommand creates the root command
func NewRootCommand(fs filesystem.FileSystem, toolchain Toolchain) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nx-lib-bundle",
		Short: "Bundle the libraries of an Nx workspace into npm packages",
		Long: `Bundles libraries of an Nx workspace into publishable npm packages.

Every library gets an es5 UMD bundle (plain and minified), an es2015 ES module
bundle, its TypeScript declarations and a package.json whose dependencies are
taken from the workspace root package.json.`,
		SilenceUsage: true,
	}

	config.AddFlags(rootCmd)

	rootCmd.AddCommand(NewBundleCommand(fs, toolchain))
	rootCmd.AddCommand(NewAllCommand(fs, toolchain))
	rootCmd.AddCommand(NewListCommand(fs))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	fs := filesystem.NewOSFileSystem()

	rootCmd := NewRootCommand(fs, DefaultToolchain)

	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}

func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}
