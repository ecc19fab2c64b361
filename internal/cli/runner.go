package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/novotea/nx-lib-bundle/internal/config"
	"github.com/novotea/nx-lib-bundle/internal/filesystem"
	"github.com/novotea/nx-lib-bundle/internal/orchestrator"
	"github.com/novotea/nx-lib-bundle/internal/tui"
	"github.com/novotea/nx-lib-bundle/internal/workspace"
	"github.com/spf13/cobra"
)

// loadWorkspace reads the configuration of cmd and resolves the workspace
// from --cwd, or from the current directory when it is unset.
func loadWorkspace(fs filesystem.FileSystem, cmd *cobra.Command) (*config.Config, *workspace.Config, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		return nil, nil, err
	}

	start := cfg.Cwd
	if start == "" {
		start, err = fs.Getwd()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	} else if !filepath.IsAbs(start) {
		wd, err := fs.Getwd()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		start = filepath.Join(wd, start)
	}

	ws, err := workspace.Resolve(fs, start)
	if err != nil {
		return nil, nil, err
	}

	return cfg, ws, nil
}

// bundleLibraries runs the orchestrator over names and prints a summary line
// per library.
func bundleLibraries(cmd *cobra.Command, fs filesystem.FileSystem, toolchain Toolchain, cfg *config.Config, ws *workspace.Config, names []string) error {
	out := cmd.OutOrStdout()
	sink := newConsoleSink(cmd.ErrOrStderr(), cfg.Verbose)

	compiler, minifier := toolchain(fs, cfg, ws)
	o := orchestrator.New(ws, fs, compiler, minifier, cfg.Output,
		orchestrator.WithSink(sink),
		orchestrator.WithKeepGoing(cfg.KeepGoing),
		orchestrator.WithConcurrentPasses(cfg.Concurrent),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	results, err := o.BundleAll(ctx, names)
	printSummary(out, ws, o, results)

	if err != nil {
		return fmt.Errorf("bundling failed: %w", err)
	}
	return nil
}

func printSummary(w io.Writer, ws *workspace.Config, o *orchestrator.Orchestrator, results []orchestrator.Diagnostics) {
	for _, diag := range results {
		importName := ws.ImportName(diag.Library)
		if len(diag.Files) == 0 {
			fmt.Fprintf(w, "%s %s\n", tui.ErrorStyle.Render("✗"), importName)
			continue
		}

		line := fmt.Sprintf("%s %s -> %s", tui.SuccessStyle.Render("✓"), importName, o.OutputDir(diag.Library))
		if n := len(diag.Warnings); n > 0 {
			line += " " + tui.WarningStyle.Render(fmt.Sprintf("(%d warning(s))", n))
		}
		fmt.Fprintln(w, line)
	}
}
