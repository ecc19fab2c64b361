package cli

import (
	"errors"
	"fmt"

	"github.com/novotea/nx-lib-bundle/internal/filesystem"
	"github.com/novotea/nx-lib-bundle/internal/tui"
	"github.com/novotea/nx-lib-bundle/internal/workspace"
	"github.com/spf13/cobra"
)

// BundleCommand handles the bundle command
type BundleCommand struct {
	fs        filesystem.FileSystem
	toolchain Toolchain

	// interactive and pick are swapped out in tests
	interactive func() bool
	pick        func([]tui.LibraryOption) ([]string, error)
}

// NewBundleCommand creates a new bundle command
func NewBundleCommand(fs filesystem.FileSystem, toolchain Toolchain) *cobra.Command {
	cmd := &BundleCommand{
		fs:          fs,
		toolchain:   toolchain,
		interactive: isInteractive,
		pick:        tui.PickLibraries,
	}

	return &cobra.Command{
		Use:     "bundle [library...]",
		Aliases: []string{"b"},
		Short:   "Bundle the named libraries",
		Long: `Bundles the named libraries into <output>/<scope>/<library>.

Without arguments on an interactive terminal a picker lists the libraries
of the workspace.`,
		Example: `  # Bundle two libraries
  nx-lib-bundle bundle core utils

  # Keep going after a failure and write below ./packages
  nx-lib-bundle bundle core utils --keep-going -o packages`,
		RunE: cmd.Run,
	}
}

// Run executes the bundle command
func (c *BundleCommand) Run(cmd *cobra.Command, args []string) error {
	cfg, ws, err := loadWorkspace(c.fs, cmd)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names, err = c.selectLibraries(ws)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No libraries selected")
			return nil
		}
	}

	return bundleLibraries(cmd, c.fs, c.toolchain, cfg, ws, names)
}

func (c *BundleCommand) selectLibraries(ws *workspace.Config) ([]string, error) {
	if !c.interactive() {
		return nil, errors.New("no libraries given (use 'all' to bundle every library)")
	}

	var options []tui.LibraryOption
	for _, name := range ws.Libraries() {
		options = append(options, tui.LibraryOption{Name: name, ImportName: ws.ImportName(name)})
	}

	names, err := c.pick(options)
	if err != nil {
		return nil, fmt.Errorf("failed to select libraries: %w", err)
	}
	return names, nil
}
