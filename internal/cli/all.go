package cli

import (
	"fmt"

	"github.com/novotea/nx-lib-bundle/internal/filesystem"
	"github.com/spf13/cobra"
)

// AllCommand handles the all command
type AllCommand struct {
	fs        filesystem.FileSystem
	toolchain Toolchain
}

// NewAllCommand creates a new all command
func NewAllCommand(fs filesystem.FileSystem, toolchain Toolchain) *cobra.Command {
	cmd := &AllCommand{fs: fs, toolchain: toolchain}

	return &cobra.Command{
		Use:     "all",
		Aliases: []string{"a"},
		Short:   "Bundle every library of the workspace",
		Args:    cobra.NoArgs,
		RunE:    cmd.Run,
	}
}

// Run executes the all command
func (c *AllCommand) Run(cmd *cobra.Command, args []string) error {
	cfg, ws, err := loadWorkspace(c.fs, cmd)
	if err != nil {
		return err
	}

	names := ws.Libraries()
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No libraries found in workspace")
		return nil
	}

	return bundleLibraries(cmd, c.fs, c.toolchain, cfg, ws, names)
}
