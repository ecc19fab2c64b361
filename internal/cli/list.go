package cli

import (
	"fmt"
	"path/filepath"

	"github.com/novotea/nx-lib-bundle/internal/filesystem"
	"github.com/novotea/nx-lib-bundle/internal/tui"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command
func NewListCommand(fs filesystem.FileSystem) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the libraries of the workspace",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ws, err := loadWorkspace(fs, cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, tui.TitleStyle.Render(fmt.Sprintf("%s@%s", ws.Scope(), ws.Version())))

			for _, name := range ws.Libraries() {
				lib, err := ws.Library(name)
				if err != nil {
					return err
				}
				root, err := filepath.Rel(ws.RootDir(), lib.RootPath)
				if err != nil {
					root = lib.RootPath
				}
				fmt.Fprintf(out, "%s %s\n", lib.ImportName, tui.DescStyle.Render(filepath.ToSlash(root)))
			}

			return nil
		},
	}
}
