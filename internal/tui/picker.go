package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// LibraryOption is one entry of the library picker.
type LibraryOption struct {
	Name       string
	ImportName string
}

// PickLibraries asks the user which libraries to bundle. It returns nil
// when the user aborts.
func PickLibraries(options []LibraryOption) ([]string, error) {
	if len(options) == 0 {
		return nil, nil
	}

	opts := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		opts = append(opts, huh.NewOption(o.ImportName, o.Name))
	}

	keyMap := huh.NewDefaultKeyMap()
	keyMap.MultiSelect.Toggle.SetKeys(" ")
	keyMap.MultiSelect.Toggle.SetHelp("space", "toggle selection")
	keyMap.MultiSelect.Submit.SetKeys("enter")
	keyMap.MultiSelect.Submit.SetHelp("enter", "bundle")

	var selected []string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Options(opts...).
				Value(&selected).
				Validate(func(s []string) error {
					if len(s) == 0 {
						return errors.New("select at least one library")
					}
					return nil
				}),
		).
			Title("Library Selection").
			Description("Select the libraries to bundle."),
	).
		WithTheme(NewHuhTheme()).
		WithShowHelp(true).
		WithProgramOptions(tea.WithAltScreen()).
		WithKeyMap(keyMap)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, err
	}

	return selected, nil
}
