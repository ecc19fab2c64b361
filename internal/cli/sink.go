package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/novotea/nx-lib-bundle/internal/orchestrator"
	"github.com/novotea/nx-lib-bundle/internal/tui"
)

// consoleSink logs progress and prints the warnings of a library in one
// block once the library is complete or failed.
type consoleSink struct {
	mu       sync.Mutex
	w        io.Writer
	logger   *log.Logger
	warnings map[string][]string
}

func newConsoleSink(w io.Writer, verbose bool) *consoleSink {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "nx-lib-bundle",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	return &consoleSink{
		w:        w,
		logger:   logger,
		warnings: make(map[string][]string),
	}
}

func (s *consoleSink) Message(library string, stage orchestrator.Stage, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch stage {
	case orchestrator.StageNotStarted:
		s.logger.Info(tui.HeaderStyle.Render(library))
	case orchestrator.StageFailed:
		s.logger.Error(text, "library", library)
		s.flush(library)
	case orchestrator.StageComplete:
		s.logger.Info(text, "library", library)
		s.flush(library)
	default:
		s.logger.Debug(text, "library", library, "stage", stage.String())
	}
}

func (s *consoleSink) Warning(library string, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings[library] = append(s.warnings[library], text)
}

func (s *consoleSink) flush(library string) {
	warnings := s.warnings[library]
	if len(warnings) == 0 {
		return
	}
	delete(s.warnings, library)

	fmt.Fprintln(s.w, tui.WarningStyle.Render(fmt.Sprintf("%d warning(s) for %s:", len(warnings), library)))
	for _, w := range warnings {
		fmt.Fprintln(s.w, tui.WarningStyle.Render("  "+w))
	}
}
