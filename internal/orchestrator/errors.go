package orchestrator

import (
	"errors"
	"fmt"

	"github.com/novotea/nx-lib-bundle/internal/models"
)

var (
	// ErrUnknownLibrary is returned for names that are not library projects.
	ErrUnknownLibrary = errors.New("unknown library")

	// ErrNoChunks is returned when a pass generates no code at all.
	ErrNoChunks = errors.New("compilation produced no output chunk")
)

// MultipleChunksError is returned when a pass generates more than one chunk.
// There is no policy for splitting a library across files, so none is picked.
type MultipleChunksError struct {
	Library string
	Pass    models.Target
	Count   int
}

func (e *MultipleChunksError) Error() string {
	return fmt.Sprintf("project %s has multiple chunks (%d in %s pass)", e.Library, e.Count, e.Pass)
}

// CompilationError wraps a compiler or minifier failure.
type CompilationError struct {
	Library string
	Pass    models.Target
	Err     error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("failed to build %s (%s pass): %v", e.Library, e.Pass, e.Err)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// LibraryError records the stage a library was in when bundling failed.
type LibraryError struct {
	Library string
	Stage   Stage
	Err     error
}

func (e *LibraryError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Library, e.Stage, e.Err)
}

func (e *LibraryError) Unwrap() error {
	return e.Err
}
