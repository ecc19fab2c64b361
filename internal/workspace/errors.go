package workspace

import (
	"errors"
	"fmt"
)

// ErrWorkspaceNotFound is matched by every NotFoundError.
var ErrWorkspaceNotFound = errors.New("no valid nx workspace found")

// NotFoundError is returned when no directory between StartDir and the
// filesystem root contains all workspace marker files.
type NotFoundError struct {
	StartDir string
	Markers  []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: no directory above %s contains %v", ErrWorkspaceNotFound, e.StartDir, e.Markers)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrWorkspaceNotFound
}
