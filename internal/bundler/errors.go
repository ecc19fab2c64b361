package bundler

import (
	"fmt"
	"strings"
)

// BuildError carries the error diagnostics of a failed compilation.
type BuildError struct {
	Tool     string
	Messages []string
}

func (e *BuildError) Error() string {
	if len(e.Messages) == 1 {
		return fmt.Sprintf("%s: %s", e.Tool, e.Messages[0])
	}
	return fmt.Sprintf("%s: %d errors:\n  %s", e.Tool, len(e.Messages), strings.Join(e.Messages, "\n  "))
}
