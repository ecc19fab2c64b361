package workspace

import (
	"path/filepath"

	"github.com/novotea/nx-lib-bundle/internal/filesystem"
)

// findDirUp returns the first directory at or above startDir that contains
// every one of the given regular files.
func findDirUp(fs filesystem.FileSystem, startDir string, filenames ...string) (string, bool) {
	dir := filepath.Clean(startDir)

	for {
		if hasFiles(fs, dir, filenames...) {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func hasFiles(fs filesystem.FileSystem, dir string, filenames ...string) bool {
	for _, name := range filenames {
		info, err := fs.Stat(filepath.Join(dir, name))
		if err != nil || info.IsDir() {
			return false
		}
	}
	return true
}
