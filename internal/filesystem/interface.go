package filesystem

import (
	"io/fs"
)

// FileSystem is the file access used by workspace resolution and emission.
type FileSystem interface {
	// File operations
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error

	// Path operations
	Stat(path string) (fs.FileInfo, error)
	Exists(path string) bool
	Getwd() (string, error)

	// File walking
	WalkDir(root string, fn fs.WalkDirFunc) error
}

const (
	// FileMode is used for every emitted file.
	FileMode fs.FileMode = 0644

	// DirMode is used for every directory created during emission.
	DirMode fs.FileMode = 0755
)
