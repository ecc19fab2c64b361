package models

import "path/filepath"

// ProjectType is the projectType declared for a project in workspace.json.
type ProjectType string

const (
	ProjectTypeLibrary     ProjectType = "library"
	ProjectTypeApplication ProjectType = "application"
)

// Library describes a buildable library project in the workspace.
type Library struct {
	// Name is the project identifier from workspace.json
	Name string

	// ImportName is the scope-qualified package name, e.g. "@acme/core"
	ImportName string

	// RootPath is the absolute path to the library root (libs/<name> by default)
	RootPath string

	// SourceRoot is the absolute path to the library sources (<root>/src by default)
	SourceRoot string

	// EntryFile is the absolute path to the entry module
	EntryFile string

	// TSConfig is the absolute path to the compiler configuration
	TSConfig string
}

// NewLibrary creates a Library using the default file names inside the given roots.
func NewLibrary(name, importName, rootPath, sourceRoot string) *Library {
	return &Library{
		Name:       name,
		ImportName: importName,
		RootPath:   rootPath,
		SourceRoot: sourceRoot,
		EntryFile:  filepath.Join(sourceRoot, DefaultEntryFile),
		TSConfig:   filepath.Join(rootPath, DefaultTSConfig),
	}
}

const (
	// DefaultEntryFile is the entry module looked up in the source root.
	DefaultEntryFile = "index.ts"

	// DefaultTSConfig is the compiler configuration looked up in the library root.
	DefaultTSConfig = "tsconfig.lib.json"
)
