package workspace

import (
	"encoding/json"
	"path/filepath"

	"github.com/novotea/nx-lib-bundle/internal/filesystem"
	"github.com/novotea/nx-lib-bundle/internal/models"
)

// WorkspaceBuilder helps create test workspaces on a mock filesystem
type WorkspaceBuilder struct {
	fs       *filesystem.MockFileSystem
	root     string
	scope    string
	version  string
	projects map[string]ProjectConfig
	deps     map[models.Classification]map[string]string
}

// ProjectConfig represents a workspace.json project entry
type ProjectConfig struct {
	Root        string `json:"root,omitempty"`
	SourceRoot  string `json:"sourceRoot,omitempty"`
	ProjectType string `json:"projectType"`
}

// NewWorkspaceBuilder creates a builder for a workspace rooted at root
func NewWorkspaceBuilder(root string) *WorkspaceBuilder {
	fs := filesystem.NewMockFileSystem()
	fs.AddDir(root)
	fs.SetCurrentDir(root)

	return &WorkspaceBuilder{
		fs:       fs,
		root:     root,
		scope:    "acme",
		version:  "1.2.0",
		projects: make(map[string]ProjectConfig),
		deps:     make(map[models.Classification]map[string]string),
	}
}

// SetScope sets the npmScope written to nx.json
func (wb *WorkspaceBuilder) SetScope(scope string) *WorkspaceBuilder {
	wb.scope = scope
	return wb
}

// SetVersion sets the root package.json version
func (wb *WorkspaceBuilder) SetVersion(version string) *WorkspaceBuilder {
	wb.version = version
	return wb
}

// AddLibrary adds a library project at libs/<name> with a tsconfig.lib.json
func (wb *WorkspaceBuilder) AddLibrary(name string) *WorkspaceBuilder {
	wb.projects[name] = ProjectConfig{
		Root:        "libs/" + name,
		SourceRoot:  "libs/" + name + "/src",
		ProjectType: string(models.ProjectTypeLibrary),
	}
	wb.fs.AddFile(filepath.Join(wb.root, "libs", name, models.DefaultTSConfig), []byte("{}\n"))
	return wb
}

// AddApplication adds an application project at apps/<name>
func (wb *WorkspaceBuilder) AddApplication(name string) *WorkspaceBuilder {
	wb.projects[name] = ProjectConfig{
		Root:        "apps/" + name,
		ProjectType: string(models.ProjectTypeApplication),
	}
	return wb
}

// AddProject adds a raw project entry
func (wb *WorkspaceBuilder) AddProject(name string, project ProjectConfig) *WorkspaceBuilder {
	wb.projects[name] = project
	return wb
}

// AddDependency declares a dependency in the root package.json section for c
func (wb *WorkspaceBuilder) AddDependency(c models.Classification, name, version string) *WorkspaceBuilder {
	if wb.deps[c] == nil {
		wb.deps[c] = make(map[string]string)
	}
	wb.deps[c][name] = version
	return wb
}

// AddSource adds a file below a library's source root
func (wb *WorkspaceBuilder) AddSource(library, path, content string) *WorkspaceBuilder {
	wb.fs.AddFile(filepath.Join(wb.root, "libs", library, "src", filepath.FromSlash(path)), []byte(content))
	return wb
}

// Build writes the marker files and returns the filesystem
func (wb *WorkspaceBuilder) Build() *filesystem.MockFileSystem {
	pkg := map[string]interface{}{
		"name":    "workspace",
		"version": wb.version,
	}
	for c, deps := range wb.deps {
		pkg[c.ManifestField()] = deps
	}

	wb.writeJSON(PackageManifestFile, pkg)
	wb.writeJSON(ToolConfigFile, map[string]interface{}{"npmScope": wb.scope})
	wb.writeJSON(ProjectRegistryFile, map[string]interface{}{
		"version":  1,
		"projects": wb.projects,
	})

	return wb.fs
}

// FileSystem returns the mock filesystem
func (wb *WorkspaceBuilder) FileSystem() *filesystem.MockFileSystem {
	return wb.fs
}

func (wb *WorkspaceBuilder) writeJSON(name string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}
	wb.fs.AddFile(filepath.Join(wb.root, name), data)
}
