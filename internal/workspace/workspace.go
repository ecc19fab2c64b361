package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/novotea/nx-lib-bundle/internal/filesystem"
	"github.com/novotea/nx-lib-bundle/internal/models"
	"golang.org/x/mod/semver"
)

// Workspace marker files. A directory is a workspace root only when it
// contains all three.
const (
	ProjectRegistryFile = "workspace.json"
	PackageManifestFile = "package.json"
	ToolConfigFile      = "nx.json"

	// projectFile is read when workspace.json points a project at a directory.
	projectFile = "project.json"
)

// Markers lists the files that identify a workspace root.
var Markers = []string{ProjectRegistryFile, PackageManifestFile, ToolConfigFile}

// Config is a resolved workspace. It is read-only once Resolve returns.
type Config struct {
	rootDir      string
	scope        string
	version      string
	dependencies map[string]models.ClassifiedDependency
	libraries    map[string]*models.Library

	// skipped holds projects whose project.json does not exist.
	skipped map[string]error
}

// Resolve walks up from startDir to the first directory containing all
// workspace markers and loads its dependency index and library projects.
// startDir should be absolute; the walk ends at the filesystem root.
func Resolve(fs filesystem.FileSystem, startDir string) (*Config, error) {
	root, found := findDirUp(fs, startDir, Markers...)
	if !found {
		return nil, &NotFoundError{StartDir: startDir, Markers: Markers}
	}

	var pkg packageJSON
	if err := readJSON(fs, filepath.Join(root, PackageManifestFile), &pkg); err != nil {
		return nil, err
	}

	var nx nxJSON
	if err := readJSON(fs, filepath.Join(root, ToolConfigFile), &nx); err != nil {
		return nil, err
	}

	var registry workspaceJSON
	if err := readJSON(fs, filepath.Join(root, ProjectRegistryFile), &registry); err != nil {
		return nil, err
	}

	scope := strings.TrimPrefix(strings.TrimSpace(nx.NPMScope), "@")
	if scope == "" {
		return nil, fmt.Errorf("%s has no npmScope", ToolConfigFile)
	}

	version := strings.TrimSpace(pkg.Version)
	if version == "" {
		return nil, fmt.Errorf("%s has no version", PackageManifestFile)
	}
	if !semver.IsValid("v" + version) {
		return nil, fmt.Errorf("invalid workspace version %q in %s", version, PackageManifestFile)
	}

	cfg := &Config{
		rootDir:      root,
		scope:        "@" + scope,
		version:      version,
		dependencies: make(map[string]models.ClassifiedDependency),
		libraries:    make(map[string]*models.Library),
		skipped:      make(map[string]error),
	}

	for _, classification := range models.ClassificationOrder {
		for name, depVersion := range pkg.section(classification) {
			cfg.dependencies[name] = models.ClassifiedDependency{
				Name:           name,
				Classification: classification,
				Version:        depVersion,
			}
		}
	}

	if err := cfg.loadLibraries(fs, registry); err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadLibraries(fs filesystem.FileSystem, registry workspaceJSON) error {
	for name, raw := range registry.Projects {
		project, err := c.readProject(fs, name, raw)
		if errors.Is(err, iofs.ErrNotExist) {
			c.skipped[name] = err
			continue
		}
		if err != nil {
			return err
		}

		if models.ProjectType(project.ProjectType) != models.ProjectTypeLibrary {
			continue
		}

		root := project.Root
		if root == "" {
			root = filepath.Join("libs", name)
		}
		sourceRoot := project.SourceRoot
		if sourceRoot == "" {
			sourceRoot = filepath.Join(root, "src")
		}

		importName := c.ImportName(name)
		c.libraries[name] = models.NewLibrary(
			name,
			importName,
			filepath.Join(c.rootDir, filepath.FromSlash(root)),
			filepath.Join(c.rootDir, filepath.FromSlash(sourceRoot)),
		)

		c.dependencies[importName] = models.ClassifiedDependency{
			Name:           importName,
			Classification: models.ClassificationRuntime,
			Version:        c.version,
		}
	}

	return nil
}

// readProject decodes a workspace.json project entry, which is either an
// inline configuration or the path of a directory holding project.json.
func (c *Config) readProject(fs filesystem.FileSystem, name string, raw json.RawMessage) (projectJSON, error) {
	var dir string
	if err := json.Unmarshal(raw, &dir); err == nil {
		var project projectJSON
		if err := readJSON(fs, filepath.Join(c.rootDir, filepath.FromSlash(dir), projectFile), &project); err != nil {
			return projectJSON{}, fmt.Errorf("project %s: %w", name, err)
		}
		if project.Root == "" {
			project.Root = dir
		}
		return project, nil
	}

	var project projectJSON
	if err := json.Unmarshal(raw, &project); err != nil {
		return projectJSON{}, fmt.Errorf("failed to parse project %s in %s: %w", name, ProjectRegistryFile, err)
	}
	return project, nil
}

// RootDir returns the workspace root directory.
func (c *Config) RootDir() string {
	return c.rootDir
}

// Scope returns the publish namespace including the leading "@".
func (c *Config) Scope() string {
	return c.scope
}

// Version returns the version published for every library.
func (c *Config) Version() string {
	return c.version
}

// ImportName returns the scope-qualified package name of a project.
func (c *Config) ImportName(name string) string {
	return c.scope + "/" + name
}

// Lookup returns the classification and version of a package name.
func (c *Config) Lookup(name string) (models.ClassifiedDependency, bool) {
	dep, ok := c.dependencies[name]
	return dep, ok
}

// Dependencies returns a copy of the dependency index.
func (c *Config) Dependencies() map[string]models.ClassifiedDependency {
	deps := make(map[string]models.ClassifiedDependency, len(c.dependencies))
	for name, dep := range c.dependencies {
		deps[name] = dep
	}
	return deps
}

// Libraries returns the sorted names of all library projects.
func (c *Config) Libraries() []string {
	names := make([]string, 0, len(c.libraries))
	for name := range c.libraries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Library returns a copy of the named library's layout.
func (c *Config) Library(name string) (*models.Library, error) {
	lib, ok := c.libraries[name]
	if !ok {
		if err, skipped := c.skipped[name]; skipped {
			return nil, fmt.Errorf("library %s not found in workspace: %w", name, err)
		}
		return nil, fmt.Errorf("library %s not found in workspace", name)
	}
	copied := *lib
	return &copied, nil
}

// IsLibrary reports whether name is a library project.
func (c *Config) IsLibrary(name string) bool {
	_, ok := c.libraries[name]
	return ok
}

// packageJSON is the subset of the root package.json the resolver reads.
type packageJSON struct {
	Version          string            `json:"version"`
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}

func (p packageJSON) section(c models.Classification) map[string]string {
	switch c {
	case models.ClassificationRuntime:
		return p.Dependencies
	case models.ClassificationDevelopment:
		return p.DevDependencies
	case models.ClassificationPeer:
		return p.PeerDependencies
	default:
		return nil
	}
}

type nxJSON struct {
	NPMScope string `json:"npmScope"`
}

type workspaceJSON struct {
	Projects map[string]json.RawMessage `json:"projects"`
}

type projectJSON struct {
	Root        string `json:"root"`
	SourceRoot  string `json:"sourceRoot"`
	ProjectType string `json:"projectType"`
}

func readJSON(fs filesystem.FileSystem, path string, v interface{}) error {
	data, err := fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	return nil
}
