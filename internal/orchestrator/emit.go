package orchestrator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"

	"github.com/novotea/nx-lib-bundle/internal/filesystem"
	"github.com/novotea/nx-lib-bundle/internal/models"
	"github.com/novotea/nx-lib-bundle/internal/sourcemap"
)

// Emitter writes files below a package directory. Missing directories are
// created and existing files are overwritten.
type Emitter struct {
	fs  filesystem.FileSystem
	dir string
}

// NewEmitter creates an Emitter for dir.
func NewEmitter(fs filesystem.FileSystem, dir string) *Emitter {
	return &Emitter{fs: fs, dir: dir}
}

// Path returns the absolute path of a package-relative file name.
func (e *Emitter) Path(name string) string {
	return filepath.Join(e.dir, filepath.FromSlash(name))
}

// Emit writes content to the package-relative file name.
func (e *Emitter) Emit(name string, content []byte) error {
	file := e.Path(name)

	if err := e.fs.MkdirAll(filepath.Dir(file), filesystem.DirMode); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}

	if err := e.fs.WriteFile(file, content, filesystem.FileMode); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	return nil
}

// packageFile is one file of the package layout.
type packageFile struct {
	Name    string
	Content []byte
}

// packageFiles lays out both artifacts, the typings and package.json:
//
//	bundles/<name>.umd.js(.map), bundles/<name>.umd.min.js(.map)
//	fesm2015/<name>.js(.map)
//	<typings relative to the source root>
//	package.json
func packageFiles(lib *models.Library, legacy, modern *models.BuildArtifact, manifest *models.PackageManifest) ([]packageFile, error) {
	var files []packageFile

	add := func(dir string, chunk *models.Chunk) error {
		mapName := chunk.FileName + ".map"
		data, err := chunk.Map.Marshal()
		if err != nil {
			return fmt.Errorf("failed to encode source map %s: %w", mapName, err)
		}
		files = append(files,
			packageFile{Name: path.Join(dir, chunk.FileName), Content: []byte(chunk.Code + sourcemap.ReferenceComment(mapName))},
			packageFile{Name: path.Join(dir, mapName), Content: data},
		)
		return nil
	}

	if err := add("bundles", &legacy.Chunk); err != nil {
		return nil, err
	}
	if legacy.Minified != nil {
		if err := add("bundles", legacy.Minified); err != nil {
			return nil, err
		}
	}
	if err := add("fesm2015", &modern.Chunk); err != nil {
		return nil, err
	}

	for _, asset := range legacy.Typings {
		if !filepath.IsLocal(filepath.FromSlash(asset.FileName)) {
			return nil, fmt.Errorf("declaration %s of %s is outside the source root", asset.FileName, lib.ImportName)
		}
		files = append(files, packageFile{Name: asset.FileName, Content: asset.Source})
	}

	data, err := encodeManifest(manifest)
	if err != nil {
		return nil, err
	}
	files = append(files, packageFile{Name: "package.json", Content: data})

	return files, nil
}

// encodeManifest pretty-prints package.json without escaping version ranges
// such as ">=1.0.0".
func encodeManifest(manifest *models.PackageManifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(manifest); err != nil {
		return nil, fmt.Errorf("failed to encode package.json: %w", err)
	}
	return buf.Bytes(), nil
}
