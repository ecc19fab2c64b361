// Package sourcemap models version 3 source maps and rewrites their source
// paths to stable logical locations inside a published package.
package sourcemap

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// Map is a version 3 source map.
type Map struct {
	Version        int       `json:"version"`
	File           string    `json:"file,omitempty"`
	SourceRoot     string    `json:"sourceRoot,omitempty"`
	Sources        []string  `json:"sources"`
	SourcesContent []*string `json:"sourcesContent,omitempty"`
	Names          []string  `json:"names"`
	Mappings       string    `json:"mappings"`
}

// Parse decodes a source map.
func Parse(data []byte) (*Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse source map: %w", err)
	}
	if m.Version != 3 {
		return nil, fmt.Errorf("unsupported source map version %d", m.Version)
	}
	return &m, nil
}

// Marshal encodes the map as compact JSON.
func (m *Map) Marshal() ([]byte, error) {
	if m.Sources == nil {
		m.Sources = []string{}
	}
	if m.Names == nil {
		m.Names = []string{}
	}
	return json.Marshal(m)
}

// Clone returns a deep copy of the map.
func (m *Map) Clone() *Map {
	c := *m
	c.Sources = append([]string(nil), m.Sources...)
	c.Names = append([]string(nil), m.Names...)
	if m.SourcesContent != nil {
		c.SourcesContent = make([]*string, len(m.SourcesContent))
		for i, s := range m.SourcesContent {
			if s != nil {
				v := *s
				c.SourcesContent[i] = &v
			}
		}
	}
	return &c
}

// Override builds the explicit map handed to a minifier: the mapping table,
// names, sources, sources content, version and file of m, nothing else.
func (m *Map) Override(file string) Map {
	c := m.Clone()
	return Map{
		Version:        c.Version,
		File:           file,
		Sources:        c.Sources,
		SourcesContent: c.SourcesContent,
		Names:          c.Names,
		Mappings:       c.Mappings,
	}
}

// DataURL returns the map as a base64 data URL suitable for an inline
// sourceMappingURL comment.
func (m *Map) DataURL() (string, error) {
	data, err := m.Marshal()
	if err != nil {
		return "", err
	}
	return "data:application/json;charset=utf-8;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// RewriteSources rewrites every source to "<importName>/<path relative to
// libraryRoot>". Relative sources are resolved against baseDir first.
// Sources already carrying the importName prefix are left unchanged, so
// rewriting is idempotent.
func (m *Map) RewriteSources(importName, libraryRoot, baseDir string) error {
	prefix := importName + "/"

	for i, src := range m.Sources {
		if strings.HasPrefix(src, prefix) {
			continue
		}

		abs := filepath.FromSlash(src)
		if m.SourceRoot != "" && !filepath.IsAbs(abs) {
			abs = filepath.Join(filepath.FromSlash(m.SourceRoot), abs)
		}
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(baseDir, abs)
		}

		rel, err := filepath.Rel(libraryRoot, abs)
		if err != nil {
			return fmt.Errorf("failed to relativize source %s: %w", src, err)
		}

		m.Sources[i] = prefix + filepath.ToSlash(rel)
	}

	m.SourceRoot = ""
	return nil
}

// HasPrefix reports whether every source starts with "<importName>/".
func (m *Map) HasPrefix(importName string) bool {
	prefix := importName + "/"
	for _, src := range m.Sources {
		if !strings.HasPrefix(src, prefix) {
			return false
		}
	}
	return true
}

// ReferenceComment returns the trailing comment linking a bundle to its map file.
func ReferenceComment(mapFileName string) string {
	return "\n//# sourceMappingURL=" + mapFileName
}
