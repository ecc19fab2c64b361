package models

import "fmt"

// PackageManifest is the package.json written next to the bundles.
type PackageManifest struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Main             string            `json:"main"`
	FESM2015         string            `json:"fesm2015"`
	Typings          string            `json:"typings"`
	Dependencies     map[string]string `json:"dependencies,omitempty"`
	DevDependencies  map[string]string `json:"devDependencies,omitempty"`
	PeerDependencies map[string]string `json:"peerDependencies,omitempty"`
}

// NewPackageManifest creates a manifest with the fixed entry points for a library.
func NewPackageManifest(importName, name, version string) *PackageManifest {
	return &PackageManifest{
		Name:     importName,
		Version:  version,
		Main:     fmt.Sprintf("bundles/%s.umd.js", name),
		FESM2015: fmt.Sprintf("fesm2015/%s.js", name),
		Typings:  "index.d.ts",
	}
}

// AddDependency records dep under the section matching its classification.
func (m *PackageManifest) AddDependency(dep ClassifiedDependency) error {
	var section *map[string]string

	switch dep.Classification {
	case ClassificationRuntime:
		section = &m.Dependencies
	case ClassificationDevelopment:
		section = &m.DevDependencies
	case ClassificationPeer:
		section = &m.PeerDependencies
	default:
		return fmt.Errorf("dependency %s has unknown classification %q", dep.Name, dep.Classification)
	}

	if *section == nil {
		*section = make(map[string]string)
	}
	(*section)[dep.Name] = dep.Version
	return nil
}

// Section returns the dependency map for a classification (nil when empty).
func (m *PackageManifest) Section(c Classification) map[string]string {
	switch c {
	case ClassificationRuntime:
		return m.Dependencies
	case ClassificationDevelopment:
		return m.DevDependencies
	case ClassificationPeer:
		return m.PeerDependencies
	default:
		return nil
	}
}
