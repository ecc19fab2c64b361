package models

import "fmt"

// Classification is the dependency section a package was declared in.
type Classification string

const (
	// ClassificationRuntime is declared under "dependencies"
	ClassificationRuntime Classification = "runtime"

	// ClassificationDevelopment is declared under "devDependencies"
	ClassificationDevelopment Classification = "development"

	// ClassificationPeer is declared under "peerDependencies"
	ClassificationPeer Classification = "peer"
)

// ClassificationOrder is the order in which package.json sections are applied.
// Later classifications overwrite earlier ones for the same package name.
var ClassificationOrder = []Classification{
	ClassificationPeer,
	ClassificationDevelopment,
	ClassificationRuntime,
}

// IsValid checks if the classification is one of the known sections
func (c Classification) IsValid() bool {
	switch c {
	case ClassificationRuntime, ClassificationDevelopment, ClassificationPeer:
		return true
	default:
		return false
	}
}

// ManifestField returns the package.json field holding this classification.
func (c Classification) ManifestField() string {
	switch c {
	case ClassificationRuntime:
		return "dependencies"
	case ClassificationDevelopment:
		return "devDependencies"
	case ClassificationPeer:
		return "peerDependencies"
	default:
		return ""
	}
}

// String returns the string representation of Classification
func (c Classification) String() string {
	return string(c)
}

// ParseClassification converts a package.json field name to a Classification.
func ParseClassification(field string) (Classification, error) {
	for _, c := range ClassificationOrder {
		if c.ManifestField() == field {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown dependency section: %s", field)
}

// ClassifiedDependency is a dependency index entry.
type ClassifiedDependency struct {
	Name           string
	Classification Classification
	Version        string
}
