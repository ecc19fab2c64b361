package models

import "github.com/novotea/nx-lib-bundle/internal/sourcemap"

// Target identifies one of the two build passes run per library.
type Target string

const (
	// TargetLegacy builds an es5 UMD bundle, minified, with typings
	TargetLegacy Target = "legacy"

	// TargetModern builds an es2015 ES module bundle
	TargetModern Target = "modern"
)

// String returns the string representation of Target
func (t Target) String() string {
	return string(t)
}

// Format is the module format of a generated chunk.
type Format string

const (
	FormatUMD Format = "umd"
	FormatESM Format = "esm"
)

// LanguageLevel is the ECMAScript version code is lowered to.
type LanguageLevel string

const (
	LanguageES5    LanguageLevel = "es5"
	LanguageES2015 LanguageLevel = "es2015"
)

// BuildPass holds the inputs of one compilation of one library.
type BuildPass struct {
	Target       Target
	Format       Format
	Language     LanguageLevel
	Minify       bool
	Declarations bool

	// Library is the library being built; EntryFile and TSConfig come from it.
	Library *Library
}

// NewLegacyPass creates the es5/UMD pass for a library.
func NewLegacyPass(lib *Library) BuildPass {
	return BuildPass{
		Target:       TargetLegacy,
		Format:       FormatUMD,
		Language:     LanguageES5,
		Minify:       true,
		Declarations: true,
		Library:      lib,
	}
}

// NewModernPass creates the es2015/ESM pass for a library.
func NewModernPass(lib *Library) BuildPass {
	return BuildPass{
		Target:   TargetModern,
		Format:   FormatESM,
		Language: LanguageES2015,
		Library:  lib,
	}
}

// Chunk is a single generated code unit with its source map.
type Chunk struct {
	FileName string
	Code     string
	Map      *sourcemap.Map

	// Imports lists the external import specifiers referenced by the chunk.
	Imports []string
}

// Asset is a non-code output such as a declaration file. FileName is
// relative to the library source root.
type Asset struct {
	FileName string
	Source   []byte
}

// BuildArtifact is the result of one build pass.
type BuildArtifact struct {
	Pass     BuildPass
	Chunk    Chunk
	Minified *Chunk
	Imports  []string
	Typings  []Asset
	Warnings []string
}
