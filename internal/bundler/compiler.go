// Package bundler defines the compiler, minifier and declaration emitter the
// orchestrator drives, and adapters backed by esbuild and tsc.
package bundler

import (
	"context"
	"strings"

	"github.com/novotea/nx-lib-bundle/internal/models"
	"github.com/novotea/nx-lib-bundle/internal/sourcemap"
)

// HelpersModule is the pseudo-module compilers use for injected helpers. It is
// never treated as an external import.
const HelpersModule = "\x00typescript-helpers"

// IsExternal reports whether an import specifier is left unbundled: anything
// that is not relative, not absolute and not the helpers pseudo-module.
func IsExternal(specifier string) bool {
	return !(strings.HasPrefix(specifier, ".") ||
		strings.HasPrefix(specifier, "/") ||
		specifier == HelpersModule)
}

// Output is the result of one compilation.
type Output struct {
	// Chunks holds the generated code units. The orchestrator requires exactly one.
	Chunks []models.Chunk

	// Assets holds declaration files relative to the library source root.
	Assets []models.Asset

	// Warnings holds non-fatal diagnostics.
	Warnings []string

	// BaseDir is the directory relative source map sources are resolved against.
	BaseDir string
}

// Compiler bundles a library entry point for one build pass.
type Compiler interface {
	Compile(ctx context.Context, pass models.BuildPass) (*Output, error)
}

// MinifyOutput is minified code and its rebuilt source map.
type MinifyOutput struct {
	Code string
	Map  *sourcemap.Map
}

// Minifier minifies code. The override map is used as the input source map
// verbatim so its sources survive into the result.
type Minifier interface {
	Minify(ctx context.Context, code string, override sourcemap.Map) (*MinifyOutput, error)
}

// DeclarationEmitter produces .d.ts files for a library.
type DeclarationEmitter interface {
	Emit(ctx context.Context, pass models.BuildPass) ([]models.Asset, error)
}

// Lowerer transpiles a library's sources into dir at the pass language level,
// for targets esbuild cannot lower TypeScript to on its own. It returns
// non-fatal diagnostics.
type Lowerer interface {
	Lower(ctx context.Context, pass models.BuildPass, dir string) ([]string, error)
}
