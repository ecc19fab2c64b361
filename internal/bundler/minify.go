package bundler

import (
	"context"
	"fmt"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/novotea/nx-lib-bundle/internal/sourcemap"
)

var _ Minifier = (*EsbuildMinifier)(nil)

// EsbuildMinifier minifies with esbuild's transform API. The override map is
// attached to the input as an inline source map, which esbuild chains into
// the map it generates.
type EsbuildMinifier struct {
	Target api.Target
}

// NewEsbuildMinifier creates a minifier that never emits syntax newer than es5.
func NewEsbuildMinifier() *EsbuildMinifier {
	return &EsbuildMinifier{Target: api.ES5}
}

func (m *EsbuildMinifier) Minify(ctx context.Context, code string, override sourcemap.Map) (*MinifyOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	url, err := override.DataURL()
	if err != nil {
		return nil, fmt.Errorf("failed to encode source map override: %w", err)
	}

	result := api.Transform(code+sourcemap.ReferenceComment(url), api.TransformOptions{
		Loader:            api.LoaderJS,
		Sourcefile:        override.File,
		Sourcemap:         api.SourceMapExternal,
		SourcesContent:    api.SourcesContentInclude,
		Target:            m.Target,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		LogLevel:          api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return nil, &BuildError{Tool: "minify", Messages: formatMessages(result.Errors)}
	}

	out := &MinifyOutput{Code: string(result.Code)}
	if len(result.Map) > 0 {
		out.Map, err = sourcemap.Parse(result.Map)
		if err != nil {
			return nil, err
		}
		out.Map.File = override.File
	}

	return out, nil
}
