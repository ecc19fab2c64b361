package bundler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/novotea/nx-lib-bundle/internal/models"
	"github.com/novotea/nx-lib-bundle/internal/sourcemap"
)

var _ Compiler = (*EsbuildCompiler)(nil)

// EsbuildCompiler compiles and bundles TypeScript with esbuild. Declarations,
// when set, produces typings for passes that request them. es5 passes are
// first lowered by Lowerer and esbuild bundles the JavaScript it writes.
type EsbuildCompiler struct {
	Declarations DeclarationEmitter
	Lowerer      Lowerer

	// Version is stamped into the UMD wrapper comment when non-empty.
	Version string
}

// NewEsbuildCompiler creates an esbuild-backed Compiler.
func NewEsbuildCompiler(declarations DeclarationEmitter, lowerer Lowerer, version string) *EsbuildCompiler {
	return &EsbuildCompiler{Declarations: declarations, Lowerer: lowerer, Version: version}
}

func (c *EsbuildCompiler) Compile(ctx context.Context, pass models.BuildPass) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lib := pass.Library
	entry := lib.EntryFile
	var warnings []string

	if pass.Language == models.LanguageES5 {
		if c.Lowerer == nil {
			return nil, fmt.Errorf("no lowering step configured for %s output", pass.Language)
		}

		dir, err := os.MkdirTemp("", "nx-lib-bundle-lower-")
		if err != nil {
			return nil, fmt.Errorf("failed to create lowering directory: %w", err)
		}
		defer os.RemoveAll(dir)

		warnings, err = c.Lowerer.Lower(ctx, pass, dir)
		if err != nil {
			return nil, err
		}
		if entry, err = LoweredEntry(lib, dir); err != nil {
			return nil, err
		}
	}

	opts := api.BuildOptions{
		EntryPoints:    []string{entry},
		Bundle:         true,
		Write:          false,
		Metafile:       true,
		AbsWorkingDir:  lib.RootPath,
		Outdir:         lib.RootPath,
		Tsconfig:       lib.TSConfig,
		Sourcemap:      api.SourceMapExternal,
		SourcesContent: api.SourcesContentInclude,
		LogLevel:       api.LogLevelSilent,
		Plugins:        []api.Plugin{externalsPlugin()},
	}

	switch pass.Language {
	case models.LanguageES5:
		opts.Target = api.ES5
	case models.LanguageES2015:
		opts.Target = api.ES2015
	default:
		return nil, fmt.Errorf("unsupported language level %q", pass.Language)
	}

	switch pass.Format {
	case models.FormatUMD:
		opts.Format = api.FormatCommonJS
	case models.FormatESM:
		opts.Format = api.FormatESModule
	default:
		return nil, fmt.Errorf("unsupported module format %q", pass.Format)
	}

	result := api.Build(opts)
	if len(result.Errors) > 0 {
		return nil, &BuildError{Tool: "esbuild", Messages: formatMessages(result.Errors)}
	}

	meta, err := parseMetafile(result.Metafile)
	if err != nil {
		return nil, err
	}

	out := &Output{
		Warnings: append(warnings, formatMessages(result.Warnings)...),
		BaseDir:  lib.RootPath,
	}

	out.Chunks, err = collectChunks(result.OutputFiles, meta, lib.RootPath)
	if err != nil {
		return nil, err
	}

	if pass.Format == models.FormatUMD {
		for i := range out.Chunks {
			if err := wrapUMD(&out.Chunks[i], lib.ImportName, c.Version); err != nil {
				return nil, err
			}
		}
	}

	if pass.Declarations && c.Declarations != nil {
		assets, err := c.Declarations.Emit(ctx, pass)
		if err != nil {
			return nil, err
		}
		out.Assets = assets
	}

	return out, nil
}

// externalsPlugin marks every bare import specifier as external so it stays
// unresolved in the output and shows up in the metafile imports.
func externalsPlugin() api.Plugin {
	return api.Plugin{
		Name: "nx-lib-bundle-externals",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `.*`}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				if args.Kind == api.ResolveEntryPoint || !IsExternal(args.Path) {
					return api.OnResolveResult{}, nil
				}
				return api.OnResolveResult{Path: args.Path, External: true}, nil
			})
		},
	}
}

// collectChunks pairs each generated .js file with its .map and the external
// imports recorded for it in the metafile.
func collectChunks(files []api.OutputFile, meta *metafile, workDir string) ([]models.Chunk, error) {
	maps := make(map[string][]byte)
	for _, f := range files {
		if strings.HasSuffix(f.Path, ".map") {
			maps[f.Path] = f.Contents
		}
	}

	var chunks []models.Chunk
	for _, f := range files {
		if !strings.HasSuffix(f.Path, ".js") {
			continue
		}

		chunk := models.Chunk{
			FileName: filepath.Base(f.Path),
			Code:     string(f.Contents),
		}

		if data, ok := maps[f.Path+".map"]; ok {
			m, err := sourcemap.Parse(data)
			if err != nil {
				return nil, fmt.Errorf("chunk %s: %w", chunk.FileName, err)
			}
			chunk.Map = m
		}

		rel, err := filepath.Rel(workDir, f.Path)
		if err != nil {
			return nil, err
		}
		if output, ok := meta.Outputs[filepath.ToSlash(rel)]; ok {
			chunk.Imports = output.externalImports()
		}

		chunks = append(chunks, chunk)
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].FileName < chunks[j].FileName
	})

	return chunks, nil
}

func formatMessages(msgs []api.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		text := msg.Text
		if msg.PluginName != "" {
			text = fmt.Sprintf("[plugin %s] %s", msg.PluginName, text)
		}
		if loc := msg.Location; loc != nil {
			text = fmt.Sprintf("%s:%d:%d: %s", loc.File, loc.Line, loc.Column, text)
		}
		out = append(out, text)
	}
	return out
}

// metafile is the subset of esbuild's metafile JSON read after a build.
type metafile struct {
	Outputs map[string]metafileOutput `json:"outputs"`
}

type metafileOutput struct {
	Bytes      int              `json:"bytes"`
	Imports    []metafileImport `json:"imports"`
	EntryPoint string           `json:"entryPoint,omitempty"`
}

type metafileImport struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	External bool   `json:"external,omitempty"`
}

func (o metafileOutput) externalImports() []string {
	seen := make(map[string]struct{})
	var imports []string
	for _, imp := range o.Imports {
		if !imp.External {
			continue
		}
		if _, dup := seen[imp.Path]; dup {
			continue
		}
		seen[imp.Path] = struct{}{}
		imports = append(imports, imp.Path)
	}
	return imports
}

func parseMetafile(data string) (*metafile, error) {
	var meta metafile
	if data == "" {
		return &meta, nil
	}
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, fmt.Errorf("failed to parse esbuild metafile: %w", err)
	}
	return &meta, nil
}
