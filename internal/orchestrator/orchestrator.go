// Package orchestrator turns one workspace library into a publishable
// package: a legacy UMD pass, a modern ESM pass, a package.json assembled
// from the workspace dependency index, and the files of the package layout.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/novotea/nx-lib-bundle/internal/bundler"
	"github.com/novotea/nx-lib-bundle/internal/filesystem"
	"github.com/novotea/nx-lib-bundle/internal/models"
	"github.com/novotea/nx-lib-bundle/internal/workspace"
	"golang.org/x/sync/errgroup"
)

// DependencyLookup classifies an external import against the workspace.
type DependencyLookup func(name string) (models.ClassifiedDependency, bool)

// Diagnostics is what bundling one library reports back to the caller.
type Diagnostics struct {
	Library string

	// Warnings are prefixed with the pass they came from ("legacy: ", "modern: ").
	Warnings []string

	// Files lists the written paths relative to the output root.
	Files []string
}

// Orchestrator bundles libraries of one resolved workspace.
type Orchestrator struct {
	ws         *workspace.Config
	fs         filesystem.FileSystem
	compiler   bundler.Compiler
	minifier   bundler.Minifier
	lookup     DependencyLookup
	sink       Sink
	outputRoot string
	concurrent bool
	keepGoing  bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSink sets the progress sink.
func WithSink(sink Sink) Option {
	return func(o *Orchestrator) {
		o.sink = sink
	}
}

// WithDependencyLookup replaces the workspace dependency index lookup.
func WithDependencyLookup(lookup DependencyLookup) Option {
	return func(o *Orchestrator) {
		o.lookup = lookup
	}
}

// WithConcurrentPasses runs the legacy and modern passes at the same time.
func WithConcurrentPasses(enabled bool) Option {
	return func(o *Orchestrator) {
		o.concurrent = enabled
	}
}

// WithKeepGoing makes BundleAll continue with the next library after a failure.
func WithKeepGoing(enabled bool) Option {
	return func(o *Orchestrator) {
		o.keepGoing = enabled
	}
}

// New creates an Orchestrator writing below outputRoot. A relative
// outputRoot is taken relative to the workspace root.
func New(ws *workspace.Config, fs filesystem.FileSystem, compiler bundler.Compiler, minifier bundler.Minifier, outputRoot string, options ...Option) *Orchestrator {
	if !filepath.IsAbs(outputRoot) {
		outputRoot = filepath.Join(ws.RootDir(), outputRoot)
	}

	o := &Orchestrator{
		ws:         ws,
		fs:         fs,
		compiler:   compiler,
		minifier:   minifier,
		lookup:     ws.Lookup,
		sink:       NopSink{},
		outputRoot: outputRoot,
	}

	for _, option := range options {
		option(o)
	}

	return o
}

// OutputDir returns the package directory of a library: <outputRoot>/<scope>/<name>.
func (o *Orchestrator) OutputDir(library string) string {
	return filepath.Join(o.outputRoot, o.ws.Scope(), library)
}

// BundleAll bundles the named libraries in order. By default the first
// failure stops the batch; with WithKeepGoing every library is attempted
// and the failures are joined.
func (o *Orchestrator) BundleAll(ctx context.Context, names []string) ([]Diagnostics, error) {
	var results []Diagnostics
	var errs []error

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		diag, err := o.Bundle(ctx, name)
		results = append(results, diag)
		if err != nil {
			if !o.keepGoing {
				return results, err
			}
			errs = append(errs, err)
		}
	}

	return results, errors.Join(errs...)
}

// Bundle builds both passes of a library and writes its package. Nothing is
// written unless both passes and the manifest succeed.
func (o *Orchestrator) Bundle(ctx context.Context, name string) (Diagnostics, error) {
	diag := Diagnostics{Library: name}

	lib, err := o.ws.Library(name)
	if err != nil {
		return diag, fmt.Errorf("%w: %s", ErrUnknownLibrary, name)
	}

	r := &run{o: o, lib: lib, diag: &diag}
	r.message("Starting")

	legacy, modern, err := r.buildPasses(ctx)
	if err != nil {
		return diag, err
	}

	manifest, err := r.assembleManifest(legacy)
	if err != nil {
		return diag, r.fail(StageModernDone, err)
	}

	files, err := packageFiles(lib, legacy, modern, manifest)
	if err != nil {
		return diag, r.fail(StageModernDone, err)
	}
	r.advance(StageManifestEmitted, "Assembled package.json")

	emitter := NewEmitter(o.fs, o.OutputDir(name))
	for _, f := range files {
		if err := emitter.Emit(f.Name, f.Content); err != nil {
			return diag, r.fail(StageManifestEmitted, err)
		}

		rel, err := filepath.Rel(o.outputRoot, emitter.Path(f.Name))
		if err != nil {
			rel = emitter.Path(f.Name)
		}
		diag.Files = append(diag.Files, rel)
		r.message("Writing " + rel)
	}

	r.advance(StageComplete, "Done")
	return diag, nil
}

// run holds the state of bundling one library.
type run struct {
	o    *Orchestrator
	lib  *models.Library
	diag *Diagnostics

	mu    sync.Mutex
	stage Stage
}

func (r *run) message(text string) {
	r.mu.Lock()
	stage := r.stage
	r.mu.Unlock()
	r.o.sink.Message(r.lib.Name, stage, text)
}

func (r *run) advance(stage Stage, text string) {
	r.mu.Lock()
	r.stage = stage
	r.mu.Unlock()
	r.o.sink.Message(r.lib.Name, stage, text)
}

func (r *run) warn(pass models.Target, warnings []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, w := range warnings {
		text := fmt.Sprintf("%s: %s", pass, w)
		r.diag.Warnings = append(r.diag.Warnings, text)
		r.o.sink.Warning(r.lib.Name, text)
	}
}

// fail moves the run to StageFailed and records the stage the error happened in.
func (r *run) fail(stage Stage, err error) error {
	r.mu.Lock()
	r.stage = StageFailed
	r.mu.Unlock()
	r.o.sink.Message(r.lib.Name, StageFailed, err.Error())

	var libErr *LibraryError
	if errors.As(err, &libErr) {
		return err
	}
	return &LibraryError{Library: r.lib.Name, Stage: stage, Err: err}
}

func (r *run) buildPasses(ctx context.Context) (*models.BuildArtifact, *models.BuildArtifact, error) {
	legacyPass := models.NewLegacyPass(r.lib)
	modernPass := models.NewModernPass(r.lib)

	if !r.o.concurrent {
		legacy, err := r.build(ctx, legacyPass)
		if err != nil {
			return nil, nil, err
		}
		modern, err := r.build(ctx, modernPass)
		if err != nil {
			return nil, nil, err
		}
		return legacy, modern, nil
	}

	var legacy, modern *models.BuildArtifact
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		legacy, err = r.build(gctx, legacyPass)
		return err
	})
	g.Go(func() error {
		var err error
		modern, err = r.build(gctx, modernPass)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	r.advance(StageModernDone, "Both bundles done")
	return legacy, modern, nil
}

// build runs one pass: compile, require a single chunk, rewrite the source
// map to logical paths and minify when the pass asks for it.
func (r *run) build(ctx context.Context, pass models.BuildPass) (*models.BuildArtifact, error) {
	legacy := pass.Target == models.TargetLegacy
	stage := building(legacy)

	r.advance(stage, fmt.Sprintf("Bundling for target %s and format %s", pass.Language, pass.Format))

	out, err := r.o.compiler.Compile(ctx, pass)
	if err != nil {
		return nil, r.fail(stage, &CompilationError{Library: r.lib.ImportName, Pass: pass.Target, Err: err})
	}
	r.warn(pass.Target, out.Warnings)

	switch n := len(out.Chunks); {
	case n == 0:
		return nil, r.fail(stage, &CompilationError{Library: r.lib.ImportName, Pass: pass.Target, Err: ErrNoChunks})
	case n > 1:
		return nil, r.fail(stage, &MultipleChunksError{Library: r.lib.ImportName, Pass: pass.Target, Count: n})
	}

	chunk := out.Chunks[0]
	if chunk.Map == nil {
		return nil, r.fail(stage, fmt.Errorf("%s pass of %s produced no source map", pass.Target, r.lib.ImportName))
	}

	base := bundleBaseName(r.lib, pass)
	chunk.FileName = base + ".js"
	chunk.Map.File = chunk.FileName
	if err := chunk.Map.RewriteSources(r.lib.ImportName, r.lib.RootPath, out.BaseDir); err != nil {
		return nil, r.fail(stage, err)
	}

	artifact := &models.BuildArtifact{
		Pass:     pass,
		Chunk:    chunk,
		Imports:  chunk.Imports,
		Warnings: out.Warnings,
	}
	if pass.Declarations {
		artifact.Typings = out.Assets
	}

	if pass.Minify {
		r.message("Minifying " + r.lib.ImportName)

		minFile := base + ".min.js"
		min, err := r.o.minifier.Minify(ctx, chunk.Code, chunk.Map.Override(minFile))
		if err != nil {
			return nil, r.fail(stage, &CompilationError{Library: r.lib.ImportName, Pass: pass.Target, Err: err})
		}
		if min.Map == nil {
			return nil, r.fail(stage, fmt.Errorf("minifier returned no source map for %s", minFile))
		}

		artifact.Minified = &models.Chunk{
			FileName: minFile,
			Code:     min.Code,
			Map:      min.Map,
			Imports:  chunk.Imports,
		}
	}

	r.advance(done(legacy), fmt.Sprintf("Generated %s", chunk.FileName))
	return artifact, nil
}

// bundleBaseName is "<name>.umd" for the legacy pass and "<name>" for the modern one.
func bundleBaseName(lib *models.Library, pass models.BuildPass) string {
	if pass.Format == models.FormatUMD {
		return lib.Name + ".umd"
	}
	return lib.Name
}
