package bundler

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/novotea/nx-lib-bundle/internal/filesystem"
	"github.com/novotea/nx-lib-bundle/internal/models"
)

var (
	_ DeclarationEmitter = (*TscDeclarationEmitter)(nil)
	_ Lowerer            = (*TscLowerer)(nil)
)

// DefaultTscCommand runs the workspace's own TypeScript compiler.
var DefaultTscCommand = []string{"npx", "--no-install", "tsc"}

// tscCommand runs tsc inside a library root.
type tscCommand []string

func newTscCommand(command []string) tscCommand {
	if len(command) == 0 {
		return DefaultTscCommand
	}
	return command
}

// run executes tsc with the given arguments appended to the command and
// returns its combined output.
func (c tscCommand) run(ctx context.Context, lib *models.Library, args ...string) (string, error) {
	all := append(append([]string{}, c[1:]...), args...)

	cmd := exec.CommandContext(ctx, c[0], all...)
	cmd.Dir = lib.RootPath

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	return strings.TrimSpace(out.String()), err
}

func tscFailure(output string, err error) error {
	if output != "" {
		return &BuildError{Tool: "tsc", Messages: strings.Split(output, "\n")}
	}
	return fmt.Errorf("tsc failed: %w", err)
}

// TscDeclarationEmitter runs tsc with --emitDeclarationOnly into a temporary
// directory and reads the produced .d.ts files back.
type TscDeclarationEmitter struct {
	fs      filesystem.FileSystem
	command tscCommand
}

// NewTscDeclarationEmitter creates an emitter. An empty command uses DefaultTscCommand.
func NewTscDeclarationEmitter(fs filesystem.FileSystem, command ...string) *TscDeclarationEmitter {
	return &TscDeclarationEmitter{fs: fs, command: newTscCommand(command)}
}

func (e *TscDeclarationEmitter) Emit(ctx context.Context, pass models.BuildPass) ([]models.Asset, error) {
	lib := pass.Library

	outDir, err := os.MkdirTemp("", "nx-lib-bundle-dts-")
	if err != nil {
		return nil, fmt.Errorf("failed to create declaration directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	output, err := e.command.run(ctx, lib,
		"--project", lib.TSConfig,
		"--declaration",
		"--emitDeclarationOnly",
		"--rootDir", lib.SourceRoot,
		"--outDir", outDir,
	)
	if err != nil {
		return nil, tscFailure(output, err)
	}

	return e.collect(outDir)
}

func (e *TscDeclarationEmitter) collect(outDir string) ([]models.Asset, error) {
	var assets []models.Asset

	err := e.fs.WalkDir(outDir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !strings.HasSuffix(path, ".d.ts") {
			return nil
		}

		rel, err := filepath.Rel(outDir, path)
		if err != nil {
			return err
		}

		data, err := e.fs.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read declaration %s: %w", rel, err)
		}

		assets = append(assets, models.Asset{FileName: filepath.ToSlash(rel), Source: data})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return assets, nil
}

// TscLowerer transpiles library sources with tsc to the pass language level,
// keeping ES module syntax so esbuild can still bundle the result. Each file
// carries an inline source map back to its TypeScript source.
type TscLowerer struct {
	fs      filesystem.FileSystem
	command tscCommand
}

// NewTscLowerer creates a lowerer. An empty command uses DefaultTscCommand.
func NewTscLowerer(fs filesystem.FileSystem, command ...string) *TscLowerer {
	return &TscLowerer{fs: fs, command: newTscCommand(command)}
}

// Lower writes the transpiled sources into dir. Type errors do not stop the
// emit; when the entry module was still written they come back as warnings.
func (l *TscLowerer) Lower(ctx context.Context, pass models.BuildPass, dir string) ([]string, error) {
	lib := pass.Library

	output, err := l.command.run(ctx, lib,
		"--project", lib.TSConfig,
		"--target", string(pass.Language),
		"--module", "es2015",
		"--rootDir", lib.SourceRoot,
		"--outDir", dir,
		"--inlineSourceMap",
		"--inlineSources",
		"--sourceMap", "false",
		"--declaration", "false",
		"--emitDeclarationOnly", "false",
		"--noEmit", "false",
		"--noEmitOnError", "false",
	)
	if err == nil {
		return nil, nil
	}

	entry, entryErr := LoweredEntry(lib, dir)
	if entryErr != nil || !l.fs.Exists(entry) {
		return nil, tscFailure(output, err)
	}
	if output == "" {
		return nil, nil
	}
	return strings.Split(output, "\n"), nil
}

// LoweredEntry returns where a lowerer writing into dir places the entry module.
func LoweredEntry(lib *models.Library, dir string) (string, error) {
	rel, err := filepath.Rel(lib.SourceRoot, lib.EntryFile)
	if err != nil {
		return "", fmt.Errorf("entry %s: %w", lib.EntryFile, err)
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("entry %s is outside the source root %s", lib.EntryFile, lib.SourceRoot)
	}
	return filepath.Join(dir, strings.TrimSuffix(rel, filepath.Ext(rel))+".js"), nil
}
