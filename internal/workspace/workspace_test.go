package workspace

import (
	"errors"
	iofs "io/fs"
	"testing"

	"github.com/novotea/nx-lib-bundle/internal/filesystem"
	"github.com/novotea/nx-lib-bundle/internal/models"
	"github.com/stretchr/testify/require"
)

func TestResolve_SingleLibrary(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/workspace/workspace.json", []byte(`{"projects":{"core":{"root":"libs/core","sourceRoot":"libs/core/src","projectType":"library"}}}`))
	fs.AddFile("/workspace/package.json", []byte(`{"version":"1.2.0","dependencies":{"lodash":"4.17.21"}}`))
	fs.AddFile("/workspace/nx.json", []byte(`{"npmScope":"acme"}`))

	cfg, err := Resolve(fs, "/workspace")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if cfg.RootDir() != "/workspace" {
		t.Fatalf("unexpected root: %s", cfg.RootDir())
	}
	if cfg.Scope() != "@acme" {
		t.Fatalf("unexpected scope: %s", cfg.Scope())
	}
	if cfg.Version() != "1.2.0" {
		t.Fatalf("unexpected version: %s", cfg.Version())
	}
	if got := cfg.Libraries(); len(got) != 1 || got[0] != "core" {
		t.Fatalf("unexpected libraries: %v", got)
	}

	lib, err := cfg.Library("core")
	require.NoError(t, err)
	require.Equal(t, "@acme/core", lib.ImportName)
	require.Equal(t, "/workspace/libs/core", lib.RootPath)
	require.Equal(t, "/workspace/libs/core/src", lib.SourceRoot)
	require.Equal(t, "/workspace/libs/core/src/index.ts", lib.EntryFile)
	require.Equal(t, "/workspace/libs/core/tsconfig.lib.json", lib.TSConfig)

	dep, ok := cfg.Lookup("lodash")
	require.True(t, ok)
	require.Equal(t, models.ClassificationRuntime, dep.Classification)
	require.Equal(t, "4.17.21", dep.Version)
}

func TestResolve_ClassificationPrecedence(t *testing.T) {
	wb := NewWorkspaceBuilder("/workspace")
	wb.AddDependency(models.ClassificationPeer, "rxjs", "^7.0.0")
	wb.AddDependency(models.ClassificationDevelopment, "rxjs", "7.8.1")
	wb.AddDependency(models.ClassificationRuntime, "rxjs", "7.8.2")

	wb.AddDependency(models.ClassificationPeer, "tslib", "^2.0.0")
	wb.AddDependency(models.ClassificationDevelopment, "tslib", "2.6.2")

	wb.AddDependency(models.ClassificationPeer, "zone.js", "^0.14.0")
	wb.AddDependency(models.ClassificationRuntime, "zone.js", "0.14.4")

	wb.AddDependency(models.ClassificationPeer, "@angular/core", "^17.0.0")

	cfg, err := Resolve(wb.Build(), "/workspace")
	require.NoError(t, err)

	tests := []struct {
		name           string
		classification models.Classification
		version        string
	}{
		{"rxjs", models.ClassificationRuntime, "7.8.2"},
		{"tslib", models.ClassificationDevelopment, "2.6.2"},
		{"zone.js", models.ClassificationRuntime, "0.14.4"},
		{"@angular/core", models.ClassificationPeer, "^17.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dep, ok := cfg.Lookup(tt.name)
			require.True(t, ok)
			require.Equal(t, tt.classification, dep.Classification)
			require.Equal(t, tt.version, dep.Version)
		})
	}
}

func TestResolve_SyntheticSelfDependencies(t *testing.T) {
	wb := NewWorkspaceBuilder("/workspace")
	wb.AddLibrary("core").AddLibrary("utils").AddApplication("web")
	wb.AddDependency(models.ClassificationPeer, "@acme/utils", "0.0.1")

	cfg, err := Resolve(wb.Build(), "/workspace")
	require.NoError(t, err)

	require.Equal(t, []string{"core", "utils"}, cfg.Libraries())

	for _, name := range []string{"@acme/core", "@acme/utils"} {
		dep, ok := cfg.Lookup(name)
		require.True(t, ok, "expected synthetic entry for %s", name)
		require.Equal(t, models.ClassificationRuntime, dep.Classification)
		require.Equal(t, "1.2.0", dep.Version)
	}

	_, ok := cfg.Lookup("@acme/web")
	require.False(t, ok, "applications are not published")
	require.False(t, cfg.IsLibrary("web"))
}

func TestResolve_ProjectJSONReference(t *testing.T) {
	wb := NewWorkspaceBuilder("/workspace")
	fs := wb.Build()
	fs.AddFile("/workspace/workspace.json", []byte(`{"projects":{"core":"packages/core"}}`))
	fs.AddFile("/workspace/packages/core/project.json", []byte(`{"projectType":"library","sourceRoot":"packages/core/lib"}`))

	cfg, err := Resolve(fs, "/workspace")
	require.NoError(t, err)

	lib, err := cfg.Library("core")
	require.NoError(t, err)
	require.Equal(t, "/workspace/packages/core", lib.RootPath)
	require.Equal(t, "/workspace/packages/core/lib/index.ts", lib.EntryFile)
}

func TestResolve_SkipsProjectsWithoutProjectJSON(t *testing.T) {
	wb := NewWorkspaceBuilder("/workspace")
	fs := wb.Build()
	fs.AddFile("/workspace/workspace.json", []byte(`{"projects":{"core":"libs/core","web":"apps/web"}}`))
	fs.AddFile("/workspace/libs/core/project.json", []byte(`{"projectType":"library"}`))

	cfg, err := Resolve(fs, "/workspace")
	require.NoError(t, err)
	require.Equal(t, []string{"core"}, cfg.Libraries())

	_, err = cfg.Library("web")
	require.ErrorIs(t, err, iofs.ErrNotExist)
	require.ErrorContains(t, err, "project web")
}

func TestResolve_MalformedProjectJSON(t *testing.T) {
	wb := NewWorkspaceBuilder("/workspace")
	fs := wb.Build()
	fs.AddFile("/workspace/workspace.json", []byte(`{"projects":{"core":"libs/core"}}`))
	fs.AddFile("/workspace/libs/core/project.json", []byte(`{"projectType":`))

	_, err := Resolve(fs, "/workspace")
	require.ErrorContains(t, err, "failed to parse project.json")
}

func TestResolve_WalksUpFromNestedDirectory(t *testing.T) {
	wb := NewWorkspaceBuilder("/workspace")
	wb.AddLibrary("core")
	wb.AddSource("core", "lib/deep/nested/file.ts", "export {};")
	fs := wb.Build()

	cfg, err := Resolve(fs, "/workspace/libs/core/src/lib/deep/nested")
	require.NoError(t, err)
	require.Equal(t, "/workspace", cfg.RootDir())
}

func TestResolve_RequiresAllMarkers(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	// inner directory only has package.json and nx.json
	fs.AddFile("/outer/inner/package.json", []byte(`{"version":"9.9.9"}`))
	fs.AddFile("/outer/inner/nx.json", []byte(`{"npmScope":"inner"}`))
	fs.AddFile("/outer/workspace.json", []byte(`{"projects":{}}`))
	fs.AddFile("/outer/package.json", []byte(`{"version":"1.0.0"}`))
	fs.AddFile("/outer/nx.json", []byte(`{"npmScope":"outer"}`))

	cfg, err := Resolve(fs, "/outer/inner")
	require.NoError(t, err)
	require.Equal(t, "/outer", cfg.RootDir())
	require.Equal(t, "@outer", cfg.Scope())
}

func TestResolve_WorkspaceNotFound(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/somewhere/deep/package.json", []byte(`{}`))

	_, err := Resolve(fs, "/somewhere/deep")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrWorkspaceNotFound) {
		t.Fatalf("unexpected error: %v", err)
	}

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "/somewhere/deep", notFound.StartDir)
}

func TestResolve_Idempotent(t *testing.T) {
	wb := NewWorkspaceBuilder("/workspace")
	wb.AddLibrary("core").AddLibrary("utils")
	wb.AddDependency(models.ClassificationRuntime, "lodash", "4.17.21")
	fs := wb.Build()

	first, err := Resolve(fs, "/workspace")
	require.NoError(t, err)
	second, err := Resolve(fs, "/workspace/libs")
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestResolve_InvalidMetadata(t *testing.T) {
	tests := []struct {
		name    string
		pkg     string
		nx      string
		wantErr string
	}{
		{"missing scope", `{"version":"1.0.0"}`, `{}`, "nx.json has no npmScope"},
		{"missing version", `{}`, `{"npmScope":"acme"}`, "package.json has no version"},
		{"invalid version", `{"version":"one"}`, `{"npmScope":"acme"}`, `invalid workspace version "one"`},
		{"malformed package.json", `{`, `{"npmScope":"acme"}`, "failed to parse package.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := filesystem.NewMockFileSystem()
			fs.AddFile("/workspace/workspace.json", []byte(`{"projects":{}}`))
			fs.AddFile("/workspace/package.json", []byte(tt.pkg))
			fs.AddFile("/workspace/nx.json", []byte(tt.nx))

			_, err := Resolve(fs, "/workspace")
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestResolve_ScopeWithAtSign(t *testing.T) {
	cfg, err := Resolve(NewWorkspaceBuilder("/workspace").SetScope("@acme").Build(), "/workspace")
	require.NoError(t, err)
	require.Equal(t, "@acme", cfg.Scope())
	require.Equal(t, "@acme/core", cfg.ImportName("core"))
}

func TestConfig_LibraryReturnsCopy(t *testing.T) {
	cfg, err := Resolve(NewWorkspaceBuilder("/workspace").AddLibrary("core").Build(), "/workspace")
	require.NoError(t, err)

	lib, err := cfg.Library("core")
	require.NoError(t, err)
	lib.EntryFile = "/tampered"

	again, err := cfg.Library("core")
	require.NoError(t, err)
	require.Equal(t, "/workspace/libs/core/src/index.ts", again.EntryFile)

	_, err = cfg.Library("missing")
	require.EqualError(t, err, "library missing not found in workspace")
}
