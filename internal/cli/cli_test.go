package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/novotea/nx-lib-bundle/internal/bundler"
	"github.com/novotea/nx-lib-bundle/internal/config"
	"github.com/novotea/nx-lib-bundle/internal/filesystem"
	"github.com/novotea/nx-lib-bundle/internal/models"
	"github.com/novotea/nx-lib-bundle/internal/orchestrator"
	"github.com/novotea/nx-lib-bundle/internal/tui"
	"github.com/novotea/nx-lib-bundle/internal/workspace"
	"github.com/stretchr/testify/require"
)

const testWorkspaceRoot = "/test-workspace"

type testEnv struct {
	fs       *filesystem.MockFileSystem
	compiler *bundler.MockCompiler
	minifier *bundler.MockMinifier
	cfg      *config.Config
	ws       *workspace.Config
}

func newTestEnv(t *testing.T, libraries ...string) *testEnv {
	t.Helper()

	wb := workspace.NewWorkspaceBuilder(testWorkspaceRoot)
	wb.AddDependency(models.ClassificationRuntime, "lodash", "4.17.21")
	for _, name := range libraries {
		wb.AddLibrary(name)
	}
	fs := wb.Build()

	env := &testEnv{
		fs:       fs,
		compiler: bundler.NewMockCompiler(),
		minifier: bundler.NewMockMinifier(),
	}

	for _, name := range libraries {
		lib := models.NewLibrary(name, "@acme/"+name, testWorkspaceRoot+"/libs/"+name, testWorkspaceRoot+"/libs/"+name+"/src")
		for _, target := range []models.Target{models.TargetLegacy, models.TargetModern} {
			env.compiler.SetOutput(name, target, bundler.NewChunkOutput(lib, "index.js", "code", []string{"src/index.ts"}, "lodash"))
		}
	}

	return env
}

func (e *testEnv) toolchain(fs filesystem.FileSystem, cfg *config.Config, ws *workspace.Config) (bundler.Compiler, bundler.Minifier) {
	e.cfg = cfg
	e.ws = ws
	return e.compiler, e.minifier
}

func (e *testEnv) run(args ...string) (string, string, error) {
	cmd := NewRootCommand(e.fs, e.toolchain)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestBundle_WritesPackage(t *testing.T) {
	env := newTestEnv(t, "core", "utils")

	stdout, _, err := env.run("bundle", "core")
	require.NoError(t, err)
	require.Contains(t, stdout, "@acme/core -> /test-workspace/dist/@acme/core")

	data, err := env.fs.ReadFile("/test-workspace/dist/@acme/core/package.json")
	require.NoError(t, err)

	var pkg models.PackageManifest
	require.NoError(t, json.Unmarshal(data, &pkg))
	require.Equal(t, "@acme/core", pkg.Name)
	require.Equal(t, map[string]string{"lodash": "4.17.21"}, pkg.Dependencies)

	require.Empty(t, env.fs.Files("/test-workspace/dist/@acme/utils"))
}

func TestBundle_Alias(t *testing.T) {
	env := newTestEnv(t, "core")

	_, _, err := env.run("b", "core", "-o", "packages")
	require.NoError(t, err)
	require.True(t, env.fs.Exists("/test-workspace/packages/@acme/core/package.json"))
}

func TestBundle_CwdFlag(t *testing.T) {
	env := newTestEnv(t, "core")
	env.fs.SetCurrentDir("/")

	_, _, err := env.run("bundle", "core", "--cwd", "/test-workspace/libs/core")
	require.NoError(t, err)
	require.True(t, env.fs.Exists("/test-workspace/dist/@acme/core/package.json"))
}

func TestBundle_PassesFlagsToOrchestrator(t *testing.T) {
	env := newTestEnv(t, "core")

	_, _, err := env.run("bundle", "core", "--concurrent", "--keep-going", "--tsc", "tsc")
	require.NoError(t, err)
	require.True(t, env.cfg.Concurrent)
	require.True(t, env.cfg.KeepGoing)
	require.Equal(t, []string{"tsc"}, env.cfg.Tsc)
	require.Equal(t, testWorkspaceRoot, env.ws.RootDir())
	require.Len(t, env.compiler.Calls(), 2)
}

func TestDefaultToolchain_UsesWorkspaceVersion(t *testing.T) {
	env := newTestEnv(t, "core")
	ws, err := workspace.Resolve(env.fs, testWorkspaceRoot)
	require.NoError(t, err)

	compiler, minifier := DefaultToolchain(env.fs, &config.Config{Tsc: []string{"tsc"}}, ws)

	esbuild, ok := compiler.(*bundler.EsbuildCompiler)
	require.True(t, ok)
	require.Equal(t, "1.2.0", esbuild.Version)
	require.NotNil(t, esbuild.Declarations)
	require.NotNil(t, esbuild.Lowerer)
	require.IsType(t, &bundler.EsbuildMinifier{}, minifier)
}

func TestBundle_UnknownLibrary(t *testing.T) {
	env := newTestEnv(t, "core")

	_, _, err := env.run("bundle", "missing")
	require.ErrorIs(t, err, orchestrator.ErrUnknownLibrary)
}

func TestBundle_NoWorkspace(t *testing.T) {
	env := newTestEnv(t, "core")

	_, _, err := env.run("bundle", "core", "--cwd", "/elsewhere")
	require.ErrorIs(t, err, workspace.ErrWorkspaceNotFound)
}

func TestBundle_NoArgsNonInteractive(t *testing.T) {
	env := newTestEnv(t, "core")

	cmd := &BundleCommand{
		fs:          env.fs,
		toolchain:   env.toolchain,
		interactive: func() bool { return false },
	}

	root := NewRootCommand(env.fs, env.toolchain)
	require.NoError(t, root.ParseFlags(nil))

	err := cmd.Run(root, nil)
	require.ErrorContains(t, err, "no libraries given")
	require.Empty(t, env.compiler.Calls())
}

func TestBundle_NoArgsUsesPicker(t *testing.T) {
	env := newTestEnv(t, "core", "utils")

	var offered []tui.LibraryOption
	cmd := &BundleCommand{
		fs:          env.fs,
		toolchain:   env.toolchain,
		interactive: func() bool { return true },
		pick: func(options []tui.LibraryOption) ([]string, error) {
			offered = options
			return []string{"utils"}, nil
		},
	}

	root := NewRootCommand(env.fs, env.toolchain)
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	require.NoError(t, root.ParseFlags(nil))

	require.NoError(t, cmd.Run(root, nil))
	require.Equal(t, []tui.LibraryOption{
		{Name: "core", ImportName: "@acme/core"},
		{Name: "utils", ImportName: "@acme/utils"},
	}, offered)
	require.True(t, env.fs.Exists("/test-workspace/dist/@acme/utils/package.json"))
	require.False(t, env.fs.Exists("/test-workspace/dist/@acme/core/package.json"))
}

func TestBundle_PickerAborted(t *testing.T) {
	env := newTestEnv(t, "core")

	cmd := &BundleCommand{
		fs:          env.fs,
		toolchain:   env.toolchain,
		interactive: func() bool { return true },
		pick:        func([]tui.LibraryOption) ([]string, error) { return nil, nil },
	}

	root := NewRootCommand(env.fs, env.toolchain)
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	require.NoError(t, root.ParseFlags(nil))

	require.NoError(t, cmd.Run(root, nil))
	require.Contains(t, stdout.String(), "No libraries selected")
	require.Empty(t, env.compiler.Calls())
}

func TestAll_BundlesEveryLibrary(t *testing.T) {
	env := newTestEnv(t, "core", "utils")

	stdout, _, err := env.run("all")
	require.NoError(t, err)
	require.Contains(t, stdout, "@acme/core")
	require.Contains(t, stdout, "@acme/utils")

	require.True(t, env.fs.Exists("/test-workspace/dist/@acme/core/package.json"))
	require.True(t, env.fs.Exists("/test-workspace/dist/@acme/utils/package.json"))
}

func TestAll_StopsOnFailureUnlessKeepGoing(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		utilsDone bool
	}{
		{"abort", []string{"all"}, false},
		{"keep going", []string{"all", "--keep-going"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "core", "utils")
			env.compiler.SetError("core", models.TargetLegacy, errors.New("syntax error"))

			_, stderr, err := env.run(tt.args...)
			require.Error(t, err)
			require.Contains(t, err.Error(), "bundling failed")
			require.Contains(t, stderr, "syntax error")

			require.False(t, env.fs.Exists("/test-workspace/dist/@acme/core/package.json"))
			require.Equal(t, tt.utilsDone, env.fs.Exists("/test-workspace/dist/@acme/utils/package.json"))
		})
	}
}

func TestAll_PrintsWarningsAfterLibrary(t *testing.T) {
	env := newTestEnv(t, "core")
	lib := models.NewLibrary("core", "@acme/core", testWorkspaceRoot+"/libs/core", testWorkspaceRoot+"/libs/core/src")
	out := bundler.NewChunkOutput(lib, "index.js", "code", []string{"src/index.ts"})
	out.Warnings = []string{"unused variable x"}
	env.compiler.SetOutput("core", models.TargetModern, out)

	stdout, stderr, err := env.run("all")
	require.NoError(t, err)
	require.Contains(t, stderr, "1 warning(s) for core:")
	require.Contains(t, stderr, "modern: unused variable x")
	require.Contains(t, stdout, "(1 warning(s))")
}

func TestList(t *testing.T) {
	env := newTestEnv(t, "core", "utils")

	stdout, _, err := env.run("ls")
	require.NoError(t, err)
	require.Contains(t, stdout, "@acme@1.2.0")
	require.Contains(t, stdout, "@acme/core libs/core")
	require.Contains(t, stdout, "@acme/utils libs/utils")
	require.Empty(t, env.compiler.Calls())
}
