package bundler

import (
	"context"
	"fmt"
	"sync"

	"github.com/novotea/nx-lib-bundle/internal/models"
	"github.com/novotea/nx-lib-bundle/internal/sourcemap"
)

// MockCompiler returns canned outputs per library and target.
type MockCompiler struct {
	mu      sync.Mutex
	outputs map[string]*Output
	errs    map[string]error
	calls   []models.BuildPass
}

// NewMockCompiler creates an empty MockCompiler
func NewMockCompiler() *MockCompiler {
	return &MockCompiler{
		outputs: make(map[string]*Output),
		errs:    make(map[string]error),
	}
}

func mockKey(library string, target models.Target) string {
	return library + "@" + string(target)
}

// SetOutput registers the output returned for a library and target
func (m *MockCompiler) SetOutput(library string, target models.Target, out *Output) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputs[mockKey(library, target)] = out
}

// SetError makes compilation of a library and target fail
func (m *MockCompiler) SetError(library string, target models.Target, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[mockKey(library, target)] = err
}

func (m *MockCompiler) Compile(ctx context.Context, pass models.BuildPass) (*Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, pass)
	key := mockKey(pass.Library.Name, pass.Target)

	if err, ok := m.errs[key]; ok {
		return nil, err
	}

	out, ok := m.outputs[key]
	if !ok {
		return nil, fmt.Errorf("no output registered for %s", key)
	}

	return cloneOutput(out), nil
}

// Calls returns every pass compiled so far
func (m *MockCompiler) Calls() []models.BuildPass {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.BuildPass(nil), m.calls...)
}

func cloneOutput(out *Output) *Output {
	c := *out
	c.Chunks = make([]models.Chunk, len(out.Chunks))
	for i, chunk := range out.Chunks {
		c.Chunks[i] = chunk
		c.Chunks[i].Imports = append([]string(nil), chunk.Imports...)
		if chunk.Map != nil {
			c.Chunks[i].Map = chunk.Map.Clone()
		}
	}
	c.Assets = append([]models.Asset(nil), out.Assets...)
	c.Warnings = append([]string(nil), out.Warnings...)
	return &c
}

// NewChunkOutput builds a single-chunk output whose map lists the given
// sources (absolute, or relative to the library root).
func NewChunkOutput(lib *models.Library, fileName, code string, sources []string, imports ...string) *Output {
	contents := make([]*string, len(sources))
	for i := range sources {
		content := "// " + sources[i]
		contents[i] = &content
	}

	return &Output{
		BaseDir: lib.RootPath,
		Chunks: []models.Chunk{{
			FileName: fileName,
			Code:     code,
			Imports:  imports,
			Map: &sourcemap.Map{
				Version:        3,
				File:           fileName,
				Sources:        append([]string(nil), sources...),
				SourcesContent: contents,
				Names:          []string{},
				Mappings:       "AAAA",
			},
		}},
	}
}

// MockMinifier prefixes code with "min:" and records every override it receives.
type MockMinifier struct {
	mu        sync.Mutex
	overrides []sourcemap.Map
	Err       error
}

// NewMockMinifier creates a MockMinifier
func NewMockMinifier() *MockMinifier {
	return &MockMinifier{}
}

func (m *MockMinifier) Minify(ctx context.Context, code string, override sourcemap.Map) (*MinifyOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.overrides = append(m.overrides, override)
	if m.Err != nil {
		return nil, m.Err
	}

	rebuilt := override.Clone()
	rebuilt.Mappings = "MIN"
	return &MinifyOutput{Code: "min:" + code, Map: rebuilt}, nil
}

// Overrides returns the source maps passed to Minify
func (m *MockMinifier) Overrides() []sourcemap.Map {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sourcemap.Map(nil), m.overrides...)
}
