package compile

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-dev/folio/internal/fonts"
	"github.com/folio-dev/folio/internal/vfs"
)

type stubFrame struct {
	w, h float64
}

func (f stubFrame) Size() (float64, float64) {
	return f.w, f.h
}

// stubCompiler records its invocations and returns canned results.
type stubCompiler struct {
	frames   []Frame
	diags    []Diagnostic
	compiles int
	evicts   []int
}

func (s *stubCompiler) Compile(ctx context.Context, ws Workspace, main vfs.SourceID) (*Document, []Diagnostic) {
	s.compiles++
	if len(s.diags) > 0 {
		return nil, s.diags
	}
	return &Document{Frames: s.frames}, nil
}

func (s *stubCompiler) Evict(maxAge int) {
	s.evicts = append(s.evicts, maxAge)
}

type stubRasterizer struct{}

func (stubRasterizer) Render(frame Frame, scale float64) *image.RGBA {
	w, h := frame.Size()
	return image.NewRGBA(image.Rect(0, 0, int(w*scale), int(h*scale)))
}

func newTestOrchestrator(t *testing.T, compiler Compiler) (*Orchestrator, string) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "main.doc")
	require.NoError(t, os.WriteFile(input, []byte("content"), 0644))

	orch := NewOrchestrator(Options{
		Cache:       vfs.NewCache(),
		Book:        fonts.NewSearcher(nil).Book(),
		Compiler:    compiler,
		Rasterizer:  stubRasterizer{},
		Scale:       2.0,
		EvictionAge: 30,
	})
	return orch, input
}

func TestRunOnceRendersPages(t *testing.T) {
	compiler := &stubCompiler{frames: []Frame{stubFrame{100, 200}, stubFrame{100, 200}}}
	orch, input := newTestOrchestrator(t, compiler)

	result := orch.RunOnce(context.Background(), input)

	require.True(t, result.OK())
	require.Len(t, result.Pages, 2)
	assert.Equal(t, 200, result.Pages[0].Bounds().Dx())
	assert.Equal(t, 400, result.Pages[0].Bounds().Dy())
}

func TestRunOnceMissingInputIsDiagnosticNotCrash(t *testing.T) {
	compiler := &stubCompiler{}
	orch, input := newTestOrchestrator(t, compiler)
	missing := filepath.Join(filepath.Dir(input), "ghost.doc")

	result := orch.RunOnce(context.Background(), missing)

	assert.False(t, result.OK())
	require.Len(t, result.Diagnostics, 1)
	assert.Contains(t, result.Diagnostics[0].Message, "ghost.doc")
	assert.Equal(t, vfs.DetachedID, result.Diagnostics[0].Span.Source)
	assert.Zero(t, compiler.compiles, "compiler must not run without a main source")
}

func TestRunOnceReturnsCompilerDiagnostics(t *testing.T) {
	compiler := &stubCompiler{diags: []Diagnostic{{Message: "unexpected token"}}}
	orch, input := newTestOrchestrator(t, compiler)

	result := orch.RunOnce(context.Background(), input)

	assert.False(t, result.OK())
	assert.Empty(t, result.Pages)
	assert.Equal(t, "unexpected token", result.Diagnostics[0].Message)
}

func TestRunOnceResetsCacheEachCycle(t *testing.T) {
	compiler := &stubCompiler{frames: []Frame{stubFrame{10, 10}}}
	orch, input := newTestOrchestrator(t, compiler)

	for i := 0; i < 3; i++ {
		result := orch.RunOnce(context.Background(), input)
		require.True(t, result.OK())
	}

	// Without the reset the store would accumulate one source per run.
	assert.Equal(t, 1, orch.Cache().SourceCount())
}

func TestRunOnceEvictsAfterEveryCycle(t *testing.T) {
	compiler := &stubCompiler{frames: []Frame{stubFrame{10, 10}}}
	orch, input := newTestOrchestrator(t, compiler)

	orch.RunOnce(context.Background(), input)
	orch.RunOnce(context.Background(), input)

	assert.Equal(t, []int{30, 30}, compiler.evicts)
}

func TestWorkspaceReadsThroughCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "asset.bin")
	require.NoError(t, os.WriteFile(path, []byte("bytes"), 0644))

	cache := vfs.NewCache()
	ws := NewWorkspace(cache, fonts.NewSearcher(nil).Book())

	data, err := ws.File(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes"), data)
	assert.True(t, cache.Touched(path))

	id, err := ws.Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, "bytes", ws.Source(id).Text())
}
