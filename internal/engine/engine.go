// Package engine provides a minimal reference implementation of the
// compile.Compiler boundary. It stands in for a full document compiler:
// it reads the main source through the workspace, follows #include and
// #image directives so the dependency tracker sees the whole file tree,
// splits pages on #pagebreak, and reports unreadable references as
// structured diagnostics with a trace back through the include chain.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/folio-dev/folio/internal/compile"
	"github.com/folio-dev/folio/internal/vfs"
)

// Page dimensions in points (A4 portrait).
const (
	pageWidth  = 595.0
	pageHeight = 842.0
)

// Engine compiles documents in the reference directive language. It keeps a
// memoized layout per include target, evicted by age through the Evict hook.
type Engine struct {
	mu    sync.Mutex
	cycle int
	memo  map[string]memoEntry
}

// memoEntry is one memoized include layout. deps pins the content of every
// file the layout was computed from; the entry is served only while all of
// them still match, so an edit anywhere in the subtree invalidates it.
type memoEntry struct {
	lines    []string
	deps     []memoDep
	lastUsed int
}

type memoDep struct {
	path string
	// raw deps are binary assets, validated through File instead of Resolve.
	raw    bool
	digest uint64
}

var _ compile.Compiler = (*Engine)(nil)

// New creates an empty engine.
func New() *Engine {
	return &Engine{memo: make(map[string]memoEntry)}
}

// Compile lays out the main source into frames, or returns diagnostics.
func (e *Engine) Compile(ctx context.Context, ws compile.Workspace, main vfs.SourceID) (*compile.Document, []compile.Diagnostic) {
	e.mu.Lock()
	e.cycle++
	e.mu.Unlock()

	c := &compilation{engine: e, ws: ws}
	src := ws.Source(main)
	if src == nil {
		return nil, []compile.Diagnostic{{
			Message: "main source is not loaded",
			Span:    compile.Span{Source: vfs.DetachedID},
		}}
	}

	lines, _ := c.layout(src, nil)
	if len(c.diags) > 0 {
		return nil, c.diags
	}

	frames := paginate(lines)
	return &compile.Document{Frames: frames}, nil
}

// Evict drops memoized layouts that have not been used within the last
// maxAge compilation cycles.
func (e *Engine) Evict(maxAge int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for key, entry := range e.memo {
		if e.cycle-entry.lastUsed > maxAge {
			delete(e.memo, key)
		}
	}
}

// lookup serves a memoized include layout if every file it was computed from
// still has the same content. Validation resolves each dependency through
// the workspace, so a served layout keeps its whole subtree in the cycle's
// dependency set.
func (e *Engine) lookup(ws compile.Workspace, key string) ([]string, []memoDep, bool) {
	e.mu.Lock()
	entry, ok := e.memo[key]
	e.mu.Unlock()
	if !ok {
		return nil, nil, false
	}

	for _, dep := range entry.deps {
		if dep.raw {
			data, err := ws.File(dep.path)
			if err != nil || xxhash.Sum64(data) != dep.digest {
				return nil, nil, false
			}
			continue
		}
		id, err := ws.Resolve(dep.path)
		if err != nil {
			return nil, nil, false
		}
		if xxhash.Sum64String(ws.Source(id).Text()) != dep.digest {
			return nil, nil, false
		}
	}

	e.mu.Lock()
	entry.lastUsed = e.cycle
	e.memo[key] = entry
	e.mu.Unlock()
	return entry.lines, entry.deps, true
}

func (e *Engine) store(key string, lines []string, deps []memoDep) {
	e.mu.Lock()
	e.memo[key] = memoEntry{lines: lines, deps: deps, lastUsed: e.cycle}
	e.mu.Unlock()
}

type compilation struct {
	engine *Engine
	ws     compile.Workspace
	diags  []compile.Diagnostic
}

// layout expands a source into its flat line sequence, following includes.
// trace carries the include chain for diagnostics; the returned deps pin the
// content of every file the layout consulted.
func (c *compilation) layout(src *vfs.Source, trace []compile.TracePoint) ([]string, []memoDep) {
	var lines []string
	deps := []memoDep{{path: src.Path(), digest: xxhash.Sum64String(src.Text())}}
	offset := 0

	for _, line := range strings.Split(src.Text(), "\n") {
		span := compile.Span{Source: src.ID(), Start: offset, End: offset + len(line)}
		offset += len(line) + 1

		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#include "):
			target, ok := directiveArg(trimmed, "#include ")
			if !ok {
				c.report("malformed #include directive", span, trace)
				continue
			}
			subLines, subDeps := c.include(src, target, span, trace)
			lines = append(lines, subLines...)
			deps = append(deps, subDeps...)

		case strings.HasPrefix(trimmed, "#image "):
			target, ok := directiveArg(trimmed, "#image ")
			if !ok {
				c.report("malformed #image directive", span, trace)
				continue
			}
			resolved := resolveRelative(src.Path(), target)
			data, err := c.ws.File(resolved)
			if err != nil {
				c.report(err.Error(), span, trace)
				continue
			}
			deps = append(deps, memoDep{path: resolved, raw: true, digest: xxhash.Sum64(data)})
			lines = append(lines, trimmed)

		default:
			lines = append(lines, line)
		}
	}
	return lines, deps
}

func (c *compilation) include(from *vfs.Source, target string, span compile.Span, trace []compile.TracePoint) ([]string, []memoDep) {
	resolved := resolveRelative(from.Path(), target)

	if lines, deps, ok := c.engine.lookup(c.ws, resolved); ok {
		return lines, deps
	}

	id, err := c.ws.Resolve(resolved)
	if err != nil {
		c.report(err.Error(), span, trace)
		return nil, nil
	}

	point := compile.TracePoint{
		Message: fmt.Sprintf("included from %s", from.Path()),
		Span:    span,
	}
	sub := c.ws.Source(id)
	before := len(c.diags)
	lines, deps := c.layout(sub, append(trace, point))

	// A subtree that reported diagnostics must be re-walked next cycle so
	// the diagnostics are reproduced.
	if len(c.diags) == before {
		c.engine.store(resolved, lines, deps)
	}
	return lines, deps
}

func (c *compilation) report(message string, span compile.Span, trace []compile.TracePoint) {
	// Innermost frame first, mirroring a call stack.
	reversed := make([]compile.TracePoint, len(trace))
	for i, point := range trace {
		reversed[len(trace)-1-i] = point
	}
	c.diags = append(c.diags, compile.Diagnostic{Message: message, Span: span, Trace: reversed})
}

func directiveArg(line, prefix string) (string, bool) {
	arg := strings.TrimSpace(strings.TrimPrefix(line, prefix))
	if len(arg) < 2 || arg[0] != '"' || arg[len(arg)-1] != '"' {
		return "", false
	}
	return arg[1 : len(arg)-1], true
}

func resolveRelative(from, target string) string {
	if filepath.IsAbs(target) {
		return target
	}
	return filepath.Join(filepath.Dir(from), target)
}

// paginate splits the laid-out lines on #pagebreak directives. An empty
// document still yields one empty page.
func paginate(lines []string) []compile.Frame {
	var frames []compile.Frame
	var page []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "#pagebreak" {
			frames = append(frames, newFrame(page))
			page = nil
			continue
		}
		page = append(page, line)
	}
	frames = append(frames, newFrame(page))
	return frames
}
