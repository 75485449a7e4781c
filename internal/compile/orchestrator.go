package compile

import (
	"context"
	"image"

	"github.com/folio-dev/folio/internal/fonts"
	"github.com/folio-dev/folio/internal/logging"
	"github.com/folio-dev/folio/internal/vfs"
)

// Orchestrator runs recompilation cycles. It exclusively owns the cache:
// cycles are strictly sequential, so each Reset happens before the next
// compile touches any file.
type Orchestrator struct {
	cache       *vfs.Cache
	book        *fonts.Book
	compiler    Compiler
	rasterizer  Rasterizer
	scale       float64
	evictionAge int
	logger      logging.Logger
}

// Options configures an Orchestrator.
type Options struct {
	Cache       *vfs.Cache
	Book        *fonts.Book
	Compiler    Compiler
	Rasterizer  Rasterizer
	Scale       float64
	EvictionAge int
	Logger      logging.Logger
}

// NewOrchestrator wires a recompile orchestrator.
func NewOrchestrator(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Orchestrator{
		cache:       opts.Cache,
		book:        opts.Book,
		compiler:    opts.Compiler,
		rasterizer:  opts.Rasterizer,
		scale:       opts.Scale,
		evictionAge: opts.EvictionAge,
		logger:      logger.WithComponent("compile"),
	}
}

// Result is the outcome of one cycle: rendered pages on success, diagnostics
// otherwise. Exactly one of the two is populated.
type Result struct {
	Pages       []*image.RGBA
	Diagnostics []Diagnostic
}

// OK reports whether the cycle produced pages.
func (r Result) OK() bool {
	return len(r.Diagnostics) == 0
}

// Cache exposes the orchestrator's cache for dependency queries between
// cycles. Callers must not load through it concurrently with RunOnce.
func (o *Orchestrator) Cache() *vfs.Cache {
	return o.cache
}

// RunOnce performs one full recompilation of the input file. A failure to
// read the input surfaces as a diagnostic, never as a crash; compiler errors
// come back as diagnostics by construction.
func (o *Orchestrator) RunOnce(ctx context.Context, input string) Result {
	o.logger.Info(ctx, "compiling", "input", input)
	o.cache.Reset()

	main, err := o.cache.GetOrLoadSource(input)
	if err != nil {
		o.logger.Error(ctx, err, "failed to load input")
		return Result{Diagnostics: []Diagnostic{{
			Message: err.Error(),
			Span:    Span{Source: vfs.DetachedID},
		}}}
	}

	ws := NewWorkspace(o.cache, o.book)
	doc, diags := o.compiler.Compile(ctx, ws, main)

	// Bounded eviction of compiler memoization after every cycle.
	defer o.compiler.Evict(o.evictionAge)

	if len(diags) > 0 {
		o.logger.Info(ctx, "compiled with errors", "errors", len(diags))
		return Result{Diagnostics: diags}
	}

	pages := make([]*image.RGBA, len(doc.Frames))
	for i, frame := range doc.Frames {
		pages[i] = o.rasterizer.Render(frame, o.scale)
	}
	o.logger.Info(ctx, "compiled successfully", "pages", len(pages))
	return Result{Pages: pages}
}
