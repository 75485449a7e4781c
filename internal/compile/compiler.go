// Package compile owns one recompilation cycle: it resets the file cache,
// resolves the main source, hands the compiler a workspace to read files and
// fonts through, and turns the outcome into either rasterized pages or a
// diagnostic report. The document compiler and the page rasterizer are
// external collaborators reached only through the interfaces defined here.
package compile

import (
	"context"
	"image"

	"github.com/folio-dev/folio/internal/fonts"
	"github.com/folio-dev/folio/internal/vfs"
)

// Span is a byte range inside a loaded source. The id is only valid for the
// compilation cycle that produced the diagnostic.
type Span struct {
	Source vfs.SourceID
	Start  int
	End    int
}

// TracePoint is one secondary location on a diagnostic, forming a
// stacktrace-like chain back to the use site.
type TracePoint struct {
	Message string
	Span    Span
}

// Diagnostic is one structured compiler error.
type Diagnostic struct {
	Message string
	Span    Span
	Trace   []TracePoint
}

// Frame is one laid-out page of a compiled document.
type Frame interface {
	// Size returns the page dimensions in points.
	Size() (width, height float64)
}

// Document is a successfully compiled sequence of pages.
type Document struct {
	Frames []Frame
}

// Workspace is the compiler's only means of reaching the filesystem. All
// reads go through the slot cache, so each file is read at most once per
// cycle and touched paths are recorded for the dependency tracker.
type Workspace interface {
	// Resolve loads the file at path as a source and returns its id.
	Resolve(path string) (vfs.SourceID, error)
	// Source returns a previously resolved source by id.
	Source(id vfs.SourceID) *vfs.Source
	// File returns the raw bytes at path, for images and other assets.
	File(path string) ([]byte, error)
	// Book enumerates the available font faces.
	Book() *fonts.Book
	// Font returns the raw data of the face at the book index.
	Font(index int) ([]byte, error)
}

// Compiler turns a main source plus a workspace into a document or a list of
// diagnostics. Diagnostics are data, not errors: the process never treats a
// failed compile as fatal.
type Compiler interface {
	Compile(ctx context.Context, ws Workspace, main vfs.SourceID) (*Document, []Diagnostic)

	// Evict trims the compiler's internal memoization to entries younger
	// than maxAge cycles. Maintenance only; called after every cycle so a
	// long watch session does not grow memory without bound.
	Evict(maxAge int)
}

// Rasterizer renders one frame into premultiplied RGBA pixels at the given
// pixel-per-point scale.
type Rasterizer interface {
	Render(frame Frame, scale float64) *image.RGBA
}
