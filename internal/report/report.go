// Package report renders compiler diagnostics for the terminal: each error
// with its resolved file:line:column location, the offending source line,
// and the include trace that led there.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/folio-dev/folio/internal/compile"
	"github.com/folio-dev/folio/internal/vfs"
)

// SourceLookup resolves diagnostic spans back to loaded sources. Satisfied
// by the vfs cache.
type SourceLookup interface {
	SourceByID(id vfs.SourceID) *vfs.Source
}

// Printer writes diagnostic reports.
type Printer struct {
	out io.Writer

	errorStyle    lipgloss.Style
	helpStyle     lipgloss.Style
	locationStyle lipgloss.Style
	gutterStyle   lipgloss.Style
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out:           out,
		errorStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		helpStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		locationStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		gutterStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Print writes every diagnostic with its trace.
func (p *Printer) Print(lookup SourceLookup, diags []compile.Diagnostic) {
	for _, diag := range diags {
		p.emit(lookup, p.errorStyle.Render("error"), diag.Message, diag.Span)
		for _, point := range diag.Trace {
			p.emit(lookup, p.helpStyle.Render("help"), point.Message, point.Span)
		}
	}
}

// PrintError writes a single application-level error not tied to a source.
func (p *Printer) PrintError(msg string) {
	fmt.Fprintf(p.out, "%s: %s\n", p.errorStyle.Render("error"), msg)
}

func (p *Printer) emit(lookup SourceLookup, header, message string, span compile.Span) {
	fmt.Fprintf(p.out, "%s: %s\n", header, message)

	src := lookup.SourceByID(span.Source)
	if src == nil {
		return
	}

	line := src.LineOf(span.Start)
	column := src.ColumnOf(span.Start)
	location := fmt.Sprintf("%s:%d:%d", src.Path(), line+1, column+1)
	fmt.Fprintf(p.out, "  %s %s\n", p.gutterStyle.Render("┌─"), p.locationStyle.Render(location))

	text := src.Line(line)
	number := fmt.Sprintf("%d", line+1)
	fmt.Fprintf(p.out, "%s %s\n", p.gutterStyle.Render(pad(number)+" │"), text)

	// Underline the span within its first line.
	start, end := src.LineRange(line)
	from := span.Start - start
	to := span.End - start
	if to > end-start {
		to = end - start
	}
	if to > from {
		marker := strings.Repeat(" ", columnWidth(text[:from])) + strings.Repeat("^", max(1, columnWidth(text[from:to])))
		fmt.Fprintf(p.out, "%s %s\n", p.gutterStyle.Render(pad("")+" │"), marker)
	}
}

func pad(s string) string {
	for len(s) < 4 {
		s = " " + s
	}
	return s
}

func columnWidth(s string) int {
	return len([]rune(s))
}
