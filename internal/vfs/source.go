package vfs

import (
	"sort"
	"unicode/utf8"
)

// SourceID is a dense index into the cache's source store. IDs are assigned
// at insertion time and stay valid until the next Reset; they must never be
// retained across a Reset.
type SourceID int

// DetachedID marks "no source", used before the main file is resolved.
const DetachedID SourceID = -1

// Source is one decoded source file together with a precomputed line index
// for span-to-position lookups in diagnostics.
type Source struct {
	id   SourceID
	path string
	text string

	// lineStarts holds the byte offset of the first byte of each line.
	lineStarts []int
}

func newSource(id SourceID, path, text string) *Source {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Source{id: id, path: path, text: text, lineStarts: starts}
}

// ID returns the source's store index.
func (s *Source) ID() SourceID {
	return s.id
}

// Path returns the path the source was loaded from, as given by the compiler.
func (s *Source) Path() string {
	return s.path
}

// Text returns the decoded file content.
func (s *Source) Text() string {
	return s.text
}

// LineCount returns the number of lines, counting a trailing newline as
// starting an empty final line.
func (s *Source) LineCount() int {
	return len(s.lineStarts)
}

// LineOf returns the zero-based line containing the byte offset. Offsets
// beyond the text clamp to the last line.
func (s *Source) LineOf(byteOffset int) int {
	if byteOffset < 0 {
		return 0
	}
	// First line start greater than the offset; the offset's line is the one
	// before it.
	i := sort.SearchInts(s.lineStarts, byteOffset+1)
	return i - 1
}

// ColumnOf returns the zero-based rune column of the byte offset within its
// line.
func (s *Source) ColumnOf(byteOffset int) int {
	line := s.LineOf(byteOffset)
	start := s.lineStarts[line]
	if byteOffset > len(s.text) {
		byteOffset = len(s.text)
	}
	return utf8.RuneCountInString(s.text[start:byteOffset])
}

// LineRange returns the byte range [start, end) of the zero-based line,
// excluding the trailing newline.
func (s *Source) LineRange(line int) (int, int) {
	if line < 0 || line >= len(s.lineStarts) {
		return 0, 0
	}
	start := s.lineStarts[line]
	end := len(s.text)
	if line+1 < len(s.lineStarts) {
		end = s.lineStarts[line+1] - 1
	}
	return start, end
}

// Line returns the text of the zero-based line without its newline.
func (s *Source) Line(line int) string {
	start, end := s.LineRange(line)
	return s.text[start:end]
}
