// Package fonts discovers font files on disk and exposes them to the
// compiler as an indexed book of faces with lazily loaded data. Parsing font
// binaries is the job of an external indexing library, reached through the
// Indexer interface; the built-in fallback derives face metadata from file
// names so the tool stays usable without one.
package fonts

import (
	"fmt"
	"sort"
	"sync"
)

// Style is the slant of a face.
type Style string

const (
	StyleNormal  Style = "normal"
	StyleItalic  Style = "italic"
	StyleOblique Style = "oblique"
)

// Variant describes one face of a family.
type Variant struct {
	Style   Style
	Weight  int
	Stretch string
}

// DefaultVariant is a regular upright face.
func DefaultVariant() Variant {
	return Variant{Style: StyleNormal, Weight: 400, Stretch: "normal"}
}

// Info is the metadata for one indexed face.
type Info struct {
	Family  string
	Variant Variant

	// Path and Index locate the face inside its file; collections hold
	// several faces per file.
	Path  string
	Index int
}

// Indexer extracts face metadata from a font file. Implemented by the
// external font parsing library.
type Indexer interface {
	Index(path string, data []byte) []Info
}

// Loader reads raw font file bytes. The watch service wires this to the slot
// cache so the compiler and the book share reads.
type Loader func(path string) ([]byte, error)

// Book is the ordered collection of discovered faces. Face ids are dense
// indices assigned at discovery time and stable for the process lifetime;
// face data is loaded at most once, on first use, and kept across
// recompilation cycles.
type Book struct {
	infos []Info
	slots []*fontSlot
}

type fontSlot struct {
	once sync.Once
	data []byte
	err  error
}

// Len returns the number of faces.
func (b *Book) Len() int {
	return len(b.infos)
}

// Info returns the metadata of the face at the index, or a zero Info if the
// index is out of range.
func (b *Book) Info(index int) Info {
	if index < 0 || index >= len(b.infos) {
		return Info{}
	}
	return b.infos[index]
}

// Data returns the raw bytes of the face's file, loading them once through
// the loader on first call. A load failure is memoized like a success.
func (b *Book) Data(index int, load Loader) ([]byte, error) {
	if index < 0 || index >= len(b.slots) {
		return nil, fmt.Errorf("font face index %d out of range (%d faces)", index, len(b.slots))
	}
	sl := b.slots[index]
	sl.once.Do(func() {
		sl.data, sl.err = load(b.infos[index].Path)
	})
	return sl.data, sl.err
}

// Families returns the distinct family names in sorted order.
func (b *Book) Families() []string {
	seen := make(map[string]bool, len(b.infos))
	var families []string
	for _, info := range b.infos {
		if !seen[info.Family] {
			seen[info.Family] = true
			families = append(families, info.Family)
		}
	}
	sort.Strings(families)
	return families
}

// Faces returns the infos of all faces belonging to the family.
func (b *Book) Faces(family string) []Info {
	var faces []Info
	for _, info := range b.infos {
		if info.Family == family {
			faces = append(faces, info)
		}
	}
	return faces
}
