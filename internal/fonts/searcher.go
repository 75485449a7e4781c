package fonts

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var fontExtensions = map[string]bool{
	".ttf": true, ".otf": true, ".ttc": true, ".otc": true,
}

// Searcher walks directories collecting font faces into a Book.
type Searcher struct {
	indexer Indexer
	infos   []Info
}

// NewSearcher creates a searcher using the given indexer, or the filename
// fallback when indexer is nil.
func NewSearcher(indexer Indexer) *Searcher {
	if indexer == nil {
		indexer = FilenameIndexer{}
	}
	return &Searcher{indexer: indexer}
}

// SearchSystem indexes the platform font directories.
func (s *Searcher) SearchSystem() {
	for _, dir := range systemFontDirs() {
		s.SearchDir(dir)
	}
}

// SearchDir recursively indexes every font file under the directory,
// following symlinks is not needed for the common layouts. Unreadable
// entries are skipped.
func (s *Searcher) SearchDir(dir string) {
	entries := []string{}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if fontExtensions[strings.ToLower(filepath.Ext(path))] {
			entries = append(entries, path)
		}
		return nil
	})

	// Deterministic book order regardless of walk order.
	sort.Strings(entries)
	for _, path := range entries {
		s.searchFile(path)
	}
}

func (s *Searcher) searchFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	s.infos = append(s.infos, s.indexer.Index(path, data)...)
}

// Book seals the collected faces into a Book.
func (s *Searcher) Book() *Book {
	slots := make([]*fontSlot, len(s.infos))
	for i := range slots {
		slots[i] = &fontSlot{}
	}
	return &Book{infos: s.infos, slots: slots}
}

func systemFontDirs() []string {
	var dirs []string
	switch {
	case fileExists("/System/Library/Fonts"):
		dirs = append(dirs, "/Library/Fonts", "/System/Library/Fonts")
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
	default:
		dirs = append(dirs, "/usr/share/fonts", "/usr/local/share/fonts")
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs, filepath.Join(home, ".fonts"), filepath.Join(home, ".local", "share", "fonts"))
		}
	}
	return dirs
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FilenameIndexer is the fallback indexer used when no font parsing library
// is wired in. It derives the family from the file name and recognizes the
// conventional style/weight/stretch suffixes ("DejaVuSans-BoldOblique.ttf").
type FilenameIndexer struct{}

func (FilenameIndexer) Index(path string, data []byte) []Info {
	if len(data) == 0 {
		return nil
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	family := base
	variant := DefaultVariant()

	if dash := strings.LastIndex(base, "-"); dash > 0 {
		family = base[:dash]
		suffix := strings.ToLower(base[dash+1:])
		if strings.Contains(suffix, "italic") {
			variant.Style = StyleItalic
		}
		if strings.Contains(suffix, "oblique") {
			variant.Style = StyleOblique
		}
		switch {
		case strings.Contains(suffix, "thin"):
			variant.Weight = 100
		case strings.Contains(suffix, "light"):
			variant.Weight = 300
		case strings.Contains(suffix, "medium"):
			variant.Weight = 500
		case strings.Contains(suffix, "black"):
			variant.Weight = 900
		case strings.Contains(suffix, "bold"):
			variant.Weight = 700
		}
		if strings.Contains(suffix, "condensed") {
			variant.Stretch = "condensed"
		}
		if strings.Contains(suffix, "expanded") {
			variant.Stretch = "expanded"
		}
	}

	return []Info{{Family: family, Variant: variant, Path: path, Index: 0}}
}
