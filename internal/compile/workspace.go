package compile

import (
	"github.com/folio-dev/folio/internal/fonts"
	"github.com/folio-dev/folio/internal/vfs"
)

// cacheWorkspace adapts the slot cache and the font book to the Workspace
// interface the compiler consumes.
type cacheWorkspace struct {
	cache *vfs.Cache
	book  *fonts.Book
}

var _ Workspace = (*cacheWorkspace)(nil)

// NewWorkspace builds the workspace a compilation cycle reads through.
func NewWorkspace(cache *vfs.Cache, book *fonts.Book) Workspace {
	return &cacheWorkspace{cache: cache, book: book}
}

func (w *cacheWorkspace) Resolve(path string) (vfs.SourceID, error) {
	return w.cache.GetOrLoadSource(path)
}

func (w *cacheWorkspace) Source(id vfs.SourceID) *vfs.Source {
	return w.cache.SourceByID(id)
}

func (w *cacheWorkspace) File(path string) ([]byte, error) {
	return w.cache.GetOrLoadBytes(path)
}

func (w *cacheWorkspace) Book() *fonts.Book {
	return w.book
}

// Font reads face data through the cache so font files share the
// at-most-one-read-per-cycle guarantee; the book memoizes the result across
// cycles.
func (w *cacheWorkspace) Font(index int) ([]byte, error) {
	return w.book.Data(index, w.cache.GetOrLoadBytes)
}
