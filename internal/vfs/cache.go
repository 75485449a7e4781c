package vfs

import (
	"os"
	"sync"

	folioerrors "github.com/folio-dev/folio/internal/errors"
)

// Cache is the slot cache the compiler reads files through. It is keyed by
// canonical identity, so any number of path spellings for one file share a
// single lazily loaded slot. Loads are memoized per cache generation: within
// one compilation cycle a file is read at most once, and a failed load is
// cached the same way a successful one is.
//
// Reset must be called before every compilation. SourceIDs handed out by one
// generation are invalid after the next Reset.
type Cache struct {
	mu    sync.Mutex
	ids   map[string]idResult
	slots map[Identity]*slot

	srcMu   sync.RWMutex
	sources []*Source

	// readFile and resolve are swapped out by tests to count filesystem
	// hits; production code always uses the OS.
	readFile func(path string) ([]byte, error)
	resolve  func(path string) (Identity, error)
}

type idResult struct {
	identity Identity
	err      error
}

// slot holds the lazily computed content for one file identity: at most one
// decoded source and at most one raw byte buffer, each loaded exactly once
// per generation even under concurrent first access.
type slot struct {
	source memo[SourceID]
	bytes  memo[[]byte]
}

type memo[T any] struct {
	once sync.Once
	val  T
	err  error
}

func (m *memo[T]) get(load func() (T, error)) (T, error) {
	m.once.Do(func() {
		m.val, m.err = load()
	})
	return m.val, m.err
}

// NewCache creates an empty cache generation.
func NewCache() *Cache {
	return &Cache{
		ids:      make(map[string]idResult),
		slots:    make(map[Identity]*slot),
		readFile: os.ReadFile,
		resolve:  ResolveIdentity,
	}
}

// GetOrLoadSource resolves the path to its slot and returns the id of its
// decoded source, reading and decoding the file on first access. Repeated
// calls for any alias of the same file hit the memoized slot.
func (c *Cache) GetOrLoadSource(path string) (SourceID, error) {
	sl, err := c.slot(path)
	if err != nil {
		return DetachedID, err
	}
	return sl.source.get(func() (SourceID, error) {
		data, err := c.read(path)
		if err != nil {
			return DetachedID, err
		}
		text, err := decodeText(path, data)
		if err != nil {
			return DetachedID, err
		}
		return c.insert(path, text), nil
	})
}

// GetOrLoadBytes returns the raw content for the path, used for fonts and
// other binary assets. Independent of the source field of the same slot.
func (c *Cache) GetOrLoadBytes(path string) ([]byte, error) {
	sl, err := c.slot(path)
	if err != nil {
		return nil, err
	}
	return sl.bytes.get(func() ([]byte, error) {
		return c.read(path)
	})
}

// SourceByID looks up a source by the id GetOrLoadSource returned. The id
// must come from the current generation.
func (c *Cache) SourceByID(id SourceID) *Source {
	c.srcMu.RLock()
	defer c.srcMu.RUnlock()
	if id < 0 || int(id) >= len(c.sources) {
		return nil
	}
	return c.sources[id]
}

// SourceCount reports how many sources this generation has loaded.
func (c *Cache) SourceCount() int {
	c.srcMu.RLock()
	defer c.srcMu.RUnlock()
	return len(c.sources)
}

// Reset clears the path map, all slots, and the source store in one step.
// Called at the start of every compilation cycle so the compiler sees a
// fully fresh view; every previously issued SourceID becomes invalid.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.ids = make(map[string]idResult)
	c.slots = make(map[Identity]*slot)
	c.mu.Unlock()

	c.srcMu.Lock()
	c.sources = nil
	c.srcMu.Unlock()
}

// Touched reports whether the path belongs to the dependency set of the
// current generation: either its canonical or raw spelling was consulted, or
// it still resolves to an identity that some consulted path resolved to.
// The second condition catches aliases that were never looked up by this
// exact spelling.
func (c *Cache) Touched(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.ids[path]; ok {
		return true
	}
	if canon, err := canonicalize(path); err == nil {
		if _, ok := c.ids[canon]; ok {
			return true
		}
	}
	if id, err := c.resolve(path); err == nil {
		if _, ok := c.slots[id]; ok {
			return true
		}
	}
	return false
}

// slot resolves the path to its identity, caching the resolution (or its
// failure) under both the raw and canonical spellings, and returns the
// identity's slot.
func (c *Cache) slot(path string) (*slot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, ok := c.ids[path]
	if !ok {
		identity, err := c.resolve(path)
		res = idResult{identity: identity, err: err}
		if canon, cerr := canonicalize(path); cerr == nil {
			c.ids[canon] = res
		}
		c.ids[path] = res
	}
	if res.err != nil {
		return nil, res.err
	}

	sl, ok := c.slots[res.identity]
	if !ok {
		sl = &slot{}
		c.slots[res.identity] = sl
	}
	return sl, nil
}

func (c *Cache) read(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, folioerrors.FromIO(path, err)
	}
	if fi.IsDir() {
		return nil, folioerrors.NewFileError(folioerrors.FileIsDirectory, path, nil)
	}
	data, err := c.readFile(path)
	if err != nil {
		return nil, folioerrors.FromIO(path, err)
	}
	return data, nil
}

func (c *Cache) insert(path, text string) SourceID {
	c.srcMu.Lock()
	defer c.srcMu.Unlock()
	id := SourceID(len(c.sources))
	c.sources = append(c.sources, newSource(id, path, text))
	return id
}
