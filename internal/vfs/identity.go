// Package vfs implements the file access layer the compiler reads through:
// canonical file identities, a per-identity slot cache for decoded sources and
// raw bytes, an append-only source store, and the dependency tracking used to
// decide whether a filesystem event requires recompilation.
//
// The whole cache is cleared at the start of every compilation cycle, so each
// cycle sees a consistent, fully fresh view of the filesystem and every
// touched file is read at most once per cycle.
package vfs

import (
	"path/filepath"
)

// Identity is a fixed-width token that is the same for all paths pointing to
// the same underlying file: symlinks, hardlinks, and relative/absolute
// spellings all collapse onto one value. It is derived from OS file-identity
// metadata, not from the path string.
type Identity uint64

// ResolveIdentity stats the path and hashes its OS-level identity. Fails with
// a classified FileError if the path cannot be stat'd. Pure function of
// on-disk state at call time; a race against concurrent file replacement is
// accepted.
func ResolveIdentity(path string) (Identity, error) {
	return resolveIdentity(path)
}

// canonicalize resolves symlinks and relative segments to the absolute
// canonical spelling of a path. Events from the filesystem watcher report
// canonical paths, so caching this form alongside the raw one lets the
// dependency tracker match the two.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
