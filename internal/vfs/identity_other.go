//go:build !unix

package vfs

import (
	"os"

	folioerrors "github.com/folio-dev/folio/internal/errors"
)

// resolveIdentity falls back to the canonical path on platforms without a
// stable stat identity. Symlink aliases still collapse because EvalSymlinks
// resolves them; hardlinks do not, which only costs a spurious recompile.
func resolveIdentity(path string) (Identity, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, folioerrors.FromIO(path, err)
	}
	return identityFromCanonicalPath(path)
}
