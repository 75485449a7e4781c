//go:build unix

package vfs

import (
	"encoding/binary"
	"os"
	"syscall"

	"github.com/cespare/xxhash/v2"

	folioerrors "github.com/folio-dev/folio/internal/errors"
)

// resolveIdentity hashes device and inode numbers, which stay equal across
// every hardlink and symlink to the same file.
func resolveIdentity(path string) (Identity, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, folioerrors.FromIO(path, err)
	}

	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return identityFromCanonicalPath(path)
	}

	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(st.Dev))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(st.Ino))
	return Identity(xxhash.Sum64(buf[:])), nil
}
