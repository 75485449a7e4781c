package vfs

import (
	"github.com/cespare/xxhash/v2"

	folioerrors "github.com/folio-dev/folio/internal/errors"
)

func identityFromCanonicalPath(path string) (Identity, error) {
	canon, err := canonicalize(path)
	if err != nil {
		return 0, folioerrors.FromIO(path, err)
	}
	return Identity(xxhash.Sum64String(canon)), nil
}
