package errors

import (
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromIOClassification(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected FileErrorKind
	}{
		{"not found", fs.ErrNotExist, FileNotFound},
		{"permission", fs.ErrPermission, FilePermission},
		{"wrapped not found", &os.PathError{Op: "open", Path: "/tmp/x", Err: fs.ErrNotExist}, FileNotFound},
		{"other", fs.ErrClosed, FileOther},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ferr := FromIO("some/path", tc.err)
			assert.Equal(t, tc.expected, ferr.Kind)
			assert.ErrorIs(t, ferr, tc.err)
		})
	}
}

func TestFromIOPrefersPathErrorPath(t *testing.T) {
	ferr := FromIO("asked/for", &os.PathError{Op: "open", Path: "actual/path", Err: fs.ErrNotExist})
	assert.Equal(t, "actual/path", ferr.Path)
	assert.Contains(t, ferr.Error(), "actual/path")
}

func TestFileErrorIsMatchesKind(t *testing.T) {
	a := NewFileError(FileNotFound, "a.typ", nil)
	b := NewFileError(FileNotFound, "b.typ", nil)
	c := NewFileError(FilePermission, "a.typ", nil)

	assert.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, c)
}

func TestFileErrorMessages(t *testing.T) {
	assert.Contains(t, NewFileError(FileIsDirectory, "dir", nil).Error(), "is a directory")
	assert.Contains(t, NewFileError(FileInvalidEncoding, "x.bin", nil).Error(), "not valid utf-8")
}
