// Package errors defines the structured error types used across folio:
// file access failures surfaced by the virtual file system, watch
// subscription failures, and viewer transport failures.
package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// FileErrorKind classifies why a file could not be served to the compiler.
type FileErrorKind string

const (
	FileNotFound        FileErrorKind = "not_found"
	FilePermission      FileErrorKind = "permission_denied"
	FileIsDirectory     FileErrorKind = "is_directory"
	FileInvalidEncoding FileErrorKind = "invalid_encoding"
	FileOther           FileErrorKind = "io_error"
)

// FileError is the error returned for any failed file access. It carries the
// path the caller asked for, so diagnostics can point at the offending file.
type FileError struct {
	Kind  FileErrorKind
	Path  string
	Cause error
}

func (e *FileError) Error() string {
	switch e.Kind {
	case FileNotFound:
		return fmt.Sprintf("file not found (searched at %s)", e.Path)
	case FilePermission:
		return fmt.Sprintf("failed to access file (%s): permission denied", e.Path)
	case FileIsDirectory:
		return fmt.Sprintf("failed to access file (%s): is a directory", e.Path)
	case FileInvalidEncoding:
		return fmt.Sprintf("file is not valid utf-8 (%s)", e.Path)
	default:
		if e.Cause != nil {
			return fmt.Sprintf("failed to access file (%s): %v", e.Path, e.Cause)
		}
		return fmt.Sprintf("failed to access file (%s)", e.Path)
	}
}

func (e *FileError) Unwrap() error {
	return e.Cause
}

// Is matches on kind so callers can compare against sentinel FileErrors.
func (e *FileError) Is(target error) bool {
	var t *FileError
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// NewFileError builds a FileError of an explicit kind.
func NewFileError(kind FileErrorKind, path string, cause error) *FileError {
	return &FileError{Kind: kind, Path: path, Cause: cause}
}

// FromIO converts an OS-level error into a classified FileError.
func FromIO(path string, err error) *FileError {
	var kind FileErrorKind
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = FileNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = FilePermission
	default:
		kind = FileOther
	}
	var pe *os.PathError
	if errors.As(err, &pe) && pe.Path != "" {
		path = pe.Path
	}
	return &FileError{Kind: kind, Path: path, Cause: err}
}

// WatchError reports a failure to establish or read the filesystem
// subscription. Fatal at setup time: nothing can be monitored without it.
type WatchError struct {
	Root  string
	Cause error
}

func (e *WatchError) Error() string {
	if e.Root != "" {
		return fmt.Sprintf("failed to watch %s: %v", e.Root, e.Cause)
	}
	return fmt.Sprintf("failed to watch directory: %v", e.Cause)
}

func (e *WatchError) Unwrap() error {
	return e.Cause
}

// TransportError reports a failed send to one viewer session. It only ever
// removes that session; broadcasts to other viewers continue.
type TransportError struct {
	Session string
	Cause   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to send to viewer %s: %v", e.Session, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}
