package vfs

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	folioerrors "github.com/folio-dev/folio/internal/errors"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// decodeText decodes source file bytes as text. UTF-8 with or without BOM is
// accepted directly; UTF-16 with BOM is transcoded. Anything else fails with
// an invalid-encoding FileError.
func decodeText(path string, data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF16BE), bytes.HasPrefix(data, bomUTF16LE):
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, err := decoder.Bytes(data)
		if err != nil {
			return "", folioerrors.NewFileError(folioerrors.FileInvalidEncoding, path, err)
		}
		return string(decoded), nil

	case bytes.HasPrefix(data, bomUTF8):
		data = data[len(bomUTF8):]
	}

	if !utf8.Valid(data) {
		return "", folioerrors.NewFileError(folioerrors.FileInvalidEncoding, path, nil)
	}
	return string(data), nil
}
