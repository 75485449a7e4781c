package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-dev/folio/internal/compile"
	"github.com/folio-dev/folio/internal/vfs"
)

func loadSource(t *testing.T, content string) (*vfs.Cache, vfs.SourceID, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.doc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cache := vfs.NewCache()
	id, err := cache.GetOrLoadSource(path)
	require.NoError(t, err)
	return cache, id, path
}

func TestPrintResolvesLocation(t *testing.T) {
	cache, id, path := loadSource(t, "first line\nbad directive here\nlast line")

	var buf bytes.Buffer
	printer := NewPrinter(&buf)
	printer.Print(cache, []compile.Diagnostic{{
		Message: "unknown directive",
		Span:    compile.Span{Source: id, Start: 11, End: 24},
	}})

	out := buf.String()
	assert.Contains(t, out, "error")
	assert.Contains(t, out, "unknown directive")
	assert.Contains(t, out, path+":2:1")
	assert.Contains(t, out, "bad directive here")
	assert.Contains(t, out, "^")
}

func TestPrintIncludesTrace(t *testing.T) {
	cache, id, _ := loadSource(t, "#include \"sub.doc\"")

	var buf bytes.Buffer
	NewPrinter(&buf).Print(cache, []compile.Diagnostic{{
		Message: "file not found",
		Span:    compile.Span{Source: vfs.DetachedID},
		Trace: []compile.TracePoint{{
			Message: "included from main.doc",
			Span:    compile.Span{Source: id, Start: 0, End: 18},
		}},
	}})

	out := buf.String()
	assert.Contains(t, out, "help")
	assert.Contains(t, out, "included from main.doc")
}

func TestPrintDetachedSpanOmitsSnippet(t *testing.T) {
	cache := vfs.NewCache()

	var buf bytes.Buffer
	NewPrinter(&buf).Print(cache, []compile.Diagnostic{{
		Message: "file not found (searched at ghost.doc)",
		Span:    compile.Span{Source: vfs.DetachedID},
	}})

	out := buf.String()
	assert.Contains(t, out, "ghost.doc")
	assert.NotContains(t, out, "│")
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintError("failed to bind listener")
	assert.Contains(t, buf.String(), "failed to bind listener")
}
