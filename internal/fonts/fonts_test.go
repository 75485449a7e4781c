package fonts

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFont(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("fontdata"), 0644))
	return path
}

func TestSearchDirCollectsFontFiles(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "DejaVuSans.ttf")
	writeFont(t, dir, "DejaVuSans-Bold.ttf")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	writeFont(t, filepath.Join(dir, "nested"), "NewCM10-Italic.otf")
	writeFont(t, dir, "README.txt") // not a font

	searcher := NewSearcher(nil)
	searcher.SearchDir(dir)
	book := searcher.Book()

	assert.Equal(t, 3, book.Len())
	assert.Equal(t, []string{"DejaVuSans", "NewCM10"}, book.Families())
}

func TestFilenameIndexerVariants(t *testing.T) {
	testCases := []struct {
		file    string
		family  string
		style   Style
		weight  int
		stretch string
	}{
		{"DejaVuSans.ttf", "DejaVuSans", StyleNormal, 400, "normal"},
		{"DejaVuSans-Bold.ttf", "DejaVuSans", StyleNormal, 700, "normal"},
		{"DejaVuSans-BoldOblique.ttf", "DejaVuSans", StyleOblique, 700, "normal"},
		{"NewCM10-Italic.otf", "NewCM10", StyleItalic, 400, "normal"},
		{"Roboto-LightItalic.ttf", "Roboto", StyleItalic, 300, "normal"},
		{"Univers-CondensedBold.otf", "Univers", StyleNormal, 700, "condensed"},
	}

	for _, tc := range testCases {
		t.Run(tc.file, func(t *testing.T) {
			infos := FilenameIndexer{}.Index(tc.file, []byte("x"))
			require.Len(t, infos, 1)
			assert.Equal(t, tc.family, infos[0].Family)
			assert.Equal(t, tc.style, infos[0].Variant.Style)
			assert.Equal(t, tc.weight, infos[0].Variant.Weight)
			assert.Equal(t, tc.stretch, infos[0].Variant.Stretch)
		})
	}
}

func TestBookFaces(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "Sans.ttf")
	writeFont(t, dir, "Sans-Bold.ttf")
	writeFont(t, dir, "Serif.ttf")

	searcher := NewSearcher(nil)
	searcher.SearchDir(dir)
	book := searcher.Book()

	faces := book.Faces("Sans")
	require.Len(t, faces, 2)
	assert.Empty(t, book.Faces("Mono"))
}

func TestBookDataLoadsOnce(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "Sans.ttf")

	searcher := NewSearcher(nil)
	searcher.SearchDir(dir)
	book := searcher.Book()
	require.Equal(t, 1, book.Len())

	loads := 0
	loader := func(path string) ([]byte, error) {
		loads++
		return os.ReadFile(path)
	}

	data, err := book.Data(0, loader)
	require.NoError(t, err)
	assert.Equal(t, []byte("fontdata"), data)

	_, err = book.Data(0, loader)
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
}

func TestBookDataFailureMemoized(t *testing.T) {
	book := (&Searcher{indexer: FilenameIndexer{}, infos: []Info{{Family: "Ghost", Path: "/nope.ttf"}}}).Book()

	loads := 0
	loader := func(path string) ([]byte, error) {
		loads++
		return nil, errors.New("gone")
	}

	_, err := book.Data(0, loader)
	assert.Error(t, err)
	_, err = book.Data(0, loader)
	assert.Error(t, err)
	assert.Equal(t, 1, loads)
}

func TestBookOutOfRange(t *testing.T) {
	book := NewSearcher(nil).Book()
	assert.Zero(t, book.Info(5))

	// An out-of-range index is an error, not an empty face.
	data, err := book.Data(5, os.ReadFile)
	assert.Nil(t, data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	data, err = book.Data(-1, os.ReadFile)
	assert.Nil(t, data)
	assert.Error(t, err)
}
