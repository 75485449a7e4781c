package server

import (
	"encoding/json"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderEncoding(t *testing.T) {
	pages := testPages(4, 100, 50)

	data, err := EncodeHeader(pages)
	require.NoError(t, err)

	var raw map[string]int
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string]int{"page_num": 4, "width": 100, "height": 50}, raw)
}

func TestEncodeHeaderRejectsEmpty(t *testing.T) {
	_, err := EncodeHeader(nil)
	assert.Error(t, err)
}

func TestDecodeHeaderValidation(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", `{"page_num":1,"width":10,"height":10}`, false},
		{"not json", `nope`, true},
		{"zero pages", `{"page_num":0,"width":10,"height":10}`, true},
		{"negative width", `{"page_num":1,"width":-1,"height":10}`, true},
		{"missing fields", `{}`, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeHeader([]byte(tc.input))
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPageRoundTrip(t *testing.T) {
	page := image.NewRGBA(image.Rect(0, 0, 7, 3))
	for i := range page.Pix {
		page.Pix[i] = byte(i * 3)
	}

	header := Header{PageNum: 1, Width: 7, Height: 3}
	decoded, err := DecodePage(header, PagePayload(page))
	require.NoError(t, err)
	assert.Equal(t, page.Pix, decoded.Pix)
	assert.Equal(t, page.Bounds(), decoded.Bounds())
}

func TestDecodePageSizeMismatch(t *testing.T) {
	header := Header{PageNum: 1, Width: 4, Height: 4}
	_, err := DecodePage(header, make([]byte, 10))
	assert.Error(t, err)
}
