package server

import (
	"encoding/json"
	"fmt"
	"image"
)

// Header is the text frame announcing one broadcast: the page count and the
// pixel dimensions of the first page. It is followed by PageNum binary
// frames of premultiplied RGBA, Width*Height*4 bytes each, in page order.
type Header struct {
	PageNum int `json:"page_num"`
	Width   int `json:"width"`
	Height  int `json:"height"`
}

// EncodeHeader builds the header frame for a page sequence.
func EncodeHeader(pages []*image.RGBA) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("cannot broadcast zero pages")
	}
	header := Header{
		PageNum: len(pages),
		Width:   pages[0].Bounds().Dx(),
		Height:  pages[0].Bounds().Dy(),
	}
	return json.Marshal(header)
}

// DecodeHeader parses a header frame. Used by viewer clients and tests.
func DecodeHeader(data []byte) (Header, error) {
	var header Header
	if err := json.Unmarshal(data, &header); err != nil {
		return Header{}, fmt.Errorf("malformed broadcast header: %w", err)
	}
	if header.PageNum < 1 || header.Width < 1 || header.Height < 1 {
		return Header{}, fmt.Errorf("broadcast header out of range: %+v", header)
	}
	return header, nil
}

// PagePayload returns the raw pixel bytes sent for one page.
func PagePayload(page *image.RGBA) []byte {
	return page.Pix
}

// DecodePage reconstructs a page image from a binary frame using the
// dimensions announced in the header.
func DecodePage(header Header, data []byte) (*image.RGBA, error) {
	expected := header.Width * header.Height * 4
	if len(data) != expected {
		return nil, fmt.Errorf("page frame is %d bytes, want %d", len(data), expected)
	}
	img := image.NewRGBA(image.Rect(0, 0, header.Width, header.Height))
	copy(img.Pix, data)
	return img, nil
}
