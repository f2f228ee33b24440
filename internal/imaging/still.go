/*
Package imaging encodes captured frames into self-contained still images.

A Still is a JPEG encoded at a fixed quality. Records persist it as a data
URL so that no external file reference is needed.
*/
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"strings"

	// Decoders for uploaded files.
	_ "image/gif"
	_ "image/png"
)

// DefaultQuality matches a 0.85 canvas export.
const DefaultQuality = 85

// MIMEJPEG is the media type of every encoded still.
const MIMEJPEG = "image/jpeg"

// ErrInvalidDataURL is returned when a data URL cannot be parsed.
var ErrInvalidDataURL = errors.New("invalid image data URL")

// Still is an encoded still image.
type Still struct {
	MIME   string
	Data   []byte
	Width  int
	Height int
}

// Empty reports whether the still holds no image data.
func (s Still) Empty() bool {
	return len(s.Data) == 0
}

// DataURL renders the still as a base64 data URL.
func (s Still) DataURL() string {
	mime := s.MIME
	if mime == "" {
		mime = MIMEJPEG
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(s.Data)
}

// Encode compresses img as a JPEG at the given quality (1-100).
func Encode(img image.Image, quality int) (Still, error) {
	if img == nil {
		return Still{}, errors.New("encode: nil image")
	}
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return Still{}, errors.New("encode: empty frame")
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return Still{}, fmt.Errorf("encode jpeg: %w", err)
	}

	return Still{
		MIME:   MIMEJPEG,
		Data:   buf.Bytes(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// Decode reads a JPEG, PNG or GIF image.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// DecodeFile reads an image file from disk.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}

// ParseDataURL decodes a base64 data URL back into a Still.
// Width and Height are left zero.
func ParseDataURL(s string) (Still, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return Still{}, ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Still{}, ErrInvalidDataURL
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Still{}, ErrInvalidDataURL
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Still{}, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}

	return Still{MIME: mime, Data: data}, nil
}

// Extension returns a file extension for the still's media type.
func (s Still) Extension() string {
	switch s.MIME {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
