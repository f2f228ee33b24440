package capture

import (
	"context"
	"fmt"
	"image"
	"io"

	"github.com/khanglvm/duriancare/internal/imaging"
)

// FrameSource yields the image to capture: a live camera frame or an
// uploaded file.
type FrameSource interface {
	Frame(ctx context.Context) (image.Image, error)
}

// FileSource reads a still from an image file.
type FileSource struct {
	Path string
}

// Frame decodes the file.
func (f FileSource) Frame(ctx context.Context) (image.Image, error) {
	if f.Path == "" {
		return nil, fmt.Errorf("no file selected")
	}
	return imaging.DecodeFile(f.Path)
}

// ReaderSource reads a still from an upload stream.
type ReaderSource struct {
	R io.Reader
}

// Frame decodes the stream.
func (r ReaderSource) Frame(ctx context.Context) (image.Image, error) {
	if r.R == nil {
		return nil, fmt.Errorf("no upload")
	}
	return imaging.Decode(r.R)
}
