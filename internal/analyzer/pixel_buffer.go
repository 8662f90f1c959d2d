package analyzer

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	apperrors "github.com/anime-shed/photo-scorer-go/internal/errors"
)

// PixelBuffer is a read-only view over width*height non-premultiplied RGBA
// samples, one byte per channel, rows packed without padding.
type PixelBuffer struct {
	width  int
	height int
	pix    []byte
}

// NewPixelBuffer wraps pix after checking len(pix) == width*height*4.
// The slice is not copied; callers must not modify it while an analysis runs.
func NewPixelBuffer(width, height int, pix []byte) (*PixelBuffer, error) {
	if width < 0 || height < 0 {
		return nil, apperrors.NewInvalidBufferError("negative image dimensions", nil).
			WithDetails("width=%d height=%d", width, height)
	}
	want := int64(width) * int64(height) * 4
	if int64(len(pix)) != want {
		return nil, apperrors.NewInvalidBufferError(
			fmt.Sprintf("buffer length %d does not match %dx%d RGBA (%d bytes)", len(pix), width, height, want), nil)
	}
	return &PixelBuffer{width: width, height: height, pix: pix}, nil
}

// PixelBufferFromImage converts any decoded image to a packed NRGBA buffer
func PixelBufferFromImage(img image.Image) *PixelBuffer {
	nrgba := imaging.Clone(img)
	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()

	pix := nrgba.Pix
	if nrgba.Stride != w*4 {
		pix = make([]byte, 0, w*h*4)
		for y := 0; y < h; y++ {
			row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
			pix = append(pix, row...)
		}
	}
	return &PixelBuffer{width: w, height: h, pix: pix}
}

func (b *PixelBuffer) Width() int  { return b.width }
func (b *PixelBuffer) Height() int { return b.height }

// PixelCount is width*height
func (b *PixelBuffer) PixelCount() int { return b.width * b.height }

// Bytes exposes the underlying samples. Treat as read-only.
func (b *PixelBuffer) Bytes() []byte { return b.pix }
