// Package decode turns uploaded or fetched bytes into pixel buffers and
// pulls the exposure time out of EXIF when the file carries one.
package decode

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/anime-shed/photo-scorer-go/internal/analyzer"
	apperrors "github.com/anime-shed/photo-scorer-go/internal/errors"
	"github.com/anime-shed/photo-scorer-go/pkg/models"
)

// Decoded is a decoded photo ready for analysis
type Decoded struct {
	Buffer   *analyzer.PixelBuffer
	Format   string
	Width    int
	Height   int
	Exposure models.ExposureHint
}

// Decoder decodes jpeg, png, gif and webp, refusing anything over maxPixels
type Decoder struct {
	maxPixels int64
}

// NewDecoder creates a decoder. maxPixels <= 0 disables the size check.
func NewDecoder(maxPixels int64) *Decoder {
	return &Decoder{maxPixels: maxPixels}
}

// Decode reads the header first so oversized images are rejected before any
// pixels are allocated.
func (d *Decoder) Decode(data []byte) (*Decoded, error) {
	if len(data) == 0 {
		return nil, apperrors.NewValidationError("empty image payload", nil)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewUnsupportedMediaError("unrecognized image format", err)
	}

	pixels := int64(cfg.Width) * int64(cfg.Height)
	if d.maxPixels > 0 && pixels > d.maxPixels {
		return nil, apperrors.NewValidationError("image exceeds the maximum pixel count", nil).
			WithDetails("%dx%d is %d pixels, limit %d", cfg.Width, cfg.Height, pixels, d.maxPixels)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperrors.NewUnsupportedMediaError("failed to decode image", err)
	}

	buf := analyzer.PixelBufferFromImage(img)
	return &Decoded{
		Buffer:   buf,
		Format:   format,
		Width:    buf.Width(),
		Height:   buf.Height(),
		Exposure: ExposureTime(data),
	}, nil
}
