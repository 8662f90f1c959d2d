package decode

import (
	"bytes"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/anime-shed/photo-scorer-go/internal/logger"
	"github.com/anime-shed/photo-scorer-go/pkg/models"
)

// ExposureTime returns the EXIF ExposureTime in seconds. Files without EXIF,
// without the tag or with an unusable value yield nil.
func ExposureTime(data []byte) models.ExposureHint {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	tag, err := x.Get(exif.ExposureTime)
	if err != nil {
		return nil
	}

	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 || num <= 0 {
		logger.WithComponent("decode").WithField("tag", tag.String()).
			Debug("Ignoring unusable exposure time")
		return nil
	}

	seconds := float64(num) / float64(den)
	return &seconds
}
