package analyzer

import (
	"image"
	"image/color"
	"testing"

	apperrors "github.com/anime-shed/photo-scorer-go/internal/errors"
)

// createTestImage creates a uniformly filled test image
func createTestImage(width, height int, fillColor color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fillColor)
		}
	}
	return img
}

// createCheckerImage alternates black and white pixels
func createCheckerImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBA{0, 0, 0, 255}
			if (x+y)%2 == 0 {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func uniformBuffer(t *testing.T, width, height int, r, g, b uint8) *PixelBuffer {
	t.Helper()
	pix := make([]byte, width*height*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = r, g, b, 255
	}
	buf, err := NewPixelBuffer(width, height, pix)
	if err != nil {
		t.Fatalf("Failed to create buffer: %v", err)
	}
	return buf
}

func TestNewPixelBuffer(t *testing.T) {
	buf, err := NewPixelBuffer(3, 2, make([]byte, 24))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if buf.Width() != 3 || buf.Height() != 2 {
		t.Errorf("Expected 3x2, got %dx%d", buf.Width(), buf.Height())
	}
	if buf.PixelCount() != 6 {
		t.Errorf("Expected 6 pixels, got %d", buf.PixelCount())
	}
	if len(buf.Bytes()) != 24 {
		t.Errorf("Expected 24 bytes, got %d", len(buf.Bytes()))
	}
}

func TestNewPixelBuffer_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		length int
	}{
		{"short buffer", 10, 10, 399},
		{"long buffer", 10, 10, 401},
		{"negative width", -1, 10, 0},
		{"negative height", 10, -1, 0},
		{"rgb instead of rgba", 4, 4, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPixelBuffer(tt.width, tt.height, make([]byte, tt.length))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !apperrors.IsType(err, apperrors.ErrorTypeInvalidBuffer) {
				t.Errorf("Expected invalid buffer error, got %v", err)
			}
		})
	}
}

func TestNewPixelBuffer_Empty(t *testing.T) {
	buf, err := NewPixelBuffer(0, 0, nil)
	if err != nil {
		t.Fatalf("Zero-size buffer should be constructible: %v", err)
	}
	if buf.PixelCount() != 0 {
		t.Errorf("Expected 0 pixels, got %d", buf.PixelCount())
	}
}

func TestPixelBufferFromImage(t *testing.T) {
	img := createTestImage(5, 4, color.RGBA{10, 20, 30, 255})
	buf := PixelBufferFromImage(img)

	if buf.Width() != 5 || buf.Height() != 4 {
		t.Fatalf("Expected 5x4, got %dx%d", buf.Width(), buf.Height())
	}
	if len(buf.Bytes()) != 5*4*4 {
		t.Fatalf("Expected packed buffer of %d bytes, got %d", 5*4*4, len(buf.Bytes()))
	}
	p := buf.Bytes()
	if p[0] != 10 || p[1] != 20 || p[2] != 30 || p[3] != 255 {
		t.Errorf("Unexpected first pixel %v", p[:4])
	}
}

func TestPixelBufferFromImage_SubImage(t *testing.T) {
	img := createTestImage(10, 10, color.RGBA{200, 100, 50, 255})
	sub := img.SubImage(image.Rect(2, 2, 6, 5))

	buf := PixelBufferFromImage(sub)
	if buf.Width() != 4 || buf.Height() != 3 {
		t.Fatalf("Expected 4x3, got %dx%d", buf.Width(), buf.Height())
	}
	if len(buf.Bytes()) != 4*3*4 {
		t.Errorf("Expected rows packed without padding, got %d bytes", len(buf.Bytes()))
	}
}
