package validation

import (
	"math"
	"strings"
	"testing"

	apperrors "github.com/anime-shed/photo-scorer-go/internal/errors"
	"github.com/anime-shed/photo-scorer-go/pkg/models"
)

func TestNewRequestValidator(t *testing.T) {
	validator := NewRequestValidator()
	if validator == nil {
		t.Fatal("Expected non-nil request validator")
	}
	if validator.limits.MaxDetections != DefaultRequestLimits().MaxDetections {
		t.Errorf("Expected default MaxDetections, got %d", validator.limits.MaxDetections)
	}
}

func TestValidateDetections(t *testing.T) {
	validator := NewRequestValidator()

	tests := []struct {
		name      string
		detection models.Detection
		wantErr   bool
	}{
		{"valid", models.Detection{Box: models.BoundingBox{X: 1, Y: 2, W: 3, H: 4}, Label: "dog", Confidence: 0.8}, false},
		{"degenerate box is allowed", models.Detection{Box: models.BoundingBox{W: 0, H: -1}, Confidence: 0.5}, false},
		{"confidence above one", models.Detection{Box: models.BoundingBox{W: 1, H: 1}, Confidence: 1.2}, true},
		{"negative confidence", models.Detection{Box: models.BoundingBox{W: 1, H: 1}, Confidence: -0.1}, true},
		{"NaN coordinate", models.Detection{Box: models.BoundingBox{X: math.NaN(), W: 1, H: 1}, Confidence: 0.5}, true},
		{"infinite width", models.Detection{Box: models.BoundingBox{W: math.Inf(1), H: 1}, Confidence: 0.5}, true},
		{"label too long", models.Detection{Box: models.BoundingBox{W: 1, H: 1}, Label: strings.Repeat("x", 200), Confidence: 0.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateDetections([]models.Detection{tt.detection})
			if tt.wantErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestValidateDetections_TooMany(t *testing.T) {
	limits := DefaultRequestLimits()
	limits.MaxDetections = 2
	validator := NewRequestValidatorWithLimits(limits)

	detections := make([]models.Detection, 3)
	if err := validator.ValidateDetections(detections); err == nil {
		t.Error("Expected error for too many detections")
	}
	if err := validator.ValidateDetections(detections[:2]); err != nil {
		t.Errorf("Expected two detections to pass, got %v", err)
	}
}

func TestValidateClassifications(t *testing.T) {
	validator := NewRequestValidator()

	if err := validator.ValidateClassifications([]models.Classification{{Label: "beach", Probability: 0.9}}); err != nil {
		t.Errorf("Expected valid classification to pass, got %v", err)
	}
	if err := validator.ValidateClassifications(nil); err != nil {
		t.Errorf("Expected empty list to pass, got %v", err)
	}
	if err := validator.ValidateClassifications([]models.Classification{{Label: "", Probability: 0.5}}); err == nil {
		t.Error("Expected empty label to fail")
	}
	if err := validator.ValidateClassifications([]models.Classification{{Label: "x", Probability: 1.5}}); err == nil {
		t.Error("Expected probability above one to fail")
	}
}

func TestValidateExposureTime(t *testing.T) {
	validator := NewRequestValidator()
	ptr := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		seconds *float64
		wantErr bool
	}{
		{"absent", nil, false},
		{"1/60s", ptr(1.0 / 60), false},
		{"long exposure", ptr(30), false},
		{"zero", ptr(0), true},
		{"negative", ptr(-1), true},
		{"NaN", ptr(math.NaN()), true},
		{"over an hour", ptr(4000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateExposureTime(tt.seconds)
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_FirstFailureWins(t *testing.T) {
	validator := NewRequestValidator()
	bad := -1.0

	err := validator.Validate(
		[]models.Detection{{Box: models.BoundingBox{W: 1, H: 1}, Confidence: 2}},
		nil,
		&bad,
	)
	if err == nil {
		t.Fatal("Expected error")
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if !strings.Contains(appErr.Message, "confidence") {
		t.Errorf("Expected detection error first, got %q", appErr.Message)
	}
}

func TestValidateDetectionBounds(t *testing.T) {
	validator := NewRequestValidator()

	tests := []struct {
		name    string
		box     models.BoundingBox
		wantErr bool
	}{
		{"inside", models.BoundingBox{X: 10, Y: 10, W: 20, H: 20}, false},
		{"slight overhang", models.BoundingBox{X: -20, Y: 90, W: 50, H: 50}, false},
		{"degenerate is skipped", models.BoundingBox{X: 5000, W: 0, H: 10}, false},
		{"wholly outside", models.BoundingBox{X: 150, Y: 150, W: 10, H: 10}, true},
		{"huge", models.BoundingBox{W: 1e200, H: 1e200}, true},
		{"far left", models.BoundingBox{X: -500, Y: 0, W: 510, H: 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateDetectionBounds([]models.Detection{{Box: tt.box, Confidence: 0.5}}, 100, 100)
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}
