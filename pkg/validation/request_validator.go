package validation

import (
	"math"

	apperrors "github.com/anime-shed/photo-scorer-go/internal/errors"
	"github.com/anime-shed/photo-scorer-go/pkg/geometry"
	"github.com/anime-shed/photo-scorer-go/pkg/models"
)

// RequestLimits bounds the side inputs a client may attach to a photo
type RequestLimits struct {
	MaxDetections      int
	MaxClassifications int
	MaxLabelLength     int

	// MaxBoxOverhang is how far, as a fraction of the image dimension, a box
	// may reach past the image edge
	MaxBoxOverhang float64

	// Exposure times outside this window (seconds) are rejected
	MinExposureTime float64
	MaxExposureTime float64
}

// DefaultRequestLimits returns the default limits
func DefaultRequestLimits() RequestLimits {
	return RequestLimits{
		MaxDetections:      200,
		MaxClassifications: 50,
		MaxLabelLength:     128,
		MaxBoxOverhang:     1.0,
		MinExposureTime:    1e-6,
		MaxExposureTime:    3600,
	}
}

// RequestValidator checks detections, classifications and exposure hints.
// Degenerate boxes are not its concern: the scorer drops them.
type RequestValidator struct {
	limits RequestLimits
}

// NewRequestValidator creates a validator with default limits
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{limits: DefaultRequestLimits()}
}

// NewRequestValidatorWithLimits creates a validator with custom limits
func NewRequestValidatorWithLimits(limits RequestLimits) *RequestValidator {
	return &RequestValidator{limits: limits}
}

// ValidateDetections rejects oversized lists, non-finite coordinates and
// confidences outside [0, 1].
func (rv *RequestValidator) ValidateDetections(detections []models.Detection) error {
	if len(detections) > rv.limits.MaxDetections {
		return apperrors.NewValidationError("too many detections", nil).
			WithDetails("got %d, limit %d", len(detections), rv.limits.MaxDetections)
	}

	for i, d := range detections {
		b := d.Box
		if !finite(b.X, b.Y, b.W, b.H) {
			return apperrors.NewValidationError("detection has non-finite bounding box", nil).
				WithDetails("detection %d", i)
		}
		if !finite(d.Confidence) || d.Confidence < 0 || d.Confidence > 1 {
			return apperrors.NewValidationError("detection confidence must be within [0, 1]", nil).
				WithDetails("detection %d has confidence %v", i, d.Confidence)
		}
		if len(d.Label) > rv.limits.MaxLabelLength {
			return apperrors.NewValidationError("detection label too long", nil).
				WithDetails("detection %d", i)
		}
	}
	return nil
}

// ValidateDetectionBounds checks boxes against the decoded image size. A box
// must overlap the image and may not reach further than MaxBoxOverhang past
// any edge. Degenerate boxes are skipped.
func (rv *RequestValidator) ValidateDetectionBounds(detections []models.Detection, width, height int) error {
	w, h := float64(width), float64(height)
	slackX, slackY := w*rv.limits.MaxBoxOverhang, h*rv.limits.MaxBoxOverhang

	for i, d := range detections {
		b := d.Box
		if geometry.Degenerate(b) {
			continue
		}
		if geometry.Degenerate(geometry.Clip(b, w, h)) {
			return apperrors.NewValidationError("detection lies outside the image", nil).
				WithDetails("detection %d on a %dx%d image", i, width, height)
		}
		if b.X < -slackX || b.Y < -slackY || b.X+b.W > w+slackX || b.Y+b.H > h+slackY {
			return apperrors.NewValidationError("detection reaches too far beyond the image", nil).
				WithDetails("detection %d on a %dx%d image", i, width, height)
		}
	}
	return nil
}

// ValidateClassifications rejects probabilities outside [0, 1] and empty labels
func (rv *RequestValidator) ValidateClassifications(classifications []models.Classification) error {
	if len(classifications) > rv.limits.MaxClassifications {
		return apperrors.NewValidationError("too many classifications", nil).
			WithDetails("got %d, limit %d", len(classifications), rv.limits.MaxClassifications)
	}

	for i, c := range classifications {
		if c.Label == "" || len(c.Label) > rv.limits.MaxLabelLength {
			return apperrors.NewValidationError("classification label must be non-empty and short", nil).
				WithDetails("classification %d", i)
		}
		if !finite(c.Probability) || c.Probability < 0 || c.Probability > 1 {
			return apperrors.NewValidationError("classification probability must be within [0, 1]", nil).
				WithDetails("classification %d has probability %v", i, c.Probability)
		}
	}
	return nil
}

// ValidateExposureTime accepts nil (no hint) or a positive, plausible duration
func (rv *RequestValidator) ValidateExposureTime(seconds *float64) error {
	if seconds == nil {
		return nil
	}
	v := *seconds
	if !finite(v) || v < rv.limits.MinExposureTime || v > rv.limits.MaxExposureTime {
		return apperrors.NewValidationError("exposure time out of range", nil).
			WithDetails("%v s, allowed [%v, %v]", v, rv.limits.MinExposureTime, rv.limits.MaxExposureTime)
	}
	return nil
}

// Validate runs every check in order and returns the first failure
func (rv *RequestValidator) Validate(detections []models.Detection, classifications []models.Classification, exposure *float64) error {
	if err := rv.ValidateDetections(detections); err != nil {
		return err
	}
	if err := rv.ValidateClassifications(classifications); err != nil {
		return err
	}
	return rv.ValidateExposureTime(exposure)
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
