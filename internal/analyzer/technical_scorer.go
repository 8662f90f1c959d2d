package analyzer

import (
	"errors"
	"fmt"
	"math"

	"github.com/anime-shed/photo-scorer-go/pkg/models"
)

const (
	minScore = 1.0
	maxScore = 10.0
)

var errEmptyBuffer = errors.New("pixel buffer has no pixels")

// TechnicalInput is everything the technical scorer reads
type TechnicalInput struct {
	Signals  Signals
	Exposure models.ExposureHint
	Width    int
	Height   int
}

// FallbackTechnicalScores is returned whenever technical analysis fails
func FallbackTechnicalScores() models.TechnicalScores {
	return models.TechnicalScores{
		Sharpness:    7,
		Focus:        7,
		Lighting:     6.5,
		Exposure:     6.5,
		ColorBalance: 7,
		Resolution:   8,
		ImageQuality: 7,
		Noise:        8,
		Artifacts:    8.5,
	}
}

type technicalScorer struct{}

// NewTechnicalScorer creates the default technical scorer
func NewTechnicalScorer() TechnicalScorer {
	return &technicalScorer{}
}

// clampScore bounds v to [1,10]; NaN maps to the minimum
func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return minScore
	}
	return math.Min(maxScore, math.Max(minScore, v))
}

// Score maps raw signals to the nine bounded scores. It draws from rnd once
// for focus and, when no exposure hint is present, once more for exposure.
func (ts *technicalScorer) Score(in TechnicalInput, rnd RandomSource) (models.TechnicalScores, error) {
	sig := in.Signals
	if sig.PixelCount == 0 {
		return models.TechnicalScores{}, errEmptyBuffer
	}
	if err := checkFinite(sig); err != nil {
		return models.TechnicalScores{}, err
	}

	// focus, exposure and imageQuality build on the unclamped values
	sharpnessRaw := sig.GradientMean / 25
	lightingRaw := lightingScore(sig.Brightness)
	colorRaw := colorBalanceScore(sig.MeanR, sig.MeanG, sig.MeanB)
	noiseRaw := sig.LocalDeviation / 50

	scores := models.TechnicalScores{
		Sharpness:    clampScore(sharpnessRaw),
		Focus:        clampScore(sharpnessRaw*0.9 + jitter(rnd, 0, 0.5)),
		Lighting:     clampScore(lightingRaw),
		ColorBalance: clampScore(colorRaw),
		Resolution:   ResolutionScore(in.Width, in.Height),
		ImageQuality: clampScore((sharpnessRaw + lightingRaw + colorRaw) / 3),
		Noise:        clampScore(10 - noiseRaw),
		Artifacts:    clampScore(9 - noiseRaw*0.5),
	}

	if in.Exposure != nil {
		scores.Exposure = ExposureScore(*in.Exposure)
	} else {
		scores.Exposure = clampScore(lightingRaw*0.8 + jitter(rnd, 0, 2))
	}

	return scores, nil
}

// lightingScore rewards a mid-gray mean and balanced dark/bright fractions
func lightingScore(b BrightnessProfile) float64 {
	balance := 1 - math.Abs(b.DarkRatio-b.BrightRatio)
	brightness := 1 - math.Abs(b.Mean-128)/128
	return (balance + brightness) * 5
}

func colorBalanceScore(r, g, b float64) float64 {
	deviation := math.Abs(r-g) + math.Abs(g-b) + math.Abs(r-b)
	return 10 - deviation/30
}

// ExposureScore applies the three-tier exposure time rule
func ExposureScore(seconds float64) float64 {
	switch {
	case seconds > 0.1:
		return 5
	case seconds < 0.001:
		return 6
	default:
		return 8.5
	}
}

// ResolutionScore is a step function over megapixels; boundaries belong to
// the lower tier.
func ResolutionScore(width, height int) float64 {
	pixels := int64(width) * int64(height)
	switch {
	case pixels > 20_000_000:
		return 10
	case pixels > 12_000_000:
		return 9
	case pixels > 8_000_000:
		return 8
	case pixels > 5_000_000:
		return 7
	case pixels > 2_000_000:
		return 6
	default:
		return 5
	}
}

func checkFinite(sig Signals) error {
	values := map[string]float64{
		"gradient_mean":   sig.GradientMean,
		"brightness_mean": sig.Brightness.Mean,
		"dark_ratio":      sig.Brightness.DarkRatio,
		"bright_ratio":    sig.Brightness.BrightRatio,
		"mean_r":          sig.MeanR,
		"mean_g":          sig.MeanG,
		"mean_b":          sig.MeanB,
		"local_deviation": sig.LocalDeviation,
	}
	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("signal %s is not finite", name)
		}
	}
	return nil
}
