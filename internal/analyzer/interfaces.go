package analyzer

import (
	"context"

	"github.com/anime-shed/photo-scorer-go/pkg/models"
)

// PhotoAnalyzer defines the main interface for photo scoring
type PhotoAnalyzer interface {
	Analyze(ctx context.Context, input AnalysisInput) (AnalysisOutput, error)

	// Stats exposes the scan worker pool counters
	Stats() PoolStats

	// Lifecycle management
	Close() error
}

// MetricsCalculator handles the raw pixel scans
type MetricsCalculator interface {
	GradientMagnitudeMean(buf *PixelBuffer) float64
	BrightnessProfile(buf *PixelBuffer) BrightnessProfile
	ChannelMeans(buf *PixelBuffer) (r, g, b float64)
	LocalDeviationMean(buf *PixelBuffer) float64
	CollectSignals(buf *PixelBuffer) (Signals, error)
}

// TechnicalScorer turns raw signals into technical scores
type TechnicalScorer interface {
	Score(in TechnicalInput, rnd RandomSource) (models.TechnicalScores, error)
}

// CompositionScorer turns detections into composition scores
type CompositionScorer interface {
	Score(detections []models.Detection, width, height int, rnd RandomSource) models.CompositionScores
}
