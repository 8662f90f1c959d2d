package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/anime-shed/photo-scorer-go/internal/errors"
	"github.com/anime-shed/photo-scorer-go/internal/logger"
	"github.com/anime-shed/photo-scorer-go/pkg/models"
)

// AnalysisInput is one photo to score. The buffer and detections are only
// read during Analyze and never retained.
type AnalysisInput struct {
	Buffer     *PixelBuffer
	Exposure   models.ExposureHint
	Detections []models.Detection
}

// AnalysisOutput wraps the result with bookkeeping the service reports
type AnalysisOutput struct {
	Result            models.AnalysisResult
	Signals           Signals
	TechnicalFallback bool
	// Detections are the inputs that survived degenerate-box filtering
	Detections        []models.Detection
	DetectionsUsed    int
	Duration          time.Duration
}

// coreAnalyzer implements PhotoAnalyzer and orchestrates all components
type coreAnalyzer struct {
	options     AnalysisOptions
	workerPool  *WorkerPool
	metrics     MetricsCalculator
	technical   TechnicalScorer
	composition CompositionScorer
}

// NewPhotoAnalyzer creates a new analyzer with all components
func NewPhotoAnalyzer(options AnalysisOptions) (PhotoAnalyzer, error) {
	if options.ThirdsTolerance < 0 || options.ThirdsTolerance >= 0.5 {
		return nil, fmt.Errorf("thirds tolerance must be in [0, 0.5), got %v", options.ThirdsTolerance)
	}

	var pool *WorkerPool
	if options.UseWorkerPool {
		pool = NewWorkerPool(options.MaxWorkers)
		pool.Start()
	}

	return &coreAnalyzer{
		options:     options,
		workerPool:  pool,
		metrics:     NewMetricsCalculator(pool),
		technical:   NewTechnicalScorer(),
		composition: NewCompositionScorer(options.ThirdsTolerance),
	}, nil
}

// Analyze scores one photo. Only a missing buffer or a cancelled context
// produce an error; technical failures are replaced by the fallback vector.
func (ca *coreAnalyzer) Analyze(ctx context.Context, input AnalysisInput) (AnalysisOutput, error) {
	start := time.Now()

	if input.Buffer == nil {
		return AnalysisOutput{}, apperrors.NewInvalidBufferError("no pixel buffer supplied", nil)
	}
	if err := ctx.Err(); err != nil {
		return AnalysisOutput{}, apperrors.NewTimeoutError("analysis cancelled before scanning", err)
	}

	rnd := ca.options.randomSource()
	buf := input.Buffer

	technical, signals, err := ca.scoreTechnical(buf, input.Exposure, rnd)
	fallback := err != nil
	if fallback {
		logger.WithComponent("analyzer").WithError(err).WithFields(logrus.Fields{
			"width":  buf.Width(),
			"height": buf.Height(),
		}).Warn("Technical analysis failed, using fallback scores")
	}

	// scans are the unit of cancellation
	if err := ctx.Err(); err != nil {
		return AnalysisOutput{}, apperrors.NewTimeoutError("analysis cancelled after scanning", err)
	}

	usable := UsableDetections(input.Detections)
	composition := ca.composition.Score(usable, buf.Width(), buf.Height(), rnd)

	output := AnalysisOutput{
		Result:            Aggregate(technical, composition),
		Signals:           signals,
		TechnicalFallback: fallback,
		Detections:        usable,
		DetectionsUsed:    len(usable),
		Duration:          time.Since(start),
	}

	logger.WithComponent("analyzer").WithFields(logrus.Fields{
		"width":           buf.Width(),
		"height":          buf.Height(),
		"detections":      len(input.Detections),
		"detections_used": output.DetectionsUsed,
		"overall_score":   output.Result.OverallScore,
		"duration_ms":     output.Duration.Milliseconds(),
	}).Debug("Photo analysis finished")

	return output, nil
}

// scoreTechnical never lets a failure escape as a partial record: either
// all nine scores are computed or the fallback vector is returned with err.
func (ca *coreAnalyzer) scoreTechnical(buf *PixelBuffer, exposure models.ExposureHint, rnd RandomSource) (scores models.TechnicalScores, signals Signals, err error) {
	defer func() {
		if r := recover(); r != nil {
			scores = FallbackTechnicalScores()
			err = fmt.Errorf("technical scoring panicked: %v", r)
		}
	}()

	signals, err = ca.metrics.CollectSignals(buf)
	if err != nil {
		return FallbackTechnicalScores(), signals, err
	}

	scores, err = ca.technical.Score(TechnicalInput{
		Signals:  signals,
		Exposure: exposure,
		Width:    buf.Width(),
		Height:   buf.Height(),
	}, rnd)
	if err != nil {
		return FallbackTechnicalScores(), signals, err
	}
	return scores, signals, nil
}

// Stats returns the worker pool counters, zero when the pool is disabled
func (ca *coreAnalyzer) Stats() PoolStats {
	if ca.workerPool == nil {
		return PoolStats{}
	}
	return ca.workerPool.GetStats()
}

// Close releases the worker pool
func (ca *coreAnalyzer) Close() error {
	if ca.workerPool != nil {
		ca.workerPool.Close()
	}
	return nil
}
