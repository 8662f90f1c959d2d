package service

import (
	"context"
	stderrors "errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/anime-shed/photo-scorer-go/internal/advisor"
	"github.com/anime-shed/photo-scorer-go/internal/analyzer"
	"github.com/anime-shed/photo-scorer-go/internal/decode"
	apperrors "github.com/anime-shed/photo-scorer-go/internal/errors"
	"github.com/anime-shed/photo-scorer-go/internal/observer"
	"github.com/anime-shed/photo-scorer-go/internal/repository"
	"github.com/anime-shed/photo-scorer-go/pkg/models"
	"github.com/anime-shed/photo-scorer-go/pkg/validation"
)

// PhotoAnalysisService scores uploaded or remote photos
type PhotoAnalysisService interface {
	AnalyzeUpload(ctx context.Context, input AnalyzeUploadInput) (*models.AnalysisResponse, error)
	AnalyzeURL(ctx context.Context, request models.AnalyzeURLRequest) (*models.AnalysisResponse, error)
	ValidateImageURL(imageURL string) error
	Stats() analyzer.PoolStats
}

// AnalyzeUploadInput is a photo received directly from the client
type AnalyzeUploadInput struct {
	FileName        string
	Data            []byte
	Detections      []models.Detection
	Classifications []models.Classification
	// ExposureTime, when set, overrides the EXIF value
	ExposureTime *float64
}

// Timeouts bound the two blocking stages of a request
type Timeouts struct {
	Fetch    time.Duration
	Analysis time.Duration
}

type photoAnalysisService struct {
	imageRepo repository.ImageRepository
	decoder   *decode.Decoder
	analyzer  analyzer.PhotoAnalyzer
	validator *validation.RequestValidator
	events    observer.Subject
	timeouts  Timeouts
}

// NewPhotoAnalysisService wires the service. events may be nil.
func NewPhotoAnalysisService(
	imageRepository repository.ImageRepository,
	decoder *decode.Decoder,
	photoAnalyzer analyzer.PhotoAnalyzer,
	validator *validation.RequestValidator,
	events observer.Subject,
	timeouts Timeouts,
) PhotoAnalysisService {
	return &photoAnalysisService{
		imageRepo: imageRepository,
		decoder:   decoder,
		analyzer:  photoAnalyzer,
		validator: validator,
		events:    events,
		timeouts:  timeouts,
	}
}

// sourceRequest is the common shape of both entry points
type sourceRequest struct {
	source          string
	fileName        string
	imageURL        string
	detections      []models.Detection
	classifications []models.Classification
	exposure        *float64
}

// AnalyzeUpload scores a photo whose bytes the client sent
func (s *photoAnalysisService) AnalyzeUpload(ctx context.Context, input AnalyzeUploadInput) (*models.AnalysisResponse, error) {
	req := sourceRequest{
		source:          input.FileName,
		fileName:        input.FileName,
		detections:      input.Detections,
		classifications: input.Classifications,
		exposure:        input.ExposureTime,
	}
	id, start := s.begin(ctx, req)

	if err := s.validator.Validate(req.detections, req.classifications, req.exposure); err != nil {
		return nil, s.fail(ctx, id, req, start, err)
	}
	return s.analyze(ctx, id, req, start, input.Data)
}

// AnalyzeURL fetches a remote photo and scores it
func (s *photoAnalysisService) AnalyzeURL(ctx context.Context, request models.AnalyzeURLRequest) (*models.AnalysisResponse, error) {
	req := sourceRequest{
		source:          request.URL,
		imageURL:        request.URL,
		detections:      request.Detections,
		classifications: request.Classifications,
		exposure:        request.ExposureTime,
	}
	id, start := s.begin(ctx, req)

	if err := s.ValidateImageURL(request.URL); err != nil {
		return nil, s.fail(ctx, id, req, start, apperrors.NewValidationError("invalid image URL", err))
	}
	if err := s.validator.Validate(req.detections, req.classifications, req.exposure); err != nil {
		return nil, s.fail(ctx, id, req, start, err)
	}

	data, err := s.fetch(ctx, request.URL)
	if err != nil {
		s.publish(ctx, observer.AnalysisEvent{
			EventType:    observer.ImageFetchFailed,
			AnalysisID:   id,
			Source:       req.source,
			ErrorMessage: err.Error(),
		})
		return nil, s.fail(ctx, id, req, start, err)
	}
	s.publish(ctx, observer.AnalysisEvent{
		EventType:  observer.ImageFetched,
		AnalysisID: id,
		Source:     req.source,
		Success:    true,
		Metadata:   map[string]interface{}{"bytes": len(data)},
	})

	return s.analyze(ctx, id, req, start, data)
}

// ValidateImageURL validates the image URL
func (s *photoAnalysisService) ValidateImageURL(imageURL string) error {
	return s.imageRepo.ValidateImageURL(imageURL)
}

// Stats exposes the analyzer's scan pool counters
func (s *photoAnalysisService) Stats() analyzer.PoolStats {
	return s.analyzer.Stats()
}

func (s *photoAnalysisService) fetch(ctx context.Context, imageURL string) ([]byte, error) {
	if s.timeouts.Fetch > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeouts.Fetch)
		defer cancel()
	}

	data, err := s.imageRepo.FetchImage(ctx, imageURL)
	switch {
	case err == nil:
		return data, nil
	case stderrors.Is(err, repository.ErrBlobStorageDisabled):
		return nil, apperrors.NewValidationError("blob storage is not configured", err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return nil, apperrors.NewTimeoutError("timed out fetching image", err)
	default:
		return nil, apperrors.NewNetworkError("failed to fetch image", err)
	}
}

func (s *photoAnalysisService) analyze(ctx context.Context, id string, req sourceRequest, start time.Time, data []byte) (*models.AnalysisResponse, error) {
	decoded, err := s.decoder.Decode(data)
	if err != nil {
		return nil, s.fail(ctx, id, req, start, err)
	}
	if err := s.validator.ValidateDetectionBounds(req.detections, decoded.Width, decoded.Height); err != nil {
		return nil, s.fail(ctx, id, req, start, err)
	}

	exposure := decoded.Exposure
	if req.exposure != nil {
		exposure = req.exposure
	}

	analysisCtx := ctx
	if s.timeouts.Analysis > 0 {
		var cancel context.CancelFunc
		analysisCtx, cancel = context.WithTimeout(ctx, s.timeouts.Analysis)
		defer cancel()
	}

	out, err := s.analyzer.Analyze(analysisCtx, analyzer.AnalysisInput{
		Buffer:     decoded.Buffer,
		Exposure:   exposure,
		Detections: req.detections,
	})
	if err != nil {
		return nil, s.fail(ctx, id, req, start, err)
	}

	if out.TechnicalFallback {
		s.publish(ctx, observer.AnalysisEvent{
			EventType:  observer.TechnicalFallback,
			AnalysisID: id,
			Source:     req.source,
		})
	}

	// fallback signals may be partial or non-finite
	signals := out.Signals
	if out.TechnicalFallback {
		signals = analyzer.Signals{}
	}

	var topConfidence float64
	if top, ok := advisor.TopClassification(req.classifications); ok {
		topConfidence = top.Probability
	}

	elapsed := time.Since(start)
	response := &models.AnalysisResponse{
		ID:                id,
		FileName:          req.fileName,
		ImageURL:          req.imageURL,
		AnalyzedAt:        time.Now().UTC().Format(time.RFC3339),
		ProcessingTimeSec: elapsed.Seconds(),
		Image: models.ImageInfo{
			Width:        decoded.Width,
			Height:       decoded.Height,
			Format:       decoded.Format,
			Megapixels:   math.Round(float64(decoded.Width)*float64(decoded.Height)/1e4) / 100,
			ExposureTime: exposure,
		},
		Technical:         out.Result.Technical,
		Composition:       out.Result.Composition,
		OverallScore:      out.Result.OverallScore,
		DisplayScore:      out.Result.DisplayOverallScore(),
		TechnicalFallback: out.TechnicalFallback,
		DetectionsUsed:    out.DetectionsUsed,
		Content:           advisor.Describe(req.classifications, out.Detections, signals),
		Improvements:      advisor.Suggest(out.Result.Technical, out.Result.Composition, topConfidence),
	}

	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		AnalysisID:     id,
		Source:         req.source,
		ProcessingTime: elapsed,
		OverallScore:   out.Result.OverallScore,
		Success:        true,
		Metadata: map[string]interface{}{
			"width":           decoded.Width,
			"height":          decoded.Height,
			"format":          decoded.Format,
			"detections_used": out.DetectionsUsed,
		},
	})

	return response, nil
}

func (s *photoAnalysisService) begin(ctx context.Context, req sourceRequest) (string, time.Time) {
	id := uuid.NewString()
	s.publish(ctx, observer.AnalysisEvent{
		EventType:  observer.AnalysisStarted,
		AnalysisID: id,
		Source:     req.source,
	})
	return id, time.Now()
}

// fail publishes the failure and returns err as an AppError
func (s *photoAnalysisService) fail(ctx context.Context, id string, req sourceRequest, start time.Time, err error) error {
	var appErr *apperrors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = apperrors.NewProcessingError("photo analysis failed", err)
	}

	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisFailed,
		AnalysisID:     id,
		Source:         req.source,
		ProcessingTime: time.Since(start),
		ErrorMessage:   appErr.Error(),
	})
	return appErr
}

func (s *photoAnalysisService) publish(ctx context.Context, event observer.AnalysisEvent) {
	if s.events != nil {
		s.events.NotifyObservers(ctx, event)
	}
}
