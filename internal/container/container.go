package container

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/photo-scorer-go/internal/analyzer"
	"github.com/anime-shed/photo-scorer-go/internal/config"
	"github.com/anime-shed/photo-scorer-go/internal/decode"
	"github.com/anime-shed/photo-scorer-go/internal/factory"
	"github.com/anime-shed/photo-scorer-go/internal/logger"
	"github.com/anime-shed/photo-scorer-go/internal/observer"
	"github.com/anime-shed/photo-scorer-go/internal/repository"
	"github.com/anime-shed/photo-scorer-go/internal/service"
	"github.com/anime-shed/photo-scorer-go/internal/storage"
	"github.com/anime-shed/photo-scorer-go/internal/transport"
	"github.com/anime-shed/photo-scorer-go/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config               *config.Config
	imageFetcher         storage.ImageFetcher
	blobStorage          storage.BlobStorage
	photoAnalyzer        analyzer.PhotoAnalyzer
	imageRepository      repository.ImageRepository
	events               observer.Subject
	metrics              *observer.MetricsObserver
	photoAnalysisService service.PhotoAnalysisService
	handler              http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	components := factory.NewComponentFactory(cfg)

	imageFetcher := components.StorageFactory.CreateFetcher()
	blobStorage, err := components.StorageFactory.CreateBlobStorage()
	if err != nil {
		return nil, err
	}

	urlValidator := validation.NewURLValidator()
	if blobStorage != nil {
		urlValidator.AllowScheme(storage.BlobScheme)
	}

	photoAnalyzer, err := components.AnalyzerFactory.CreateAnalyzer(factory.StandardAnalyzer)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	events := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	imageRepository := repository.NewSourceImageRepository(imageFetcher, blobStorage, urlValidator)
	photoAnalysisService := service.NewPhotoAnalysisService(
		imageRepository,
		decode.NewDecoder(cfg.MaxImagePixels),
		photoAnalyzer,
		validation.NewRequestValidator(),
		events,
		service.Timeouts{Fetch: cfg.ImageFetchTimeout, Analysis: cfg.AnalysisTimeout},
	)
	handler := transport.NewHandler(photoAnalysisService, metrics, cfg)

	logger.WithComponent("container").WithFields(logrus.Fields{
		"azure_enabled": blobStorage != nil,
		"workers":       photoAnalyzer.Stats().Workers,
		"seeded":        cfg.JitterSeed != nil,
	}).Info("Dependencies initialized")

	return &Container{
		config:               cfg,
		imageFetcher:         imageFetcher,
		blobStorage:          blobStorage,
		photoAnalyzer:        photoAnalyzer,
		imageRepository:      imageRepository,
		events:               events,
		metrics:              metrics,
		photoAnalysisService: photoAnalysisService,
		handler:              handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the photo analysis service
func (c *Container) Service() service.PhotoAnalysisService {
	return c.photoAnalysisService
}

// Close waits for pending events and stops the analyzer's workers
func (c *Container) Close() error {
	c.events.Close()
	return c.photoAnalyzer.Close()
}
