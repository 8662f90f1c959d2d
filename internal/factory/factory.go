package factory

import (
	"fmt"

	"github.com/anime-shed/photo-scorer-go/internal/analyzer"
	"github.com/anime-shed/photo-scorer-go/internal/config"
	"github.com/anime-shed/photo-scorer-go/internal/storage"
)

// AnalyzerType represents different analyzer configurations
type AnalyzerType string

const (
	// StandardAnalyzer scans on a worker pool sized from config
	StandardAnalyzer AnalyzerType = "standard"
	// SequentialAnalyzer scans on the calling goroutine
	SequentialAnalyzer AnalyzerType = "sequential"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
)

// AnalyzerFactory creates photo analyzers
type AnalyzerFactory interface {
	CreateAnalyzer(analyzerType AnalyzerType) (analyzer.PhotoAnalyzer, error)
}

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateFetcher() storage.ImageFetcher
	// CreateBlobStorage returns nil, nil when Azure is not configured
	CreateBlobStorage() (storage.BlobStorage, error)
	CreateStorage(storageType StorageType) (interface{}, error)
}

// analyzerFactory implements AnalyzerFactory
type analyzerFactory struct {
	cfg *config.Config
}

// NewAnalyzerFactory creates a new analyzer factory
func NewAnalyzerFactory(cfg *config.Config) AnalyzerFactory {
	return &analyzerFactory{cfg: cfg}
}

// CreateAnalyzer creates an analyzer based on the specified type
func (f *analyzerFactory) CreateAnalyzer(analyzerType AnalyzerType) (analyzer.PhotoAnalyzer, error) {
	opts := analyzer.DefaultOptions().WithMaxWorkers(f.cfg.MaxWorkers)
	if f.cfg.JitterSeed != nil {
		opts = opts.WithSeed(*f.cfg.JitterSeed)
	}

	switch analyzerType {
	case StandardAnalyzer:
	case SequentialAnalyzer:
		opts = opts.WithoutWorkerPool()
	default:
		return nil, fmt.Errorf("unsupported analyzer type: %s", analyzerType)
	}
	return analyzer.NewPhotoAnalyzer(opts)
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateFetcher builds the HTTP fetcher. Its per-attempt timeout and size
// cap follow the fetch timeout and request body limit.
func (f *storageFactory) CreateFetcher() storage.ImageFetcher {
	httpCfg := storage.DefaultHTTPFetcherConfig()
	httpCfg.Timeout = f.cfg.ImageFetchTimeout
	httpCfg.MaxBytes = f.cfg.MaxRequestBodySize
	return storage.NewHTTPImageFetcher(httpCfg)
}

// CreateBlobStorage builds the Azure client when credentials are present
func (f *storageFactory) CreateBlobStorage() (storage.BlobStorage, error) {
	if !f.cfg.AzureEnabled() {
		return nil, nil
	}
	blobs, err := storage.NewAzureStorage(f.cfg.AzureAccountName, f.cfg.AzureAccountKey, f.cfg.MaxRequestBodySize)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure storage: %w", err)
	}
	return blobs, nil
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (interface{}, error) {
	switch storageType {
	case HTTPStorage:
		return f.CreateFetcher(), nil
	case AzureStorage:
		if !f.cfg.AzureEnabled() {
			return nil, fmt.Errorf("azure storage requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
		return f.CreateBlobStorage()
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	AnalyzerFactory AnalyzerFactory
	StorageFactory  StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		AnalyzerFactory: NewAnalyzerFactory(cfg),
		StorageFactory:  NewStorageFactory(cfg),
	}
}
