package repository

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/anime-shed/photo-scorer-go/internal/storage"
)

// SourceImageRepository routes http(s) URLs to the HTTP fetcher and
// azblob URLs to blob storage.
type SourceImageRepository struct {
	fetcher   storage.ImageFetcher
	blobs     storage.BlobStorage
	validator URLValidator
}

// NewSourceImageRepository creates a repository. blobs may be nil when Azure
// is not configured; validator may be nil to accept any non-empty URL.
func NewSourceImageRepository(fetcher storage.ImageFetcher, blobs storage.BlobStorage, validator URLValidator) ImageRepository {
	return &SourceImageRepository{
		fetcher:   fetcher,
		blobs:     blobs,
		validator: validator,
	}
}

// FetchImage retrieves the bytes behind imageURL
func (r *SourceImageRepository) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	if isBlobURL(imageURL) {
		if r.blobs == nil {
			return nil, ErrBlobStorageDisabled
		}
		return r.blobs.GetImage(ctx, imageURL)
	}
	if r.fetcher == nil {
		return nil, fmt.Errorf("%w: no HTTP fetcher configured", ErrInvalidImageURL)
	}
	return r.fetcher.FetchImage(ctx, imageURL)
}

// ValidateImageURL validates if the provided URL is acceptable
func (r *SourceImageRepository) ValidateImageURL(imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return ErrInvalidImageURL
	}
	if r.validator != nil {
		return r.validator.ValidateImageURL(imageURL)
	}
	return nil
}

func isBlobURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && strings.EqualFold(u.Scheme, storage.BlobScheme)
}
