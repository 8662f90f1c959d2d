package repository

import "context"

// ImageRepository defines the interface for photo source access
type ImageRepository interface {
	// FetchImage retrieves the raw bytes behind a source URL
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error
}

// URLValidator is satisfied by validation.URLValidator
type URLValidator interface {
	ValidateImageURL(imageURL string) error
}
