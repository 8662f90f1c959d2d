package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobScheme prefixes source URLs served from Azure blob storage
const BlobScheme = "azblob"

// BlobStorage fetches photos kept in Azure blob storage
type BlobStorage interface {
	GetImage(ctx context.Context, blobURL string) ([]byte, error)
}

type azureStorage struct {
	client   *azblob.Client
	maxBytes int64
}

// NewAzureStorage authenticates with a shared key against the account's
// default blob endpoint.
func NewAzureStorage(accountName, accountKey string, maxBytes int64) (BlobStorage, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net/", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}

	return &azureStorage{client: client, maxBytes: maxBytes}, nil
}

// ParseBlobURL splits azblob://container/path/to/blob into its parts
func ParseBlobURL(blobURL string) (container, blob string, err error) {
	parsed, err := url.Parse(blobURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob URL: %w", err)
	}
	if parsed.Scheme != BlobScheme {
		return "", "", fmt.Errorf("invalid blob URL scheme %q", parsed.Scheme)
	}

	container = parsed.Host
	blob = strings.TrimPrefix(parsed.Path, "/")
	if container == "" || blob == "" {
		return "", "", fmt.Errorf("blob URL must name a container and a blob: %q", blobURL)
	}
	return container, blob, nil
}

func (s *azureStorage) GetImage(ctx context.Context, blobURL string) ([]byte, error) {
	containerName, blobName, err := ParseBlobURL(blobURL)
	if err != nil {
		return nil, err
	}

	downloadResponse, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	body := downloadResponse.Body
	defer body.Close()

	return readCapped(body, s.maxBytes)
}
