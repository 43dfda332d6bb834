package repository

import (
	"context"
)

// ImageRepository defines the interface for image data access
type ImageRepository interface {
	// FetchImage retrieves the raw bytes of one image
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)

	// FetchImages retrieves a batch of images, preserving input
	// order; the fetches run concurrently
	FetchImages(ctx context.Context, imageURLs []string) ([][]byte, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error
}
