package repository

import (
	"context"
	"fmt"

	"go-shipment-verifier/internal/storage"
	"go-shipment-verifier/internal/workpool"
	"go-shipment-verifier/pkg/validation"
)

// imageRepository routes each URL to the right fetcher: Azure blob
// hosts go through the blob client when one is configured, everything
// else over plain HTTP.
type imageRepository struct {
	httpFetcher storage.ImageFetcher
	blobFetcher storage.BlobFetcher // may be nil
	validator   *validation.URLValidator
	pool        *workpool.WorkerPool
}

// NewImageRepository creates the image source used by the service.
// blobFetcher may be nil when no Azure account is configured.
func NewImageRepository(httpFetcher storage.ImageFetcher, blobFetcher storage.BlobFetcher, pool *workpool.WorkerPool) ImageRepository {
	return &imageRepository{
		httpFetcher: httpFetcher,
		blobFetcher: blobFetcher,
		validator:   validation.NewURLValidator(),
		pool:        pool,
	}
}

// FetchImage retrieves the raw bytes of one image
func (r *imageRepository) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	if err := r.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}
	if r.blobFetcher != nil && storage.IsAzureBlobURL(imageURL) {
		return r.blobFetcher.FetchImage(ctx, imageURL)
	}
	return r.httpFetcher.FetchImage(ctx, imageURL)
}

// FetchImages fetches a batch concurrently through the worker pool.
// The fetches are independent; only their joint completion matters.
func (r *imageRepository) FetchImages(ctx context.Context, imageURLs []string) ([][]byte, error) {
	results := make([][]byte, len(imageURLs))
	errs := make([]error, len(imageURLs))

	jobs := make([]func(), len(imageURLs))
	for i, u := range imageURLs {
		i, u := i, u
		jobs[i] = func() {
			results[i], errs[i] = r.FetchImage(ctx, u)
		}
	}
	if r.pool != nil {
		r.pool.Do(jobs...)
	} else {
		for _, job := range jobs {
			job()
		}
	}

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("failed to fetch image %d (%s): %w", i, imageURLs[i], err)
		}
	}
	return results, nil
}

// ValidateImageURL validates if the provided URL is acceptable
func (r *imageRepository) ValidateImageURL(imageURL string) error {
	return r.validator.ValidateImageURL(imageURL)
}
