package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go-shipment-verifier/internal/workpool"
)

// fakeFetcher serves payloads derived from the URL so order is
// observable.
type fakeFetcher struct {
	prefix  string
	failFor string
}

func (f *fakeFetcher) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	if f.failFor != "" && strings.Contains(imageURL, f.failFor) {
		return nil, errors.New("fetch failed")
	}
	return []byte(f.prefix + imageURL), nil
}

func TestFetchImage_RoutesAzureURLsToBlobFetcher(t *testing.T) {
	httpFetcher := &fakeFetcher{prefix: "http:"}
	blobFetcher := &fakeFetcher{prefix: "blob:"}
	repo := NewImageRepository(httpFetcher, blobFetcher, nil)

	tests := []struct {
		name       string
		url        string
		wantPrefix string
	}{
		{"Plain HTTPS", "https://example.com/image.jpg", "http:"},
		{"Azure blob host", "https://acct.blob.core.windows.net/shipments/pack.jpg", "blob:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := repo.FetchImage(context.Background(), tt.url)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !strings.HasPrefix(string(data), tt.wantPrefix) {
				t.Errorf("Expected %s fetcher, got payload %q", tt.wantPrefix, data)
			}
		})
	}
}

func TestFetchImage_AzureURLWithoutBlobFetcher(t *testing.T) {
	httpFetcher := &fakeFetcher{prefix: "http:"}
	repo := NewImageRepository(httpFetcher, nil, nil)

	data, err := repo.FetchImage(context.Background(), "https://acct.blob.core.windows.net/c/b.jpg")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(data), "http:") {
		t.Error("Azure URLs must fall back to HTTP when no blob client is configured")
	}
}

func TestFetchImage_RejectsInvalidURL(t *testing.T) {
	repo := NewImageRepository(&fakeFetcher{}, nil, nil)

	if _, err := repo.FetchImage(context.Background(), "ftp://example.com/a.jpg"); err == nil {
		t.Error("Expected validation error for disallowed scheme")
	}
}

func TestFetchImages_PreservesOrder(t *testing.T) {
	pool := workpool.NewWorkerPool(4)
	pool.Start()
	defer pool.Close()

	repo := NewImageRepository(&fakeFetcher{prefix: "http:"}, nil, pool)

	urls := make([]string, 10)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/image-%d.jpg", i)
	}

	results, err := repo.FetchImages(context.Background(), urls)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(results) != len(urls) {
		t.Fatalf("Expected %d results, got %d", len(urls), len(results))
	}
	for i, data := range results {
		if string(data) != "http:"+urls[i] {
			t.Errorf("Result %d out of order: got %q", i, data)
		}
	}
}

func TestFetchImages_SingleFailureFailsBatch(t *testing.T) {
	repo := NewImageRepository(&fakeFetcher{prefix: "http:", failFor: "image-3"}, nil, nil)

	urls := []string{
		"https://example.com/image-1.jpg",
		"https://example.com/image-3.jpg",
		"https://example.com/image-5.jpg",
	}
	_, err := repo.FetchImages(context.Background(), urls)
	if err == nil {
		t.Fatal("Expected batch to fail when one fetch fails")
	}
	if !strings.Contains(err.Error(), "image-3") {
		t.Errorf("Expected failing URL in error, got: %v", err)
	}
}
