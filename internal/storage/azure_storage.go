package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobFetcher retrieves image bytes from Azure blob storage, used for
// operators who archive packaging photos in a blob container.
type BlobFetcher interface {
	FetchImage(ctx context.Context, blobURL string) ([]byte, error)
}

type azureFetcher struct {
	client *azblob.Client
}

// NewAzureFetcher creates a shared-key blob fetcher for the given
// storage account.
func NewAzureFetcher(accountName, accountKey string) (BlobFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &azureFetcher{client: client}, nil
}

// FetchImage downloads one blob. The URL path is container/blob.
func (f *azureFetcher) FetchImage(ctx context.Context, blobURL string) ([]byte, error) {
	parsedURL, err := url.Parse(blobURL)
	if err != nil {
		return nil, fmt.Errorf("invalid blob URL: %w", err)
	}

	containerName, blobName, err := splitBlobPath(parsedURL.Path)
	if err != nil {
		return nil, err
	}

	downloadResponse, err := f.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("blob download failed: %w", err)
	}

	retryReader := downloadResponse.Body
	defer retryReader.Close()

	data, err := io.ReadAll(io.LimitReader(retryReader, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d byte limit", maxImageBytes)
	}
	return data, nil
}

// IsAzureBlobURL reports whether the URL points at an Azure blob
// storage host.
func IsAzureBlobURL(imageURL string) bool {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(parsedURL.Host, ".blob.core.windows.net")
}

func splitBlobPath(path string) (string, string, error) {
	trimmed := strings.TrimPrefix(path, "/")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("blob URL path must be container/blob (got %q)", path)
	}
	return parts[0], parts[1], nil
}
