package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var testImageBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}

func TestHTTPImageFetcher_RetryLogic(t *testing.T) {
	tests := []struct {
		name          string
		responses     []int // Status codes to return in sequence
		expectRetries int   // Expected number of requests
		expectError   bool
		errorContains string
	}{
		{
			name:          "Success on first attempt",
			responses:     []int{200},
			expectRetries: 1,
			expectError:   false,
		},
		{
			name:          "Success on second attempt after 5xx",
			responses:     []int{500, 200},
			expectRetries: 2,
			expectError:   false,
		},
		{
			name:          "4xx client error - no retry",
			responses:     []int{404},
			expectRetries: 1,
			expectError:   true,
			errorContains: "client error: status code 404",
		},
		{
			name:          "4xx after 5xx - retry until 4xx then stop",
			responses:     []int{500, 404},
			expectRetries: 2,
			expectError:   true,
			errorContains: "client error: status code 404",
		},
		{
			name:          "All 5xx errors - retry all attempts",
			responses:     []int{500, 502, 503},
			expectRetries: 3,
			expectError:   true,
			errorContains: "server error: status code 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requestCount := 0

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if requestCount >= len(tt.responses) {
					t.Errorf("Unexpected request %d", requestCount+1)
					w.WriteHeader(500)
					return
				}
				statusCode := tt.responses[requestCount]
				requestCount++

				if statusCode == 200 {
					w.Header().Set("Content-Type", "image/jpeg")
					w.Write(testImageBytes)
				} else {
					w.WriteHeader(statusCode)
					fmt.Fprintf(w, "Error %d", statusCode)
				}
			}))
			defer server.Close()

			fetcher := NewHTTPImageFetcher(10 * time.Second)
			data, err := fetcher.FetchImage(context.Background(), server.URL)

			if requestCount != tt.expectRetries {
				t.Errorf("Expected %d requests, got %d", tt.expectRetries, requestCount)
			}

			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error, but got none")
				}
				if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Expected error to contain %q, got: %s", tt.errorContains, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !bytes.Equal(data, testImageBytes) {
				t.Error("Fetched bytes do not match served bytes")
			}
		})
	}
}

func TestHTTPImageFetcher_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Always fail so the fetcher sits in its backoff sleep
		w.WriteHeader(500)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	fetcher := NewHTTPImageFetcher(10 * time.Second)
	start := time.Now()
	_, err := fetcher.FetchImage(ctx, server.URL)
	if err == nil {
		t.Fatal("Expected error")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("Fetcher did not honor context cancellation during backoff")
	}
}

func TestIsAzureBlobURL(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"https://myaccount.blob.core.windows.net/photos/box.jpg", true},
		{"https://example.com/photos/box.jpg", false},
		{"not a url at all", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsAzureBlobURL(tt.url); got != tt.expected {
			t.Errorf("IsAzureBlobURL(%q) = %v, want %v", tt.url, got, tt.expected)
		}
	}
}

func TestSplitBlobPath(t *testing.T) {
	container, blob, err := splitBlobPath("/photos/2026/box.jpg")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if container != "photos" || blob != "2026/box.jpg" {
		t.Errorf("Got container=%q blob=%q", container, blob)
	}

	if _, _, err := splitBlobPath("/photosonly"); err == nil {
		t.Error("Expected error for path without blob segment")
	}
}
