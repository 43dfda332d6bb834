package validation

import (
	"testing"

	apperrors "go-shipment-verifier/internal/errors"
)

func TestValidateImageURL(t *testing.T) {
	validator := NewURLValidator()

	tests := []struct {
		name    string
		url     string
		wantErr string // empty means valid
	}{
		{"Plain HTTP", "http://example.com/image.jpg", ""},
		{"HTTPS with path", "https://cdn.example.com/shipments/42/pack.png", ""},
		{"IP host", "http://192.168.1.1/image.jpg", ""},
		{"Empty", "", "URL cannot be empty"},
		{"Whitespace only", "  \t", "URL cannot be empty"},
		{"Missing scheme", "example.com/image.jpg", "URL scheme not allowed"},
		{"FTP scheme", "ftp://example.com/image.jpg", "URL scheme not allowed"},
		{"Data URI", "data:image/png;base64,AAAA", "URL scheme not allowed"},
		{"No host", "http:///path", "URL must have a valid host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateImageURL(tt.url)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected %q to pass validation, got: %v", tt.url, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected %q to fail validation", tt.url)
			}
			appErr, ok := err.(*apperrors.AppError)
			if !ok {
				t.Fatalf("Expected AppError, got %T", err)
			}
			if appErr.Message != tt.wantErr {
				t.Errorf("Expected message %q, got %q", tt.wantErr, appErr.Message)
			}
		})
	}
}

func TestValidateImageURL_RestrictedHosts(t *testing.T) {
	validator := NewURLValidatorWithOptions([]string{"https"}, []string{"cdn.example.com"})

	if err := validator.ValidateImageURL("https://cdn.example.com/image.jpg"); err != nil {
		t.Errorf("Expected allowed host to pass validation, got: %v", err)
	}
	if err := validator.ValidateImageURL("https://other.example.com/image.jpg"); err == nil {
		t.Error("Expected disallowed host to fail validation")
	}
	if err := validator.ValidateImageURL("http://cdn.example.com/image.jpg"); err == nil {
		t.Error("Expected disallowed scheme to fail validation")
	}
}
