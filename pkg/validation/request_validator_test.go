package validation

import (
	"testing"

	"go-shipment-verifier/pkg/models"
)

func issueCodes(issues []Issue) []string {
	codes := make([]string, len(issues))
	for i, issue := range issues {
		codes[i] = issue.Code
	}
	return codes
}

func hasCode(issues []Issue, code string) bool {
	for _, issue := range issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

func TestValidatePair(t *testing.T) {
	validator := NewRequestValidator(5)

	tests := []struct {
		name     string
		req      *models.CompareRequest
		wantCode string // empty means valid
	}{
		{
			name: "Valid inline pair",
			req: &models.CompareRequest{
				Packaging: models.ImageInput{Data: "QUJD"},
				Delivery:  models.ImageInput{Data: "REVG"},
			},
		},
		{
			name: "Valid URL pair",
			req: &models.CompareRequest{
				Packaging: models.ImageInput{URL: "https://example.com/pack.jpg"},
				Delivery:  models.ImageInput{URL: "https://example.com/deli.jpg"},
			},
		},
		{
			name: "Mixed inline and URL",
			req: &models.CompareRequest{
				Packaging: models.ImageInput{Data: "QUJD"},
				Delivery:  models.ImageInput{URL: "https://example.com/deli.jpg"},
			},
		},
		{
			name: "Missing delivery",
			req: &models.CompareRequest{
				Packaging: models.ImageInput{Data: "QUJD"},
			},
			wantCode: "empty_image",
		},
		{
			name: "Both inline and URL on one image",
			req: &models.CompareRequest{
				Packaging: models.ImageInput{Data: "QUJD", URL: "https://example.com/pack.jpg"},
				Delivery:  models.ImageInput{Data: "REVG"},
			},
			wantCode: "ambiguous_image",
		},
		{
			name: "Bad URL scheme",
			req: &models.CompareRequest{
				Packaging: models.ImageInput{URL: "ftp://example.com/pack.jpg"},
				Delivery:  models.ImageInput{Data: "REVG"},
			},
			wantCode: "invalid_url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := validator.ValidatePair(tt.req)
			if tt.wantCode == "" {
				if len(issues) != 0 {
					t.Errorf("Expected no issues, got %v", issueCodes(issues))
				}
				return
			}
			if !hasCode(issues, tt.wantCode) {
				t.Errorf("Expected issue %q, got %v", tt.wantCode, issueCodes(issues))
			}
		})
	}
}

func TestValidateMultiAngle(t *testing.T) {
	validator := NewRequestValidator(3)

	inline := func(n int) []models.ImageInput {
		inputs := make([]models.ImageInput, n)
		for i := range inputs {
			inputs[i] = models.ImageInput{Data: "QUJD"}
		}
		return inputs
	}

	tests := []struct {
		name      string
		packaging []models.ImageInput
		delivery  []models.ImageInput
		wantCode  string
	}{
		{"One per side", inline(1), inline(1), ""},
		{"At the cap", inline(3), inline(3), ""},
		{"Uneven sides", inline(3), inline(1), ""},
		{"Empty packaging", nil, inline(2), "no_images"},
		{"Over the cap", inline(4), inline(1), "too_many_images"},
		{
			"Ambiguous image inside batch",
			[]models.ImageInput{{Data: "QUJD"}, {Data: "QUJD", URL: "https://example.com/a.jpg"}},
			inline(1),
			"ambiguous_image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &models.MultiAngleCompareRequest{Packaging: tt.packaging, Delivery: tt.delivery}
			issues := validator.ValidateMultiAngle(req)
			if tt.wantCode == "" {
				if len(issues) != 0 {
					t.Errorf("Expected no issues, got %v", issueCodes(issues))
				}
				return
			}
			if !hasCode(issues, tt.wantCode) {
				t.Errorf("Expected issue %q, got %v", tt.wantCode, issueCodes(issues))
			}
		})
	}
}

func TestConvertIssuesToMessages(t *testing.T) {
	issues := []Issue{
		{Code: "empty_image", Message: "packaging image must carry inline data or a URL"},
		{Code: "no_images", Message: "at least one delivery image is required"},
	}
	messages := ConvertIssuesToMessages(issues)
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[0] != issues[0].Message || messages[1] != issues[1].Message {
		t.Error("Messages must preserve issue order")
	}
}
