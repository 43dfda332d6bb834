package validation

import (
	"fmt"

	"go-shipment-verifier/pkg/models"
)

// Issue represents one problem found in a comparison request.
type Issue struct {
	Code    string
	Message string
}

// RequestValidator checks comparison requests before any image is
// fetched or encoded.
type RequestValidator struct {
	maxImagesPerSide int
	urlValidator     *URLValidator
}

// NewRequestValidator creates a validator enforcing the configured
// per-side image cap.
func NewRequestValidator(maxImagesPerSide int) *RequestValidator {
	return &RequestValidator{
		maxImagesPerSide: maxImagesPerSide,
		urlValidator:     NewURLValidator(),
	}
}

// ValidatePair checks a single-pair request.
func (v *RequestValidator) ValidatePair(req *models.CompareRequest) []Issue {
	var issues []Issue
	issues = append(issues, v.validateInput("packaging", req.Packaging)...)
	issues = append(issues, v.validateInput("delivery", req.Delivery)...)
	return issues
}

// ValidateMultiAngle checks a multi-angle request: 1..max images per
// side, each image either inline or by URL.
func (v *RequestValidator) ValidateMultiAngle(req *models.MultiAngleCompareRequest) []Issue {
	var issues []Issue
	issues = append(issues, v.validateSide("packaging", req.Packaging)...)
	issues = append(issues, v.validateSide("delivery", req.Delivery)...)
	return issues
}

func (v *RequestValidator) validateSide(side string, inputs []models.ImageInput) []Issue {
	var issues []Issue
	if len(inputs) == 0 {
		issues = append(issues, Issue{
			Code:    "no_images",
			Message: fmt.Sprintf("at least one %s image is required", side),
		})
		return issues
	}
	if len(inputs) > v.maxImagesPerSide {
		issues = append(issues, Issue{
			Code:    "too_many_images",
			Message: fmt.Sprintf("at most %d %s images are allowed (got %d)", v.maxImagesPerSide, side, len(inputs)),
		})
	}
	for i, input := range inputs {
		issues = append(issues, v.validateInput(fmt.Sprintf("%s[%d]", side, i), input)...)
	}
	return issues
}

func (v *RequestValidator) validateInput(name string, input models.ImageInput) []Issue {
	switch {
	case input.Data == "" && input.URL == "":
		return []Issue{{
			Code:    "empty_image",
			Message: fmt.Sprintf("%s image must carry inline data or a URL", name),
		}}
	case input.Data != "" && input.URL != "":
		return []Issue{{
			Code:    "ambiguous_image",
			Message: fmt.Sprintf("%s image must not carry both inline data and a URL", name),
		}}
	case input.URL != "":
		if err := v.urlValidator.ValidateImageURL(input.URL); err != nil {
			return []Issue{{
				Code:    "invalid_url",
				Message: fmt.Sprintf("%s image URL is invalid: %v", name, err),
			}}
		}
	}
	return nil
}

// ConvertIssuesToMessages flattens issues into user-facing strings.
func ConvertIssuesToMessages(issues []Issue) []string {
	messages := make([]string, len(issues))
	for i, issue := range issues {
		messages[i] = issue.Message
	}
	return messages
}
