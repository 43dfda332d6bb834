// Package vision talks to the remote multimodal inference endpoint and
// recovers structured findings from its free-text replies.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go-shipment-verifier/internal/encoder"
	apperrors "go-shipment-verifier/internal/errors"
)

// Generation defaults: low temperature so repeated analyses of the
// same images stay comparable.
const (
	defaultTemperature = 0.1
	defaultTopK        = 32
	defaultTopP        = 1.0

	// MaxTokensSinglePair bounds single-pair replies; multi-angle
	// replies grow with the image count and get a larger budget.
	MaxTokensSinglePair = 2048
	MaxTokensMultiAngle = 4096
)

// Client sends an instruction plus an ordered image set to the vision
// endpoint and returns the raw reply text. One attempt per call; this
// layer never retries.
type Client interface {
	GenerateContent(ctx context.Context, instruction string, images []encoder.EncodedImage, maxOutputTokens int) (string, error)
}

// HTTPClient implements Client against a generateContent-style REST
// endpoint.
type HTTPClient struct {
	endpoint string // resolved URL, model already interpolated
	apiKey   string
	client   *http.Client
}

// NewHTTPClient builds a client for the given endpoint template, model
// identifier and server-side API key. All three are treated as opaque
// strings.
func NewHTTPClient(endpointTemplate, model, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		endpoint: fmt.Sprintf(endpointTemplate, model),
		apiKey:   apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Request body types for the generateContent wire format.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateContent assembles one inference request with the instruction
// as the first part followed by one inline-image part per image, in
// input order, and returns the first text part of the first candidate.
func (c *HTTPClient) GenerateContent(ctx context.Context, instruction string, images []encoder.EncodedImage, maxOutputTokens int) (string, error) {
	if c.apiKey == "" {
		return "", apperrors.NewCredentialError("vision API key is not configured", nil)
	}

	parts := make([]part, 0, len(images)+1)
	parts = append(parts, part{Text: instruction})
	for _, img := range images {
		parts = append(parts, part{
			InlineData: &inlineData{
				MimeType: img.MimeType,
				Data:     img.Data,
			},
		})
	}

	body := generateRequest{
		Contents: []content{{Parts: parts}},
		GenerationConfig: generationConfig{
			Temperature:     defaultTemperature,
			TopK:            defaultTopK,
			TopP:            defaultTopP,
			MaxOutputTokens: maxOutputTokens,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", apperrors.NewInternalError("failed to marshal vision request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", apperrors.NewInternalError("failed to build vision request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperrors.NewNetworkError("vision endpoint unreachable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewNetworkError("failed to read vision response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.statusError(resp.StatusCode, respBody)
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", apperrors.NewParseError("vision response is not valid JSON", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", apperrors.NewParseError("vision response contains no candidates", nil)
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// statusError maps a non-success HTTP status onto the app error
// taxonomy. No retry at this layer regardless of type.
func (c *HTTPClient) statusError(status int, body []byte) error {
	reason := endpointReason(body)

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.NewCredentialError("invalid vision API credential", fmt.Errorf("status %d: %s", status, reason))
	case http.StatusTooManyRequests:
		return apperrors.NewRateLimitError("vision endpoint rate limit exceeded", fmt.Errorf("status %d: %s", status, reason))
	case http.StatusBadRequest:
		return apperrors.NewValidationError("invalid vision request", fmt.Errorf("status %d: %s", status, reason))
	default:
		return apperrors.NewNetworkError(
			fmt.Sprintf("vision endpoint returned status %d", status),
			fmt.Errorf("%s", reason),
		)
	}
}

// endpointReason pulls the endpoint's error message out of an error
// body, falling back to the raw text.
func endpointReason(body []byte) string {
	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	reason := strings.TrimSpace(string(body))
	if len(reason) > 512 {
		reason = reason[:512]
	}
	if reason == "" {
		reason = "no detail provided"
	}
	return reason
}
