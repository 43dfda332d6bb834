package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go-shipment-verifier/internal/encoder"
	apperrors "go-shipment-verifier/internal/errors"
)

// fakeVisionClient replays scripted replies in call order.
type fakeVisionClient struct {
	replies      []string
	errs         []error
	calls        int
	instructions []string
	imageCounts  []int
}

func (f *fakeVisionClient) GenerateContent(ctx context.Context, instruction string, images []encoder.EncodedImage, maxTokens int) (string, error) {
	idx := f.calls
	f.calls++
	f.instructions = append(f.instructions, instruction)
	f.imageCounts = append(f.imageCounts, len(images))

	if idx < len(f.errs) && f.errs[idx] != nil {
		return "", f.errs[idx]
	}
	if idx < len(f.replies) {
		return f.replies[idx], nil
	}
	return "", errors.New("unexpected extra call")
}

func testImages() (encoder.EncodedImage, encoder.EncodedImage) {
	return encoder.EncodeBytes([]byte("packaging-photo")), encoder.EncodeBytes([]byte("delivery-photo"))
}

const identReplyMatch = `Here is what I found:
{
  "packagingProduct": "Blue Widget Model X",
  "deliveryProduct": "Blue Widget Model X",
  "sameProduct": true,
  "confidence": 90,
  "obviousDifferences": ["small scuff on the front panel"]
}`

const similarityReply = `{
  "similarityPercentage": 87,
  "differences": [
    {"description": "scuff on the front panel", "severity": "low"}
  ],
  "technicalMetrics": {
    "colorVariation": "none",
    "conditionChange": "minor surface wear",
    "completenessScore": 98,
    "packagingIntegrity": "intact",
    "qualityAssessment": "good"
  },
  "visualDifference": "a light scuff appeared on the front panel",
  "summary": "The delivered Blue Widget Model X matches the packaged unit with minor wear."
}`

func TestAnalyzePair_MatchBranch(t *testing.T) {
	client := &fakeVisionClient{replies: []string{identReplyMatch, similarityReply}}
	packaging, delivery := testImages()

	report, err := NewPairAnalyzer(client).AnalyzePair(context.Background(), packaging, delivery)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if client.calls != 2 {
		t.Errorf("Expected 2 model calls, got %d", client.calls)
	}
	for i, count := range client.imageCounts {
		if count != 2 {
			t.Errorf("Call %d: expected 2 images, got %d", i, count)
		}
	}
	// Stage 2 is parameterized by the stage-1 identification
	if !strings.Contains(client.instructions[1], "Blue Widget Model X") {
		t.Error("Second prompt must name the identified product")
	}

	if !report.AreProductsSame {
		t.Error("Expected matching products")
	}
	if report.SimilarityPercentage == nil || *report.SimilarityPercentage <= 0 || *report.SimilarityPercentage >= 100 {
		t.Errorf("Expected similarity in (0,100), got %v", report.SimilarityPercentage)
	}
	if len(report.Differences) == 0 {
		t.Error("Expected non-empty differences")
	}
	if !strings.Contains(report.Summary, "Blue Widget Model X") {
		t.Errorf("Summary should mention the product, got %q", report.Summary)
	}
	if report.VisualDifference == "" {
		t.Error("Expected visual difference narrative")
	}
	if report.TechnicalAnalysis["completeness_score"] != 98.0 {
		t.Errorf("Expected completeness score 98, got %v", report.TechnicalAnalysis["completeness_score"])
	}
}

func TestAnalyzePair_Stage2ParseFailureDegrades(t *testing.T) {
	client := &fakeVisionClient{replies: []string{
		identReplyMatch,
		"I'm sorry, I can't structure that right now.",
	}}
	packaging, delivery := testImages()

	report, err := NewPairAnalyzer(client).AnalyzePair(context.Background(), packaging, delivery)
	if err != nil {
		t.Fatalf("Stage-2 failure must not fail the request: %v", err)
	}

	if report.SimilarityPercentage == nil || *report.SimilarityPercentage != 75 {
		t.Errorf("Expected degraded similarity of exactly 75, got %v", report.SimilarityPercentage)
	}
	expected := []string{"small scuff on the front panel"}
	if len(report.Differences) != len(expected) || report.Differences[0] != expected[0] {
		t.Errorf("Expected stage-1 obvious differences %v, got %v", expected, report.Differences)
	}
	if report.Summary == "" {
		t.Error("Expected non-empty summary")
	}
	if !strings.Contains(report.Summary, "Blue Widget Model X") {
		t.Errorf("Degraded summary should name the product, got %q", report.Summary)
	}
	if degraded, _ := report.TechnicalAnalysis["degraded"].(bool); !degraded {
		t.Error("Expected degraded marker in technical analysis")
	}
}

func TestAnalyzePair_Stage2TransportFailureDegrades(t *testing.T) {
	client := &fakeVisionClient{
		replies: []string{identReplyMatch},
		errs:    []error{nil, apperrors.NewRateLimitError("vision endpoint rate limit exceeded", nil)},
	}
	packaging, delivery := testImages()

	report, err := NewPairAnalyzer(client).AnalyzePair(context.Background(), packaging, delivery)
	if err != nil {
		t.Fatalf("Stage-2 failure must not fail the request: %v", err)
	}
	if report.SimilarityPercentage == nil || *report.SimilarityPercentage != 75 {
		t.Errorf("Expected degraded similarity of exactly 75, got %v", report.SimilarityPercentage)
	}
}

func TestAnalyzePair_MismatchBranch(t *testing.T) {
	client := &fakeVisionClient{replies: []string{`{
		"packagingProduct": "Chrome Toaster T200",
		"deliveryProduct": "Silver Blender B55",
		"sameProduct": false,
		"confidence": 95,
		"obviousDifferences": ["completely different appliance"]
	}`}}
	packaging, delivery := testImages()

	report, err := NewPairAnalyzer(client).AnalyzePair(context.Background(), packaging, delivery)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if client.calls != 1 {
		t.Errorf("Mismatch branch must not issue a second call, got %d calls", client.calls)
	}
	if report.AreProductsSame {
		t.Error("Expected mismatch verdict")
	}
	if report.SimilarityPercentage != nil {
		t.Errorf("Similarity must be absent on mismatch, got %v", *report.SimilarityPercentage)
	}
	if len(report.Differences) < 2 {
		t.Fatalf("Expected at least 2 differences, got %v", report.Differences)
	}
	if report.Differences[0] != "Packaging shows: Chrome Toaster T200" {
		t.Errorf("Unexpected first difference: %q", report.Differences[0])
	}
	if report.Differences[1] != "Delivery shows: Silver Blender B55" {
		t.Errorf("Unexpected second difference: %q", report.Differences[1])
	}
	if !strings.Contains(report.Summary, "DELIVERY MISMATCH DETECTED") {
		t.Errorf("Summary must flag the mismatch, got %q", report.Summary)
	}
	if mismatch, _ := report.TechnicalAnalysis["mismatch"].(bool); !mismatch {
		t.Error("Expected mismatch marker in technical analysis")
	}
}

func TestAnalyzePair_Stage1FailuresAreTerminal(t *testing.T) {
	tests := []struct {
		name         string
		reply        string
		err          error
		expectedType apperrors.ErrorType
	}{
		{
			name:         "Unparseable reply",
			reply:        "no structure here at all",
			expectedType: apperrors.ErrorTypeParse,
		},
		{
			name:         "Missing identification",
			reply:        `{"packagingProduct": "", "deliveryProduct": "X", "sameProduct": true}`,
			expectedType: apperrors.ErrorTypeParse,
		},
		{
			name:         "Missing verdict",
			reply:        `{"packagingProduct": "A", "deliveryProduct": "B"}`,
			expectedType: apperrors.ErrorTypeParse,
		},
		{
			name:         "Credential failure",
			err:          apperrors.NewCredentialError("invalid vision API credential", nil),
			expectedType: apperrors.ErrorTypeCredential,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeVisionClient{replies: []string{tt.reply}, errs: []error{tt.err}}
			packaging, delivery := testImages()

			_, err := NewPairAnalyzer(client).AnalyzePair(context.Background(), packaging, delivery)
			if err == nil {
				t.Fatal("Expected terminal error")
			}
			if !apperrors.IsType(err, tt.expectedType) {
				t.Errorf("Expected %s error, got %v", tt.expectedType, err)
			}
		})
	}
}
