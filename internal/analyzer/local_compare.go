package analyzer

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"

	"go-shipment-verifier/internal/logger"
	"go-shipment-verifier/pkg/models"
)

const (
	// localSampleSize is the fixed edge length both images are
	// downsampled to before pixel comparison.
	localSampleSize = 64

	// localNeutralScore is reported when image decoding fails; the
	// local path never fails outright.
	localNeutralScore = 50.0

	// localTextMatchThreshold is the minimum word-overlap ratio for
	// the OCR text layer to call the two labels a match.
	localTextMatchThreshold = 0.3
)

// TextExtractor pulls label text out of an image for the fallback
// comparator's descriptive layer. Implementations are owned by the
// comparator and released through Close.
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
	Close() error
}

// LocalComparator computes a deterministic similarity score from
// pixel statistics alone, with no remote calls. It is a parallel path
// to the vision analyzers, used when no credential is configured.
//
// The comparator is constructed explicitly and owned by the container;
// there is no lazily initialized shared instance.
type LocalComparator struct {
	text TextExtractor // nil disables the text layer
}

// NewLocalComparator creates a comparator. extractor may be nil, in
// which case only pixel statistics are reported.
func NewLocalComparator(extractor TextExtractor) *LocalComparator {
	return &LocalComparator{text: extractor}
}

// Close releases the text extractor, if any.
func (c *LocalComparator) Close() error {
	if c.text == nil {
		return nil
	}
	return c.text.Close()
}

// Compare produces a report for one packaging and one delivery image.
// The numeric similarity always comes from pixel statistics; the OCR
// text layer only contributes descriptive fields and a coarse verdict.
func (c *LocalComparator) Compare(packagingData, deliveryData []byte) *models.AnalysisReport {
	similarity, degraded := c.pixelSimilarity(packagingData, deliveryData)

	report := &models.AnalysisReport{
		PackagingProduct:     "Product (local analysis)",
		DeliveryProduct:      "Product (local analysis)",
		AreProductsSame:      similarity >= localNeutralScore,
		SimilarityPercentage: &similarity,
		Differences:          []string{},
		Confidence:           similarity,
		TechnicalAnalysis: map[string]interface{}{
			"analysis_mode":    "local_fallback",
			"pixel_similarity": similarity,
			"sample_size":      localSampleSize,
		},
	}
	if degraded {
		report.Confidence = 0
		report.TechnicalAnalysis["degraded"] = true
		report.Differences = append(report.Differences, "One or both images could not be decoded; neutral score reported")
	}

	c.applyTextLayer(report, packagingData, deliveryData)

	verdict := "appear to match"
	if !report.AreProductsSame {
		verdict = "differ noticeably"
	}
	report.Summary = fmt.Sprintf(
		"Local pixel comparison (no vision model): packaging and delivery photos %s with %.0f%% similarity.",
		verdict, similarity,
	)
	return report
}

// pixelSimilarity downsamples both images to the same small grid and
// converts the average per-channel absolute difference into a 0-100
// score via a linear inverse mapping. Returns the neutral score and
// degraded=true when either image fails to decode.
func (c *LocalComparator) pixelSimilarity(packagingData, deliveryData []byte) (float64, bool) {
	packaging, _, errP := image.Decode(bytes.NewReader(packagingData))
	delivery, _, errD := image.Decode(bytes.NewReader(deliveryData))
	if errP != nil || errD != nil {
		logger.WithFields(map[string]interface{}{
			"packaging_decode_ok": errP == nil,
			"delivery_decode_ok":  errD == nil,
		}).Warn("Local comparison degraded to neutral score")
		return localNeutralScore, true
	}

	var totalDiff float64
	for y := 0; y < localSampleSize; y++ {
		for x := 0; x < localSampleSize; x++ {
			r1, g1, b1 := sampleAt(packaging, x, y)
			r2, g2, b2 := sampleAt(delivery, x, y)
			totalDiff += absDiff(r1, r2) + absDiff(g1, g2) + absDiff(b1, b2)
		}
	}

	// Three channels per sampled pixel, each differing by at most 255.
	maxDiff := float64(localSampleSize * localSampleSize * 3 * 255)
	similarity := 100 * (1 - totalDiff/maxDiff)
	if similarity < 0 {
		similarity = 0
	}
	return similarity, false
}

// sampleAt reads the 8-bit RGB channels at the nearest source pixel
// for grid position (x, y).
func sampleAt(img image.Image, x, y int) (float64, float64, float64) {
	bounds := img.Bounds()
	sx := bounds.Min.X + x*bounds.Dx()/localSampleSize
	sy := bounds.Min.Y + y*bounds.Dy()/localSampleSize
	r, g, b, _ := img.At(sx, sy).RGBA()
	return float64(r >> 8), float64(g >> 8), float64(b >> 8)
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// applyTextLayer extracts label text from both sides and derives a
// coarse verdict from word overlap. OCR failure degrades silently to
// the pixel-only result.
func (c *LocalComparator) applyTextLayer(report *models.AnalysisReport, packagingData, deliveryData []byte) {
	if c.text == nil {
		return
	}

	packagingText, errP := c.text.ExtractText(packagingData)
	deliveryText, errD := c.text.ExtractText(deliveryData)
	if errP != nil || errD != nil {
		logger.Warn("Label text extraction failed, keeping pixel-only result")
		return
	}

	packagingWords := tokenizeLabel(packagingText)
	deliveryWords := tokenizeLabel(deliveryText)
	if len(packagingWords) == 0 || len(deliveryWords) == 0 {
		return
	}

	overlap := wordOverlap(packagingWords, deliveryWords)
	report.TechnicalAnalysis["label_word_overlap"] = overlap
	report.TechnicalAnalysis["label_text_match"] = overlap >= localTextMatchThreshold
	report.TechnicalAnalysis["label_distance"] = levenshtein.Distance(
		strings.Join(packagingWords, " "),
		strings.Join(deliveryWords, " "),
	)
	rate, _ := wer.WER(packagingWords, deliveryWords)
	report.TechnicalAnalysis["label_word_error_rate"] = rate

	report.PackagingProduct = strings.Join(packagingWords, " ")
	report.DeliveryProduct = strings.Join(deliveryWords, " ")
	if overlap < localTextMatchThreshold {
		report.Differences = append(report.Differences, "Label text differs between packaging and delivery photos")
	}
}

// tokenizeLabel lowercases and splits OCR output, dropping short
// fragments that are usually recognition noise.
func tokenizeLabel(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,:;!?\"'()[]")
		if len(f) >= 2 {
			words = append(words, f)
		}
	}
	return words
}

// wordOverlap is the Jaccard ratio of the two word sets.
func wordOverlap(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, w := range a {
		setA[w] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, w := range b {
		setB[w] = struct{}{}
	}

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
