// Package analyzer derives shipment verification reports, either by
// orchestrating the remote vision model or from local pixel
// statistics.
package analyzer

import (
	"context"
	"fmt"

	"go-shipment-verifier/internal/encoder"
	"go-shipment-verifier/internal/logger"
	"go-shipment-verifier/internal/vision"
	"go-shipment-verifier/pkg/models"
)

// degradedSimilarity is reported when stage 2 of the single-pair flow
// fails to parse; stage 1 already identified the product, so the
// request degrades instead of failing.
const degradedSimilarity = 75.0

// PairAnalyzer compares exactly one packaging image against one
// delivery image.
type PairAnalyzer interface {
	AnalyzePair(ctx context.Context, packaging, delivery encoder.EncodedImage) (*models.AnalysisReport, error)
}

type pairAnalyzer struct {
	client vision.Client
}

// NewPairAnalyzer creates the two-stage single-pair analyzer.
func NewPairAnalyzer(client vision.Client) PairAnalyzer {
	return &pairAnalyzer{client: client}
}

// AnalyzePair runs the two-stage flow: identify both products, then
// (only if they match) quantify similarity. The stages are strictly
// ordered because the second prompt is parameterized by the first
// stage's identified product name.
func (a *pairAnalyzer) AnalyzePair(ctx context.Context, packaging, delivery encoder.EncodedImage) (*models.AnalysisReport, error) {
	images := []encoder.EncodedImage{packaging, delivery}

	reply, err := a.client.GenerateContent(ctx, identificationPrompt, images, vision.MaxTokensSinglePair)
	if err != nil {
		return nil, err
	}

	var ident identificationFinding
	if err := vision.ParseReply(reply, &ident); err != nil {
		return nil, err
	}
	if err := ident.validate(); err != nil {
		return nil, err
	}

	if !*ident.SameProduct {
		return a.mismatchReport(&ident), nil
	}
	return a.similarityReport(ctx, images, &ident), nil
}

// similarityReport issues the stage-2 request. A stage-2 parse failure
// does not fail the whole analysis: stage 1 already gave the user
// actionable identity information, so the report is synthesized from
// it instead.
func (a *pairAnalyzer) similarityReport(ctx context.Context, images []encoder.EncodedImage, ident *identificationFinding) *models.AnalysisReport {
	report := &models.AnalysisReport{
		PackagingProduct: ident.PackagingProduct,
		DeliveryProduct:  ident.DeliveryProduct,
		AreProductsSame:  true,
		Confidence:       ident.Confidence,
		Differences:      []string{},
		TechnicalAnalysis: map[string]interface{}{
			"analysis_mode": "remote_two_stage",
		},
	}

	// Transport errors degrade here too, not only parse failures:
	// once stage 1 succeeded, a partial report beats a terminal error.
	detail, err := a.fetchSimilarity(ctx, images, ident.PackagingProduct)
	if err != nil {
		logger.WithError(err).Warn("Similarity stage failed, degrading to identification result")

		sim := degradedSimilarity
		report.SimilarityPercentage = &sim
		report.Differences = append(report.Differences, ident.ObviousDifferences...)
		report.Summary = fmt.Sprintf(
			"The delivered %s matches the packaged product. A detailed similarity breakdown was unavailable for this analysis.",
			ident.PackagingProduct,
		)
		report.TechnicalAnalysis["degraded"] = true
		return report
	}

	report.SimilarityPercentage = detail.SimilarityPercentage
	report.VisualDifference = detail.VisualDifference
	report.Summary = detail.Summary
	for _, d := range detail.Differences {
		report.Differences = append(report.Differences, fmt.Sprintf("[%s] %s", d.Severity, d.Description))
	}
	report.TechnicalAnalysis["color_variation"] = detail.TechnicalMetrics.ColorVariation
	report.TechnicalAnalysis["condition_change"] = detail.TechnicalMetrics.ConditionChange
	report.TechnicalAnalysis["completeness_score"] = detail.TechnicalMetrics.CompletenessScore
	report.TechnicalAnalysis["packaging_integrity"] = detail.TechnicalMetrics.PackagingIntegrity
	report.TechnicalAnalysis["quality_assessment"] = detail.TechnicalMetrics.QualityAssessment
	return report
}

func (a *pairAnalyzer) fetchSimilarity(ctx context.Context, images []encoder.EncodedImage, productName string) (*similarityFinding, error) {
	reply, err := a.client.GenerateContent(ctx, similarityPrompt(productName), images, vision.MaxTokensSinglePair)
	if err != nil {
		return nil, err
	}

	var detail similarityFinding
	if err := vision.ParseReply(reply, &detail); err != nil {
		return nil, err
	}
	if err := detail.validate(); err != nil {
		return nil, err
	}
	return &detail, nil
}

// mismatchReport is built without a second model call; the two
// distinct product names are all the evidence needed.
func (a *pairAnalyzer) mismatchReport(ident *identificationFinding) *models.AnalysisReport {
	differences := []string{
		fmt.Sprintf("Packaging shows: %s", ident.PackagingProduct),
		fmt.Sprintf("Delivery shows: %s", ident.DeliveryProduct),
	}
	differences = append(differences, ident.ObviousDifferences...)

	return &models.AnalysisReport{
		PackagingProduct: ident.PackagingProduct,
		DeliveryProduct:  ident.DeliveryProduct,
		AreProductsSame:  false,
		Differences:      differences,
		Confidence:       ident.Confidence,
		Summary: fmt.Sprintf(
			"DELIVERY MISMATCH DETECTED: the packaging photo shows %s but the delivery photo shows %s. The delivered item does not appear to be the product that was shipped.",
			ident.PackagingProduct, ident.DeliveryProduct,
		),
		TechnicalAnalysis: map[string]interface{}{
			"analysis_mode":     "remote_two_stage",
			"mismatch":          true,
			"packaging_product": ident.PackagingProduct,
			"delivery_product":  ident.DeliveryProduct,
		},
	}
}
