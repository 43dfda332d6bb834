package analyzer

import (
	"context"

	"go-shipment-verifier/internal/encoder"
	"go-shipment-verifier/internal/logger"
	"go-shipment-verifier/internal/vision"
	"go-shipment-verifier/pkg/models"
)

// MultiAngleAnalyzer compares several packaging photos against several
// delivery photos in a single model call.
type MultiAngleAnalyzer interface {
	AnalyzeMultiAngle(ctx context.Context, packaging, delivery []encoder.EncodedImage) (*models.MultiAngleReport, error)
}

type multiAngleAnalyzer struct {
	client vision.Client
}

// NewMultiAngleAnalyzer creates the single-stage batch analyzer.
func NewMultiAngleAnalyzer(client vision.Client) MultiAngleAnalyzer {
	return &multiAngleAnalyzer{client: client}
}

// AnalyzeMultiAngle concatenates packaging images followed by delivery
// images into one ordered list; the prompt tells the model where the
// split is, since the request carries no other structure. There is no
// degraded mode here: any parse failure aborts the whole request.
func (a *multiAngleAnalyzer) AnalyzeMultiAngle(ctx context.Context, packaging, delivery []encoder.EncodedImage) (*models.MultiAngleReport, error) {
	images := make([]encoder.EncodedImage, 0, len(packaging)+len(delivery))
	images = append(images, packaging...)
	images = append(images, delivery...)

	reply, err := a.client.GenerateContent(ctx, multiAnglePrompt(len(packaging), len(delivery)), images, vision.MaxTokensMultiAngle)
	if err != nil {
		return nil, err
	}

	var finding multiAngleFinding
	if err := vision.ParseReply(reply, &finding); err != nil {
		return nil, err
	}
	if err := finding.validate(); err != nil {
		return nil, err
	}

	return a.buildReport(&finding, len(packaging), len(delivery)), nil
}

// buildReport re-maps the model's per-angle array into the report
// shape, enforces the index-bounds invariant, and synthesizes the
// narrative summary locally so its phrasing does not depend on the
// model's output style.
func (a *multiAngleAnalyzer) buildReport(finding *multiAngleFinding, packagingCount, deliveryCount int) *models.MultiAngleReport {
	assessment := finding.OverallAssessment

	comparisons := make([]models.AngleComparison, 0, len(finding.AngleComparisons))
	for _, af := range finding.AngleComparisons {
		if af.PackagingImageIndex < 0 || af.PackagingImageIndex >= packagingCount ||
			af.DeliveryImageIndex < 0 || af.DeliveryImageIndex >= deliveryCount {
			logger.WithField("angle", af.Angle).Warn("Dropping angle comparison with out-of-range image index")
			continue
		}
		differences := af.Differences
		if differences == nil {
			differences = []string{}
		}
		comparisons = append(comparisons, models.AngleComparison{
			Angle:                af.Angle,
			PackagingImageIndex:  af.PackagingImageIndex,
			DeliveryImageIndex:   af.DeliveryImageIndex,
			SimilarityPercentage: af.SimilarityPercentage,
			Differences:          differences,
			MatchQuality:         af.MatchQuality,
		})
	}

	report := &models.MultiAngleReport{
		ProductName:       finding.ProductIdentification.Name,
		AreProductsSame:   *assessment.AreProductsSame,
		OverallSimilarity: assessment.OverallSimilarity,
		Confidence:        assessment.Confidence,
		AngleComparisons:  comparisons,
		Differences:       emptyIfNil(assessment.ComprehensiveDifferences),
		MissingAngles:     emptyIfNil(assessment.MissingAngles),
		QualityConcerns:   emptyIfNil(assessment.QualityConcerns),
		Recommendations:   emptyIfNil(finding.Recommendations),
		Summary: multiAngleSummary(
			finding.ProductIdentification.Name,
			packagingCount, deliveryCount,
			assessment.OverallSimilarity,
			*assessment.AreProductsSame,
			finding.TechnicalMetrics.CoverageCompleteness,
		),
		TechnicalAnalysis: map[string]interface{}{
			"analysis_mode":          "remote_multi_angle",
			"best_matching_angle":    finding.TechnicalMetrics.BestMatchingAngle,
			"worst_matching_angle":   finding.TechnicalMetrics.WorstMatchingAngle,
			"coverage_completeness":  finding.TechnicalMetrics.CoverageCompleteness,
			"analysis_reliability":   finding.TechnicalMetrics.AnalysisReliability,
			"packaging_condition":    finding.PackagingAnalysis.Condition,
			"delivery_condition":     finding.DeliveryAnalysis.Condition,
			"total_packaging_images": packagingCount,
			"total_delivery_images":  deliveryCount,
			// Fewer comparisons than images is expected when the
			// model could not pair every viewpoint.
			"angles_analyzed": len(comparisons),
		},
	}
	return report
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
