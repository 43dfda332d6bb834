package analyzer

import (
	apperrors "go-shipment-verifier/internal/errors"
)

// identificationFinding is the stage-1 reply shape of the single-pair
// flow. Untrusted until validated; required fields checked at the
// parse boundary, never defaulted.
type identificationFinding struct {
	PackagingProduct   string   `json:"packagingProduct"`
	DeliveryProduct    string   `json:"deliveryProduct"`
	SameProduct        *bool    `json:"sameProduct"`
	Confidence         float64  `json:"confidence"`
	ObviousDifferences []string `json:"obviousDifferences"`
}

func (f *identificationFinding) validate() error {
	if f.PackagingProduct == "" || f.DeliveryProduct == "" {
		return apperrors.NewParseError("failed to parse analysis: missing product identification", nil)
	}
	if f.SameProduct == nil {
		return apperrors.NewParseError("failed to parse analysis: missing match verdict", nil)
	}
	return nil
}

// categorizedDifference is one stage-2 difference with a severity tag.
type categorizedDifference struct {
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// technicalMetrics is the stage-2 derived-metrics object.
type technicalMetrics struct {
	ColorVariation     string  `json:"colorVariation"`
	ConditionChange    string  `json:"conditionChange"`
	CompletenessScore  float64 `json:"completenessScore"`
	PackagingIntegrity string  `json:"packagingIntegrity"`
	QualityAssessment  string  `json:"qualityAssessment"`
}

// similarityFinding is the stage-2 reply shape of the single-pair flow.
type similarityFinding struct {
	SimilarityPercentage *float64                `json:"similarityPercentage"`
	Differences          []categorizedDifference `json:"differences"`
	TechnicalMetrics     technicalMetrics        `json:"technicalMetrics"`
	VisualDifference     string                  `json:"visualDifference"`
	Summary              string                  `json:"summary"`
}

func (f *similarityFinding) validate() error {
	if f.SimilarityPercentage == nil {
		return apperrors.NewParseError("failed to parse analysis: missing similarity percentage", nil)
	}
	return nil
}

// sideAnalysis summarizes the coverage and condition the model saw on
// one side of a multi-angle comparison.
type sideAnalysis struct {
	AnglesCovered []string `json:"anglesCovered"`
	Condition     string   `json:"condition"`
}

// angleFinding is one per-angle entry of the multi-angle reply.
type angleFinding struct {
	Angle                string   `json:"angle"`
	PackagingImageIndex  int      `json:"packagingImageIndex"`
	DeliveryImageIndex   int      `json:"deliveryImageIndex"`
	SimilarityPercentage float64  `json:"similarityPercentage"`
	Differences          []string `json:"differences"`
	MatchQuality         string   `json:"matchQuality"`
}

// overallAssessment is the multi-angle verdict block.
type overallAssessment struct {
	AreProductsSame          *bool    `json:"areProductsSame"`
	OverallSimilarity        float64  `json:"overallSimilarity"`
	Confidence               float64  `json:"confidence"`
	ComprehensiveDifferences []string `json:"comprehensiveDifferences"`
	MissingAngles            []string `json:"missingAngles"`
	QualityConcerns          []string `json:"qualityConcerns"`
}

// multiAngleMetrics is the multi-angle derived-metrics block.
type multiAngleMetrics struct {
	BestMatchingAngle    string  `json:"bestMatchingAngle"`
	WorstMatchingAngle   string  `json:"worstMatchingAngle"`
	CoverageCompleteness float64 `json:"coverageCompleteness"`
	AnalysisReliability  string  `json:"analysisReliability"`
}

// multiAngleFinding is the single-stage multi-angle reply shape.
type multiAngleFinding struct {
	ProductIdentification struct {
		Name     string `json:"name"`
		Category string `json:"category"`
	} `json:"productIdentification"`
	PackagingAnalysis sideAnalysis       `json:"packagingAnalysis"`
	DeliveryAnalysis  sideAnalysis       `json:"deliveryAnalysis"`
	AngleComparisons  []angleFinding     `json:"angleComparisons"`
	OverallAssessment *overallAssessment `json:"overallAssessment"`
	TechnicalMetrics  multiAngleMetrics  `json:"technicalMetrics"`
	Recommendations   []string           `json:"recommendations"`
}

func (f *multiAngleFinding) validate() error {
	if f.ProductIdentification.Name == "" {
		return apperrors.NewParseError("failed to parse analysis: missing product identification", nil)
	}
	if f.OverallAssessment == nil || f.OverallAssessment.AreProductsSame == nil {
		return apperrors.NewParseError("failed to parse analysis: missing overall assessment", nil)
	}
	return nil
}
