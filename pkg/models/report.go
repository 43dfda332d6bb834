package models

// AnalysisReport is the final result of a packaging-vs-delivery
// comparison, in either remote (vision model) or local fallback mode.
// This is the only shape handed to the presentation layer.
type AnalysisReport struct {
	PackagingProduct string `json:"packagingProduct"`
	DeliveryProduct  string `json:"deliveryProduct"`
	AreProductsSame  bool   `json:"areProductsSame"`

	// SimilarityPercentage is absent when the identification stage
	// concluded the two products are different.
	SimilarityPercentage *float64 `json:"similarityPercentage,omitempty"`

	Differences      []string `json:"differences"`
	VisualDifference string   `json:"visualDifference,omitempty"`
	Summary          string   `json:"summary"`
	Confidence       float64  `json:"confidence"`

	// TechnicalAnalysis is an open bag of derived metrics whose keys
	// depend on the analysis mode taken.
	TechnicalAnalysis map[string]interface{} `json:"technicalAnalysis"`
}

// AngleComparison pairs one packaging photo with one delivery photo
// taken from the same viewpoint. Indices refer to the caller-supplied
// image sequences and are always within bounds.
type AngleComparison struct {
	Angle                string   `json:"angle"`
	PackagingImageIndex  int      `json:"packagingImageIndex"`
	DeliveryImageIndex   int      `json:"deliveryImageIndex"`
	SimilarityPercentage float64  `json:"similarityPercentage"`
	Differences          []string `json:"differences"`
	MatchQuality         string   `json:"matchQuality"`
}

// Match quality tiers reported per angle.
const (
	MatchQualityExcellent = "excellent"
	MatchQualityGood      = "good"
	MatchQualityFair      = "fair"
	MatchQualityPoor      = "poor"
)

// MultiAngleReport is the result of a batched comparison over several
// photos per side.
type MultiAngleReport struct {
	ProductName       string  `json:"productName"`
	AreProductsSame   bool    `json:"areProductsSame"`
	OverallSimilarity float64 `json:"overallSimilarity"`
	Confidence        float64 `json:"confidence"`

	AngleComparisons []AngleComparison `json:"angleComparisons"`
	Differences      []string          `json:"differences"`
	MissingAngles    []string          `json:"missingAngles"`
	QualityConcerns  []string          `json:"qualityConcerns"`
	Recommendations  []string          `json:"recommendations"`

	Summary           string                 `json:"summary"`
	TechnicalAnalysis map[string]interface{} `json:"technicalAnalysis"`
}

// Severity tags attached by the model to individual differences.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)
