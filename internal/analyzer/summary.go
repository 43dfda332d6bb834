package analyzer

import "fmt"

// multiAngleSummary builds the narrative for a multi-angle report from
// a fixed template so the phrasing stays consistent across model
// output styles.
func multiAngleSummary(productName string, packagingCount, deliveryCount int, overallSimilarity float64, match bool, coverage float64) string {
	verdict := "the delivered item matches what was packaged"
	if !match {
		verdict = "the delivered item does NOT match what was packaged"
	}
	return fmt.Sprintf(
		"Multi-angle analysis of %s across %d packaging and %d delivery photos: overall similarity %.0f%%, %s. Angle coverage completeness: %.0f%%.",
		productName, packagingCount, deliveryCount, overallSimilarity, verdict, coverage,
	)
}
