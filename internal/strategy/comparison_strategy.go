package strategy

import (
	"context"

	"go-shipment-verifier/internal/analyzer"
	"go-shipment-verifier/internal/encoder"
	"go-shipment-verifier/pkg/models"
)

// ComparisonStrategy is one way of comparing a packaging photo with a
// delivery photo. The remote strategy talks to the vision model; the
// local strategy is a parallel path that never leaves the process.
type ComparisonStrategy interface {
	Compare(ctx context.Context, packagingData, deliveryData []byte) (*models.AnalysisReport, error)
	GetStrategyName() string
}

// RemoteComparisonStrategy runs the two-stage vision flow
type RemoteComparisonStrategy struct {
	analyzer analyzer.PairAnalyzer
}

// NewRemoteComparisonStrategy creates the vision-backed strategy
func NewRemoteComparisonStrategy(pairAnalyzer analyzer.PairAnalyzer) ComparisonStrategy {
	return &RemoteComparisonStrategy{
		analyzer: pairAnalyzer,
	}
}

// Compare encodes both images and runs the two-stage analysis
func (s *RemoteComparisonStrategy) Compare(ctx context.Context, packagingData, deliveryData []byte) (*models.AnalysisReport, error) {
	return s.analyzer.AnalyzePair(ctx, encoder.EncodeBytes(packagingData), encoder.EncodeBytes(deliveryData))
}

// GetStrategyName returns the strategy name
func (s *RemoteComparisonStrategy) GetStrategyName() string {
	return "remote_two_stage"
}

// LocalComparisonStrategy runs the pixel-statistics fallback
type LocalComparisonStrategy struct {
	comparator *analyzer.LocalComparator
}

// NewLocalComparisonStrategy creates the local fallback strategy
func NewLocalComparisonStrategy(comparator *analyzer.LocalComparator) ComparisonStrategy {
	return &LocalComparisonStrategy{
		comparator: comparator,
	}
}

// Compare derives the report from local pixel statistics; it cannot
// fail, only degrade.
func (s *LocalComparisonStrategy) Compare(ctx context.Context, packagingData, deliveryData []byte) (*models.AnalysisReport, error) {
	return s.comparator.Compare(packagingData, deliveryData), nil
}

// GetStrategyName returns the strategy name
func (s *LocalComparisonStrategy) GetStrategyName() string {
	return "local_fallback"
}
