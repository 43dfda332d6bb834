package factory

import (
	"fmt"

	"go-shipment-verifier/internal/analyzer"
	"go-shipment-verifier/internal/config"
	"go-shipment-verifier/internal/storage"
	"go-shipment-verifier/internal/strategy"
)

// StrategyType selects how a single-pair comparison is performed
type StrategyType string

const (
	// RemoteStrategy uses the vision model
	RemoteStrategy StrategyType = "remote"
	// LocalStrategy uses the pixel-statistics fallback
	LocalStrategy StrategyType = "local"
)

// SourceType selects an image source backend
type SourceType string

const (
	// HTTPSource for HTTP-based image fetching
	HTTPSource SourceType = "http"
	// AzureSource for Azure blob storage
	AzureSource SourceType = "azure"
)

// StrategyFactory creates comparison strategies
type StrategyFactory interface {
	CreateStrategy(strategyType StrategyType) (strategy.ComparisonStrategy, error)
}

// FetcherFactory creates image source implementations
type FetcherFactory interface {
	CreateFetcher(sourceType SourceType) (storage.ImageFetcher, error)
	CreateBlobFetcher() (storage.BlobFetcher, error)
}

type strategyFactory struct {
	pairAnalyzer analyzer.PairAnalyzer
	comparator   *analyzer.LocalComparator
}

// NewStrategyFactory creates a factory over the two analysis paths
func NewStrategyFactory(pairAnalyzer analyzer.PairAnalyzer, comparator *analyzer.LocalComparator) StrategyFactory {
	return &strategyFactory{
		pairAnalyzer: pairAnalyzer,
		comparator:   comparator,
	}
}

// CreateStrategy creates a strategy of the specified type
func (f *strategyFactory) CreateStrategy(strategyType StrategyType) (strategy.ComparisonStrategy, error) {
	switch strategyType {
	case RemoteStrategy:
		if f.pairAnalyzer == nil {
			return nil, fmt.Errorf("remote strategy requires a configured vision client")
		}
		return strategy.NewRemoteComparisonStrategy(f.pairAnalyzer), nil
	case LocalStrategy:
		return strategy.NewLocalComparisonStrategy(f.comparator), nil
	default:
		return nil, fmt.Errorf("unsupported strategy type: %s", strategyType)
	}
}

type fetcherFactory struct {
	cfg *config.Config
}

// NewFetcherFactory creates a factory for image sources
func NewFetcherFactory(cfg *config.Config) FetcherFactory {
	return &fetcherFactory{cfg: cfg}
}

// CreateFetcher creates a fetcher for the specified source type
func (f *fetcherFactory) CreateFetcher(sourceType SourceType) (storage.ImageFetcher, error) {
	switch sourceType {
	case HTTPSource:
		return storage.NewHTTPImageFetcher(f.cfg.ImageFetchTimeout), nil
	default:
		return nil, fmt.Errorf("unsupported source type: %s", sourceType)
	}
}

// CreateBlobFetcher creates the Azure source, or nil when no account
// is configured.
func (f *fetcherFactory) CreateBlobFetcher() (storage.BlobFetcher, error) {
	if !f.cfg.AzureConfigured() {
		return nil, nil
	}
	fetcher, err := storage.NewAzureFetcher(f.cfg.AzureAccountName, f.cfg.AzureAccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure fetcher for %s: %w", f.cfg.AzureAccountName, err)
	}
	return fetcher, nil
}
