package container

import (
	"fmt"
	"net/http"

	"go-shipment-verifier/internal/analyzer"
	"go-shipment-verifier/internal/config"
	"go-shipment-verifier/internal/factory"
	"go-shipment-verifier/internal/logger"
	"go-shipment-verifier/internal/observer"
	"go-shipment-verifier/internal/repository"
	"go-shipment-verifier/internal/service"
	"go-shipment-verifier/internal/strategy"
	"go-shipment-verifier/internal/transport"
	"go-shipment-verifier/internal/vision"
	"go-shipment-verifier/internal/workpool"
)

// Container holds all application dependencies
type Container struct {
	config              *config.Config
	pool                *workpool.WorkerPool
	localComparator     *analyzer.LocalComparator
	metrics             *observer.MetricsObserver
	verificationService service.VerificationService
	handler             http.Handler
}

// NewContainer builds the dependency graph. The vision paths are only
// wired when an API key is configured; otherwise single-pair requests
// fall through to the local comparator.
func NewContainer(cfg *config.Config) (*Container, error) {
	pool := workpool.NewWorkerPool(0)
	pool.Start()

	// Image sources
	fetcherFactory := factory.NewFetcherFactory(cfg)
	httpFetcher, err := fetcherFactory.CreateFetcher(factory.HTTPSource)
	if err != nil {
		return nil, fmt.Errorf("failed to create http fetcher: %w", err)
	}
	blobFetcher, err := fetcherFactory.CreateBlobFetcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create blob fetcher: %w", err)
	}
	imageRepo := repository.NewImageRepository(httpFetcher, blobFetcher, pool)

	// Local fallback path. The OCR text layer needs a local
	// tesseract install and stays off unless requested.
	var extractor analyzer.TextExtractor
	if cfg.LocalOCREnabled {
		extractor = analyzer.NewTesseractExtractor()
	}
	localComparator := analyzer.NewLocalComparator(extractor)

	// Vision paths
	var pairAnalyzer analyzer.PairAnalyzer
	var multiAngle analyzer.MultiAngleAnalyzer
	if cfg.VisionConfigured() {
		client := vision.NewHTTPClient(cfg.VisionEndpoint, cfg.VisionModel, cfg.VisionAPIKey, cfg.AnalysisTimeout)
		pairAnalyzer = analyzer.NewPairAnalyzer(client)
		multiAngle = analyzer.NewMultiAngleAnalyzer(client)
	}

	strategyFactory := factory.NewStrategyFactory(pairAnalyzer, localComparator)
	localStrategy, err := strategyFactory.CreateStrategy(factory.LocalStrategy)
	if err != nil {
		return nil, err
	}
	var remoteStrategy strategy.ComparisonStrategy
	if pairAnalyzer != nil {
		remoteStrategy, err = strategyFactory.CreateStrategy(factory.RemoteStrategy)
		if err != nil {
			return nil, err
		}
	}

	// Observability
	publisher := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	verificationService := service.NewVerificationService(
		imageRepo,
		remoteStrategy,
		localStrategy,
		multiAngle,
		publisher,
		pool,
		cfg.MaxImagesPerSide,
	)
	handler := transport.NewHandler(verificationService, metrics, cfg)

	return &Container{
		config:              cfg,
		pool:                pool,
		localComparator:     localComparator,
		metrics:             metrics,
		verificationService: verificationService,
		handler:             handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases pooled workers and the OCR client
func (c *Container) Close() error {
	c.pool.Close()
	return c.localComparator.Close()
}
