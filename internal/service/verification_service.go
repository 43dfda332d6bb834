// Package service orchestrates image gathering, encoding and analysis
// for one shipment comparison at a time. Each call is self-contained:
// no caching or shared mutable state across requests.
package service

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"go-shipment-verifier/internal/analyzer"
	"go-shipment-verifier/internal/encoder"
	apperrors "go-shipment-verifier/internal/errors"
	"go-shipment-verifier/internal/observer"
	"go-shipment-verifier/internal/repository"
	"go-shipment-verifier/internal/strategy"
	"go-shipment-verifier/internal/workpool"
	"go-shipment-verifier/pkg/models"
	"go-shipment-verifier/pkg/validation"
)

// VerificationService is the externally consumed surface of the
// comparison core.
type VerificationService interface {
	// ComparePair analyzes one packaging image against one delivery
	// image; uses the vision model when configured, otherwise the
	// local fallback.
	ComparePair(ctx context.Context, req *models.CompareRequest) (*models.AnalysisReport, error)

	// CompareMultiAngle analyzes several images per side in one
	// model call; requires the vision model.
	CompareMultiAngle(ctx context.Context, req *models.MultiAngleCompareRequest) (*models.MultiAngleReport, error)

	// CompareLocal forces the local pixel-statistics path.
	CompareLocal(ctx context.Context, req *models.CompareRequest) (*models.AnalysisReport, error)
}

type verificationService struct {
	imageRepo        repository.ImageRepository
	remoteStrategy   strategy.ComparisonStrategy // nil when no credential configured
	localStrategy    strategy.ComparisonStrategy
	multiAngle       analyzer.MultiAngleAnalyzer // nil when no credential configured
	validator        *validation.RequestValidator
	publisher        observer.Subject
	pool             *workpool.WorkerPool
	maxImagesPerSide int
}

// NewVerificationService wires the comparison paths together.
// remoteStrategy and multiAngle are nil when no vision credential is
// configured; single-pair requests then take the local path and
// multi-angle requests fail with a credential error.
func NewVerificationService(
	imageRepo repository.ImageRepository,
	remoteStrategy strategy.ComparisonStrategy,
	localStrategy strategy.ComparisonStrategy,
	multiAngle analyzer.MultiAngleAnalyzer,
	publisher observer.Subject,
	pool *workpool.WorkerPool,
	maxImagesPerSide int,
) VerificationService {
	return &verificationService{
		imageRepo:        imageRepo,
		remoteStrategy:   remoteStrategy,
		localStrategy:    localStrategy,
		multiAngle:       multiAngle,
		validator:        validation.NewRequestValidator(maxImagesPerSide),
		publisher:        publisher,
		pool:             pool,
		maxImagesPerSide: maxImagesPerSide,
	}
}

// ComparePair analyzes one packaging image against one delivery image
func (s *verificationService) ComparePair(ctx context.Context, req *models.CompareRequest) (*models.AnalysisReport, error) {
	chosen := s.remoteStrategy
	if chosen == nil {
		chosen = s.localStrategy
	}
	return s.comparePairWith(ctx, req, chosen)
}

// CompareLocal forces the local pixel-statistics path
func (s *verificationService) CompareLocal(ctx context.Context, req *models.CompareRequest) (*models.AnalysisReport, error) {
	return s.comparePairWith(ctx, req, s.localStrategy)
}

func (s *verificationService) comparePairWith(ctx context.Context, req *models.CompareRequest, chosen strategy.ComparisonStrategy) (*models.AnalysisReport, error) {
	start := time.Now()
	mode := chosen.GetStrategyName()
	s.notify(ctx, observer.ComparisonStarted, mode, 0, true, "", nil)

	if issues := s.validator.ValidatePair(req); len(issues) > 0 {
		err := apperrors.NewValidationError(strings.Join(validation.ConvertIssuesToMessages(issues), "; "), nil)
		s.notify(ctx, observer.ComparisonFailed, mode, time.Since(start), false, err.Error(), nil)
		return nil, err
	}

	// The two gathers are independent I/O; only joint completion
	// matters before analysis starts.
	blobs, err := s.gatherImages(ctx, []models.ImageInput{req.Packaging, req.Delivery})
	if err != nil {
		s.notify(ctx, observer.ComparisonFailed, mode, time.Since(start), false, err.Error(), nil)
		return nil, err
	}

	report, err := chosen.Compare(ctx, blobs[0], blobs[1])
	if err != nil {
		err = wrapFailure(err)
		s.notify(ctx, observer.ComparisonFailed, mode, time.Since(start), false, err.Error(), nil)
		return nil, err
	}

	eventType := observer.ComparisonCompleted
	if degraded, ok := report.TechnicalAnalysis["degraded"].(bool); ok && degraded {
		eventType = observer.ComparisonDegraded
	}
	s.notify(ctx, eventType, mode, time.Since(start), true, "", map[string]interface{}{
		"products_match": report.AreProductsSame,
	})
	return report, nil
}

// CompareMultiAngle analyzes several images per side in one model call
func (s *verificationService) CompareMultiAngle(ctx context.Context, req *models.MultiAngleCompareRequest) (*models.MultiAngleReport, error) {
	start := time.Now()
	const mode = "remote_multi_angle"
	s.notify(ctx, observer.ComparisonStarted, mode, 0, true, "", nil)

	if s.multiAngle == nil {
		err := apperrors.NewCredentialError("multi-angle analysis requires a configured vision API key", nil)
		s.notify(ctx, observer.ComparisonFailed, mode, time.Since(start), false, err.Error(), nil)
		return nil, err
	}

	if issues := s.validator.ValidateMultiAngle(req); len(issues) > 0 {
		err := apperrors.NewValidationError(strings.Join(validation.ConvertIssuesToMessages(issues), "; "), nil)
		s.notify(ctx, observer.ComparisonFailed, mode, time.Since(start), false, err.Error(), nil)
		return nil, err
	}

	packagingBlobs, err := s.gatherImages(ctx, req.Packaging)
	if err != nil {
		s.notify(ctx, observer.ComparisonFailed, mode, time.Since(start), false, err.Error(), nil)
		return nil, err
	}
	deliveryBlobs, err := s.gatherImages(ctx, req.Delivery)
	if err != nil {
		s.notify(ctx, observer.ComparisonFailed, mode, time.Since(start), false, err.Error(), nil)
		return nil, err
	}

	report, err := s.multiAngle.AnalyzeMultiAngle(ctx,
		encoder.EncodeAll(s.pool, packagingBlobs),
		encoder.EncodeAll(s.pool, deliveryBlobs),
	)
	if err != nil {
		err = wrapFailure(err)
		s.notify(ctx, observer.ComparisonFailed, mode, time.Since(start), false, err.Error(), nil)
		return nil, err
	}

	s.notify(ctx, observer.ComparisonCompleted, mode, time.Since(start), true, "", map[string]interface{}{
		"products_match":  report.AreProductsSame,
		"angles_analyzed": len(report.AngleComparisons),
	})
	return report, nil
}

// gatherImages resolves every input to raw bytes, preserving order.
// Inline data decodes in place; URLs fetch concurrently through the
// repository.
func (s *verificationService) gatherImages(ctx context.Context, inputs []models.ImageInput) ([][]byte, error) {
	blobs := make([][]byte, len(inputs))
	urls := make([]string, 0, len(inputs))
	urlSlots := make([]int, 0, len(inputs))

	for i, input := range inputs {
		if input.Data != "" {
			data, err := base64.StdEncoding.DecodeString(input.Data)
			if err != nil {
				return nil, apperrors.NewValidationError("inline image data is not valid base64", err)
			}
			blobs[i] = data
			continue
		}
		urls = append(urls, input.URL)
		urlSlots = append(urlSlots, i)
	}

	if len(urls) > 0 {
		fetched, err := s.imageRepo.FetchImages(ctx, urls)
		if err != nil {
			return nil, apperrors.NewNetworkError("failed to fetch images", err)
		}
		for j, data := range fetched {
			blobs[urlSlots[j]] = data
		}
	}
	return blobs, nil
}

func (s *verificationService) notify(ctx context.Context, eventType observer.EventType, mode string, elapsed time.Duration, success bool, errMsg string, metadata map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	s.publisher.NotifyObservers(ctx, observer.ComparisonEvent{
		EventType:      eventType,
		Timestamp:      time.Now().UTC(),
		Mode:           mode,
		ProcessingTime: elapsed,
		Success:        success,
		ErrorMessage:   errMsg,
		Metadata:       metadata,
	})
}

// wrapFailure is the outermost error boundary: specific messages pass
// through untouched, anything else becomes a generic human-readable
// failure so the end user never sees an empty description.
func wrapFailure(err error) error {
	if _, ok := err.(*apperrors.AppError); ok {
		return err
	}
	return apperrors.NewInternalError("analysis failed, please try again", err)
}
