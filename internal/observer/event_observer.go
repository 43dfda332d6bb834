package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ComparisonEvent describes one lifecycle point of a shipment
// comparison.
type ComparisonEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	Mode           string                 `json:"mode"` // single_pair, multi_angle, local_fallback
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of comparison event
type EventType string

const (
	// ComparisonStarted when a comparison begins
	ComparisonStarted EventType = "comparison_started"
	// ComparisonCompleted when a comparison finishes successfully
	ComparisonCompleted EventType = "comparison_completed"
	// ComparisonFailed when a comparison fails
	ComparisonFailed EventType = "comparison_failed"
	// ComparisonDegraded when the similarity stage fell back to the
	// identification result
	ComparisonDegraded EventType = "comparison_degraded"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event ComparisonEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event ComparisonEvent)
}

// LoggingObserver logs comparison events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles comparison events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event ComparisonEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"mode":            event.Mode,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}

	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}

	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case ComparisonStarted:
		o.logger.WithFields(fields).Info("Shipment comparison started")
	case ComparisonCompleted:
		o.logger.WithFields(fields).Info("Shipment comparison completed")
	case ComparisonDegraded:
		o.logger.WithFields(fields).Warn("Shipment comparison degraded")
	case ComparisonFailed:
		o.logger.WithFields(fields).Error("Shipment comparison failed")
	default:
		o.logger.WithFields(fields).Info("Comparison event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from comparison events
type MetricsObserver struct {
	mu                    sync.RWMutex
	totalComparisons      int64
	successfulComparisons int64
	failedComparisons     int64
	degradedComparisons   int64
	totalProcessingTime   time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles comparison events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event ComparisonEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case ComparisonStarted:
		o.totalComparisons++
	case ComparisonCompleted:
		o.successfulComparisons++
		o.totalProcessingTime += event.ProcessingTime
	case ComparisonDegraded:
		o.degradedComparisons++
	case ComparisonFailed:
		o.failedComparisons++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current counters
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.successfulComparisons > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulComparisons)
	}

	return map[string]interface{}{
		"total_comparisons":      o.totalComparisons,
		"successful_comparisons": o.successfulComparisons,
		"failed_comparisons":     o.failedComparisons,
		"degraded_comparisons":   o.degradedComparisons,
		"avg_processing_time_ms": avgProcessingTime.Milliseconds(),
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event ComparisonEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
