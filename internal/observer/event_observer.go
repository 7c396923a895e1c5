package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// AnalysisEvent represents a step in the life of one analysis request
type AnalysisEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	AnalysisID     string                 `json:"analysis_id"`
	InputType      string                 `json:"input_type,omitempty"`
	Source         string                 `json:"source,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorCode      string                 `json:"error_code,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	TokensUsed     int                    `json:"tokens_used,omitempty"`
	ParseMode      string                 `json:"parse_mode,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of analysis event
type EventType string

const (
	// AnalysisStarted when analysis begins
	AnalysisStarted EventType = "analysis_started"
	// AnalysisCompleted when analysis finishes successfully
	AnalysisCompleted EventType = "analysis_completed"
	// AnalysisFailed when analysis fails
	AnalysisFailed EventType = "analysis_failed"
	// ImageFetched when a remote image is downloaded
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when a remote image download fails
	ImageFetchFailed EventType = "image_fetch_failed"
)

// Fallback parse mode as reported in events
const parseModeFallback = "fallback"

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event AnalysisEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event AnalysisEvent)
}

// LoggingObserver logs analysis events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles analysis events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"analysis_id":     event.AnalysisID,
		"processing_time": event.ProcessingTime.Milliseconds(),
		"success":         event.Success,
	}
	if event.InputType != "" {
		fields["input_type"] = event.InputType
	}
	if event.Source != "" {
		fields["source"] = event.Source
	}
	if event.ErrorCode != "" {
		fields["error_code"] = event.ErrorCode
		fields["error"] = event.ErrorMessage
	}
	if event.ParseMode != "" {
		fields["parse_mode"] = event.ParseMode
		fields["tokens_used"] = event.TokensUsed
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case AnalysisStarted:
		entry.Info("Analysis started")
	case AnalysisCompleted:
		if event.ParseMode == parseModeFallback {
			entry.Warn("Analysis completed with fallback parse")
			return
		}
		entry.Info("Analysis completed")
	case AnalysisFailed:
		entry.Error("Analysis failed")
	case ImageFetched:
		entry.Debug("Image fetched successfully")
	case ImageFetchFailed:
		entry.Error("Image fetch failed")
	default:
		entry.Info("Analysis event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// Stats is a snapshot of the counters kept by MetricsObserver
type Stats struct {
	TotalAnalyses       int64            `json:"totalAnalyses"`
	SuccessfulAnalyses  int64            `json:"successfulAnalyses"`
	FailedAnalyses      int64            `json:"failedAnalyses"`
	FallbackParses      int64            `json:"fallbackParses"`
	ImageFetchFailures  int64            `json:"imageFetchFailures"`
	TotalTokens         int64            `json:"totalTokens"`
	AvgProcessingTimeMs int64            `json:"avgProcessingTimeMs"`
	ByInputType         map[string]int64 `json:"byInputType"`
	ErrorsByCode        map[string]int64 `json:"errorsByCode"`
}

// MetricsObserver collects in-memory counters from analysis events
type MetricsObserver struct {
	mu                  sync.RWMutex
	stats               Stats
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		stats: Stats{
			ByInputType:  make(map[string]int64),
			ErrorsByCode: make(map[string]int64),
		},
	}
}

// OnEvent handles analysis events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case AnalysisStarted:
		o.stats.TotalAnalyses++
		if event.InputType != "" {
			o.stats.ByInputType[event.InputType]++
		}
	case AnalysisCompleted:
		o.stats.SuccessfulAnalyses++
		o.stats.TotalTokens += int64(event.TokensUsed)
		o.totalProcessingTime += event.ProcessingTime
		if event.ParseMode == parseModeFallback {
			o.stats.FallbackParses++
		}
	case AnalysisFailed:
		o.stats.FailedAnalyses++
		if event.ErrorCode != "" {
			o.stats.ErrorsByCode[event.ErrorCode]++
		}
	case ImageFetchFailed:
		o.stats.ImageFetchFailures++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns a copy of the current counters
func (o *MetricsObserver) GetMetrics() Stats {
	o.mu.RLock()
	defer o.mu.RUnlock()

	snapshot := o.stats
	snapshot.ByInputType = make(map[string]int64, len(o.stats.ByInputType))
	for k, v := range o.stats.ByInputType {
		snapshot.ByInputType[k] = v
	}
	snapshot.ErrorsByCode = make(map[string]int64, len(o.stats.ErrorsByCode))
	for k, v := range o.stats.ErrorsByCode {
		snapshot.ErrorsByCode[k] = v
	}
	if o.stats.SuccessfulAnalyses > 0 {
		snapshot.AvgProcessingTimeMs = (o.totalProcessingTime / time.Duration(o.stats.SuccessfulAnalyses)).Milliseconds()
	}
	return snapshot
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

// NotifyObservers fans the event out to all observers and returns once each has handled it.
// A panicking observer is logged and does not affect the others.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event AnalysisEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	var wg sync.WaitGroup
	for _, observer := range observers {
		wg.Add(1)
		go func(obs Observer) {
			defer wg.Done()
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
	wg.Wait()
}
