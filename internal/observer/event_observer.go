package observer

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/anime-shed/photo-scorer-go/internal/logger"
)

// AnalysisEvent represents an analysis event
type AnalysisEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	AnalysisID     string                 `json:"analysis_id"`
	Source         string                 `json:"source"`
	ProcessingTime time.Duration          `json:"processing_time"`
	OverallScore   float64                `json:"overall_score,omitempty"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of analysis event
type EventType string

const (
	// AnalysisStarted when analysis begins
	AnalysisStarted EventType = "analysis_started"
	// AnalysisCompleted when scores were produced
	AnalysisCompleted EventType = "analysis_completed"
	// AnalysisFailed when no scores could be produced
	AnalysisFailed EventType = "analysis_failed"
	// ImageFetched when a remote photo was downloaded
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when a remote photo could not be downloaded
	ImageFetchFailed EventType = "image_fetch_failed"
	// TechnicalFallback when the fixed technical vector replaced real scores
	TechnicalFallback EventType = "technical_fallback"
)

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
	// Wait blocks until every delivery started so far has returned
	Wait()
	// Close stops accepting events and waits for pending deliveries
	Close()
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
		"component":       "observer",
		"event_type":      event.EventType,
		"analysis_id":     event.AnalysisID,
		"source":          event.Source,
		"processing_time": event.ProcessingTime.String(),
		"success":         event.Success,
	}

	if event.EventType == AnalysisCompleted {
		fields["overall_score"] = event.OverallScore
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case AnalysisStarted:
		entry.Info("Photo analysis started")
	case AnalysisCompleted:
		entry.Info("Photo analysis completed")
	case AnalysisFailed:
		entry.Error("Photo analysis failed")
	case ImageFetched:
		entry.Debug("Photo fetched successfully")
	case ImageFetchFailed:
		entry.Error("Photo fetch failed")
	case TechnicalFallback:
		entry.Warn("Technical scores replaced by fallback vector")
	default:
		entry.Info("Analysis event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// scoreWindow is how many recent overall scores the metrics observer keeps
const scoreWindow = 1000

// Metrics is a point-in-time view of the metrics observer
type Metrics struct {
	TotalAnalyses      int64   `json:"total_analyses"`
	SuccessfulAnalyses int64   `json:"successful_analyses"`
	FailedAnalyses     int64   `json:"failed_analyses"`
	FetchFailures      int64   `json:"fetch_failures"`
	TechnicalFallbacks int64   `json:"technical_fallbacks"`
	AvgProcessingMs    float64 `json:"avg_processing_ms"`
	ScoreSamples       int     `json:"score_samples"`
	ScoreMean          float64 `json:"score_mean"`
	ScoreStdDev        float64 `json:"score_std_dev"`
	ScoreMedian        float64 `json:"score_median"`
}

// MetricsObserver collects counters and recent overall score statistics
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalAnalyses       int64
	successfulAnalyses  int64
	failedAnalyses      int64
	fetchFailures       int64
	technicalFallbacks  int64
	totalProcessingTime time.Duration
	scores              []float64
	next                int
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{scores: make([]float64, 0, scoreWindow)}
}

// OnEvent handles analysis events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case AnalysisStarted:
		o.totalAnalyses++
	case AnalysisCompleted:
		o.successfulAnalyses++
		o.totalProcessingTime += event.ProcessingTime
		o.recordScore(event.OverallScore)
	case AnalysisFailed:
		o.failedAnalyses++
	case ImageFetchFailed:
		o.fetchFailures++
	case TechnicalFallback:
		o.technicalFallbacks++
	}
}

// recordScore keeps the last scoreWindow scores in a ring
func (o *MetricsObserver) recordScore(score float64) {
	if len(o.scores) < scoreWindow {
		o.scores = append(o.scores, score)
		return
	}
	o.scores[o.next] = score
	o.next = (o.next + 1) % scoreWindow
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() Metrics {
	o.mu.RLock()
	defer o.mu.RUnlock()

	m := Metrics{
		TotalAnalyses:      o.totalAnalyses,
		SuccessfulAnalyses: o.successfulAnalyses,
		FailedAnalyses:     o.failedAnalyses,
		FetchFailures:      o.fetchFailures,
		TechnicalFallbacks: o.technicalFallbacks,
		ScoreSamples:       len(o.scores),
	}
	if o.successfulAnalyses > 0 {
		avg := o.totalProcessingTime / time.Duration(o.successfulAnalyses)
		m.AvgProcessingMs = float64(avg) / float64(time.Millisecond)
	}

	switch len(o.scores) {
	case 0:
	case 1:
		m.ScoreMean, m.ScoreMedian = o.scores[0], o.scores[0]
	default:
		sorted := append([]float64(nil), o.scores...)
		sort.Float64s(sorted)
		m.ScoreMean, m.ScoreStdDev = stat.MeanStdDev(sorted, nil)
		m.ScoreMedian = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	}
	return m
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	inflight  sync.WaitGroup
	closed    bool
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() Subject {
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

// NotifyObservers notifies all observers of an event. Delivery is
// asynchronous and detached from ctx cancellation. Events published after
// Close are dropped.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event AnalysisEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		logger.WithComponent("observer").WithField("event_type", event.EventType).
			Debug("Dropping event published after close")
		return
	}

	ctx = context.WithoutCancel(ctx)
	for _, observer := range p.observers {
		p.inflight.Add(1)
		go p.deliver(ctx, observer, event)
	}
}

func (p *EventPublisher) deliver(ctx context.Context, obs Observer, event AnalysisEvent) {
	defer p.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.WithComponent("observer").WithFields(logrus.Fields{
				"observer": obs.GetObserverName(),
				"panic":    r,
			}).Error("Observer panicked while handling event")
		}
	}()
	obs.OnEvent(ctx, event)
}

// Wait blocks until in-flight deliveries finish
func (p *EventPublisher) Wait() {
	p.inflight.Wait()
}

// Close stops accepting events and drains in-flight deliveries. It is safe
// to call more than once.
func (p *EventPublisher) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.inflight.Wait()
}
