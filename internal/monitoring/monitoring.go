package monitoring

import (
	"time"

	"github.com/plalog/plalog/server/hub/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	nuts "github.com/vaudience/go-nuts"
)

const (
	namespace = "plalog"
	subsystem = "import"
)

// Service exposes import and cleanup metrics
type Service struct {
	importRuns     *prometheus.CounterVec
	importRows     *prometheus.CounterVec
	importDuration prometheus.Histogram
	events         *prometheus.CounterVec
}

// NewService registers the collectors on reg
func NewService(reg prometheus.Registerer) *Service {
	factory := promauto.With(reg)
	return &Service{
		importRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "runs_total",
			Help:      "CSV import runs by detected format and outcome",
		}, []string{"format", "outcome"}),
		importRows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rows_total",
			Help:      "Rows written or skipped by CSV imports",
		}, []string{"kind"}),
		importDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "duration_ms",
			Help:      "A histogram for CSV import execution time (ms)",
			Buckets:   prometheus.ExponentialBuckets(5, 2, 12),
		}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Domain events such as cascade deletions",
		}, []string{"event"}),
	}
}

// ObserveImport records one import run
func (s *Service) ObserveImport(format, outcome string, result *models.ImportResult, elapsed time.Duration) {
	s.importRuns.WithLabelValues(format, outcome).Inc()
	s.importDuration.Observe(float64(elapsed.Milliseconds()))
	if result == nil || !result.Success {
		return
	}
	s.importRows.WithLabelValues("hourly_saved").Add(float64(result.HourlyRecords))
	s.importRows.WithLabelValues("hourly_skipped").Add(float64(result.Skipped))
	s.importRows.WithLabelValues("daily_saved").Add(float64(result.DailyRecords))
}

// RecordEvent records a monitored event with labels
func (s *Service) RecordEvent(eventName string, labels map[string]string) {
	s.events.WithLabelValues(eventName).Inc()
	nuts.L.Infof("[Monitoring] Event %s recorded with labels: %v", eventName, labels)
}
