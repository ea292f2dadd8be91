package idxset

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    filterCounter   prometheus.Counter
//	    filterHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordFilter(duration time.Duration, results int, err error) {
//	    p.filterCounter.Inc()
//	    p.filterHistogram.Observe(duration.Seconds())
//	}
type MetricsCollector interface {
	// RecordFilter is called after each query.
	// results is the number of matching objects, err is nil if successful.
	RecordFilter(duration time.Duration, results int, err error)

	// RecordInsert is called after each insert operation.
	RecordInsert(duration time.Duration, err error)

	// RecordRemove is called after each remove operation.
	RecordRemove(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFilter(time.Duration, int, error) {}
func (NoopMetricsCollector) RecordInsert(time.Duration, error)      {}
func (NoopMetricsCollector) RecordRemove(time.Duration, error)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FilterCount      atomic.Int64
	FilterErrors     atomic.Int64
	FilterResults    atomic.Int64
	FilterTotalNanos atomic.Int64
	InsertCount      atomic.Int64
	InsertErrors     atomic.Int64
	InsertTotalNanos atomic.Int64
	RemoveCount      atomic.Int64
	RemoveErrors     atomic.Int64
}

// RecordFilter implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFilter(duration time.Duration, results int, err error) {
	b.FilterCount.Add(1)
	b.FilterTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FilterErrors.Add(1)
		return
	}
	b.FilterResults.Add(int64(results))
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(duration time.Duration, err error) {
	b.RemoveCount.Add(1)
	if err != nil {
		b.RemoveErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		FilterCount:    b.FilterCount.Load(),
		FilterErrors:   b.FilterErrors.Load(),
		FilterResults:  b.FilterResults.Load(),
		FilterAvgNanos: avgNanos(b.FilterTotalNanos.Load(), b.FilterCount.Load()),
		InsertCount:    b.InsertCount.Load(),
		InsertErrors:   b.InsertErrors.Load(),
		InsertAvgNanos: avgNanos(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		RemoveCount:    b.RemoveCount.Load(),
		RemoveErrors:   b.RemoveErrors.Load(),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	FilterCount    int64
	FilterErrors   int64
	FilterResults  int64
	FilterAvgNanos int64
	InsertCount    int64
	InsertErrors   int64
	InsertAvgNanos int64
	RemoveCount    int64
	RemoveErrors   int64
}
